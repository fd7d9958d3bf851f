// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"sync"

	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/mempool"
	"github.com/integr8/blockchain/foundation/blockchain/peer"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalShareTx(tx transaction.Tx)
}

// Network interface represents the behavior required to be implemented by
// any package providing support for gossiping with the peers.
type Network interface {
	BroadcastChain(blocks []chain.Block)
	BroadcastTransaction(tx transaction.Tx)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Host           string
	Genesis        genesis.Genesis
	Storage        chain.Storage
	SelectStrategy string
	KnownPeers     *peer.PeerSet
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.RWMutex

	host      string
	evHandler EventHandler

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	chain      *chain.Blockchain
	db         *database.Database

	Worker  Worker
	Network Network
}

// New constructs a new blockchain for data management. The stored blocks
// are replayed from the genesis state.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Replay the stored blocks on top of the genesis allocations.
	db := database.NewFromGenesis(cfg.Genesis)
	bc := chain.New(cfg.Genesis, cfg.Storage, ev)
	if err := bc.Load(db); err != nil {
		return nil, err
	}

	// Construct a mempool with the specified select strategy.
	mempool, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	state := State{
		host:      cfg.Host,
		evHandler: ev,

		knownPeers: knownPeers,
		genesis:    cfg.Genesis,
		mempool:    mempool,
		chain:      bc,
		db:         db,
	}

	// The Worker and Network are not set here. The call to worker.Run will
	// assign itself and the gossip layer.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the storage is properly closed.
	defer func() {
		s.chain.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// signalMining asks the worker for a mining run when one is registered.
func (s *State) signalMining() {
	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}
}

// shareTx asks the worker to gossip the transaction when one is registered.
func (s *State) shareTx(tx transaction.Tx) {
	if s.Worker != nil {
		s.Worker.SignalShareTx(tx)
	}
}
