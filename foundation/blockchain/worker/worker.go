// Package worker implements mining, peer updates, and transaction sharing for
// the blockchain.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// defaultReconnectInterval represents the interval of redialing known peers
// this node is not connected to.
const defaultReconnectInterval = 5 * time.Second

// Gossip represents the behavior the worker needs from the peer transport.
type Gossip interface {
	state.Network
	Connect(ctx context.Context, host string) error
	IsConnected(host string) bool
}

// Config represents the settings for the background operations.
type Config struct {
	State             *state.State
	Gossip            Gossip
	ReconnectInterval time.Duration
	EvHandler         state.EventHandler
}

// =============================================================================

// Worker manages the mining, gossip and peer workflows for the blockchain.
type Worker struct {
	state       *state.State
	gossip      Gossip
	wg          sync.WaitGroup
	ticker      *time.Ticker
	shut        chan struct{}
	startMining chan bool
	txSharing   chan transaction.Tx
	evHandler   state.EventHandler
	baseURL     string
}

// Run creates a worker, registers the worker and the gossip layer with the
// state package, and starts up all the background processes.
func Run(cfg Config) *Worker {
	interval := cfg.ReconnectInterval
	if interval <= 0 {
		interval = defaultReconnectInterval
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	w := Worker{
		state:       cfg.State,
		gossip:      cfg.Gossip,
		ticker:      time.NewTicker(interval),
		shut:        make(chan struct{}),
		startMining: make(chan bool, 1),
		txSharing:   make(chan transaction.Tx, maxTxShareRequests),
		evHandler:   ev,
		baseURL:     "http://%s/v1/node",
	}

	// Register this worker with the state package.
	cfg.State.Worker = &w
	if cfg.Gossip != nil {
		cfg.State.Network = cfg.Gossip
	}

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.miningOperations,
		w.shareTxOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	// Transactions pulled from the peers during sync need a block.
	if cfg.State.QueryMempoolLength() > 0 {
		w.SignalStartMining()
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
		w.evHandler("worker: SignalStartMining: mining signaled")
	default:
	}
}

// SignalShareTx signals a share transaction operation. If
// maxTxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareTx(tx transaction.Tx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
