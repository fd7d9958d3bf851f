package state

import (
	"github.com/integr8/blockchain/foundation/blockchain/chain"
)

// ProcessPeerChain replaces the chain with one received from a peer when it
// is valid. Every transaction is replayed against the genesis state and the
// rebuilt state is published. Any valid chain is accepted.
func (s *State) ProcessPeerChain(blocks []chain.Block) error {
	s.evHandler("state: ProcessPeerChain: started: blocks[%d]", len(blocks))
	defer s.evHandler("state: ProcessPeerChain: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(blocks) > 0 && len(blocks) == s.chain.Length() && blocks[len(blocks)-1].Hash == s.chain.Latest().Hash {
		s.evHandler("state: ProcessPeerChain: chain is current")
		return nil
	}

	opts := chain.ReplaceOptions{
		ValidateTransactions: true,
		OnSuccess: func() {
			n := s.mempool.ClearBlockchainTransactions(blocks)
			s.evHandler("state: ProcessPeerChain: mempool: cleared[%d]", n)
		},
	}

	db, err := s.chain.ReplaceChain(blocks, opts)
	if err != nil {
		s.evHandler("state: ProcessPeerChain: rejected: %s", err)
		return err
	}

	s.db = db

	return nil
}
