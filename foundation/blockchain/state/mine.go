package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are no valid transactions.
var ErrNoTransactions = errors.New("no valid transactions in mempool")

// =============================================================================

// MineNewBlock builds the next block from the valid transactions in the
// mempool. The batch is checked against a scratch copy of the state first
// and transactions that fail are evicted from the pool. The state is only
// replaced when the whole block is appended.
func (s *State) MineNewBlock() (chain.Block, error) {
	block, err := s.mineNewBlock()
	if err != nil {
		return chain.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: broadcast chain: blk[%d]", block.Height)

	if s.Network != nil {
		s.Network.BroadcastChain(s.chain.Blocks())
	}

	return block, nil
}

func (s *State) mineNewBlock() (chain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	pending := s.mempool.Copy()

	s.evHandler("state: MineNewBlock: MINING: check mempool: txs[%d]", len(pending))

	valid := s.mempool.ValidTransactions(s.db, now)
	if len(valid) == 0 {
		return chain.Block{}, ErrNoTransactions
	}

	selected := s.mempool.Select(valid, -1)

	s.evHandler("state: MineNewBlock: MINING: prevalidate: valid[%d]: selected[%d]", len(valid), len(selected))

	batch, evicted := s.prevalidate(selected, now)
	for _, tx := range evicted {
		s.mempool.Delete(tx.ID)
	}
	if len(batch) == 0 {
		return chain.Block{}, ErrNoTransactions
	}

	// The block executes against its own copy so a failure leaves the
	// published state untouched.
	next := s.db.Clone()
	block, err := s.chain.AddBlock(batch, next, now)
	if err != nil {
		return chain.Block{}, err
	}

	s.db = next

	s.evHandler("state: MineNewBlock: MINING: clear mempool: blk[%d]: txs[%d]: evicted[%d]", block.Height, len(batch), len(evicted))

	for id := range pending {
		s.mempool.Delete(id)
	}
	s.mempool.ClearBlockchainTransactions([]chain.Block{block})

	return block, nil
}

// prevalidate applies the transactions in id order to a scratch copy of the
// state. Transactions that fail are returned separately and leave the
// scratch state as it was.
func (s *State) prevalidate(txs []transaction.Tx, now int64) (batch []transaction.Tx, evicted []transaction.Tx) {
	scratch := s.db.Clone()

	for _, tx := range chain.SortTransactions(txs) {
		if err := tx.Validate(scratch, now); err != nil {
			s.evHandler("state: MineNewBlock: MINING: evict tx[%s]: %s", tx.ID, err)
			evicted = append(evicted, tx)
			continue
		}

		if err := tx.Execute(scratch, now); err != nil {
			s.evHandler("state: MineNewBlock: MINING: evict tx[%s]: %s", tx.ID, err)
			evicted = append(evicted, tx)

			// Execution may have partially applied the transaction.
			if scratch, err = rebuild(s.db, batch, now); err != nil {
				s.evHandler("state: MineNewBlock: MINING: rebuild scratch state: ERROR: %s", err)
				return nil, evicted
			}
			continue
		}

		batch = append(batch, tx)
	}

	return batch, evicted
}

// rebuild returns a copy of the state with the accepted transactions
// applied.
func rebuild(db *database.Database, batch []transaction.Tx, now int64) (*database.Database, error) {
	scratch := db.Clone()
	for _, tx := range batch {
		if err := tx.Execute(scratch, now); err != nil {
			return nil, fmt.Errorf("replaying tx[%s]: %w", tx.ID, err)
		}
	}
	return scratch, nil
}
