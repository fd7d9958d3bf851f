// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sort"
	"sync"

	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/mempool/selector"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// Mempool represents a cache of pending transactions keyed by their id.
// Every sender holds a single nonce slot; a higher nonce replaces the
// lower ones.
type Mempool struct {
	pool     map[string]transaction.Tx
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyLatest)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]transaction.Tx),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool. Pooled transactions
// of the same sender with a lower nonce are removed. A transaction older than
// the sender's pending nonce is rejected.
func (mp *Mempool) Upsert(tx transaction.Tx) (int, error) {
	if !signature.IsHex(tx.ID) {
		return 0, database.NewValidationError("Invalid transaction id: %q", tx.ID)
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	sender := tx.Sender()

	for id, pending := range mp.pool {
		if pending.Sender() != sender || id == tx.ID {
			continue
		}

		switch {
		case pending.Nonce > tx.Nonce:
			return 0, database.NewValidationError("stale nonce %d for %s, pending nonce %d", tx.Nonce, tx.From, pending.Nonce)
		case pending.Nonce < tx.Nonce:
			delete(mp.pool, id)
		}
	}

	mp.pool[tx.ID] = tx

	return len(mp.pool), nil
}

// Existing returns the pending transaction with the highest nonce sent from
// the address.
func (mp *Mempool) Existing(from string) (transaction.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var best transaction.Tx
	var found bool

	for _, tx := range mp.pool {
		if tx.From != from {
			continue
		}

		if !found || tx.Nonce > best.Nonce || (tx.Nonce == best.Nonce && tx.Timestamp > best.Timestamp) {
			best = tx
			found = true
		}
	}

	return best, found
}

// Get returns the pending transaction with the id.
func (mp *Mempool) Get(id string) (transaction.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	tx, exists := mp.pool[id]
	return tx, exists
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]transaction.Tx)
}

// Copy returns a copy of the pool keyed by transaction id.
func (mp *Mempool) Copy() map[string]transaction.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	pool := make(map[string]transaction.Tx, len(mp.pool))
	for id, tx := range mp.pool {
		pool[id] = tx
	}

	return pool
}

// ValidTransactions returns the pending transactions that pass validation
// against the database, ordered by id. Each transaction is checked on its own
// against the same state.
func (mp *Mempool) ValidTransactions(db *database.Database, now int64) []transaction.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	valid := make([]transaction.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		if err := tx.Validate(db, now); err != nil {
			continue
		}
		valid = append(valid, tx)
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].ID < valid[j].ID })

	return valid
}

// ClearBlockchainTransactions removes every pending transaction already
// included in one of the blocks.
func (mp *Mempool) ClearBlockchainTransactions(blocks []chain.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, block := range blocks {
		for _, tx := range block.Transactions {
			if _, exists := mp.pool[tx.ID]; exists {
				delete(mp.pool, tx.ID)
				removed++
			}
		}
	}

	return removed
}

// Select uses the configured select strategy to return at most one
// transaction per sender and nonce for the next block. Pass -1 for howMany
// to take all of them.
func (mp *Mempool) Select(txs []transaction.Tx, howMany int) []transaction.Tx {
	m := make(map[string][]transaction.Tx)
	for _, tx := range txs {
		key := tx.Sender()
		m[key] = append(m[key], tx)
	}

	return mp.selectFn(m, howMany)
}
