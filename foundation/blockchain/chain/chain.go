// Package chain maintains the ordered list of blocks, the rules for adding
// blocks to it and for replacing it with a chain received from a peer.
package chain

import (
	"errors"
	"sync"

	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// ErrNotFound is returned when a block or transaction is not in the chain.
var ErrNotFound = errors.New("not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for reading and writing the blockchain. The
// genesis block is never stored, heights start at 1.
type Storage interface {
	Write(block Block) error
	GetBlock(height uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// ReplaceOptions control how a candidate chain replaces the current chain.
type ReplaceOptions struct {

	// Re-validate and execute every transaction of the candidate against
	// a fresh state in block order.
	ValidateTransactions bool

	// State to replay the candidate against. A fresh genesis state is used
	// when nil.
	Database *database.Database

	// Called after the chain is swapped.
	OnSuccess func()
}

// =============================================================================

// Blockchain manages the blocks of the chain.
type Blockchain struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	blocks    []Block
	index     map[string]uint64
	storage   Storage
	evHandler func(v string, args ...any)
}

// New constructs a blockchain holding only the genesis block.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) *Blockchain {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Blockchain{
		genesis:   gen,
		blocks:    []Block{Genesis()},
		index:     make(map[string]uint64),
		storage:   storage,
		evHandler: ev,
	}
}

// Load reads every stored block, validates it against its parent and
// replays its transactions into the database. The database is expected to
// hold the genesis state.
func (bc *Blockchain) Load(db *database.Database) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	latest := bc.blocks[len(bc.blocks)-1]

	iter := bc.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return err
		}

		if err := block.ValidateBlock(latest, bc.evHandler); err != nil {
			return err
		}

		if err := replay(block, db, true); err != nil {
			return err
		}

		bc.append(block)
		latest = block
	}

	bc.evHandler("chain: Load: blocks[%d]", len(bc.blocks))

	return nil
}

// Close closes the underlying storage.
func (bc *Blockchain) Close() error {
	return bc.storage.Close()
}

// AddBlock mines the next block from the transactions, executing them
// against the database, and appends it to the chain. The database should be
// a scratch copy so a failure leaves the published state untouched.
func (bc *Blockchain) AddBlock(txs []transaction.Tx, db *database.Database, timestamp int64) (Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	latest := bc.blocks[len(bc.blocks)-1]

	block, err := MineBlock(latest, txs, db, timestamp)
	if err != nil {
		return Block{}, err
	}

	if err := block.ValidateMerkleRoot(); err != nil {
		return Block{}, err
	}

	if err := bc.storage.Write(block); err != nil {
		return Block{}, database.NewNetworkError("writing block[%d]: %w", block.Height, err)
	}

	bc.append(block)
	bc.evHandler("chain: AddBlock: blk[%d]: hash[%s]: txs[%d]", block.Height, block.Hash, len(block.Transactions))

	return block, nil
}

// ReplaceChain swaps the chain for the candidate when it is valid. With
// ValidateTransactions the candidate is replayed against a fresh state; the
// resulting state is returned so the caller can publish it.
func (bc *Blockchain) ReplaceChain(blocks []Block, opts ReplaceOptions) (*database.Database, error) {
	if err := bc.ValidateChain(blocks); err != nil {
		return nil, err
	}

	db := opts.Database
	if db == nil {
		db = database.NewFromGenesis(bc.genesis)
	}

	for _, block := range blocks[1:] {
		if err := replay(block, db, opts.ValidateTransactions); err != nil {
			return nil, err
		}
	}

	bc.mu.Lock()
	{
		if err := bc.storage.Reset(); err != nil {
			bc.mu.Unlock()
			return nil, database.NewNetworkError("resetting storage: %w", err)
		}

		bc.blocks = []Block{Genesis()}
		bc.index = make(map[string]uint64)

		for _, block := range blocks[1:] {
			if err := bc.storage.Write(block); err != nil {
				bc.mu.Unlock()
				return nil, database.NewNetworkError("writing block[%d]: %w", block.Height, err)
			}
			bc.append(block)
		}
	}
	bc.mu.Unlock()

	bc.evHandler("chain: ReplaceChain: replaced: blocks[%d]", len(blocks))

	if opts.OnSuccess != nil {
		opts.OnSuccess()
	}

	return db, nil
}

// ValidateChain checks the candidate starts at the genesis block and every
// block correctly follows its parent.
func (bc *Blockchain) ValidateChain(blocks []Block) error {
	if len(blocks) == 0 || !blocks[0].IsGenesis() {
		return database.NewConsensusError("the incoming chain must start with the genesis block")
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], bc.evHandler); err != nil {
			return err
		}
	}

	return nil
}

// IsValidChain reports whether the candidate chain is valid.
func (bc *Blockchain) IsValidChain(blocks []Block) bool {
	return bc.ValidateChain(blocks) == nil
}

// =============================================================================

// Blocks returns a copy of the chain.
func (bc *Blockchain) Blocks() []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	blocks := make([]Block, len(bc.blocks))
	copy(blocks, bc.blocks)

	return blocks
}

// Length returns the number of blocks including genesis.
func (bc *Blockchain) Length() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return len(bc.blocks)
}

// Latest returns the last block of the chain.
func (bc *Blockchain) Latest() Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return bc.blocks[len(bc.blocks)-1]
}

// Page returns the blocks of the page, newest first. Pages start at 1.
func (bc *Blockchain) Page(page int, size int) []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if page < 1 || size < 1 {
		return []Block{}
	}

	l := len(bc.blocks)
	start := min((page-1)*size, l)
	end := min(page*size, l)

	blocks := make([]Block, 0, end-start)
	for i := start; i < end; i++ {
		blocks = append(blocks, bc.blocks[l-1-i])
	}

	return blocks
}

// BlockByHash finds the block with the hash.
func (bc *Blockchain) BlockByHash(hash string) (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	for _, block := range bc.blocks {
		if block.Hash == hash {
			return block, nil
		}
	}

	return Block{}, ErrNotFound
}

// TransactionByID finds a transaction included in the chain and the block
// holding it.
func (bc *Blockchain) TransactionByID(id string) (transaction.Tx, Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	height, exists := bc.index[id]
	if !exists {
		return transaction.Tx{}, Block{}, ErrNotFound
	}

	block := bc.blocks[height]
	tx, found := block.Transaction(id)
	if !found {
		return transaction.Tx{}, Block{}, ErrNotFound
	}

	return tx, block, nil
}

// HasTransaction reports whether the transaction is included in the chain.
func (bc *Blockchain) HasTransaction(id string) bool {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	_, exists := bc.index[id]
	return exists
}

// =============================================================================

// append adds the block and indexes its transactions. The caller must hold
// the write lock.
func (bc *Blockchain) append(block Block) {
	bc.blocks = append(bc.blocks, block)
	for _, tx := range block.Transactions {
		bc.index[tx.ID] = block.Height
	}
}

// replay applies the transactions of the block to the database in order
// using the block timestamp.
func replay(block Block, db *database.Database, validate bool) error {
	for _, tx := range block.Transactions {
		if validate {
			if err := tx.Validate(db, block.Timestamp); err != nil {
				return database.NewConsensusError("blk[%d]: tx[%s]: %w", block.Height, tx.ID, err)
			}
		}

		if err := tx.Execute(db, block.Timestamp); err != nil {
			return database.NewConsensusError("blk[%d]: tx[%s]: %w", block.Height, tx.ID, err)
		}
	}

	return nil
}
