package chain

import (
	"fmt"
	"sort"

	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/merkle"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// Block represents a group of transactions batched together.
type Block struct {
	Timestamp    int64            `json:"timestamp"`
	LastHash     string           `json:"lastHash"`
	Hash         string           `json:"hash"`
	Height       uint64           `json:"height"`
	Transactions []transaction.Tx `json:"transactions"`
	MerkleRoot   string           `json:"merkleRoot"`
}

// Genesis returns the first block every node agrees on.
func Genesis() Block {
	return Block{
		Timestamp:    genesis.Timestamp,
		LastHash:     genesis.LastHash,
		Hash:         genesis.Hash,
		Height:       0,
		Transactions: []transaction.Tx{},
		MerkleRoot:   signature.ZeroHash,
	}
}

// MineBlock constructs the block that follows the last block. The
// transactions are ordered by id, committed to in the merkle root and then
// executed against the database in that order.
func MineBlock(last Block, txs []transaction.Tx, db *database.Database, timestamp int64) (Block, error) {
	sorted := SortTransactions(txs)

	root, err := MerkleRoot(sorted)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Timestamp:    timestamp,
		LastHash:     last.Hash,
		Hash:         BlockHash(timestamp, last.Hash, root),
		Height:       last.Height + 1,
		Transactions: sorted,
		MerkleRoot:   root,
	}

	for _, tx := range nb.Transactions {
		if err := tx.Execute(db, timestamp); err != nil {
			return Block{}, fmt.Errorf("executing tx[%s]: %w", tx, err)
		}
	}

	return nb, nil
}

// BlockHash returns the hash that links a block into the chain.
func BlockHash(timestamp int64, lastHash string, merkleRoot string) string {
	return signature.Hash(timestamp, lastHash, merkleRoot)
}

// MerkleRoot returns the root of the trie holding every transaction keyed
// by its id.
func MerkleRoot(txs []transaction.Tx) (string, error) {
	trie := merkle.NewTrie()

	for _, tx := range SortTransactions(txs) {
		data, err := signature.Marshal(tx)
		if err != nil {
			return "", fmt.Errorf("encoding tx[%s]: %w", tx.ID, err)
		}

		if err := trie.Insert(tx.ID, string(data)); err != nil {
			return "", fmt.Errorf("inserting tx[%s]: %w", tx.ID, err)
		}
	}

	return trie.RootHash(), nil
}

// SortTransactions returns a copy of the transactions ordered by id.
func SortTransactions(txs []transaction.Tx) []transaction.Tx {
	sorted := make([]transaction.Tx, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	return sorted
}

// =============================================================================

// IsGenesis reports whether the block is the canonical genesis block.
func (b Block) IsGenesis() bool {
	g := Genesis()

	return b.Timestamp == g.Timestamp &&
		b.LastHash == g.LastHash &&
		b.Hash == g.Hash &&
		b.Height == g.Height &&
		len(b.Transactions) == 0 &&
		b.MerkleRoot == g.MerkleRoot
}

// ValidateMerkleRoot checks the merkle root commits to the transactions.
func (b Block) ValidateMerkleRoot() error {
	root, err := MerkleRoot(b.Transactions)
	if err != nil {
		return database.NewConsensusError("Invalid block: %w", err)
	}

	if root != b.MerkleRoot {
		return database.NewConsensusError("Invalid block: Merkle Root mismatch")
	}

	return nil
}

// ValidateBlock checks the block can follow the previous block.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("chain: ValidateBlock: validate: blk[%d]: check: transactions are ordered by id", b.Height)

	for i := 1; i < len(b.Transactions); i++ {
		if b.Transactions[i-1].ID >= b.Transactions[i].ID {
			return database.NewConsensusError("Invalid block: transactions are not in strictly ascending id order at index %d", i)
		}
	}

	evHandler("chain: ValidateBlock: validate: blk[%d]: check: merkle root does match transactions", b.Height)

	if err := b.ValidateMerkleRoot(); err != nil {
		return err
	}

	evHandler("chain: ValidateBlock: validate: blk[%d]: check: block height is the next height", b.Height)

	if b.Height != previousBlock.Height+1 {
		return database.NewConsensusError("this block is not the next height, got %d, exp %d", b.Height, previousBlock.Height+1)
	}

	evHandler("chain: ValidateBlock: validate: blk[%d]: check: last hash does match parent block", b.Height)

	if b.LastHash != previousBlock.Hash {
		return database.NewConsensusError("last block hash doesn't match our known parent, got %s, exp %s", b.LastHash, previousBlock.Hash)
	}

	evHandler("chain: ValidateBlock: validate: blk[%d]: check: block hash is computed from its content", b.Height)

	if hash := BlockHash(b.Timestamp, b.LastHash, b.MerkleRoot); b.Hash != hash {
		return database.NewConsensusError("%s invalid block hash, exp %s", b.Hash, hash)
	}

	return nil
}

// Transaction returns the transaction with the id from the block.
func (b Block) Transaction(id string) (transaction.Tx, bool) {
	for _, tx := range b.Transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return transaction.Tx{}, false
}
