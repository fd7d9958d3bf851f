// Package database maintains the in memory ledger of accounts and the
// registries of token and NFT contracts.
package database

import (
	"sort"

	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/nft"
	"github.com/integr8/blockchain/foundation/blockchain/token"
)

// Database manages the accounts and asset registries of the chain. The
// database is not safe for concurrent use; the node state guards access.
type Database struct {
	accounts map[string]*Account
	tokens   map[string]*token.Token
	nfts     *nft.Registry
}

// New constructs an empty database.
func New() *Database {
	return &Database{
		accounts: make(map[string]*Account),
		tokens:   make(map[string]*token.Token),
		nfts:     nft.NewRegistry(),
	}
}

// NewFromGenesis constructs a database holding the genesis balances.
func NewFromGenesis(gen genesis.Genesis) *Database {
	db := New()
	db.ApplyGenesis(gen)
	return db
}

// ApplyGenesis funds the accounts listed in the genesis.
func (db *Database) ApplyGenesis(gen genesis.Genesis) {
	for address, balance := range gen.Balances {
		db.CreateAccount(address).Coins += balance
	}
}

// CreateAccount returns the account for the address, creating it if this
// is the first time the address is seen.
func (db *Database) CreateAccount(address string) *Account {
	if account, exists := db.accounts[address]; exists {
		return account
	}

	account := newAccount(address)
	db.accounts[address] = account

	return account
}

// HasAccount reports whether the address has an account.
func (db *Database) HasAccount(address string) bool {
	_, exists := db.accounts[address]
	return exists
}

// Account returns the account for the address.
func (db *Database) Account(address string) (*Account, error) {
	account, exists := db.accounts[address]
	if !exists {
		return nil, NewStateError("account %q does not exist", address)
	}
	return account, nil
}

// RegisterToken adds a new token contract.
func (db *Database) RegisterToken(t *token.Token) error {
	if _, exists := db.tokens[t.CA]; exists {
		return NewStateError("token %q already exists", t.CA)
	}

	db.tokens[t.CA] = t
	return nil
}

// Token returns the token contract for the contract address.
func (db *Database) Token(ca string) (*token.Token, error) {
	t, exists := db.tokens[ca]
	if !exists {
		return nil, NewStateError("token %q does not exist", ca)
	}
	return t, nil
}

// HasToken reports whether the contract address is registered.
func (db *Database) HasToken(ca string) bool {
	_, exists := db.tokens[ca]
	return exists
}

// NFTs provides access to the NFT registry.
func (db *Database) NFTs() *nft.Registry {
	return db.nfts
}

// NFT returns the NFT for the contract address or fingerprint.
func (db *Database) NFT(key string) (*nft.NFT, error) {
	n, err := db.nfts.Lookup(key)
	if err != nil {
		return nil, NewStateError("%w: %s", err, key)
	}
	return n, nil
}

// Clone returns a deep copy of the database. Changes to the copy never
// affect the original.
func (db *Database) Clone() *Database {
	c := Database{
		accounts: make(map[string]*Account, len(db.accounts)),
		tokens:   make(map[string]*token.Token, len(db.tokens)),
		nfts:     db.nfts.Clone(),
	}

	for address, account := range db.accounts {
		c.accounts[address] = account.Clone()
	}
	for ca, t := range db.tokens {
		c.tokens[ca] = t.Clone()
	}

	return &c
}

// CopyAccounts makes a copy of the current accounts in the database.
func (db *Database) CopyAccounts() map[string]Account {
	accounts := make(map[string]Account, len(db.accounts))
	for address, account := range db.accounts {
		accounts[address] = *account.Clone()
	}
	return accounts
}

// CopyTokens makes a copy of the registered tokens sorted by contract address.
func (db *Database) CopyTokens() []token.Token {
	tokens := make([]token.Token, 0, len(db.tokens))
	for _, t := range db.tokens {
		tokens = append(tokens, *t.Clone())
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CA < tokens[j].CA })

	return tokens
}

// TotalCoins returns the sum of the free and staked coins of every account.
func (db *Database) TotalCoins() float64 {
	var total float64
	for _, account := range db.accounts {
		total += account.Coins + account.StakedCoins
	}
	return total
}

// Assets is a snapshot of everything an account holds.
type Assets struct {
	Address        string             `json:"address"`
	Nonce          uint64             `json:"nonce"`
	Coins          float64            `json:"coins"`
	Tokens         []TokenBalance     `json:"tokens"`
	MintedNFTs     []nft.NFT          `json:"mintedNfts"`
	UnmintedNFTs   []nft.NFT          `json:"unmintedNfts"`
	StakedCoins    float64            `json:"stakedCoins"`
	StakedTokens   map[string]float64 `json:"stakedTokens"`
	StakingRewards float64            `json:"stakingRewards"`
}

// Assets returns the snapshot of the account with the NFTs resolved from
// the registry.
func (db *Database) Assets(address string) (Assets, error) {
	account, err := db.Account(address)
	if err != nil {
		return Assets{}, err
	}

	assets := Assets{
		Address:        account.Address,
		Nonce:          account.Nonce,
		Coins:          account.Coins,
		Tokens:         make([]TokenBalance, 0, len(account.Tokens)),
		MintedNFTs:     make([]nft.NFT, 0, len(account.NFTs)),
		UnmintedNFTs:   make([]nft.NFT, 0, len(account.UnmintedNFTs)),
		StakedCoins:    account.StakedCoins,
		StakedTokens:   account.StakingStatus().StakedTokens,
		StakingRewards: account.StakingRewards,
	}

	for _, tb := range account.Tokens {
		assets.Tokens = append(assets.Tokens, tb)
	}
	sort.Slice(assets.Tokens, func(i, j int) bool { return assets.Tokens[i].CA < assets.Tokens[j].CA })

	for id := range account.NFTs {
		if n, err := db.nfts.Lookup(id); err == nil {
			assets.MintedNFTs = append(assets.MintedNFTs, *n.Clone())
		}
	}
	for id := range account.UnmintedNFTs {
		if n, err := db.nfts.Lookup(id); err == nil {
			assets.UnmintedNFTs = append(assets.UnmintedNFTs, *n.Clone())
		}
	}
	sort.Slice(assets.MintedNFTs, func(i, j int) bool { return assets.MintedNFTs[i].ID < assets.MintedNFTs[j].ID })
	sort.Slice(assets.UnmintedNFTs, func(i, j int) bool { return assets.UnmintedNFTs[i].ID < assets.UnmintedNFTs[j].ID })

	return assets, nil
}
