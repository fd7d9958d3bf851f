package database

import (
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/integr8/blockchain/foundation/blockchain/token"
)

// Annual staking reward rates.
const (
	CoinStakingRate  = 0.05
	TokenStakingRate = 0.02
)

const msPerYear = 1000 * 60 * 60 * 24 * 365

// TokenBalance is the snapshot of a token held by an account.
type TokenBalance struct {
	CA      string  `json:"ca"`
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol"`
	Logo    string  `json:"logo"`
	Balance float64 `json:"balance"`
}

// Account represents information stored in the database for an individual
// account. Accounts are only changed through their own methods and a failed
// method leaves the account untouched.
type Account struct {
	Address           string                  `json:"address"`
	Nonce             uint64                  `json:"nonce"`
	Coins             float64                 `json:"coins"`
	Tokens            map[string]TokenBalance `json:"tokens"`
	NFTs              map[string]bool         `json:"nfts"`
	UnmintedNFTs      map[string]bool         `json:"unmintedNfts"`
	StakedCoins       float64                 `json:"stakedCoins"`
	StakingStart      *int64                  `json:"stakingStart"`
	StakingRewards    float64                 `json:"stakingRewards"`
	StakedTokens      map[string]float64      `json:"stakedTokens"`
	TokenStakingStart map[string]int64        `json:"tokenStakingStart"`
}

// newAccount constructs a new empty account value for use.
func newAccount(address string) *Account {
	return &Account{
		Address:           address,
		Tokens:            make(map[string]TokenBalance),
		NFTs:              make(map[string]bool),
		UnmintedNFTs:      make(map[string]bool),
		StakedTokens:      make(map[string]float64),
		TokenStakingStart: make(map[string]int64),
	}
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	c.Tokens = maps.Clone(a.Tokens)
	c.NFTs = maps.Clone(a.NFTs)
	c.UnmintedNFTs = maps.Clone(a.UnmintedNFTs)
	c.StakedTokens = maps.Clone(a.StakedTokens)
	c.TokenStakingStart = maps.Clone(a.TokenStakingStart)

	if a.StakingStart != nil {
		v := *a.StakingStart
		c.StakingStart = &v
	}

	return &c
}

// CheckNonce reports whether a transaction with the nonce can still be
// applied to the account.
func (a *Account) CheckNonce(nonce uint64) error {
	if nonce < a.Nonce {
		return fmt.Errorf("nonce %d has already been used, next nonce is %d", nonce, a.Nonce)
	}
	return nil
}

// UseNonce consumes the nonce and every nonce below it.
func (a *Account) UseNonce(nonce uint64) error {
	if err := a.CheckNonce(nonce); err != nil {
		return err
	}
	a.Nonce = nonce + 1
	return nil
}

// UpdateCoins adds the delta to the coin balance.
func (a *Account) UpdateCoins(delta float64) error {
	result := a.Coins + delta

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return errors.New("balance update resulted in invalid amount")
	}
	if result < 0 {
		return fmt.Errorf("invalid balance update: would result in negative balance of %v", result)
	}

	a.Coins = result
	return nil
}

// UpdateTokens credits or debits the token balance. A debit that empties the
// balance removes the entry.
func (a *Account) UpdateTokens(ca string, meta *token.Token, amount float64, credit bool) error {
	if meta == nil || meta.CA != ca {
		return errors.New("invalid token asset specified")
	}

	found, exists := a.Tokens[ca]

	if credit {
		a.Tokens[ca] = TokenBalance{
			CA:      meta.CA,
			Name:    meta.Name,
			Symbol:  meta.Symbol,
			Logo:    meta.Logo,
			Balance: found.Balance + amount,
		}
		return nil
	}

	if !exists {
		return errors.New("invalid asset, you do not have this asset")
	}
	if found.Balance < amount {
		return errors.New("invalid balance, you do not have sufficient balance for this transaction")
	}

	balance := found.Balance - amount
	if balance <= 0 {
		delete(a.Tokens, ca)
		return nil
	}

	a.Tokens[ca] = TokenBalance{
		CA:      meta.CA,
		Name:    meta.Name,
		Symbol:  meta.Symbol,
		Logo:    meta.Logo,
		Balance: balance,
	}

	return nil
}

// TokenBalance returns the balance of the token held by the account.
func (a *Account) TokenBalance(ca string) float64 {
	return a.Tokens[ca].Balance
}

// UpdateNFTs adds or removes a minted NFT.
func (a *Account) UpdateNFTs(id string, credit bool) {
	if credit {
		a.NFTs[id] = true
		return
	}
	delete(a.NFTs, id)
}

// UpdateUnmintedNFTs adds or removes an unminted NFT.
func (a *Account) UpdateUnmintedNFTs(id string, credit bool) {
	if credit {
		a.UnmintedNFTs[id] = true
		return
	}
	delete(a.UnmintedNFTs, id)
}

// HoldsNFT reports whether the account holds the NFT minted or not.
func (a *Account) HoldsNFT(id string) bool {
	return a.NFTs[id] || a.UnmintedNFTs[id]
}

// StakeCoins moves coins into the staked balance and restarts the staking
// clock.
func (a *Account) StakeCoins(amount float64, now int64) error {
	if amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if amount > a.Coins {
		return errors.New("insufficient coins to stake")
	}

	a.Coins -= amount
	a.StakedCoins += amount
	a.StakingStart = &now

	return nil
}

// UnstakeCoins accrues rewards and moves coins back into the balance.
func (a *Account) UnstakeCoins(amount float64, now int64) error {
	if amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if amount > a.StakedCoins {
		return errors.New("insufficient staked coins to unstake")
	}

	a.calculateCoinRewards(now)

	a.StakedCoins -= amount
	a.Coins += amount

	return nil
}

// StakeTokens moves tokens into the staked balance for that contract.
func (a *Account) StakeTokens(ca string, meta *token.Token, amount float64, now int64) error {
	if amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if a.TokenBalance(ca) < amount {
		return errors.New("insufficient tokens to stake")
	}

	if err := a.UpdateTokens(ca, meta, amount, false); err != nil {
		return err
	}

	if _, exists := a.StakedTokens[ca]; !exists {
		a.TokenStakingStart[ca] = now
	}
	a.StakedTokens[ca] += amount

	return nil
}

// UnstakeTokens accrues rewards and moves tokens back into the balance.
func (a *Account) UnstakeTokens(ca string, meta *token.Token, amount float64, now int64) error {
	if amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if a.StakedTokens[ca] < amount {
		return errors.New("insufficient staked tokens to unstake")
	}
	if meta == nil || meta.CA != ca {
		return errors.New("invalid token asset specified")
	}

	a.calculateTokenRewards(ca, now)

	a.StakedTokens[ca] -= amount
	if a.StakedTokens[ca] <= 0 {
		delete(a.StakedTokens, ca)
		delete(a.TokenStakingStart, ca)
	}

	return a.UpdateTokens(ca, meta, amount, true)
}

// StakingStatus is a snapshot of the staking positions of an account.
type StakingStatus struct {
	StakedCoins       float64            `json:"stakedCoins"`
	StakedTokens      map[string]float64 `json:"stakedTokens"`
	StakingRewards    float64            `json:"stakingRewards"`
	StakingStart      *int64             `json:"stakingStart"`
	TokenStakingStart map[string]int64   `json:"tokenStakingStart"`
}

// StakingStatus returns the staking positions of the account.
func (a *Account) StakingStatus() StakingStatus {
	return StakingStatus{
		StakedCoins:       a.StakedCoins,
		StakedTokens:      maps.Clone(a.StakedTokens),
		StakingRewards:    a.StakingRewards,
		StakingStart:      a.StakingStart,
		TokenStakingStart: maps.Clone(a.TokenStakingStart),
	}
}

// =============================================================================

// calculateCoinRewards sets the rewards accrued on the staked coins.
func (a *Account) calculateCoinRewards(now int64) {
	if a.StakingStart == nil {
		return
	}

	years := float64(now-*a.StakingStart) / msPerYear
	a.StakingRewards = a.StakedCoins * CoinStakingRate * years
}

// calculateTokenRewards adds the rewards accrued on the staked tokens.
func (a *Account) calculateTokenRewards(ca string, now int64) {
	start, exists := a.TokenStakingStart[ca]
	if !exists {
		return
	}

	years := float64(now-start) / msPerYear
	a.StakingRewards += a.StakedTokens[ca] * TokenStakingRate * years
}
