// Package token implements the built in fungible token contract.
package token

import (
	"errors"
	"fmt"
	"maps"

	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

const msPerDay = 1000 * 60 * 60 * 24

// Set of errors returned by the contract.
var (
	ErrExpired          = errors.New("asset has expired and is no longer valid")
	ErrPaused           = errors.New("asset transfers are paused")
	ErrFrozen           = errors.New("asset is frozen, new assets can not be minted or burned")
	ErrLocked           = errors.New("asset is locked, asset no longer upgradable")
	ErrNotAuthorized    = errors.New("not authorized to perform this action")
	ErrAccountFrozen    = errors.New("account is frozen")
	ErrBlacklisted      = errors.New("account is blacklisted")
	ErrInsufficient     = errors.New("insufficient balance")
	ErrAllowance        = errors.New("allowance exceeded")
	ErrSupplyCap        = errors.New("amount exceeds the supply cap")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrAlreadySet       = errors.New("asset is already in the requested state")
	ErrCapBelowSupply   = errors.New("cap cannot be less than current total supply")
	ErrSameTokenSwapped = errors.New("you can not swap the same token")
)

// Roles represents the capabilities an account holds on a token.
type Roles struct {
	Minter bool `json:"minter"`
	Burner bool `json:"burner"`
	Admin  bool `json:"admin"`
}

// Token represents a fungible token contract. The sum of the balances always
// equals the total supply.
type Token struct {
	CA                  string             `json:"ca"`
	Name                string             `json:"name"`
	Symbol              string             `json:"symbol"`
	Logo                string             `json:"logo"`
	TotalSupply         float64            `json:"totalSupply"`
	Owner               string             `json:"owner"`
	Balances            map[string]float64 `json:"balances"`
	Allowances          map[string]float64 `json:"allowances"`
	FrozenAccounts      map[string]bool    `json:"frozenAccounts"`
	BlacklistedAccounts map[string]bool    `json:"blacklistedAccounts"`
	Roles               map[string]Roles   `json:"roles"`
	Paused              bool               `json:"paused"`
	Frozen              bool               `json:"frozen"`
	Locked              bool               `json:"locked"`
	SupplyCap           *float64           `json:"supplyCap"`
	EOL                 *int64             `json:"eol"`
}

// Config provides the values for constructing a token.
type Config struct {
	CA          string
	Name        string
	Symbol      string
	Logo        string
	TotalSupply float64
	Owner       string
	EOLDays     float64
}

// New constructs a token with the full supply held by the owner. A contract
// address is generated if one is not provided. The end of life is measured
// in days from now when EOLDays is set.
func New(cfg Config, now int64) *Token {
	ca := cfg.CA
	if ca == "" {
		ca = signature.ContractAddress()
	}

	t := Token{
		CA:                  ca,
		Name:                cfg.Name,
		Symbol:              cfg.Symbol,
		Logo:                cfg.Logo,
		TotalSupply:         cfg.TotalSupply,
		Owner:               cfg.Owner,
		Balances:            map[string]float64{cfg.Owner: cfg.TotalSupply},
		Allowances:          make(map[string]float64),
		FrozenAccounts:      make(map[string]bool),
		BlacklistedAccounts: make(map[string]bool),
		Roles:               map[string]Roles{cfg.Owner: {Minter: true, Burner: true, Admin: true}},
	}

	if cfg.EOLDays > 0 {
		eol := now + int64(cfg.EOLDays*msPerDay)
		t.EOL = &eol
	}

	return &t
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	c := *t
	c.Balances = maps.Clone(t.Balances)
	c.Allowances = maps.Clone(t.Allowances)
	c.FrozenAccounts = maps.Clone(t.FrozenAccounts)
	c.BlacklistedAccounts = maps.Clone(t.BlacklistedAccounts)
	c.Roles = maps.Clone(t.Roles)

	if t.SupplyCap != nil {
		v := *t.SupplyCap
		c.SupplyCap = &v
	}
	if t.EOL != nil {
		v := *t.EOL
		c.EOL = &v
	}

	return &c
}

// BalanceOf returns the balance held by the account.
func (t *Token) BalanceOf(account string) float64 {
	return t.Balances[account]
}

// HasExpired returns an error if the token is past its end of life.
func (t *Token) HasExpired(now int64) error {
	if t.EOL != nil && now > *t.EOL {
		return ErrExpired
	}
	return nil
}

// Transferable checks the token can move between the two accounts.
func (t *Token) Transferable(from string, to string, now int64) error {
	if err := t.HasExpired(now); err != nil {
		return err
	}
	if t.Paused {
		return ErrPaused
	}

	for _, account := range []string{from, to} {
		if t.FrozenAccounts[account] {
			return fmt.Errorf("%w: %s", ErrAccountFrozen, account)
		}
		if t.BlacklistedAccounts[account] {
			return fmt.Errorf("%w: %s", ErrBlacklisted, account)
		}
	}

	return nil
}

// SetBalances moves the amount from the owner to the recipient.
func (t *Token) SetBalances(owner string, recipient string, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Paused {
		return ErrPaused
	}
	if t.FrozenAccounts[owner] || t.FrozenAccounts[recipient] {
		return ErrAccountFrozen
	}
	if t.Balances[owner] < amount {
		return ErrInsufficient
	}

	t.debit(owner, amount)
	t.Balances[recipient] += amount

	return nil
}

// Mint creates new supply for the owner.
func (t *Token) Mint(to string, amount float64, now int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := t.HasExpired(now); err != nil {
		return err
	}
	if to != t.Owner || !t.Roles[t.Owner].Minter {
		return fmt.Errorf("%w: not authorized to mint more of this asset", ErrNotAuthorized)
	}
	if err := t.onlyAdmin(to); err != nil {
		return err
	}
	if t.Frozen {
		return ErrFrozen
	}
	if t.SupplyCap != nil && t.TotalSupply+amount > *t.SupplyCap {
		return ErrSupplyCap
	}

	t.TotalSupply += amount
	t.Balances[to] += amount

	return nil
}

// Burn destroys supply held by the account.
func (t *Token) Burn(from string, amount float64, now int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := t.HasExpired(now); err != nil {
		return err
	}
	if t.Frozen {
		return ErrFrozen
	}
	if t.Balances[from] < amount {
		return ErrInsufficient
	}

	t.TotalSupply -= amount
	t.debit(from, amount)

	return nil
}

// Pause stops all transfers of the token.
func (t *Token) Pause(owner string, now int64) error {
	return t.toggle(owner, now, &t.Paused, true)
}

// Unpause allows transfers of the token again.
func (t *Token) Unpause(owner string, now int64) error {
	return t.toggle(owner, now, &t.Paused, false)
}

// Freeze stops minting and burning of the token.
func (t *Token) Freeze(owner string, now int64) error {
	return t.toggle(owner, now, &t.Frozen, true)
}

// Unfreeze allows minting and burning again.
func (t *Token) Unfreeze(owner string, now int64) error {
	return t.toggle(owner, now, &t.Frozen, false)
}

// Lock stops upgrades of the token.
func (t *Token) Lock(owner string, now int64) error {
	return t.toggle(owner, now, &t.Locked, true)
}

// Unlock allows upgrades again.
func (t *Token) Unlock(owner string, now int64) error {
	return t.toggle(owner, now, &t.Locked, false)
}

// SetSupplyCap sets the maximum total supply for the token.
func (t *Token) SetSupplyCap(owner string, limit float64, now int64) error {
	if err := t.HasExpired(now); err != nil {
		return err
	}
	if err := t.onlyAdmin(owner); err != nil {
		return err
	}
	if t.Locked {
		return ErrLocked
	}
	if limit < t.TotalSupply {
		return ErrCapBelowSupply
	}

	t.SupplyCap = &limit
	return nil
}

// ApproveSpender lets the spender move up to amount on behalf of the owner.
func (t *Token) ApproveSpender(owner string, spender string, amount float64, now int64) error {
	if err := t.HasExpired(now); err != nil {
		return err
	}
	if amount < 0 {
		return ErrInvalidAmount
	}

	t.Allowances[allowanceKey(owner, spender)] = amount
	return nil
}

// Allowance returns what the spender may still move for the owner.
func (t *Token) Allowance(owner string, spender string) float64 {
	return t.Allowances[allowanceKey(owner, spender)]
}

// TransferThroughSpender moves tokens from one account to another using an
// allowance granted to the spender.
func (t *Token) TransferThroughSpender(from string, to string, amount float64, spender string, now int64) error {
	if err := t.Transferable(from, to, now); err != nil {
		return err
	}

	key := allowanceKey(from, spender)
	if t.Allowances[key] < amount {
		return ErrAllowance
	}
	if err := t.SetBalances(from, to, amount); err != nil {
		return err
	}

	t.Allowances[key] -= amount
	return nil
}

// Swap exchanges amount1 of this token held by the sender for amount2 of the
// other token held by the recipient. Both balances are checked before either
// side is changed.
func (t *Token) Swap(sender string, recipient string, amount1 float64, amount2 float64, other *Token) error {
	if other == nil || other.CA == t.CA {
		return ErrSameTokenSwapped
	}
	if amount1 <= 0 || amount2 <= 0 {
		return ErrInvalidAmount
	}
	if t.Balances[sender] < amount1 {
		return fmt.Errorf("insufficient %s balance: %w", t.Name, ErrInsufficient)
	}
	if other.Balances[recipient] < amount2 {
		return fmt.Errorf("insufficient %s balance: %w", other.Name, ErrInsufficient)
	}

	t.debit(sender, amount1)
	t.Balances[recipient] += amount1

	other.debit(recipient, amount2)
	other.Balances[sender] += amount2

	return nil
}

// BlacklistAccount stops the account from moving this token.
func (t *Token) BlacklistAccount(owner string, account string, now int64) error {
	return t.setAccountFlag(owner, now, t.BlacklistedAccounts, account, true)
}

// UnblacklistAccount removes the account from the blacklist.
func (t *Token) UnblacklistAccount(owner string, account string, now int64) error {
	return t.setAccountFlag(owner, now, t.BlacklistedAccounts, account, false)
}

// FreezeAccount stops the account from sending or receiving this token.
func (t *Token) FreezeAccount(owner string, account string, now int64) error {
	return t.setAccountFlag(owner, now, t.FrozenAccounts, account, true)
}

// UnfreezeAccount removes the freeze on the account.
func (t *Token) UnfreezeAccount(owner string, account string, now int64) error {
	return t.setAccountFlag(owner, now, t.FrozenAccounts, account, false)
}

// Upgrade replaces the descriptive fields of the token.
func (t *Token) Upgrade(owner string, name string, symbol string, logo string) error {
	if err := t.onlyAdmin(owner); err != nil {
		return err
	}
	if t.Locked {
		return ErrLocked
	}

	t.Name = name
	t.Symbol = symbol
	t.Logo = logo

	return nil
}

// TotalBalances returns the sum of every balance held.
func (t *Token) TotalBalances() float64 {
	var sum float64
	for _, v := range t.Balances {
		sum += v
	}
	return sum
}

// =============================================================================

func (t *Token) onlyAdmin(owner string) error {
	if !t.Roles[t.Owner].Admin {
		return ErrNotAuthorized
	}
	if t.Owner != owner {
		return fmt.Errorf("%w: only the asset contract creator can perform this action", ErrNotAuthorized)
	}
	return nil
}

func (t *Token) toggle(owner string, now int64, flag *bool, value bool) error {
	if err := t.HasExpired(now); err != nil {
		return err
	}
	if err := t.onlyAdmin(owner); err != nil {
		return err
	}
	if *flag == value {
		return ErrAlreadySet
	}

	*flag = value
	return nil
}

func (t *Token) setAccountFlag(owner string, now int64, set map[string]bool, account string, value bool) error {
	if err := t.HasExpired(now); err != nil {
		return err
	}
	if err := t.onlyAdmin(owner); err != nil {
		return err
	}

	if value {
		set[account] = true
		return nil
	}

	delete(set, account)
	return nil
}

// debit removes the amount and drops the entry once it reaches zero.
func (t *Token) debit(account string, amount float64) {
	t.Balances[account] -= amount
	if t.Balances[account] <= 0 {
		delete(t.Balances, account)
	}
}

func allowanceKey(owner string, spender string) string {
	return owner + "_" + spender
}
