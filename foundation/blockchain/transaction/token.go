package transaction

import (
	"encoding/json"
	"strings"

	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/token"
)

// TokenCreate registers a new token contract with the full supply held by
// the sender.
type TokenCreate struct {
	CA          string
	Name        string
	Symbol      string
	Logo        string
	TotalSupply float64
	EOLDays     float64
}

// NewTokenCreate constructs the create payload with a new contract address.
func NewTokenCreate(name string, symbol string, logo string, totalSupply float64, eolDays float64) TokenCreate {
	return TokenCreate{
		CA:          signature.ContractAddress(),
		Name:        name,
		Symbol:      symbol,
		Logo:        logo,
		TotalSupply: totalSupply,
		EOLDays:     eolDays,
	}
}

// TokenTransfer moves tokens from the sender to the recipient.
type TokenTransfer struct {
	CA     string
	Amount float64
}

// TokenBuy pays coins to the recipient in exchange for its tokens.
type TokenBuy struct {
	CA     string
	Coins  float64
	Tokens float64
}

// TokenSell gives tokens to the recipient in exchange for its coins.
type TokenSell struct {
	CA     string
	Tokens float64
	Coins  float64
}

// TokenMint creates new supply for the token owner.
type TokenMint struct {
	CA     string
	Amount float64
}

// TokenBurn destroys supply held by the sender.
type TokenBurn struct {
	CA     string
	Amount float64
}

// TokenSwap exchanges tokens of the first contract held by the sender for
// tokens of the second contract held by the recipient.
type TokenSwap struct {
	CA1     string
	CA2     string
	Amount1 float64
	Amount2 float64
}

// TokenStake moves tokens into the sender's staked balance.
type TokenStake struct {
	CA     string
	Amount float64
}

// TokenUnstake moves staked tokens back into the sender's balance.
type TokenUnstake struct {
	CA     string
	Amount float64
}

// TokenAdmin toggles one of the contract flags. Op is the action name.
type TokenAdmin struct {
	CA string
	Op string
}

// TokenSupplyCap sets the maximum supply of the token.
type TokenSupplyCap struct {
	CA  string
	Cap float64
}

// TokenApprove lets the spender move tokens on behalf of the sender.
type TokenApprove struct {
	CA      string
	Spender string
	Amount  float64
}

// =============================================================================

type tokenRef struct {
	CA string `json:"ca"`
}

type tokenSpec struct {
	CA          string  `json:"ca"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Logo        string  `json:"logo"`
	TotalSupply float64 `json:"totalSupply"`
	EOL         float64 `json:"eol,omitempty"`
}

type swapRef struct {
	Token1 string `json:"token1"`
	Token2 string `json:"token2"`
}

type approveRef struct {
	CA      string `json:"ca"`
	Spender string `json:"spender"`
}

func decodeToken(action string, amount json.RawMessage, tkn json.RawMessage) (Payload, error) {
	switch action {
	case ActionCreate:
		var spec tokenSpec
		if err := decodeField("token", tkn, &spec); err != nil {
			return nil, err
		}
		return TokenCreate{CA: spec.CA, Name: spec.Name, Symbol: spec.Symbol, Logo: spec.Logo, TotalSupply: spec.TotalSupply, EOLDays: spec.EOL}, nil

	case ActionSwap:
		var ref swapRef
		if err := decodeField("token", tkn, &ref); err != nil {
			return nil, err
		}
		var p pair
		if err := decodeField("amount", amount, &p); err != nil {
			return nil, err
		}
		return TokenSwap{CA1: ref.Token1, CA2: ref.Token2, Amount1: p.Amount1, Amount2: p.Amount2}, nil

	case ActionApprove:
		var ref approveRef
		if err := decodeField("token", tkn, &ref); err != nil {
			return nil, err
		}
		var v float64
		if err := decodeField("amount", amount, &v); err != nil {
			return nil, err
		}
		return TokenApprove{CA: ref.CA, Spender: ref.Spender, Amount: v}, nil
	}

	var ref tokenRef
	if err := decodeField("token", tkn, &ref); err != nil {
		return nil, err
	}

	switch action {
	case ActionBuy, ActionSell:
		var p pair
		if err := decodeField("amount", amount, &p); err != nil {
			return nil, err
		}
		if action == ActionBuy {
			return TokenBuy{CA: ref.CA, Coins: p.Amount1, Tokens: p.Amount2}, nil
		}
		return TokenSell{CA: ref.CA, Tokens: p.Amount1, Coins: p.Amount2}, nil

	case ActionPause, ActionUnpause, ActionFreeze, ActionUnfreeze, ActionLock, ActionUnlock:
		return TokenAdmin{CA: ref.CA, Op: action}, nil
	}

	var v float64
	if err := decodeField("amount", amount, &v); err != nil {
		return nil, err
	}

	switch action {
	case ActionTransfer:
		return TokenTransfer{CA: ref.CA, Amount: v}, nil
	case ActionMint:
		return TokenMint{CA: ref.CA, Amount: v}, nil
	case ActionBurn:
		return TokenBurn{CA: ref.CA, Amount: v}, nil
	case ActionStake:
		return TokenStake{CA: ref.CA, Amount: v}, nil
	case ActionUnstake:
		return TokenUnstake{CA: ref.CA, Amount: v}, nil
	case ActionSetSupplyCap:
		return TokenSupplyCap{CA: ref.CA, Cap: v}, nil
	}

	return nil, unknownAction(TypeToken, action)
}

// decodeField unmarshals a polymorphic wire field that must be present.
func decodeField(name string, data json.RawMessage, v any) error {
	if isNull(data) {
		return database.NewValidationError("transaction %s is required", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return database.NewValidationError("invalid transaction %s: %w", name, err)
	}
	return nil
}

// =============================================================================

// Type implements the Payload interface.
func (TokenCreate) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenCreate) Action() string { return ActionCreate }

func (p TokenCreate) wire() wireFields {
	return wireFields{
		Amount: p.TotalSupply,
		Token:  tokenSpec{CA: p.CA, Name: p.Name, Symbol: p.Symbol, Logo: p.Logo, TotalSupply: p.TotalSupply, EOL: p.EOLDays},
	}
}

func (p TokenCreate) signed(from string, to string) object {
	meta := object{{"name", p.Name}, {"symbol", p.Symbol}, {"logo", p.Logo}, {"eolDays", p.EOLDays}}
	return object{{"wallet", from}, {"token", meta}, {"amount", p.TotalSupply}, {"type", TypeToken}, {"action", ActionCreate}}
}

func (p TokenCreate) validate(tx Tx, db *database.Database, now int64) error {
	if p.Name == "" || p.Symbol == "" || p.Logo == "" || p.TotalSupply == 0 {
		return database.NewValidationError("token data (name, symbol, logo and supply) must be provided")
	}
	if p.TotalSupply < 0 {
		return database.NewValidationError("token supply must be greater than 0")
	}
	if p.EOLDays < 0 {
		return database.NewValidationError("token end of life must not be negative")
	}

	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if sender.Coins < MinCreateBalance {
		return database.NewValidationError("sender balance is not sufficient for this transaction")
	}

	if !validContractAddress(p.CA) {
		return database.NewValidationError("invalid token contract address %q", p.CA)
	}
	if db.HasToken(p.CA) {
		return database.NewValidationError("token %s already exists", p.CA)
	}

	return tx.verify()
}

func (p TokenCreate) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	cfg := token.Config{
		CA:          p.CA,
		Name:        p.Name,
		Symbol:      p.Symbol,
		Logo:        p.Logo,
		TotalSupply: p.TotalSupply,
		Owner:       tx.From,
		EOLDays:     p.EOLDays,
	}
	t := token.New(cfg, now)

	if err := db.RegisterToken(t); err != nil {
		return err
	}

	return invalid(sender.UpdateTokens(t.CA, t, t.TotalSupply, true))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenTransfer) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenTransfer) Action() string { return ActionTransfer }

func (p TokenTransfer) wire() wireFields {
	return wireFields{Amount: p.Amount, Token: tokenRef{CA: p.CA}}
}

func (p TokenTransfer) signed(from string, to string) object {
	return object{{"wallet", from}, {"token", p.CA}, {"amount", p.Amount}, {"recipient", to}, {"type", TypeToken}, {"action", ActionTransfer}}
}

func (p TokenTransfer) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}

	recipient, err := db.Account(tx.To)
	if err != nil {
		return err
	}
	if sender.Address == recipient.Address {
		return database.NewValidationError("you can not send tokens to the same wallet")
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if sender.TokenBalance(p.CA) < p.Amount {
		return database.NewValidationError("insufficient token balance for this transaction")
	}
	if err := t.Transferable(tx.From, tx.To, now); err != nil {
		return invalid(err)
	}
	if err := t.Clone().SetBalances(tx.From, tx.To, p.Amount); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenTransfer) execute(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	if err := t.SetBalances(tx.From, tx.To, p.Amount); err != nil {
		return invalid(err)
	}
	if err := sender.UpdateTokens(p.CA, t, p.Amount, false); err != nil {
		return invalid(err)
	}

	return invalid(recipient.UpdateTokens(p.CA, t, p.Amount, true))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenBuy) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenBuy) Action() string { return ActionBuy }

func (p TokenBuy) wire() wireFields {
	return wireFields{Amount: pair{Amount1: p.Coins, Amount2: p.Tokens}, Token: tokenRef{CA: p.CA}}
}

func (p TokenBuy) signed(from string, to string) object {
	amount := object{{"amount1", p.Coins}, {"amount2", p.Tokens}}
	return object{{"wallet", from}, {"recipient", to}, {"tokenCA", p.CA}, {"amount", amount}, {"type", TypeToken}, {"action", ActionBuy}}
}

func (p TokenBuy) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if p.Coins <= 0 || p.Tokens <= 0 {
		return database.NewValidationError("invalid amount specified")
	}

	recipient, err := db.Account(tx.To)
	if err != nil {
		return err
	}
	if sender.Address == recipient.Address {
		return database.NewValidationError("you can not buy tokens from the same wallet")
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if sender.Coins <= p.Coins {
		return database.NewValidationError("insufficient coins balance for this purchase")
	}
	if recipient.TokenBalance(p.CA) < p.Tokens {
		return database.NewValidationError("insufficient token balance for this purchase")
	}
	if err := t.Transferable(tx.To, tx.From, now); err != nil {
		return invalid(err)
	}
	if err := t.Clone().SetBalances(tx.To, tx.From, p.Tokens); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenBuy) execute(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	if err := t.SetBalances(tx.To, tx.From, p.Tokens); err != nil {
		return invalid(err)
	}
	if err := sender.UpdateCoins(-p.Coins); err != nil {
		return invalid(err)
	}
	if err := recipient.UpdateCoins(p.Coins); err != nil {
		return invalid(err)
	}
	if err := recipient.UpdateTokens(p.CA, t, p.Tokens, false); err != nil {
		return invalid(err)
	}

	return invalid(sender.UpdateTokens(p.CA, t, p.Tokens, true))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenSell) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenSell) Action() string { return ActionSell }

func (p TokenSell) wire() wireFields {
	return wireFields{Amount: pair{Amount1: p.Tokens, Amount2: p.Coins}, Token: tokenRef{CA: p.CA}}
}

func (p TokenSell) signed(from string, to string) object {
	amount := object{{"amount1", p.Tokens}, {"amount2", p.Coins}}
	return object{{"wallet", from}, {"recipient", to}, {"tokenCA", p.CA}, {"amount", amount}, {"type", TypeToken}, {"action", ActionSell}}
}

func (p TokenSell) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if p.Coins <= 0 || p.Tokens <= 0 {
		return database.NewValidationError("invalid amount specified")
	}

	recipient, err := db.Account(tx.To)
	if err != nil {
		return err
	}
	if sender.Address == recipient.Address {
		return database.NewValidationError("you can not sell tokens to the same wallet")
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if recipient.Coins <= p.Coins {
		return database.NewValidationError("insufficient coins balance for this sale")
	}
	if sender.TokenBalance(p.CA) < p.Tokens {
		return database.NewValidationError("insufficient token balance for this sale")
	}
	if err := t.Transferable(tx.From, tx.To, now); err != nil {
		return invalid(err)
	}
	if err := t.Clone().SetBalances(tx.From, tx.To, p.Tokens); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenSell) execute(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	if err := t.SetBalances(tx.From, tx.To, p.Tokens); err != nil {
		return invalid(err)
	}
	if err := recipient.UpdateCoins(-p.Coins); err != nil {
		return invalid(err)
	}
	if err := sender.UpdateCoins(p.Coins); err != nil {
		return invalid(err)
	}
	if err := sender.UpdateTokens(p.CA, t, p.Tokens, false); err != nil {
		return invalid(err)
	}

	return invalid(recipient.UpdateTokens(p.CA, t, p.Tokens, true))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenMint) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenMint) Action() string { return ActionMint }

func (p TokenMint) wire() wireFields {
	return wireFields{Amount: p.Amount, Token: tokenRef{CA: p.CA}}
}

func (p TokenMint) signed(from string, to string) object {
	return supplySigned(from, p.CA, p.Amount, ActionMint)
}

func (p TokenMint) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}
	if sender.Coins < TokenCreationFee {
		return database.NewValidationError("sender balance is not sufficient for this transaction")
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if err := t.Clone().Mint(tx.From, p.Amount, now); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenMint) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	if err := t.Mint(tx.From, p.Amount, now); err != nil {
		return invalid(err)
	}
	if err := sender.UpdateCoins(-TokenCreationFee); err != nil {
		return invalid(err)
	}

	return invalid(sender.UpdateTokens(p.CA, t, p.Amount, true))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenBurn) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenBurn) Action() string { return ActionBurn }

func (p TokenBurn) wire() wireFields {
	return wireFields{Amount: p.Amount, Token: tokenRef{CA: p.CA}}
}

func (p TokenBurn) signed(from string, to string) object {
	return supplySigned(from, p.CA, p.Amount, ActionBurn)
}

func (p TokenBurn) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}
	if sender.Coins < TokenCreationFee {
		return database.NewValidationError("sender balance is not sufficient for this transaction")
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if sender.TokenBalance(p.CA) < p.Amount {
		return database.NewValidationError("you do not own enough of this asset")
	}
	if err := t.Clone().Burn(tx.From, p.Amount, now); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenBurn) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	if err := t.Burn(tx.From, p.Amount, now); err != nil {
		return invalid(err)
	}
	if err := sender.UpdateCoins(-TokenCreationFee); err != nil {
		return invalid(err)
	}

	return invalid(sender.UpdateTokens(p.CA, t, p.Amount, false))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenSwap) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenSwap) Action() string { return ActionSwap }

func (p TokenSwap) wire() wireFields {
	return wireFields{Amount: pair{Amount1: p.Amount1, Amount2: p.Amount2}, Token: swapRef{Token1: p.CA1, Token2: p.CA2}}
}

func (p TokenSwap) signed(from string, to string) object {
	tokens := object{{"token1", p.CA1}, {"token2", p.CA2}}
	amount := object{{"amount1", p.Amount1}, {"amount2", p.Amount2}}
	return object{{"wallet", from}, {"token", tokens}, {"amount", amount}, {"recipient", to}, {"type", TypeToken}, {"action", ActionSwap}}
}

func (p TokenSwap) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if p.Amount1 <= 0 || p.Amount2 <= 0 {
		return database.NewValidationError("invalid amount specified")
	}
	if p.CA1 == p.CA2 {
		return database.NewValidationError("you can not swap the same token")
	}

	recipient, err := db.Account(tx.To)
	if err != nil {
		return err
	}
	if sender.Address == recipient.Address {
		return database.NewValidationError("you can not swap tokens with the same wallet")
	}

	t1, err := db.Token(p.CA1)
	if err != nil {
		return err
	}
	t2, err := db.Token(p.CA2)
	if err != nil {
		return err
	}

	if sender.TokenBalance(p.CA1) < p.Amount1 || recipient.TokenBalance(p.CA2) < p.Amount2 {
		return database.NewValidationError("insufficient token balance for swap")
	}
	if err := t1.Transferable(tx.From, tx.To, now); err != nil {
		return invalid(err)
	}
	if err := t2.Transferable(tx.To, tx.From, now); err != nil {
		return invalid(err)
	}
	if err := t1.Clone().Swap(tx.From, tx.To, p.Amount1, p.Amount2, t2.Clone()); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenSwap) execute(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	t1, err := db.Token(p.CA1)
	if err != nil {
		return err
	}
	t2, err := db.Token(p.CA2)
	if err != nil {
		return err
	}

	if err := t1.Swap(tx.From, tx.To, p.Amount1, p.Amount2, t2); err != nil {
		return invalid(err)
	}

	moves := []struct {
		account *database.Account
		t       *token.Token
		amount  float64
		credit  bool
	}{
		{sender, t1, p.Amount1, false},
		{recipient, t1, p.Amount1, true},
		{recipient, t2, p.Amount2, false},
		{sender, t2, p.Amount2, true},
	}

	for _, m := range moves {
		if err := m.account.UpdateTokens(m.t.CA, m.t, m.amount, m.credit); err != nil {
			return invalid(err)
		}
	}

	return nil
}

// =============================================================================

// Type implements the Payload interface.
func (TokenStake) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenStake) Action() string { return ActionStake }

func (p TokenStake) wire() wireFields {
	return wireFields{Amount: p.Amount, Token: tokenRef{CA: p.CA}}
}

func (p TokenStake) signed(from string, to string) object {
	return supplySigned(from, p.CA, p.Amount, ActionStake)
}

// validate checks the account side only. Staked tokens stay in the contract
// balances of the holder.
func (p TokenStake) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if err := t.HasExpired(now); err != nil {
		return invalid(err)
	}
	if err := sender.Clone().StakeTokens(p.CA, t, p.Amount, now); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenStake) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	return invalid(sender.StakeTokens(p.CA, t, p.Amount, now))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenUnstake) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenUnstake) Action() string { return ActionUnstake }

func (p TokenUnstake) wire() wireFields {
	return wireFields{Amount: p.Amount, Token: tokenRef{CA: p.CA}}
}

func (p TokenUnstake) signed(from string, to string) object {
	return supplySigned(from, p.CA, p.Amount, ActionUnstake)
}

func (p TokenUnstake) validate(tx Tx, db *database.Database, now int64) error {
	sender, err := tokenSender(tx, db)
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if err := sender.Clone().UnstakeTokens(p.CA, t, p.Amount, now); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenUnstake) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	return invalid(sender.UnstakeTokens(p.CA, t, p.Amount, now))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenAdmin) Type() string { return TypeToken }

// Action implements the Payload interface.
func (p TokenAdmin) Action() string { return p.Op }

func (p TokenAdmin) wire() wireFields {
	return wireFields{Token: tokenRef{CA: p.CA}}
}

func (p TokenAdmin) signed(from string, to string) object {
	return object{{"wallet", from}, {"token", p.CA}, {"type", TypeToken}, {"action", p.Op}}
}

func (p TokenAdmin) validate(tx Tx, db *database.Database, now int64) error {
	if _, err := tokenSender(tx, db); err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if err := p.apply(t.Clone(), tx.From, now); err != nil {
		return err
	}

	return tx.verify()
}

func (p TokenAdmin) execute(tx Tx, db *database.Database, now int64) error {
	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	return p.apply(t, tx.From, now)
}

func (p TokenAdmin) apply(t *token.Token, owner string, now int64) error {
	var err error
	switch p.Op {
	case ActionPause:
		err = t.Pause(owner, now)
	case ActionUnpause:
		err = t.Unpause(owner, now)
	case ActionFreeze:
		err = t.Freeze(owner, now)
	case ActionUnfreeze:
		err = t.Unfreeze(owner, now)
	case ActionLock:
		err = t.Lock(owner, now)
	case ActionUnlock:
		err = t.Unlock(owner, now)
	default:
		return unknownAction(TypeToken, p.Op)
	}

	return invalid(err)
}

// =============================================================================

// Type implements the Payload interface.
func (TokenSupplyCap) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenSupplyCap) Action() string { return ActionSetSupplyCap }

func (p TokenSupplyCap) wire() wireFields {
	return wireFields{Amount: p.Cap, Token: tokenRef{CA: p.CA}}
}

func (p TokenSupplyCap) signed(from string, to string) object {
	return supplySigned(from, p.CA, p.Cap, ActionSetSupplyCap)
}

func (p TokenSupplyCap) validate(tx Tx, db *database.Database, now int64) error {
	if _, err := tokenSender(tx, db); err != nil {
		return err
	}
	if err := positive(p.Cap); err != nil {
		return err
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if err := t.Clone().SetSupplyCap(tx.From, p.Cap, now); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenSupplyCap) execute(tx Tx, db *database.Database, now int64) error {
	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	return invalid(t.SetSupplyCap(tx.From, p.Cap, now))
}

// =============================================================================

// Type implements the Payload interface.
func (TokenApprove) Type() string { return TypeToken }

// Action implements the Payload interface.
func (TokenApprove) Action() string { return ActionApprove }

func (p TokenApprove) wire() wireFields {
	return wireFields{Amount: p.Amount, Token: approveRef{CA: p.CA, Spender: p.Spender}}
}

func (p TokenApprove) signed(from string, to string) object {
	return object{{"wallet", from}, {"token", p.CA}, {"spender", p.Spender}, {"amount", p.Amount}, {"type", TypeToken}, {"action", ActionApprove}}
}

func (p TokenApprove) validate(tx Tx, db *database.Database, now int64) error {
	if _, err := tokenSender(tx, db); err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}
	if p.Spender == "" || p.Spender == tx.From {
		return database.NewValidationError("invalid spender %q", p.Spender)
	}

	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}
	if err := t.Clone().ApproveSpender(tx.From, p.Spender, p.Amount, now); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p TokenApprove) execute(tx Tx, db *database.Database, now int64) error {
	t, err := db.Token(p.CA)
	if err != nil {
		return err
	}

	return invalid(t.ApproveSpender(tx.From, p.Spender, p.Amount, now))
}

// =============================================================================

// tokenSender resolves the sender and checks the minimum coin balance every
// token action requires.
func tokenSender(tx Tx, db *database.Database) (*database.Account, error) {
	sender, err := db.Account(tx.From)
	if err != nil {
		return nil, err
	}
	if sender.Coins < MinTokenBalance {
		return nil, database.NewValidationError("insufficient balance for this transaction")
	}
	return sender, nil
}

func supplySigned(from string, ca string, amount float64, action string) object {
	return object{{"wallet", from}, {"token", ca}, {"amount", amount}, {"type", TypeToken}, {"action", action}}
}

func positive(amount float64) error {
	if amount <= 0 {
		return database.NewValidationError("invalid amount specified, amount must be greater than zero")
	}
	return nil
}

// invalid marks a contract or account error as a validation error.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return database.NewValidationError("%w", err)
}

// validContractAddress reports whether the address is 0x followed by 32
// hex characters.
func validContractAddress(ca string) bool {
	hex, found := strings.CutPrefix(ca, "0x")
	return found && len(hex) == 32 && signature.IsHex(hex)
}
