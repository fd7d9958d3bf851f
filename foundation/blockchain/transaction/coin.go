package transaction

import (
	"encoding/json"

	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

// CoinTransfer moves coins from the sender to the recipient.
type CoinTransfer struct {
	Amount float64
}

// CoinStake moves coins into the sender's staked balance.
type CoinStake struct {
	Amount float64
}

// CoinUnstake moves staked coins back into the sender's balance.
type CoinUnstake struct {
	Amount float64
}

// CoinReward issues new coins from the reward address to a new account.
type CoinReward struct {
	Amount float64
}

// NewReward constructs the unsigned transaction that funds a new wallet
// with the starting balance.
func NewReward(to string) (Tx, error) {
	return New(0, genesis.RewardAddress, to, CoinReward{Amount: genesis.StartingBalance}, "")
}

func decodeCoin(action string, amount json.RawMessage) (Payload, error) {
	var v float64
	if !isNull(amount) {
		if err := json.Unmarshal(amount, &v); err != nil {
			return nil, database.NewValidationError("invalid coin amount: %w", err)
		}
	}

	switch action {
	case ActionTransfer:
		return CoinTransfer{Amount: v}, nil
	case ActionStake:
		return CoinStake{Amount: v}, nil
	case ActionUnstake:
		return CoinUnstake{Amount: v}, nil
	case ActionReward:
		return CoinReward{Amount: v}, nil
	}

	return nil, unknownAction(TypeCoin, action)
}

// =============================================================================

// Type implements the Payload interface.
func (CoinTransfer) Type() string { return TypeCoin }

// Action implements the Payload interface.
func (CoinTransfer) Action() string { return ActionTransfer }

func (p CoinTransfer) wire() wireFields { return wireFields{Amount: p.Amount} }

func (p CoinTransfer) signed(from string, to string) object {
	return object{{"wallet", from}, {"recipient", to}, {"amount", p.Amount}, {"type", TypeCoin}, {"action", ActionTransfer}}
}

func (p CoinTransfer) validate(tx Tx, db *database.Database, now int64) error {
	if p.Amount <= 0 {
		return database.NewValidationError("transfer amount must be greater than zero")
	}

	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	if sender.Coins < p.Amount {
		return database.NewValidationError("transfer amount is greater than account balance")
	}
	if sender.Address == recipient.Address {
		return database.NewValidationError("you can not send funds to the same wallet")
	}

	return tx.verify()
}

func (p CoinTransfer) execute(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	if err := sender.UpdateCoins(-p.Amount); err != nil {
		return invalid(err)
	}

	return recipient.UpdateCoins(p.Amount)
}

// =============================================================================

// Type implements the Payload interface.
func (CoinStake) Type() string { return TypeCoin }

// Action implements the Payload interface.
func (CoinStake) Action() string { return ActionStake }

func (p CoinStake) wire() wireFields { return wireFields{Amount: p.Amount} }

func (p CoinStake) signed(from string, to string) object {
	return object{{"wallet", from}, {"amount", p.Amount}, {"type", TypeCoin}, {"action", ActionStake}}
}

func (p CoinStake) validate(tx Tx, db *database.Database, now int64) error {
	if p.Amount <= 0 {
		return database.NewValidationError("stake amount must be greater than zero")
	}

	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	if sender.Coins <= p.Amount {
		return database.NewValidationError("stake amount is greater than account balance")
	}
	if sender.Coins-p.Amount < MinStakeRemaining {
		return database.NewValidationError("you do not have enough funds for this transaction")
	}

	return tx.verify()
}

func (p CoinStake) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	if err := sender.StakeCoins(p.Amount, now); err != nil {
		return invalid(err)
	}

	return nil
}

// =============================================================================

// Type implements the Payload interface.
func (CoinUnstake) Type() string { return TypeCoin }

// Action implements the Payload interface.
func (CoinUnstake) Action() string { return ActionUnstake }

func (p CoinUnstake) wire() wireFields { return wireFields{Amount: p.Amount} }

func (p CoinUnstake) signed(from string, to string) object {
	return object{{"wallet", from}, {"amount", p.Amount}, {"type", TypeCoin}, {"action", ActionUnstake}}
}

func (p CoinUnstake) validate(tx Tx, db *database.Database, now int64) error {
	if p.Amount <= 0 {
		return database.NewValidationError("unstake amount must be greater than zero")
	}

	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	if sender.StakedCoins < p.Amount {
		return database.NewValidationError("your staked coin balance is lower than the amount specified")
	}

	return tx.verify()
}

func (p CoinUnstake) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	if err := sender.UnstakeCoins(p.Amount, now); err != nil {
		return invalid(err)
	}

	return nil
}

// =============================================================================

// Type implements the Payload interface.
func (CoinReward) Type() string { return TypeCoin }

// Action implements the Payload interface.
func (CoinReward) Action() string { return ActionReward }

func (p CoinReward) wire() wireFields { return wireFields{Amount: p.Amount} }

func (p CoinReward) signed(from string, to string) object {
	return object{{"recipient", to}, {"amount", p.Amount}, {"type", TypeCoin}, {"action", ActionReward}}
}

// validate only accepts the starting balance issued once to an address that
// has no account yet.
func (p CoinReward) validate(tx Tx, db *database.Database, now int64) error {
	if tx.From != genesis.RewardAddress {
		return database.NewValidationError("rewards can only be issued by %s", genesis.RewardAddress)
	}
	if p.Amount != genesis.StartingBalance {
		return database.NewValidationError("reward amount must be %v", genesis.StartingBalance)
	}
	if tx.Nonce != 0 || tx.Signature != "" {
		return database.NewValidationError("rewards are unsigned and carry no nonce")
	}
	if _, err := signature.ToPublicKey(tx.To); err != nil {
		return database.NewValidationError("invalid wallet address %q: %w", tx.To, err)
	}
	if db.HasAccount(tx.To) {
		return database.NewValidationError("wallet %s has already been funded", tx.To)
	}

	return nil
}

func (p CoinReward) execute(tx Tx, db *database.Database, now int64) error {
	return db.CreateAccount(tx.To).UpdateCoins(p.Amount)
}

// =============================================================================

// parties resolves the sender and recipient accounts.
func parties(tx Tx, db *database.Database) (*database.Account, *database.Account, error) {
	sender, err := db.Account(tx.From)
	if err != nil {
		return nil, nil, err
	}

	recipient, err := db.Account(tx.To)
	if err != nil {
		return nil, nil, err
	}

	return sender, recipient, nil
}
