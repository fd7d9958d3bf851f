// Package transaction implements the transactions the chain understands and
// the rules for validating and executing them against the database.
package transaction

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

// Minimum coin balances and fees.
const (
	MinTokenBalance   = 0.001
	MinCreateBalance  = 0.0509
	MinRemaining      = 0.0009
	TokenCreationFee  = 0.05
	NFTCreationFee    = 0.001
	MinStakeRemaining = 0.001
)

// Tx represents a signed intent to change the state of the chain. A Tx is
// never changed after construction; a replacement is a new Tx.
type Tx struct {
	ID        string
	Nonce     uint64
	From      string
	To        string
	Payload   Payload
	Signature string
	Timestamp int64
}

// New constructs a transaction and computes its id.
func New(nonce uint64, from string, to string, payload Payload, sig string) (Tx, error) {
	if payload == nil {
		return Tx{}, database.NewValidationError("transaction payload is required")
	}

	tx := Tx{
		Nonce:     nonce,
		From:      from,
		To:        to,
		Payload:   payload,
		Signature: sig,
		Timestamp: time.Now().UnixMilli(),
	}

	id, err := tx.Hash()
	if err != nil {
		return Tx{}, err
	}
	tx.ID = id

	return tx, nil
}

// Update constructs the transaction that supersedes the old transaction of
// the same sender.
func Update(old Tx, from string, to string, payload Payload, sig string) (Tx, error) {
	return New(old.Nonce+1, from, to, payload, sig)
}

// Sign constructs a transaction signed with the private key. The sender is
// the address of the key.
func Sign(privateKey *ecdsa.PrivateKey, nonce uint64, to string, payload Payload) (Tx, error) {
	from := signature.PublicKeyToAddress(privateKey.PublicKey)

	sig, err := signature.Sign(signedObject(nonce, from, to, payload), privateKey)
	if err != nil {
		return Tx{}, err
	}

	return New(nonce, from, to, payload, sig)
}

// SignedData returns the data the sender must sign for this transaction.
func SignedData(nonce uint64, from string, to string, payload Payload) ([]byte, error) {
	return signature.Marshal(signedObject(nonce, from, to, payload))
}

// signedObject is the action data followed by the nonce.
func signedObject(nonce uint64, from string, to string, payload Payload) object {
	return append(payload.signed(from, to), field{"nonce", nonce})
}

// Type returns the transaction type.
func (tx Tx) Type() string {
	return tx.Payload.Type()
}

// Action returns the transaction action.
func (tx Tx) Action() string {
	return tx.Payload.Action()
}

// Sender returns the key the nonce of the transaction is ordered under.
// Rewards are unsigned and all share the reward address, so each is keyed
// by its recipient.
func (tx Tx) Sender() string {
	if tx.From == genesis.RewardAddress {
		return tx.From + ":" + tx.To
	}
	return tx.From
}

// Hash computes the id of the transaction from its content. The timestamp
// is not part of the id.
func (tx Tx) Hash() (string, error) {
	w, err := tx.wire()
	if err != nil {
		return "", err
	}

	return signature.Hash(w.Type, w.Action, w.Nonce, w.From, w.To, w.Amount, w.Token, w.NFT, w.Signature), nil
}

// Validate checks the transaction can be applied to the database. It never
// changes the database.
func (tx Tx) Validate(db *database.Database, now int64) error {
	if tx.Payload == nil {
		return database.NewValidationError("transaction payload is required")
	}

	id, err := tx.Hash()
	if err != nil {
		return database.NewValidationError("hashing transaction: %w", err)
	}
	if id != tx.ID {
		return database.NewValidationError("transaction id %s does not match its content", tx.ID)
	}

	if tx.From != genesis.RewardAddress {
		if sender, err := db.Account(tx.From); err == nil {
			if err := sender.CheckNonce(tx.Nonce); err != nil {
				return database.NewValidationError("%w", err)
			}
		}
	}

	return tx.Payload.validate(tx, db, now)
}

// Execute applies the transaction to the database and consumes the nonce
// of the sender. The transaction is expected to have passed validation
// against the same database.
func (tx Tx) Execute(db *database.Database, now int64) error {
	if tx.Payload == nil {
		return database.NewValidationError("transaction payload is required")
	}

	if tx.From == genesis.RewardAddress {
		return tx.Payload.execute(tx, db, now)
	}

	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}
	if err := sender.CheckNonce(tx.Nonce); err != nil {
		return invalid(err)
	}

	if err := tx.Payload.execute(tx, db, now); err != nil {
		return err
	}

	return invalid(sender.UseNonce(tx.Nonce))
}

// verify checks the signature of the transaction over the signed data.
func (tx Tx) verify() error {
	if err := signature.Verify(tx.From, signedObject(tx.Nonce, tx.From, tx.To, tx.Payload), tx.Signature); err != nil {
		return database.NewValidationError("invalid transaction from %s: %w", tx.From, err)
	}
	return nil
}

// =============================================================================

// wireTx is the JSON form of a transaction.
type wireTx struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Action    string          `json:"action"`
	Nonce     uint64          `json:"nonce"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    json.RawMessage `json:"amount"`
	Token     json.RawMessage `json:"token"`
	NFT       json.RawMessage `json:"nft"`
	Signature string          `json:"signature"`
	Timestamp int64           `json:"timestamp"`
}

func (tx Tx) wire() (wireTx, error) {
	if tx.Payload == nil {
		return wireTx{}, database.NewValidationError("transaction payload is required")
	}

	f := tx.Payload.wire()

	amount, err := raw(f.Amount)
	if err != nil {
		return wireTx{}, err
	}
	tkn, err := raw(f.Token)
	if err != nil {
		return wireTx{}, err
	}
	nftData, err := raw(f.NFT)
	if err != nil {
		return wireTx{}, err
	}

	w := wireTx{
		ID:        tx.ID,
		Type:      tx.Payload.Type(),
		Action:    tx.Payload.Action(),
		Nonce:     tx.Nonce,
		From:      tx.From,
		To:        tx.To,
		Amount:    amount,
		Token:     tkn,
		NFT:       nftData,
		Signature: tx.Signature,
		Timestamp: tx.Timestamp,
	}

	return w, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (tx Tx) MarshalJSON() ([]byte, error) {
	w, err := tx.wire()
	if err != nil {
		return nil, err
	}
	return signature.Marshal(w)
}

// UnmarshalJSON implements the json.Unmarshaler interface. The payload is
// rebuilt for the type and action and the id is checked against the content.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	var w wireTx
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	payload, err := DecodePayload(w.Type, w.Action, w.Amount, w.Token, w.NFT)
	if err != nil {
		return err
	}

	decoded := Tx{
		ID:        w.ID,
		Nonce:     w.Nonce,
		From:      w.From,
		To:        w.To,
		Payload:   payload,
		Signature: w.Signature,
		Timestamp: w.Timestamp,
	}

	id, err := decoded.Hash()
	if err != nil {
		return err
	}
	if id != w.ID {
		return database.NewValidationError("transaction id %s does not match its content", w.ID)
	}

	*tx = decoded
	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	if tx.Payload == nil {
		return tx.ID
	}
	return fmt.Sprintf("%s:%s:%s:%d", tx.Payload.Type(), tx.Payload.Action(), tx.ID, tx.Nonce)
}
