package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

// Set of transaction types.
const (
	TypeCoin  = "coin"
	TypeToken = "token"
	TypeNFT   = "nft"
)

// Set of transaction actions.
const (
	ActionTransfer     = "transfer"
	ActionStake        = "stake"
	ActionUnstake      = "unstake"
	ActionReward       = "reward"
	ActionCreate       = "create"
	ActionBuy          = "buy"
	ActionSell         = "sell"
	ActionMint         = "mint"
	ActionBurn         = "burn"
	ActionSwap         = "swap"
	ActionPause        = "pause"
	ActionUnpause      = "unpause"
	ActionFreeze       = "freeze"
	ActionUnfreeze     = "unfreeze"
	ActionLock         = "lock"
	ActionUnlock       = "unlock"
	ActionSetSupplyCap = "set-supply-cap"
	ActionApprove      = "approve"
	ActionListForSale  = "list-for-sale"
)

// Payload represents the action specific content of a transaction. Every
// type and action pair has its own payload carrying exactly the fields that
// action needs.
type Payload interface {
	Type() string
	Action() string

	// wire returns the amount, token and nft fields of the wire format.
	wire() wireFields

	// signed returns the data the sender signs for this action.
	signed(from string, to string) object

	validate(tx Tx, db *database.Database, now int64) error
	execute(tx Tx, db *database.Database, now int64) error
}

// wireFields are the polymorphic fields of the wire format.
type wireFields struct {
	Amount any
	Token  any
	NFT    any
}

// DecodePayload constructs the payload for the type and action from the
// polymorphic wire fields.
func DecodePayload(typ string, action string, amount json.RawMessage, tkn json.RawMessage, nftData json.RawMessage) (Payload, error) {
	switch typ {
	case TypeCoin:
		return decodeCoin(action, amount)

	case TypeToken:
		return decodeToken(action, amount, tkn)

	case TypeNFT:
		return decodeNFT(action, nftData)
	}

	return nil, database.NewValidationError("unknown transaction type %q", typ)
}

// unknownAction constructs the error for an action the type doesn't support.
func unknownAction(typ string, action string) error {
	return database.NewValidationError("Unknown %s action: %q", typ, action)
}

// =============================================================================

// field is a single key value pair of an ordered JSON object.
type field struct {
	key   string
	value any
}

// object is a JSON object that keeps its keys in the order provided. The
// signed data relies on the exact key order the wallet used.
type object []field

// MarshalJSON implements the json.Marshaler interface.
func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := encode(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := encode(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.key, err)
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encode marshals the value without HTML escaping.
func encode(v any) ([]byte, error) {
	return signature.Marshal(v)
}

// raw encodes the value for the wire, nil becomes null.
func raw(v any) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("null"), nil
	}
	return encode(v)
}

// isNull reports whether the raw message carries no value.
func isNull(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}

// pair is the two sided amount used by buy, sell and swap.
type pair struct {
	Amount1 float64 `json:"amount1"`
	Amount2 float64 `json:"amount2"`
}
