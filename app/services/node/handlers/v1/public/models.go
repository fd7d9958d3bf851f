package public

import (
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/nft"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// response is the common part of every successful response.
type response struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func ok(message string) response {
	return response{
		Type:    "success",
		Message: message,
	}
}

// txRequest is a signed wallet request that becomes a transaction.
type txRequest interface {
	signer() (from string, to string, sig string)
	payload(action string) (transaction.Payload, error)
}

// signed holds the fields every wallet request carries.
type signed struct {
	Wallet    string `json:"wallet" validate:"required,hexadecimal"`
	Signature string `json:"signature" validate:"required,hexadecimal"`
}

func (s signed) signer() (string, string, string) {
	return s.Wallet, "", s.Signature
}

func requireRecipient(recipient string) error {
	if recipient == "" {
		return database.NewValidationError("Recipient is required")
	}
	return nil
}

// =============================================================================

type coinTransfer struct {
	signed
	Recipient string  `json:"recipient" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
}

func (m *coinTransfer) signer() (string, string, string) {
	return m.Wallet, m.Recipient, m.Signature
}

func (m *coinTransfer) payload(action string) (transaction.Payload, error) {
	return transaction.CoinTransfer{Amount: m.Amount}, nil
}

type coinStake struct {
	signed
	Amount float64 `json:"amount" validate:"gt=0"`
}

func (m *coinStake) payload(action string) (transaction.Payload, error) {
	if action == transaction.ActionUnstake {
		return transaction.CoinUnstake{Amount: m.Amount}, nil
	}
	return transaction.CoinStake{Amount: m.Amount}, nil
}

// =============================================================================

type tokenCreate struct {
	signed
	Name        string  `json:"name" validate:"required"`
	Symbol      string  `json:"symbol" validate:"required"`
	Logo        string  `json:"logo" validate:"required"`
	TotalSupply float64 `json:"totalSupply" validate:"gt=0"`
	EOL         float64 `json:"eol" validate:"gte=0"`
}

func (m *tokenCreate) payload(action string) (transaction.Payload, error) {
	return transaction.NewTokenCreate(m.Name, m.Symbol, m.Logo, m.TotalSupply, m.EOL), nil
}

type tokenAmount struct {
	signed
	Recipient string  `json:"recipient"`
	TokenCA   string  `json:"tokenCA" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
}

func (m *tokenAmount) signer() (string, string, string) {
	return m.Wallet, m.Recipient, m.Signature
}

func (m *tokenAmount) payload(action string) (transaction.Payload, error) {
	switch action {
	case transaction.ActionTransfer:
		if err := requireRecipient(m.Recipient); err != nil {
			return nil, err
		}
		return transaction.TokenTransfer{CA: m.TokenCA, Amount: m.Amount}, nil
	case transaction.ActionMint:
		return transaction.TokenMint{CA: m.TokenCA, Amount: m.Amount}, nil
	case transaction.ActionBurn:
		return transaction.TokenBurn{CA: m.TokenCA, Amount: m.Amount}, nil
	case transaction.ActionStake:
		return transaction.TokenStake{CA: m.TokenCA, Amount: m.Amount}, nil
	case transaction.ActionUnstake:
		return transaction.TokenUnstake{CA: m.TokenCA, Amount: m.Amount}, nil
	}

	return nil, database.NewValidationError("Unknown token action: %q", action)
}

type tokenTrade struct {
	signed
	Recipient string  `json:"recipient" validate:"required"`
	TokenCA   string  `json:"tokenCA" validate:"required"`
	Amount1   float64 `json:"amount1" validate:"gt=0"`
	Amount2   float64 `json:"amount2" validate:"gt=0"`
}

func (m *tokenTrade) signer() (string, string, string) {
	return m.Wallet, m.Recipient, m.Signature
}

// payload reads amount1 as what the sender gives and amount2 as what the
// sender receives.
func (m *tokenTrade) payload(action string) (transaction.Payload, error) {
	if action == transaction.ActionSell {
		return transaction.TokenSell{CA: m.TokenCA, Tokens: m.Amount1, Coins: m.Amount2}, nil
	}
	return transaction.TokenBuy{CA: m.TokenCA, Coins: m.Amount1, Tokens: m.Amount2}, nil
}

type tokenSwap struct {
	signed
	Recipient string  `json:"recipient" validate:"required"`
	TokenCA1  string  `json:"tokenCA1" validate:"required"`
	TokenCA2  string  `json:"tokenCA2" validate:"required"`
	Amount1   float64 `json:"amount1" validate:"gt=0"`
	Amount2   float64 `json:"amount2" validate:"gt=0"`
}

func (m *tokenSwap) signer() (string, string, string) {
	return m.Wallet, m.Recipient, m.Signature
}

func (m *tokenSwap) payload(action string) (transaction.Payload, error) {
	return transaction.TokenSwap{CA1: m.TokenCA1, CA2: m.TokenCA2, Amount1: m.Amount1, Amount2: m.Amount2}, nil
}

type tokenAdmin struct {
	signed
	TokenCA string `json:"tokenCA" validate:"required"`
}

func (m *tokenAdmin) payload(action string) (transaction.Payload, error) {
	return transaction.TokenAdmin{CA: m.TokenCA, Op: action}, nil
}

type tokenSupplyCap struct {
	signed
	TokenCA   string  `json:"tokenCA" validate:"required"`
	SupplyCap float64 `json:"supplyCap" validate:"gt=0"`
}

func (m *tokenSupplyCap) payload(action string) (transaction.Payload, error) {
	return transaction.TokenSupplyCap{CA: m.TokenCA, Cap: m.SupplyCap}, nil
}

type tokenApprove struct {
	signed
	TokenCA string  `json:"tokenCA" validate:"required"`
	Spender string  `json:"spender" validate:"required"`
	Amount  float64 `json:"amount" validate:"gte=0"`
}

func (m *tokenApprove) payload(action string) (transaction.Payload, error) {
	return transaction.TokenApprove{CA: m.TokenCA, Spender: m.Spender, Amount: m.Amount}, nil
}

// =============================================================================

type nftCreate struct {
	signed
	NFTs []nft.Spec `json:"nfts" validate:"required,min=1"`
}

func (m *nftCreate) payload(action string) (transaction.Payload, error) {
	return transaction.NFTCreate{Items: m.NFTs}, nil
}

type nftMint struct {
	signed
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (m *nftMint) payload(action string) (transaction.Payload, error) {
	return transaction.NFTMint{IDs: m.IDs}, nil
}

type nftRef struct {
	signed
	Recipient string `json:"recipient"`
	NFT       string `json:"nft" validate:"required"`
}

func (m *nftRef) signer() (string, string, string) {
	return m.Wallet, m.Recipient, m.Signature
}

func (m *nftRef) payload(action string) (transaction.Payload, error) {
	if action == transaction.ActionBurn {
		return transaction.NFTBurn{ID: m.NFT}, nil
	}

	if err := requireRecipient(m.Recipient); err != nil {
		return nil, err
	}
	return transaction.NFTTransfer{ID: m.NFT}, nil
}

type nftSale struct {
	signed
	Recipient string     `json:"recipient"`
	NFT       string     `json:"nft" validate:"required"`
	Price     float64    `json:"price" validate:"gt=0"`
	Seller    nft.Seller `json:"seller"`
}

func (m *nftSale) signer() (string, string, string) {
	return m.Wallet, m.Recipient, m.Signature
}

func (m *nftSale) payload(action string) (transaction.Payload, error) {
	if action == transaction.ActionListForSale {
		return transaction.NFTListForSale{ID: m.NFT, Price: m.Price, Seller: m.Seller}, nil
	}

	if err := requireRecipient(m.Recipient); err != nil {
		return nil, err
	}
	return transaction.NFTBuy{ID: m.NFT, Price: m.Price, Seller: m.Seller}, nil
}

type nftURI struct {
	NFT string `json:"nft" validate:"required"`
}

// =============================================================================

// wallet is a newly generated wallet. The private key is only ever returned
// in the creation response.
type wallet struct {
	ID         string `json:"id"`
	Mnemonic   string `json:"mnemonic"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}
