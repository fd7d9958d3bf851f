package public

import (
	"context"
	"encoding/hex"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
	"github.com/integr8/blockchain/foundation/web"
)

// CreateWallet generates a new wallet and queues its starting balance.
func (h Handlers) CreateWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	mnemonic, err := signature.NewMnemonic()
	if err != nil {
		return err
	}

	privateKey, err := signature.KeyFromMnemonic(mnemonic)
	if err != nil {
		return err
	}

	wlt := wallet{
		ID:         uuid.NewString(),
		Mnemonic:   mnemonic,
		PublicKey:  signature.PublicKeyToAddress(privateKey.PublicKey),
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(privateKey)),
	}

	tx, err := h.State.IssueReward(wlt.PublicKey)
	if err != nil {
		return err
	}

	h.Log.Infow("create wallet", "traceid", v.TraceID, "id", wlt.ID, "reward", tx.ID)

	resp := struct {
		response
		Wallet      wallet         `json:"wallet"`
		Transaction transaction.Tx `json:"transaction"`
	}{
		response:    ok("Wallet created successfully"),
		Wallet:      wlt,
		Transaction: tx,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Assets returns everything the wallet holds with the market value of its
// coins.
func (h Handlers) Assets(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "publicKey")

	assets, err := h.State.QueryAssets(address)
	if err != nil {
		return database.NewStateError("Wallet not found")
	}

	resp := struct {
		response
		PublicKey   string          `json:"publicKey"`
		Name        string          `json:"name"`
		Assets      database.Assets `json:"assets"`
		MarketValue float64         `json:"marketValue"`
	}{
		response:    ok("Wallet assets fetched"),
		PublicKey:   address,
		Name:        h.NS.Lookup(address),
		Assets:      assets,
		MarketValue: h.Price.Value(ctx, h.Asset, assets.Coins+assets.StakedCoins),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Nonce returns the nonce the next transaction of the wallet must be signed
// with.
func (h Handlers) Nonce(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "publicKey")

	resp := struct {
		response
		PublicKey string `json:"publicKey"`
		Nonce     uint64 `json:"nonce"`
	}{
		response:  ok("Wallet nonce fetched"),
		PublicKey: address,
		Nonce:     h.State.QueryNextNonce(address),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
