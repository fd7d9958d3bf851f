package transaction_test

import (
	"crypto/ecdsa"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/nft"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const now = int64(1726483691847)

type wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

func newWallet(t *testing.T) wallet {
	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
	}
	return wallet{key: pk, address: signature.PublicKeyToAddress(pk.PublicKey)}
}

// setup returns a database holding two funded accounts.
func setup(t *testing.T) (*database.Database, wallet, wallet) {
	alice := newWallet(t)
	bob := newWallet(t)

	db := database.New()
	db.CreateAccount(alice.address).Coins = 100
	db.CreateAccount(bob.address).Coins = 100

	return db, alice, bob
}

// next returns the nonce the next transaction of the wallet must carry.
func next(t *testing.T, db *database.Database, w wallet) uint64 {
	return account(t, db, w.address).Nonce
}

// apply signs, validates and executes the payload from the wallet.
func apply(t *testing.T, db *database.Database, from wallet, to string, payload transaction.Payload) transaction.Tx {
	tx, err := transaction.Sign(from.key, next(t, db, from), to, payload)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the %s: %v", failed, payload.Action(), err)
	}
	if err := tx.Validate(db, now); err != nil {
		t.Fatalf("\t%s\tShould be able to validate the %s: %v", failed, payload.Action(), err)
	}
	if err := tx.Execute(db, now); err != nil {
		t.Fatalf("\t%s\tShould be able to execute the %s: %v", failed, payload.Action(), err)
	}
	return tx
}

func account(t *testing.T, db *database.Database, address string) *database.Account {
	a, err := db.Account(address)
	if err != nil {
		t.Fatalf("\t%s\tShould find account %s: %v", failed, address, err)
	}
	return a
}

// =============================================================================

func Test_CoinTransfer(t *testing.T) {
	t.Log("Given the need to move coins between accounts.")
	{
		db, alice, bob := setup(t)

		apply(t, db, alice, bob.address, transaction.CoinTransfer{Amount: 50})

		if got := account(t, db, alice.address).Coins; got != 50 {
			t.Fatalf("\t%s\tShould debit the sender, got %v", failed, got)
		}
		if got := account(t, db, bob.address).Coins; got != 150 {
			t.Fatalf("\t%s\tShould credit the recipient, got %v", failed, got)
		}
		t.Logf("\t%s\tShould move the coins.", success)

		tx, err := transaction.Sign(alice.key, next(t, db, alice), bob.address, transaction.CoinTransfer{Amount: 51})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject an overdraw: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an overdraw.", success)

		tx, err = transaction.Sign(alice.key, next(t, db, alice), alice.address, transaction.CoinTransfer{Amount: 1})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject a transfer to self: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a transfer to self.", success)
	}
}

func Test_InvalidSignature(t *testing.T) {
	t.Log("Given the need to reject transactions not signed by the sender.")
	{
		db, alice, bob := setup(t)

		payload := transaction.CoinTransfer{Amount: 10}
		data, err := transaction.SignedData(0, alice.address, bob.address, payload)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the signed data: %v", failed, err)
		}

		sig, err := signature.Sign(json.RawMessage(data), bob.key)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}

		tx, err := transaction.New(0, alice.address, bob.address, payload, sig)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the transaction: %v", failed, err)
		}

		err = tx.Validate(db, now)
		if !database.IsValidationError(err) || !strings.Contains(err.Error(), "invalid transaction from") {
			t.Fatalf("\t%s\tShould reject a foreign signature: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a foreign signature.", success)
	}
}

func Test_SignedDataOrder(t *testing.T) {
	t.Log("Given the need to sign data in the order wallets produce it.")
	{
		data, err := transaction.SignedData(2, "04aa", "04bb", transaction.CoinTransfer{Amount: 50})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the signed data: %v", failed, err)
		}

		exp := `{"wallet":"04aa","recipient":"04bb","amount":50,"type":"coin","action":"transfer","nonce":2}`
		if string(data) != exp {
			t.Logf("\t%s\tgot: %s", failed, data)
			t.Logf("\t%s\texp: %s", failed, exp)
			t.Fatalf("\t%s\tShould keep the key order.", failed)
		}
		t.Logf("\t%s\tShould keep the key order.", success)
	}
}

func Test_Replay(t *testing.T) {
	t.Log("Given the need to apply a signed transaction only once.")
	{
		db, alice, bob := setup(t)

		payload := transaction.CoinTransfer{Amount: 10}
		tx := apply(t, db, alice, bob.address, payload)

		if got := next(t, db, alice); got != 1 {
			t.Fatalf("\t%s\tShould consume the nonce, got %d", failed, got)
		}
		t.Logf("\t%s\tShould consume the nonce.", success)

		err := tx.Validate(db, now)
		if !database.IsValidationError(err) || !strings.Contains(err.Error(), "already been used") {
			t.Fatalf("\t%s\tShould reject the same transaction again: %v", failed, err)
		}
		if err := tx.Execute(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould refuse to execute the same transaction again: %v", failed, err)
		}
		if got := account(t, db, alice.address).Coins; got != 90 {
			t.Fatalf("\t%s\tShould leave the balance alone, got %v", failed, got)
		}
		t.Logf("\t%s\tShould reject the same transaction again.", success)

		moved, err := transaction.New(7, tx.From, tx.To, tx.Payload, tx.Signature)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the transaction: %v", failed, err)
		}
		err = moved.Validate(db, now)
		if !database.IsValidationError(err) || !strings.Contains(err.Error(), "invalid transaction from") {
			t.Fatalf("\t%s\tShould reject the signature under another nonce: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the signature under another nonce.", success)

		again := apply(t, db, alice, bob.address, payload)
		if again.ID == tx.ID {
			t.Fatalf("\t%s\tShould give a repeated payment its own id.", failed)
		}
		if got := account(t, db, alice.address).Coins; got != 80 {
			t.Fatalf("\t%s\tShould apply the repeated payment, got %v", failed, got)
		}
		t.Logf("\t%s\tShould apply a repeated payment signed with the next nonce.", success)
	}
}

func Test_CanonicalEncoding(t *testing.T) {
	t.Log("Given the need to hash and sign text with HTML characters.")
	{
		db, alice, _ := setup(t)

		create := transaction.NewTokenCreate("Fish & <Chips>", "F&C", "logo.png", 10, 30)

		data, err := transaction.SignedData(0, alice.address, "", create)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the signed data: %v", failed, err)
		}
		if !strings.Contains(string(data), `"Fish & <Chips>"`) {
			t.Fatalf("\t%s\tShould sign the text unescaped: %s", failed, data)
		}
		t.Logf("\t%s\tShould sign the text unescaped.", success)

		tx := apply(t, db, alice, "", create)

		encoded, err := signature.Marshal(tx)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to encode: %v", failed, err)
		}
		if !strings.Contains(string(encoded), `"Fish & <Chips>"`) {
			t.Fatalf("\t%s\tShould encode the text unescaped: %s", failed, encoded)
		}
		t.Logf("\t%s\tShould encode the text unescaped.", success)
	}
}

func Test_SignedTokenEOL(t *testing.T) {
	t.Log("Given the need to protect the token end of life from relays.")
	{
		db, alice, _ := setup(t)

		create := transaction.NewTokenCreate("Integrate", "ITG", "logo.png", 1000, 30)
		tx, err := transaction.Sign(alice.key, next(t, db, alice), "", create)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}

		create.EOLDays = 1
		relayed, err := transaction.New(tx.Nonce, tx.From, tx.To, create, tx.Signature)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the transaction: %v", failed, err)
		}

		err = relayed.Validate(db, now)
		if !database.IsValidationError(err) || !strings.Contains(err.Error(), "invalid transaction from") {
			t.Fatalf("\t%s\tShould reject a changed end of life: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a changed end of life.", success)
	}
}

func Test_CoinReward(t *testing.T) {
	t.Log("Given the need to fund a new wallet once.")
	{
		db := database.New()
		w := newWallet(t)

		tx, err := transaction.NewReward(w.address)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the reward: %v", failed, err)
		}
		if err := tx.Validate(db, now); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the reward: %v", failed, err)
		}
		if err := tx.Execute(db, now); err != nil {
			t.Fatalf("\t%s\tShould be able to execute the reward: %v", failed, err)
		}
		if got := account(t, db, w.address).Coins; got != 100 {
			t.Fatalf("\t%s\tShould fund the wallet, got %v", failed, got)
		}
		t.Logf("\t%s\tShould fund the wallet.", success)

		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject a second reward: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a second reward.", success)
	}
}

func Test_TokenLifecycle(t *testing.T) {
	t.Log("Given the need to create, mint and transfer tokens.")
	{
		db, alice, bob := setup(t)

		create := transaction.NewTokenCreate("Integrate", "ITG", "logo.png", 1000, 0)
		apply(t, db, alice, "", create)

		tkn, err := db.Token(create.CA)
		if err != nil {
			t.Fatalf("\t%s\tShould register the token: %v", failed, err)
		}
		if account(t, db, alice.address).TokenBalance(create.CA) != 1000 {
			t.Fatalf("\t%s\tShould credit the full supply to the creator.", failed)
		}
		t.Logf("\t%s\tShould create the token.", success)

		tx, err := transaction.Sign(alice.key, next(t, db, alice), "", create)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject a duplicate contract: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a duplicate contract.", success)

		apply(t, db, alice, "", transaction.TokenMint{CA: create.CA, Amount: 500})
		if tkn.TotalSupply != 1500 || account(t, db, alice.address).TokenBalance(create.CA) != 1500 {
			t.Fatalf("\t%s\tShould mint new supply.", failed)
		}
		if got := account(t, db, alice.address).Coins; got != 100-transaction.TokenCreationFee {
			t.Fatalf("\t%s\tShould charge the fee, got %v", failed, got)
		}
		t.Logf("\t%s\tShould mint new supply.", success)

		apply(t, db, alice, bob.address, transaction.TokenTransfer{CA: create.CA, Amount: 200})
		if account(t, db, alice.address).TokenBalance(create.CA) != 1300 || account(t, db, bob.address).TokenBalance(create.CA) != 200 {
			t.Fatalf("\t%s\tShould move the tokens between accounts.", failed)
		}
		if tkn.BalanceOf(bob.address) != 200 || tkn.TotalBalances() != tkn.TotalSupply {
			t.Fatalf("\t%s\tShould keep the contract balances in step.", failed)
		}
		t.Logf("\t%s\tShould transfer tokens.", success)

		tx, err = transaction.Sign(bob.key, next(t, db, bob), "", transaction.TokenMint{CA: create.CA, Amount: 1})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject a mint by a non owner: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a mint by a non owner.", success)

		apply(t, db, alice, "", transaction.TokenAdmin{CA: create.CA, Op: transaction.ActionPause})
		tx, err = transaction.Sign(bob.key, next(t, db, bob), alice.address, transaction.TokenTransfer{CA: create.CA, Amount: 1})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject a transfer of a paused token: %v", failed, err)
		}
		t.Logf("\t%s\tShould honor the pause.", success)
	}
}

func Test_TokenTrade(t *testing.T) {
	t.Log("Given the need to buy, sell and swap tokens.")
	{
		db, alice, bob := setup(t)

		t1 := transaction.NewTokenCreate("One", "ONE", "one.png", 100, 0)
		apply(t, db, alice, "", t1)
		t2 := transaction.NewTokenCreate("Two", "TWO", "two.png", 100, 0)
		apply(t, db, bob, "", t2)

		apply(t, db, bob, alice.address, transaction.TokenBuy{CA: t1.CA, Coins: 10, Tokens: 20})
		if account(t, db, bob.address).TokenBalance(t1.CA) != 20 || account(t, db, bob.address).Coins != 90 || account(t, db, alice.address).Coins != 110 {
			t.Fatalf("\t%s\tShould exchange coins for tokens.", failed)
		}
		t.Logf("\t%s\tShould buy tokens.", success)

		apply(t, db, bob, alice.address, transaction.TokenSell{CA: t1.CA, Tokens: 5, Coins: 2})
		if account(t, db, bob.address).TokenBalance(t1.CA) != 15 || account(t, db, bob.address).Coins != 92 {
			t.Fatalf("\t%s\tShould exchange tokens for coins.", failed)
		}
		t.Logf("\t%s\tShould sell tokens.", success)

		apply(t, db, alice, bob.address, transaction.TokenSwap{CA1: t1.CA, CA2: t2.CA, Amount1: 10, Amount2: 30})
		if account(t, db, alice.address).TokenBalance(t2.CA) != 30 || account(t, db, bob.address).TokenBalance(t1.CA) != 25 {
			t.Fatalf("\t%s\tShould exchange the two tokens.", failed)
		}
		t.Logf("\t%s\tShould swap tokens.", success)

		tx, err := transaction.Sign(alice.key, next(t, db, alice), bob.address, transaction.TokenSwap{CA1: t1.CA, CA2: t1.CA, Amount1: 1, Amount2: 1})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject swapping the same token: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject swapping the same token.", success)
	}
}

func Test_NFTLifecycle(t *testing.T) {
	t.Log("Given the need to create, mint, list, buy and burn NFTs.")
	{
		db, alice, bob := setup(t)

		spec := nft.Spec{
			Creator:     alice.address,
			Owner:       alice.address,
			Name:        "Genesis",
			URL:         "https://integr8.io/genesis.png",
			Description: "The first asset",
			Position:    1,
			TotalSupply: 1,
		}
		id := spec.Fingerprint()

		apply(t, db, alice, "", transaction.NFTCreate{Items: []nft.Spec{spec}})
		if !account(t, db, alice.address).UnmintedNFTs[id] {
			t.Fatalf("\t%s\tShould hold the unminted asset.", failed)
		}
		t.Logf("\t%s\tShould create the asset.", success)

		tx, err := transaction.Sign(alice.key, next(t, db, alice), "", transaction.NFTCreate{Items: []nft.Spec{spec}})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if err := tx.Validate(db, now); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject creating the same content twice: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject creating the same content twice.", success)

		apply(t, db, alice, "", transaction.NFTMint{IDs: []string{id}})
		n, err := db.NFT(id)
		if err != nil {
			t.Fatalf("\t%s\tShould find the asset: %v", failed, err)
		}
		if !n.IsMinted || n.CA == "" || !account(t, db, alice.address).NFTs[id] {
			t.Fatalf("\t%s\tShould mint the asset.", failed)
		}
		if _, err := db.NFT(n.CA); err != nil {
			t.Fatalf("\t%s\tShould index the asset by contract address: %v", failed, err)
		}
		t.Logf("\t%s\tShould mint the asset.", success)

		apply(t, db, alice, "", transaction.NFTListForSale{ID: n.CA, Price: 10, Seller: nft.Seller{Name: "Alice", URL: "https://alice.io"}})
		if n.Marketplace == nil {
			t.Fatalf("\t%s\tShould list the asset.", failed)
		}
		t.Logf("\t%s\tShould list the asset.", success)

		apply(t, db, bob, alice.address, transaction.NFTBuy{ID: n.CA, Price: 10, Seller: n.Marketplace.Seller})
		if n.Owner != bob.address || !account(t, db, bob.address).NFTs[id] || account(t, db, alice.address).NFTs[id] {
			t.Fatalf("\t%s\tShould move the asset to the buyer.", failed)
		}
		if account(t, db, bob.address).Coins != 90 || account(t, db, alice.address).Coins != 110 {
			t.Fatalf("\t%s\tShould pay the seller.", failed)
		}
		t.Logf("\t%s\tShould buy the asset.", success)

		apply(t, db, bob, "", transaction.NFTBurn{ID: id})
		if _, err := db.NFT(id); !database.IsStateError(err) {
			t.Fatalf("\t%s\tShould remove the burned asset: %v", failed, err)
		}
		if account(t, db, bob.address).HoldsNFT(id) {
			t.Fatalf("\t%s\tShould remove the burned asset from the owner.", failed)
		}
		t.Logf("\t%s\tShould burn the asset.", success)
	}
}

func Test_Encoding(t *testing.T) {
	t.Log("Given the need to move transactions between nodes.")
	{
		_, alice, bob := setup(t)

		tx, err := transaction.Sign(alice.key, 3, bob.address, transaction.TokenBuy{CA: "0x0123456789abcdef0123456789abcdef", Coins: 1.5, Tokens: 3})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}

		data, err := json.Marshal(tx)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal: %v", failed, err)
		}

		var decoded transaction.Tx
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal: %v", failed, err)
		}
		if decoded.ID != tx.ID || decoded.Payload != tx.Payload || decoded.Timestamp != tx.Timestamp {
			t.Fatalf("\t%s\tShould rebuild the same transaction.", failed)
		}
		t.Logf("\t%s\tShould rebuild the same transaction.", success)

		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal: %v", failed, err)
		}
		fields["nonce"] = 4
		tampered, err := json.Marshal(fields)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal: %v", failed, err)
		}
		if err := json.Unmarshal(tampered, &decoded); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject content that does not match the id: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject content that does not match the id.", success)

		unknown := `{"id":"","type":"coin","action":"fly","nonce":0,"from":"","to":"","amount":1,"token":null,"nft":null,"signature":"","timestamp":0}`
		err = json.Unmarshal([]byte(unknown), &decoded)
		if err == nil || !strings.Contains(err.Error(), "Unknown coin action") {
			t.Fatalf("\t%s\tShould reject an unknown action: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an unknown action.", success)
	}
}
