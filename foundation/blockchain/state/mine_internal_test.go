package state

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Rebuild(t *testing.T) {
	t.Log("Given the need to rebuild the scratch state of a block being mined.")
	{
		pk, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
		}
		from := signature.PublicKeyToAddress(pk.PublicKey)

		other, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
		}
		to := signature.PublicKeyToAddress(other.PublicKey)

		db := database.New()
		db.CreateAccount(from).Coins = 100
		db.CreateAccount(to)

		tx, err := transaction.Sign(pk, 0, to, transaction.CoinTransfer{Amount: 10})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the transfer: %v", failed, err)
		}

		now := genesis.Timestamp + 1000

		scratch, err := rebuild(db, []transaction.Tx{tx}, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to replay the batch: %v", failed, err)
		}
		sender, err := scratch.Account(from)
		if err != nil || sender.Coins != 90 || sender.Nonce != 1 {
			t.Fatalf("\t%s\tShould apply the batch to a copy: %+v: %v", failed, sender, err)
		}
		if original, _ := db.Account(from); original.Coins != 100 {
			t.Fatalf("\t%s\tShould leave the source state untouched, got %v", failed, original.Coins)
		}
		t.Logf("\t%s\tShould apply the batch to a copy.", success)

		stranger, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
		}
		orphan, err := transaction.Sign(stranger, 0, to, transaction.CoinTransfer{Amount: 10})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the transfer: %v", failed, err)
		}

		_, err = rebuild(db, []transaction.Tx{tx, orphan}, now)
		if err == nil || !strings.Contains(err.Error(), orphan.ID) {
			t.Fatalf("\t%s\tShould report the transaction that could not be replayed: %v", failed, err)
		}
		t.Logf("\t%s\tShould report the transaction that could not be replayed.", success)
	}
}
