package mempool_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/mempool"
	"github.com/integr8/blockchain/foundation/blockchain/mempool/selector"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const now = genesis.Timestamp + 1000

func newKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
	}
	return pk, signature.PublicKeyToAddress(pk.PublicKey)
}

func newPool(t *testing.T) *mempool.Mempool {
	mp, err := mempool.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the mempool: %v", failed, err)
	}
	return mp
}

func transfer(t *testing.T, pk *ecdsa.PrivateKey, nonce uint64, to string, amount float64) transaction.Tx {
	tx, err := transaction.Sign(pk, nonce, to, transaction.CoinTransfer{Amount: amount})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transfer: %v", failed, err)
	}
	return tx
}

// =============================================================================

func Test_Upsert(t *testing.T) {
	t.Log("Given the need to hold pending transactions.")
	{
		mp := newPool(t)
		pk, from := newKey(t)
		_, to := newKey(t)

		bad := transfer(t, pk, 0, to, 1)
		bad.ID = "not-hex"
		if _, err := mp.Upsert(bad); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject a transaction with a non hex id: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a transaction with a non hex id.", success)

		first := transfer(t, pk, 0, to, 1)
		if n, err := mp.Upsert(first); err != nil || n != 1 {
			t.Fatalf("\t%s\tShould be able to add a transaction: %d: %v", failed, n, err)
		}
		t.Logf("\t%s\tShould be able to add a transaction.", success)

		existing, found := mp.Existing(from)
		if !found || existing.ID != first.ID {
			t.Fatalf("\t%s\tShould find the pending transaction of the sender.", failed)
		}
		t.Logf("\t%s\tShould find the pending transaction of the sender.", success)

		resigned := transfer(t, pk, existing.Nonce+1, to, 1)
		second, err := transaction.Update(existing, from, to, resigned.Payload, resigned.Signature)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to update the transaction: %v", failed, err)
		}
		if n, err := mp.Upsert(second); err != nil || n != 1 {
			t.Fatalf("\t%s\tShould replace the lower nonce: %d: %v", failed, n, err)
		}
		if second.ID != resigned.ID {
			t.Fatalf("\t%s\tShould build the same transaction the sender signed.", failed)
		}
		if _, found := mp.Get(first.ID); found {
			t.Fatalf("\t%s\tShould drop the superseded transaction.", failed)
		}
		if existing, _ := mp.Existing(from); existing.Nonce != 1 {
			t.Fatalf("\t%s\tShould hold the higher nonce, got %d", failed, existing.Nonce)
		}
		t.Logf("\t%s\tShould replace the lower nonce.", success)

		if _, err := mp.Upsert(first); !database.IsValidationError(err) {
			t.Fatalf("\t%s\tShould reject a stale nonce: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a stale nonce.", success)

		other, _ := newKey(t)
		if n, _ := mp.Upsert(transfer(t, other, 0, to, 1)); n != 2 {
			t.Fatalf("\t%s\tShould keep the transactions of other senders, got %d", failed, n)
		}
		t.Logf("\t%s\tShould keep the transactions of other senders.", success)

		mp.Delete(second.ID)
		if mp.Count() != 1 {
			t.Fatalf("\t%s\tShould be able to remove a transaction.", failed)
		}
		t.Logf("\t%s\tShould be able to remove a transaction.", success)

		mp.Truncate()
		if mp.Count() != 0 || len(mp.Copy()) != 0 {
			t.Fatalf("\t%s\tShould be able to truncate mempool.", failed)
		}
		t.Logf("\t%s\tShould be able to truncate mempool.", success)
	}
}

func Test_Rewards(t *testing.T) {
	t.Log("Given the need to hold rewards for different wallets.")
	{
		mp := newPool(t)

		var txs []transaction.Tx
		for i := 0; i < 3; i++ {
			_, to := newKey(t)
			tx, err := transaction.NewReward(to)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to construct a reward: %v", failed, err)
			}
			if _, err := mp.Upsert(tx); err != nil {
				t.Fatalf("\t%s\tShould be able to add a reward: %v", failed, err)
			}
			txs = append(txs, tx)
		}

		if mp.Count() != 3 {
			t.Fatalf("\t%s\tShould hold every reward, got %d", failed, mp.Count())
		}
		if got := mp.Select(txs, -1); len(got) != 3 {
			t.Fatalf("\t%s\tShould select every reward, got %d", failed, len(got))
		}
		t.Logf("\t%s\tShould hold and select every reward.", success)
	}
}

func Test_ValidTransactions(t *testing.T) {
	t.Log("Given the need to mine only transactions that pass validation.")
	{
		mp := newPool(t)

		rich, richAddr := newKey(t)
		poor, _ := newKey(t)
		used, usedAddr := newKey(t)
		_, to := newKey(t)

		db := database.New()
		db.CreateAccount(richAddr).Coins = 100
		db.CreateAccount(to)

		spent := db.CreateAccount(usedAddr)
		spent.Coins = 100
		spent.Nonce = 3

		good := transfer(t, rich, 0, to, 10)
		mp.Upsert(good)
		mp.Upsert(transfer(t, poor, 0, to, 10))
		mp.Upsert(transfer(t, used, 2, to, 10))

		valid := mp.ValidTransactions(db, now)
		if len(valid) != 1 || valid[0].ID != good.ID {
			t.Fatalf("\t%s\tShould return only the valid transaction, got %d", failed, len(valid))
		}
		t.Logf("\t%s\tShould return only the valid transaction.", success)

		block := chain.Block{Transactions: []transaction.Tx{good}}
		if removed := mp.ClearBlockchainTransactions([]chain.Block{block}); removed != 1 || mp.Count() != 2 {
			t.Fatalf("\t%s\tShould clear the mined transactions, removed %d", failed, removed)
		}
		t.Logf("\t%s\tShould clear the mined transactions.", success)
	}
}

func Test_Strategy(t *testing.T) {
	t.Log("Given the need to pick a select strategy by name.")
	{
		if _, err := mempool.NewWithStrategy("bogus"); err == nil {
			t.Fatalf("\t%s\tShould reject an unknown strategy.", failed)
		}
		t.Logf("\t%s\tShould reject an unknown strategy.", success)

		if _, err := mempool.NewWithStrategy(selector.StrategyHighest); err != nil {
			t.Fatalf("\t%s\tShould accept the %s strategy: %v", failed, selector.StrategyHighest, err)
		}
		t.Logf("\t%s\tShould accept the %s strategy.", success, selector.StrategyHighest)
	}
}
