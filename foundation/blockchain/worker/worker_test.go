package worker_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/chain/storage/memory"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/mempool/selector"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/state"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
	"github.com/integr8/blockchain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_AutoMining(t *testing.T) {
	t.Log("Given the need to mine every transaction added to the mempool.")
	{
		pk, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
		}
		alice := signature.PublicKeyToAddress(pk.PublicKey)

		gen := genesis.Default()
		gen.Balances[alice] = 100

		storage, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open storage: %v", failed, err)
		}

		st, err := state.New(state.Config{
			Host:           "localhost:9080",
			Genesis:        gen,
			Storage:        storage,
			SelectStrategy: selector.StrategyLatest,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}

		w := worker.Run(worker.Config{
			State:             st,
			ReconnectInterval: time.Second,
		})
		defer w.Shutdown()

		pk2, _ := crypto.GenerateKey()
		bob := signature.PublicKeyToAddress(pk2.PublicKey)

		signed, err := transaction.Sign(pk, 0, bob, transaction.CoinTransfer{Amount: 10})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign a transfer: %v", failed, err)
		}

		// Transfers need an existing recipient.
		if _, err := st.IssueReward(bob); err != nil {
			t.Fatalf("\t%s\tShould be able to issue a reward: %v", failed, err)
		}

		deadline := time.Now().Add(5 * time.Second)
		for st.QueryChainLength() < 2 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould mine the reward.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould mine the reward.", success)

		if _, err := st.SubmitWalletTransaction(signed.From, signed.To, signed.Payload, signed.Signature); err != nil {
			t.Fatalf("\t%s\tShould be able to submit the transfer: %v", failed, err)
		}

		deadline = time.Now().Add(5 * time.Second)
		for st.QueryChainLength() < 3 || st.QueryMempoolLength() != 0 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould mine the transfer.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould mine the transfer.", success)

		assets, err := st.QueryAssets(bob)
		if err != nil || assets.Coins != genesis.StartingBalance+10 {
			t.Fatalf("\t%s\tShould credit the recipient: %v", failed, err)
		}
		t.Logf("\t%s\tShould credit the recipient.", success)
	}
}
