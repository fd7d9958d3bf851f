package token_test

import (
	"errors"
	"testing"

	"github.com/integr8/blockchain/foundation/blockchain/token"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	owner = "04aa"
	bob   = "04bb"
	now   = int64(1726483691847)
)

func newToken() *token.Token {
	return token.New(token.Config{
		Name:        "Integrate",
		Symbol:      "ITG",
		Logo:        "itg.png",
		TotalSupply: 1000,
		Owner:       owner,
	}, now)
}

func checkSupply(t *testing.T, tkn *token.Token) {
	t.Helper()
	if tkn.TotalBalances() != tkn.TotalSupply {
		t.Fatalf("\t%s\tShould keep balances equal to total supply: %v != %v", failed, tkn.TotalBalances(), tkn.TotalSupply)
	}
}

func TestLifecycle(t *testing.T) {
	t.Log("Given the need to create, mint and transfer a token.")
	{
		tkn := newToken()

		if tkn.CA[:2] != "0x" || len(tkn.CA) != 34 {
			t.Fatalf("\t%s\tShould generate a contract address: %s", failed, tkn.CA)
		}
		if tkn.BalanceOf(owner) != 1000 {
			t.Fatalf("\t%s\tShould give the owner the full supply.", failed)
		}
		roles := tkn.Roles[owner]
		if !roles.Admin || !roles.Minter || !roles.Burner {
			t.Fatalf("\t%s\tShould give the owner every role.", failed)
		}
		checkSupply(t, tkn)
		t.Logf("\t%s\tShould be able to create the token.", success)

		if err := tkn.Mint(owner, 500, now); err != nil {
			t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
		}
		if tkn.TotalSupply != 1500 || tkn.BalanceOf(owner) != 1500 {
			t.Fatalf("\t%s\tShould increase supply on mint.", failed)
		}
		checkSupply(t, tkn)
		t.Logf("\t%s\tShould be able to mint.", success)

		if err := tkn.SetBalances(owner, bob, 200); err != nil {
			t.Fatalf("\t%s\tShould be able to transfer: %v", failed, err)
		}
		if tkn.BalanceOf(owner) != 1300 || tkn.BalanceOf(bob) != 200 {
			t.Fatalf("\t%s\tShould move the balance.", failed)
		}
		checkSupply(t, tkn)
		t.Logf("\t%s\tShould be able to transfer.", success)

		if err := tkn.Burn(bob, 200, now); err != nil {
			t.Fatalf("\t%s\tShould be able to burn: %v", failed, err)
		}
		if _, exists := tkn.Balances[bob]; exists {
			t.Fatalf("\t%s\tShould remove an emptied balance.", failed)
		}
		checkSupply(t, tkn)
		t.Logf("\t%s\tShould be able to burn.", success)
	}
}

func TestAuthorization(t *testing.T) {
	t.Log("Given the need to restrict administrative actions to the owner.")
	{
		tkn := newToken()

		if err := tkn.Mint(bob, 10, now); !errors.Is(err, token.ErrNotAuthorized) {
			t.Fatalf("\t%s\tShould not let a non owner mint: %v", failed, err)
		}
		if err := tkn.Pause(bob, now); !errors.Is(err, token.ErrNotAuthorized) {
			t.Fatalf("\t%s\tShould not let a non owner pause: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject non owners.", success)

		if err := tkn.Pause(owner, now); err != nil {
			t.Fatalf("\t%s\tShould be able to pause: %v", failed, err)
		}
		if err := tkn.Pause(owner, now); !errors.Is(err, token.ErrAlreadySet) {
			t.Fatalf("\t%s\tShould not pause twice: %v", failed, err)
		}
		if err := tkn.SetBalances(owner, bob, 1); !errors.Is(err, token.ErrPaused) {
			t.Fatalf("\t%s\tShould not transfer while paused: %v", failed, err)
		}
		if err := tkn.Unpause(owner, now); err != nil {
			t.Fatalf("\t%s\tShould be able to unpause: %v", failed, err)
		}
		t.Logf("\t%s\tShould honor pause.", success)

		if err := tkn.Freeze(owner, now); err != nil {
			t.Fatalf("\t%s\tShould be able to freeze: %v", failed, err)
		}
		if err := tkn.Mint(owner, 1, now); !errors.Is(err, token.ErrFrozen) {
			t.Fatalf("\t%s\tShould not mint while frozen: %v", failed, err)
		}
		t.Logf("\t%s\tShould honor freeze.", success)

		if err := tkn.Lock(owner, now); err != nil {
			t.Fatalf("\t%s\tShould be able to lock: %v", failed, err)
		}
		if err := tkn.Upgrade(owner, "n", "s", "l"); !errors.Is(err, token.ErrLocked) {
			t.Fatalf("\t%s\tShould not upgrade while locked: %v", failed, err)
		}
		t.Logf("\t%s\tShould honor lock.", success)
	}
}

func TestSupplyCapAndExpiry(t *testing.T) {
	t.Log("Given the need to cap supply and expire tokens.")
	{
		tkn := newToken()

		if err := tkn.SetSupplyCap(owner, 999, now); !errors.Is(err, token.ErrCapBelowSupply) {
			t.Fatalf("\t%s\tShould not cap below supply: %v", failed, err)
		}
		if err := tkn.SetSupplyCap(owner, 1100, now); err != nil {
			t.Fatalf("\t%s\tShould be able to cap supply: %v", failed, err)
		}
		if err := tkn.Mint(owner, 101, now); !errors.Is(err, token.ErrSupplyCap) {
			t.Fatalf("\t%s\tShould not mint past the cap: %v", failed, err)
		}
		if err := tkn.Mint(owner, 100, now); err != nil {
			t.Fatalf("\t%s\tShould mint up to the cap: %v", failed, err)
		}
		t.Logf("\t%s\tShould honor the supply cap.", success)

		expiring := token.New(token.Config{Name: "e", Symbol: "E", Logo: "e", TotalSupply: 1, Owner: owner, EOLDays: 1}, now)
		if err := expiring.HasExpired(now + 1000); err != nil {
			t.Fatalf("\t%s\tShould not be expired yet: %v", failed, err)
		}
		if err := expiring.Transferable(owner, bob, now+2*24*60*60*1000); !errors.Is(err, token.ErrExpired) {
			t.Fatalf("\t%s\tShould be expired: %v", failed, err)
		}
		t.Logf("\t%s\tShould honor the end of life.", success)
	}
}

func TestAccountsAndAllowances(t *testing.T) {
	t.Log("Given the need to manage accounts and allowances.")
	{
		tkn := newToken()
		const spender = "04cc"

		if err := tkn.BlacklistAccount(owner, bob, now); err != nil {
			t.Fatalf("\t%s\tShould be able to blacklist: %v", failed, err)
		}
		if err := tkn.Transferable(owner, bob, now); !errors.Is(err, token.ErrBlacklisted) {
			t.Fatalf("\t%s\tShould block a blacklisted account: %v", failed, err)
		}
		if err := tkn.UnblacklistAccount(owner, bob, now); err != nil {
			t.Fatalf("\t%s\tShould be able to unblacklist: %v", failed, err)
		}
		t.Logf("\t%s\tShould honor the blacklist.", success)

		if err := tkn.ApproveSpender(owner, spender, 50, now); err != nil {
			t.Fatalf("\t%s\tShould be able to approve: %v", failed, err)
		}
		if err := tkn.TransferThroughSpender(owner, bob, 60, spender, now); !errors.Is(err, token.ErrAllowance) {
			t.Fatalf("\t%s\tShould not exceed the allowance: %v", failed, err)
		}
		if err := tkn.TransferThroughSpender(owner, bob, 30, spender, now); err != nil {
			t.Fatalf("\t%s\tShould transfer through the spender: %v", failed, err)
		}
		if tkn.Allowance(owner, spender) != 20 || tkn.BalanceOf(bob) != 30 {
			t.Fatalf("\t%s\tShould reduce the allowance.", failed)
		}
		checkSupply(t, tkn)
		t.Logf("\t%s\tShould honor allowances.", success)
	}
}

func TestSwap(t *testing.T) {
	t.Log("Given the need to swap two tokens.")
	{
		t1 := newToken()
		t2 := token.New(token.Config{Name: "Other", Symbol: "OTH", Logo: "o", TotalSupply: 300, Owner: bob}, now)

		if err := t1.Swap(owner, bob, 100, 400, t2); !errors.Is(err, token.ErrInsufficient) {
			t.Fatalf("\t%s\tShould reject a short recipient: %v", failed, err)
		}
		if t1.BalanceOf(owner) != 1000 {
			t.Fatalf("\t%s\tShould not change anything on failure.", failed)
		}

		if err := t1.Swap(owner, bob, 100, 30, t2); err != nil {
			t.Fatalf("\t%s\tShould be able to swap: %v", failed, err)
		}
		if t1.BalanceOf(bob) != 100 || t2.BalanceOf(owner) != 30 {
			t.Fatalf("\t%s\tShould exchange both sides.", failed)
		}
		checkSupply(t, t1)
		checkSupply(t, t2)
		t.Logf("\t%s\tShould be able to swap.", success)
	}
}

func TestClone(t *testing.T) {
	tkn := newToken()
	c := tkn.Clone()

	if err := c.SetBalances(owner, bob, 10); err != nil {
		t.Fatalf("Should be able to transfer on the clone: %s", err)
	}

	if tkn.BalanceOf(bob) != 0 {
		t.Fatalf("Should not change the original when the clone changes.")
	}
}
