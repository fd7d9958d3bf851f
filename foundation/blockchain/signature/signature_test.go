package signature_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

// =============================================================================

func Test_Hash(t *testing.T) {
	h1 := signature.Hash("one", 2, map[string]int{"three": 3})
	h2 := signature.Hash(map[string]int{"three": 3}, "one", 2)

	if h1 != h2 {
		t.Logf("got: %s", h1)
		t.Logf("exp: %s", h2)
		t.Fatalf("Should get the same hash regardless of argument order.")
	}

	if len(h1) != 64 {
		t.Fatalf("Should get a 64 character hex hash, got %d", len(h1))
	}

	if h1 == signature.Hash("one", 2, map[string]int{"three": 4}) {
		t.Fatalf("Should get a different hash when a value changes.")
	}
}

func Test_HashKnownValue(t *testing.T) {
	const exp = "59cf26f142fb2d835fdec572e8d3c5ba520794d5ad73c41c01a92baf443e54cc"

	if got := signature.Hash("foo", "bar"); got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should hash the sorted JSON values joined by a space.")
	}
}

func Test_Signing(t *testing.T) {
	value := struct {
		Wallet string  `json:"wallet"`
		Amount float64 `json:"amount"`
	}{
		Wallet: "bill",
		Amount: 50,
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	address := signature.PublicKeyToAddress(pk.PublicKey)
	if !strings.HasPrefix(address, "04") || len(address) != 130 {
		t.Fatalf("Should get an uncompressed public key address: %s", address)
	}

	sig, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.Verify(address, value, sig); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	value.Amount = 51
	if err := signature.Verify(address, value, sig); err == nil {
		t.Fatalf("Should not be able to verify the signature of changed data.")
	}
}

func Test_VerifyWrongKey(t *testing.T) {
	value := []string{"transfer"}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.Verify(signature.PublicKeyToAddress(other.PublicKey), value, sig); err == nil {
		t.Fatalf("Should not verify with a different public key.")
	}

	if err := signature.Verify("zz", value, sig); err == nil {
		t.Fatalf("Should not verify with a malformed address.")
	}

	if err := signature.Verify(signature.PublicKeyToAddress(pk.PublicKey), value, "00ff"); err == nil {
		t.Fatalf("Should not verify a malformed signature.")
	}
}

func Test_PublicKeyRoundTrip(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	address := signature.PublicKeyToAddress(pk.PublicKey)

	pub, err := signature.ToPublicKey(address)
	if err != nil {
		t.Fatalf("Should be able to parse the address: %s", err)
	}

	if signature.PublicKeyToAddress(*pub) != address {
		t.Fatalf("Should get back the same address.")
	}
}

func Test_ContractAddress(t *testing.T) {
	ca := signature.ContractAddress()
	if !strings.HasPrefix(ca, "0x") || len(ca) != 34 {
		t.Fatalf("Should get a 0x prefixed 32 character address: %s", ca)
	}

	if signature.ContractAddress() == ca {
		t.Fatalf("Should get unique contract addresses.")
	}

	d1 := signature.DeriveContractAddress("tx", "0")
	d2 := signature.DeriveContractAddress("tx", "0")
	d3 := signature.DeriveContractAddress("tx", "1")
	if d1 != d2 || d1 == d3 {
		t.Fatalf("Should derive the same address from the same seed only.")
	}
}

func Test_IsHex(t *testing.T) {
	tt := []struct {
		in  string
		exp bool
	}{
		{"", false},
		{"abc", false},
		{"abcd", true},
		{"zz", false},
		{"0a0B", true},
	}

	for _, tst := range tt {
		if got := signature.IsHex(tst.in); got != tst.exp {
			t.Errorf("Test %s: Should get %v, got %v", tst.in, tst.exp, got)
		}
	}
}

func Test_Mnemonic(t *testing.T) {
	mnemonic, err := signature.NewMnemonic()
	if err != nil {
		t.Fatalf("Should be able to generate a mnemonic: %s", err)
	}

	if words := strings.Fields(mnemonic); len(words) != 12 {
		t.Fatalf("Should get a 12 word mnemonic, got %d", len(words))
	}

	k1, err := signature.KeyFromMnemonic(mnemonic)
	if err != nil {
		t.Fatalf("Should be able to derive a key: %s", err)
	}

	k2, err := signature.KeyFromMnemonic(mnemonic)
	if err != nil {
		t.Fatalf("Should be able to derive a key: %s", err)
	}

	if signature.PublicKeyToAddress(k1.PublicKey) != signature.PublicKeyToAddress(k2.PublicKey) {
		t.Fatalf("Should derive the same key every time.")
	}

	if _, err := signature.KeyFromMnemonic("not a real phrase"); !errors.Is(err, signature.ErrInvalidMnemonic) {
		t.Fatalf("Should reject an invalid mnemonic: %v", err)
	}
}
