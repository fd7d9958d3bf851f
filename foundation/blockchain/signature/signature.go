// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// contractSpace is the namespace used to derive contract addresses from
// transaction data so every node derives the same address.
var contractSpace = uuid.MustParse("6c1f5a0e-2b1d-4c0a-9d8e-1f0e2a3b4c5d")

// =============================================================================

// Hash returns the hex encoded sha256 of the JSON encoding of every value,
// sorted and joined by a single space. The order of the values provided does
// not change the result.
func Hash(values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		data, err := Marshal(v)
		if err != nil {
			return ZeroHash
		}
		parts[i] = string(data)
	}

	sort.Strings(parts)

	hash := sha256.Sum256([]byte(strings.Join(parts, " ")))
	return hex.EncodeToString(hash[:])
}

// Sign uses the specified private key to sign the hash of the value. The
// signature is returned as hex encoded DER.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {
	digest, err := digest(value)
	if err != nil {
		return "", err
	}

	pk := secp256k1.PrivKeyFromBytes(crypto.FromECDSA(privateKey))
	sig := dcrecdsa.Sign(pk, digest)

	return hex.EncodeToString(sig.Serialize()), nil
}

// Verify checks the hex encoded DER signature was produced over the value by
// the private key behind the specified address.
func Verify(address string, value any, sigHex string) error {
	pubBytes, err := hex.DecodeString(address)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	publicKey, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	sig, err := dcrecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	digest, err := digest(value)
	if err != nil {
		return err
	}

	if !sig.Verify(digest, publicKey) {
		return errors.New("invalid signature")
	}

	return nil
}

// PublicKeyToAddress returns the address for the public key, the hex
// encoding of the uncompressed key.
func PublicKeyToAddress(publicKey ecdsa.PublicKey) string {
	return hex.EncodeToString(crypto.FromECDSAPub(&publicKey))
}

// ToPublicKey converts an address back into its public key.
func ToPublicKey(address string) (*ecdsa.PublicKey, error) {
	b, err := hex.DecodeString(address)
	if err != nil {
		return nil, err
	}

	return crypto.UnmarshalPubkey(b)
}

// IsHex reports whether the string is a non-empty even length hex string.
func IsHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// ContractAddress returns a new random contract address.
func ContractAddress() string {
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// DeriveContractAddress returns a contract address derived from the seed
// values. The same seed always produces the same address.
func DeriveContractAddress(seed ...string) string {
	id := uuid.NewSHA1(contractSpace, []byte(strings.Join(seed, ":")))
	return "0x" + strings.ReplaceAll(id.String(), "-", "")
}

// =============================================================================

// digest returns the 32 bytes that are signed for the value.
func digest(value any) ([]byte, error) {
	data, err := Marshal(value)
	if err != nil {
		return nil, err
	}

	// Same bytes as decoding Hash(value) back out of hex.
	hash := sha256.Sum256(data)
	return hash[:], nil
}

// Marshal is the canonical JSON encoding of everything that is hashed or
// signed. HTML characters are not escaped.
func Marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
