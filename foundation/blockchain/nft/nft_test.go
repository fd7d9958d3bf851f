package nft_test

import (
	"errors"
	"testing"

	"github.com/integr8/blockchain/foundation/blockchain/nft"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	alice = "04aa"
	bob   = "04bb"
)

func spec() nft.Spec {
	return nft.Spec{
		Creator:     alice,
		Owner:       alice,
		Name:        "Sunrise",
		URL:         "https://example.com/sunrise.png",
		Description: "first light",
		Position:    1,
		TotalSupply: 1,
	}
}

func TestFingerprint(t *testing.T) {
	s := spec()
	id := s.Fingerprint()

	s.Owner = bob
	if s.Fingerprint() != id {
		t.Fatalf("Should not include the owner in the fingerprint.")
	}

	s.Name = "Sunset"
	if s.Fingerprint() == id {
		t.Fatalf("Should include the name in the fingerprint.")
	}

	if err := (nft.Spec{Creator: alice}).Validate(); !errors.Is(err, nft.ErrInvalidAsset) {
		t.Fatalf("Should reject incomplete content: %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	t.Log("Given the need to mint, list, buy and burn an NFT.")
	{
		n := nft.New(spec())

		if err := n.Mint(bob, "0x01"); !errors.Is(err, nft.ErrNotOwner) {
			t.Fatalf("\t%s\tShould only let the owner mint: %v", failed, err)
		}
		if err := n.Mint(alice, "0x01"); err != nil {
			t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
		}
		if err := n.Mint(alice, "0x02"); !errors.Is(err, nft.ErrAlreadyMinted) {
			t.Fatalf("\t%s\tShould not mint twice: %v", failed, err)
		}
		if n.Key() != "0x01" {
			t.Fatalf("\t%s\tShould key a minted NFT by contract address.", failed)
		}
		t.Logf("\t%s\tShould be able to mint.", success)

		seller := nft.Seller{Name: "alice", URL: "https://alice.example"}
		if err := n.ListForSale(alice, 5, seller, "0xsale"); err != nil {
			t.Fatalf("\t%s\tShould be able to list: %v", failed, err)
		}
		if n.Marketplace == nil || n.Marketplace.Currency != nft.Currency || n.Marketplace.Seller.Owner != alice {
			t.Fatalf("\t%s\tShould record the listing.", failed)
		}
		t.Logf("\t%s\tShould be able to list for sale.", success)

		listed := n.Marketplace.Seller
		if err := n.Buy(bob, listed, 4); !errors.Is(err, nft.ErrPrice) {
			t.Fatalf("\t%s\tShould reject the wrong price: %v", failed, err)
		}
		wrong := listed
		wrong.NFTSaleID = "0xother"
		if err := n.Buy(bob, wrong, 5); !errors.Is(err, nft.ErrSeller) {
			t.Fatalf("\t%s\tShould reject the wrong seller: %v", failed, err)
		}
		if err := n.Buy(bob, listed, 5); err != nil {
			t.Fatalf("\t%s\tShould be able to buy: %v", failed, err)
		}
		if n.Owner != bob || n.Marketplace != nil {
			t.Fatalf("\t%s\tShould transfer and clear the listing.", failed)
		}
		t.Logf("\t%s\tShould be able to buy.", success)

		if err := n.Burn(alice); !errors.Is(err, nft.ErrNotOwner) {
			t.Fatalf("\t%s\tShould only let the owner burn: %v", failed, err)
		}
		if err := n.Burn(bob); err != nil {
			t.Fatalf("\t%s\tShould let the owner burn: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to burn.", success)
	}
}

func TestRegistry(t *testing.T) {
	t.Log("Given the need to index NFTs by fingerprint and contract address.")
	{
		reg := nft.NewRegistry()
		n := nft.New(spec())

		if err := reg.Add(n); err != nil {
			t.Fatalf("\t%s\tShould be able to add: %v", failed, err)
		}
		if err := reg.Add(nft.New(spec())); !errors.Is(err, nft.ErrExists) {
			t.Fatalf("\t%s\tShould reject duplicate content: %v", failed, err)
		}
		t.Logf("\t%s\tShould add by fingerprint.", success)

		if err := n.Mint(alice, "0xca"); err != nil {
			t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
		}
		reg.Minted(n)

		byCA, err := reg.Lookup("0xca")
		if err != nil || byCA.ID != n.ID {
			t.Fatalf("\t%s\tShould find by contract address: %v", failed, err)
		}
		byID, err := reg.Lookup(n.ID)
		if err != nil || byID.CA != "0xca" {
			t.Fatalf("\t%s\tShould find by fingerprint: %v", failed, err)
		}
		t.Logf("\t%s\tShould look up by either key.", success)

		clone := reg.Clone()
		reg.Remove(n)
		if _, err := reg.Lookup("0xca"); !errors.Is(err, nft.ErrNotFound) {
			t.Fatalf("\t%s\tShould remove from both indexes: %v", failed, err)
		}
		if _, err := clone.Lookup("0xca"); err != nil {
			t.Fatalf("\t%s\tShould keep the clone independent: %v", failed, err)
		}
		t.Logf("\t%s\tShould remove burned NFTs.", success)
	}
}
