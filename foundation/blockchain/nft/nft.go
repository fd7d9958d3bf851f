// Package nft implements the built in non fungible token contract and the
// registry that indexes every NFT known to the chain.
package nft

import (
	"errors"
	"maps"

	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

// Currency is the currency NFTs are listed for sale in.
const Currency = "DVR"

// Set of errors returned by the contract.
var (
	ErrNotOwner      = errors.New("wallet is not the owner of this asset")
	ErrAlreadyMinted = errors.New("this NFT is already minted")
	ErrLocked        = errors.New("this asset is locked")
	ErrFrozen        = errors.New("this asset is frozen")
	ErrPaused        = errors.New("asset is paused, asset can not be traded")
	ErrNotForSale    = errors.New("asset is not for sale")
	ErrSeller        = errors.New("invalid NFT seller details")
	ErrPrice         = errors.New("invalid amount specified for the buy")
	ErrInvalidAsset  = errors.New("invalid NFT asset")
)

// Spec is the content a creator provides for a new NFT.
type Spec struct {
	Creator     string `json:"creator"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	TotalSupply int    `json:"totalSupply"`
}

// Validate checks the item carries the required content.
func (s Spec) Validate() error {
	if s.Creator == "" || s.Owner == "" || s.Name == "" || s.URL == "" || s.Description == "" {
		return ErrInvalidAsset
	}
	if s.TotalSupply < 0 || s.Position < 0 {
		return ErrInvalidAsset
	}
	return nil
}

// Fingerprint returns the identity of the content. The owner is not part of
// the fingerprint since ownership changes over the life of the NFT.
func (s Spec) Fingerprint() string {
	return signature.Hash(s.Creator, s.Name, s.URL, s.Description, s.Position, s.TotalSupply)
}

// Seller identifies who listed an NFT for sale.
type Seller struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Owner     string `json:"owner,omitempty"`
	NFTSaleID string `json:"nftSaleId,omitempty"`
}

// Listing represents an open sale on the marketplace.
type Listing struct {
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
	Seller   Seller  `json:"seller"`
}

// NFT represents a single non fungible asset.
type NFT struct {
	ID          string            `json:"id"`
	CA          string            `json:"ca"`
	Creator     string            `json:"creator"`
	Owner       string            `json:"owner"`
	Name        string            `json:"name"`
	URL         string            `json:"url"`
	Description string            `json:"description"`
	Position    int               `json:"position"`
	TotalSupply int               `json:"totalSupply"`
	IsMinted    bool              `json:"isMinted"`
	Paused      bool              `json:"paused"`
	Frozen      bool              `json:"frozen"`
	Locked      bool              `json:"locked"`
	Features    map[string]string `json:"features"`
	Marketplace *Listing          `json:"marketplace"`
}

// New constructs an unminted NFT from the Spec.
func New(s Spec) *NFT {
	supply := s.TotalSupply
	if supply == 0 {
		supply = 1
	}

	return &NFT{
		ID:          s.Fingerprint(),
		Creator:     s.Creator,
		Owner:       s.Owner,
		Name:        s.Name,
		URL:         s.URL,
		Description: s.Description,
		Position:    s.Position,
		TotalSupply: supply,
		Features:    make(map[string]string),
	}
}

// Clone returns a deep copy of the NFT.
func (n *NFT) Clone() *NFT {
	c := *n
	c.Features = maps.Clone(n.Features)
	if n.Marketplace != nil {
		l := *n.Marketplace
		c.Marketplace = &l
	}
	return &c
}

// Key returns the contract address once minted, otherwise the fingerprint.
func (n *NFT) Key() string {
	if n.CA != "" {
		return n.CA
	}
	return n.ID
}

// Mint assigns the contract address to the NFT.
func (n *NFT) Mint(owner string, ca string) error {
	if err := n.onlyOwner(owner); err != nil {
		return err
	}
	if n.IsMinted {
		return ErrAlreadyMinted
	}
	if n.Locked {
		return ErrLocked
	}
	if n.Frozen {
		return ErrFrozen
	}

	n.CA = ca
	n.IsMinted = true

	return nil
}

// Transfer moves ownership of the NFT.
func (n *NFT) Transfer(from string, to string) error {
	if err := n.onlyOwner(from); err != nil {
		return err
	}
	if n.Paused {
		return ErrPaused
	}

	n.Owner = to
	return nil
}

// Burn checks the owner is allowed to destroy the NFT.
func (n *NFT) Burn(owner string) error {
	if err := n.onlyOwner(owner); err != nil {
		return err
	}
	if n.Locked {
		return ErrLocked
	}
	if n.Frozen {
		return ErrFrozen
	}
	return nil
}

// ListForSale opens a marketplace listing for the NFT.
func (n *NFT) ListForSale(owner string, price float64, seller Seller, saleID string) error {
	if err := n.onlyOwner(owner); err != nil {
		return err
	}
	if n.Paused {
		return ErrPaused
	}
	if price <= 0 {
		return errors.New("invalid price supplied")
	}
	if seller.Name == "" || seller.URL == "" {
		return errors.New("seller name and seller url are required")
	}

	seller.Owner = owner
	seller.NFTSaleID = saleID

	n.Marketplace = &Listing{
		Currency: Currency,
		Price:    price,
		Seller:   seller,
	}

	return nil
}

// CheckBuy reports whether the buyer can take the listing with the seller
// details and price provided.
func (n *NFT) CheckBuy(seller Seller, price float64) error {
	if n.Marketplace == nil {
		return ErrNotForSale
	}

	listed := n.Marketplace.Seller
	if err := n.onlyOwner(listed.Owner); err != nil {
		return err
	}
	if listed.Name != seller.Name || listed.URL != seller.URL || listed.Owner != seller.Owner || listed.NFTSaleID != seller.NFTSaleID {
		return ErrSeller
	}
	if n.Paused {
		return ErrPaused
	}
	if n.Marketplace.Price != price {
		return ErrPrice
	}

	return nil
}

// Buy transfers the NFT to the buyer and clears the listing.
func (n *NFT) Buy(buyer string, seller Seller, price float64) error {
	if err := n.CheckBuy(seller, price); err != nil {
		return err
	}

	if err := n.Transfer(n.Marketplace.Seller.Owner, buyer); err != nil {
		return err
	}

	n.Marketplace = nil
	return nil
}

// URI returns the public description of the NFT.
func (n *NFT) URI() map[string]any {
	return map[string]any{
		"ca":          n.CA,
		"owner":       n.Owner,
		"creator":     n.Creator,
		"name":        n.Name,
		"url":         n.URL,
		"description": n.Description,
		"paused":      n.Paused,
		"frozen":      n.Frozen,
		"locked":      n.Locked,
		"features":    n.Features,
		"marketplace": n.Marketplace,
	}
}

func (n *NFT) onlyOwner(owner string) error {
	if n.Owner != owner {
		return ErrNotOwner
	}
	return nil
}
