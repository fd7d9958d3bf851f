package transaction

import (
	"encoding/json"
	"strconv"

	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/nft"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
)

// NFTCreate registers one or more unminted NFTs owned by the sender.
type NFTCreate struct {
	Items []nft.Spec
}

// NFTMint assigns contract addresses to unminted NFTs of the sender.
type NFTMint struct {
	IDs []string
}

// NFTTransfer moves an NFT to the recipient.
type NFTTransfer struct {
	ID string
}

// NFTBuy pays the listed price to the recipient, the seller, for its NFT.
type NFTBuy struct {
	ID     string
	Price  float64
	Seller nft.Seller
}

// NFTListForSale opens a marketplace listing for an NFT of the sender.
type NFTListForSale struct {
	ID     string
	Price  float64
	Seller nft.Seller
}

// NFTBurn removes an NFT of the sender from the chain.
type NFTBurn struct {
	ID string
}

// =============================================================================

type nftRef struct {
	ID string `json:"id"`
}

type mintRef struct {
	IDs []string `json:"ids"`
}

type saleRef struct {
	ID     string     `json:"id"`
	Price  float64    `json:"price"`
	Seller nft.Seller `json:"seller"`
}

func decodeNFT(action string, data json.RawMessage) (Payload, error) {
	switch action {
	case ActionCreate:
		var items []nft.Spec
		if err := decodeField("nft", data, &items); err != nil {
			return nil, err
		}
		return NFTCreate{Items: items}, nil

	case ActionMint:
		var ref mintRef
		if err := decodeField("nft", data, &ref); err != nil {
			return nil, err
		}
		return NFTMint{IDs: ref.IDs}, nil

	case ActionTransfer, ActionBurn:
		var ref nftRef
		if err := decodeField("nft", data, &ref); err != nil {
			return nil, err
		}
		if action == ActionTransfer {
			return NFTTransfer{ID: ref.ID}, nil
		}
		return NFTBurn{ID: ref.ID}, nil

	case ActionBuy, ActionListForSale:
		var ref saleRef
		if err := decodeField("nft", data, &ref); err != nil {
			return nil, err
		}
		if action == ActionBuy {
			return NFTBuy{ID: ref.ID, Price: ref.Price, Seller: ref.Seller}, nil
		}
		return NFTListForSale{ID: ref.ID, Price: ref.Price, Seller: ref.Seller}, nil
	}

	return nil, unknownAction(TypeNFT, action)
}

// =============================================================================

// Type implements the Payload interface.
func (NFTCreate) Type() string { return TypeNFT }

// Action implements the Payload interface.
func (NFTCreate) Action() string { return ActionCreate }

func (p NFTCreate) wire() wireFields {
	return wireFields{Amount: len(p.Items), NFT: p.Items}
}

func (p NFTCreate) signed(from string, to string) object {
	return object{{"wallet", from}, {"nft", p.Items}, {"amount", len(p.Items)}, {"type", TypeNFT}, {"action", ActionCreate}}
}

func (p NFTCreate) validate(tx Tx, db *database.Database, now int64) error {
	if len(p.Items) == 0 {
		return database.NewValidationError("invalid amount specified")
	}

	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}
	if sender.Coins-NFTCreationFee < MinRemaining {
		return database.NewValidationError("invalid balance for transaction")
	}

	seen := make(map[string]bool, len(p.Items))
	for _, item := range p.Items {
		if err := item.Validate(); err != nil {
			return invalid(err)
		}
		if item.Creator != tx.From || item.Owner != tx.From {
			return database.NewValidationError("only the sender can create and own new assets")
		}

		id := item.Fingerprint()
		if seen[id] || db.NFTs().Exists(id) {
			return invalid(nft.ErrExists)
		}
		seen[id] = true
	}

	return tx.verify()
}

func (p NFTCreate) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	for _, item := range p.Items {
		n := nft.New(item)
		if err := db.NFTs().Add(n); err != nil {
			return invalid(err)
		}
		sender.UpdateUnmintedNFTs(n.ID, true)
	}

	return nil
}

// =============================================================================

// Type implements the Payload interface.
func (NFTMint) Type() string { return TypeNFT }

// Action implements the Payload interface.
func (NFTMint) Action() string { return ActionMint }

func (p NFTMint) wire() wireFields {
	return wireFields{Amount: len(p.IDs), NFT: mintRef{IDs: p.IDs}}
}

func (p NFTMint) signed(from string, to string) object {
	return object{{"wallet", from}, {"nft", mintRef{IDs: p.IDs}}, {"amount", len(p.IDs)}, {"type", TypeNFT}, {"action", ActionMint}}
}

func (p NFTMint) validate(tx Tx, db *database.Database, now int64) error {
	if len(p.IDs) == 0 {
		return database.NewValidationError("invalid amount specified")
	}
	if _, err := db.Account(tx.From); err != nil {
		return err
	}

	seen := make(map[string]bool, len(p.IDs))
	for i, id := range p.IDs {
		n, err := db.NFT(id)
		if err != nil {
			return err
		}
		if seen[n.ID] {
			return database.NewValidationError("asset %s is listed more than once", id)
		}
		seen[n.ID] = true

		if err := n.Clone().Mint(tx.From, mintAddress(tx, i)); err != nil {
			return invalid(err)
		}
	}

	return tx.verify()
}

func (p NFTMint) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	for i, id := range p.IDs {
		n, err := db.NFT(id)
		if err != nil {
			return err
		}

		if err := n.Mint(tx.From, mintAddress(tx, i)); err != nil {
			return invalid(err)
		}
		db.NFTs().Minted(n)

		sender.UpdateUnmintedNFTs(n.ID, false)
		sender.UpdateNFTs(n.ID, true)
	}

	return nil
}

// mintAddress derives the contract address of the i'th NFT minted by the
// transaction. Every node derives the same address.
func mintAddress(tx Tx, i int) string {
	return signature.DeriveContractAddress(tx.ID, strconv.Itoa(i))
}

// =============================================================================

// Type implements the Payload interface.
func (NFTTransfer) Type() string { return TypeNFT }

// Action implements the Payload interface.
func (NFTTransfer) Action() string { return ActionTransfer }

func (p NFTTransfer) wire() wireFields {
	return wireFields{Amount: 1, NFT: nftRef{ID: p.ID}}
}

func (p NFTTransfer) signed(from string, to string) object {
	return object{{"wallet", from}, {"recipient", to}, {"nft", nftRef{ID: p.ID}}, {"amount", 1}, {"type", TypeNFT}, {"action", ActionTransfer}}
}

func (p NFTTransfer) validate(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}
	if sender.Address == recipient.Address {
		return database.NewValidationError("you can not send assets to the same wallet")
	}

	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}
	if err := n.Clone().Transfer(tx.From, tx.To); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p NFTTransfer) execute(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}

	if err := n.Transfer(tx.From, tx.To); err != nil {
		return invalid(err)
	}
	moveNFT(n, sender, recipient)

	return nil
}

// =============================================================================

// Type implements the Payload interface.
func (NFTBuy) Type() string { return TypeNFT }

// Action implements the Payload interface.
func (NFTBuy) Action() string { return ActionBuy }

func (p NFTBuy) wire() wireFields {
	return wireFields{Amount: 1, NFT: saleRef{ID: p.ID, Price: p.Price, Seller: p.Seller}}
}

func (p NFTBuy) signed(from string, to string) object {
	ref := saleRef{ID: p.ID, Price: p.Price, Seller: p.Seller}
	return object{{"wallet", from}, {"recipient", to}, {"nft", ref}, {"amount", 1}, {"type", TypeNFT}, {"action", ActionBuy}}
}

func (p NFTBuy) validate(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}
	if sender.Address == recipient.Address {
		return database.NewValidationError("you can not buy assets from the same wallet")
	}

	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}
	if n.Marketplace == nil {
		return invalid(nft.ErrNotForSale)
	}
	if p.Seller.Owner != tx.To || n.Owner != tx.To {
		return database.NewValidationError("only the owner of this asset can trade it")
	}
	if p.Seller.Name == "" || p.Seller.URL == "" || p.Seller.NFTSaleID == "" {
		return invalid(nft.ErrSeller)
	}
	if sender.Coins <= p.Price {
		return database.NewValidationError("insufficient balance for transaction")
	}
	if err := n.CheckBuy(p.Seller, p.Price); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p NFTBuy) execute(tx Tx, db *database.Database, now int64) error {
	sender, recipient, err := parties(tx, db)
	if err != nil {
		return err
	}

	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}

	if err := n.Buy(tx.From, p.Seller, p.Price); err != nil {
		return invalid(err)
	}
	if err := sender.UpdateCoins(-p.Price); err != nil {
		return invalid(err)
	}
	if err := recipient.UpdateCoins(p.Price); err != nil {
		return invalid(err)
	}
	moveNFT(n, recipient, sender)

	return nil
}

// =============================================================================

// Type implements the Payload interface.
func (NFTListForSale) Type() string { return TypeNFT }

// Action implements the Payload interface.
func (NFTListForSale) Action() string { return ActionListForSale }

func (p NFTListForSale) wire() wireFields {
	return wireFields{Amount: 1, NFT: saleRef{ID: p.ID, Price: p.Price, Seller: p.Seller}}
}

func (p NFTListForSale) signed(from string, to string) object {
	return object{{"wallet", from}, {"nft", nftRef{ID: p.ID}}, {"amount", 1}, {"price", p.Price}, {"seller", p.Seller}, {"type", TypeNFT}, {"action", ActionListForSale}}
}

func (p NFTListForSale) validate(tx Tx, db *database.Database, now int64) error {
	if _, err := db.Account(tx.From); err != nil {
		return err
	}

	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}
	if n.Marketplace != nil {
		return database.NewValidationError("asset is already listed for sale")
	}
	if n.Locked {
		return invalid(nft.ErrLocked)
	}
	if err := n.Clone().ListForSale(tx.From, p.Price, p.Seller, saleID(tx)); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

func (p NFTListForSale) execute(tx Tx, db *database.Database, now int64) error {
	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}

	return invalid(n.ListForSale(tx.From, p.Price, p.Seller, saleID(tx)))
}

// saleID derives the id of the listing opened by the transaction.
func saleID(tx Tx) string {
	return signature.DeriveContractAddress(tx.ID, "sale")
}

// =============================================================================

// Type implements the Payload interface.
func (NFTBurn) Type() string { return TypeNFT }

// Action implements the Payload interface.
func (NFTBurn) Action() string { return ActionBurn }

func (p NFTBurn) wire() wireFields {
	return wireFields{Amount: 1, NFT: nftRef{ID: p.ID}}
}

func (p NFTBurn) signed(from string, to string) object {
	return object{{"wallet", from}, {"nft", nftRef{ID: p.ID}}, {"amount", 1}, {"type", TypeNFT}, {"action", ActionBurn}}
}

func (p NFTBurn) validate(tx Tx, db *database.Database, now int64) error {
	if _, err := db.Account(tx.From); err != nil {
		return err
	}

	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}
	if err := n.Burn(tx.From); err != nil {
		return invalid(err)
	}

	return tx.verify()
}

// execute removes the NFT from the registry and from the sender entirely.
func (p NFTBurn) execute(tx Tx, db *database.Database, now int64) error {
	sender, err := db.Account(tx.From)
	if err != nil {
		return err
	}

	n, err := db.NFT(p.ID)
	if err != nil {
		return err
	}
	if err := n.Burn(tx.From); err != nil {
		return invalid(err)
	}

	db.NFTs().Remove(n)
	sender.UpdateNFTs(n.ID, false)
	sender.UpdateUnmintedNFTs(n.ID, false)

	return nil
}

// =============================================================================

// moveNFT moves the NFT between the matching sets of the two accounts.
func moveNFT(n *nft.NFT, from *database.Account, to *database.Account) {
	if n.IsMinted {
		from.UpdateNFTs(n.ID, false)
		to.UpdateNFTs(n.ID, true)
		return
	}

	from.UpdateUnmintedNFTs(n.ID, false)
	to.UpdateUnmintedNFTs(n.ID, true)
}
