package nft

import "errors"

// ErrNotFound is returned when an NFT is not in the registry.
var ErrNotFound = errors.New("this NFT does not exist")

// ErrExists is returned when content has already been created.
var ErrExists = errors.New("this NFT has already been created")

// Registry indexes every NFT by its fingerprint and, once minted, by its
// contract address.
type Registry struct {
	byID map[string]*NFT
	byCA map[string]string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*NFT),
		byCA: make(map[string]string),
	}
}

// Add registers a newly created NFT.
func (r *Registry) Add(n *NFT) error {
	if _, exists := r.byID[n.ID]; exists {
		return ErrExists
	}

	r.byID[n.ID] = n
	if n.CA != "" {
		r.byCA[n.CA] = n.ID
	}

	return nil
}

// Exists reports whether the fingerprint is known.
func (r *Registry) Exists(id string) bool {
	_, exists := r.byID[id]
	return exists
}

// Lookup finds an NFT by contract address or fingerprint.
func (r *Registry) Lookup(key string) (*NFT, error) {
	if id, exists := r.byCA[key]; exists {
		key = id
	}

	n, exists := r.byID[key]
	if !exists {
		return nil, ErrNotFound
	}

	return n, nil
}

// Minted indexes the contract address assigned to the NFT.
func (r *Registry) Minted(n *NFT) {
	r.byCA[n.CA] = n.ID
}

// Remove drops the NFT from both indexes.
func (r *Registry) Remove(n *NFT) {
	delete(r.byID, n.ID)
	if n.CA != "" {
		delete(r.byCA, n.CA)
	}
}

// Count returns the number of NFTs registered.
func (r *Registry) Count() int {
	return len(r.byID)
}

// Copy returns every registered NFT.
func (r *Registry) Copy() []*NFT {
	nfts := make([]*NFT, 0, len(r.byID))
	for _, n := range r.byID {
		nfts = append(nfts, n.Clone())
	}
	return nfts
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for id, n := range r.byID {
		c.byID[id] = n.Clone()
	}
	for ca, id := range r.byCA {
		c.byCA[ca] = id
	}
	return c
}
