package state

import (
	"github.com/integr8/blockchain/foundation/blockchain/chain"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/genesis"
	"github.com/integr8/blockchain/foundation/blockchain/nft"
	"github.com/integr8/blockchain/foundation/blockchain/peer"
	"github.com/integr8/blockchain/foundation/blockchain/token"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// PageSize is the number of blocks returned per page.
const PageSize = 5

// Host returns the private host of this node.
func (s *State) Host() string {
	return s.host
}

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// =============================================================================

// QueryBlocks returns a copy of the chain.
func (s *State) QueryBlocks() []chain.Block {
	return s.chain.Blocks()
}

// QueryChainLength returns the number of blocks including genesis.
func (s *State) QueryChainLength() int {
	return s.chain.Length()
}

// QueryLatestBlock returns the last block of the chain.
func (s *State) QueryLatestBlock() chain.Block {
	return s.chain.Latest()
}

// QueryBlocksPage returns the blocks of the page, newest first.
func (s *State) QueryBlocksPage(page int) []chain.Block {
	return s.chain.Page(page, PageSize)
}

// QueryBlockByHash returns the block with the hash.
func (s *State) QueryBlockByHash(hash string) (chain.Block, error) {
	block, err := s.chain.BlockByHash(hash)
	if err != nil {
		return chain.Block{}, database.NewStateError("block %s not found", hash)
	}
	return block, nil
}

// QueryTransaction returns a transaction included in the chain and the
// block holding it.
func (s *State) QueryTransaction(id string) (transaction.Tx, chain.Block, error) {
	tx, block, err := s.chain.TransactionByID(id)
	if err != nil {
		return transaction.Tx{}, chain.Block{}, database.NewStateError("transaction %s not found", id)
	}
	return tx, block, nil
}

// =============================================================================

// QueryMempool returns a copy of the mempool keyed by transaction id.
func (s *State) QueryMempool() map[string]transaction.Tx {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// =============================================================================

// QueryAssets returns the snapshot of the account.
func (s *State) QueryAssets(address string) (database.Assets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Assets(address)
}

// QueryAccounts returns a copy of every account.
func (s *State) QueryAccounts() map[string]database.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.CopyAccounts()
}

// QueryToken returns a copy of the token contract.
func (s *State) QueryToken(ca string) (token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.db.Token(ca)
	if err != nil {
		return token.Token{}, err
	}
	return *t.Clone(), nil
}

// QueryNFT returns a copy of the NFT with the fingerprint or contract
// address.
func (s *State) QueryNFT(key string) (nft.NFT, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.db.NFT(key)
	if err != nil {
		return nft.NFT{}, err
	}
	return *n.Clone(), nil
}

// =============================================================================

// KnownPeers returns the peers this node knows about, excluding itself.
func (s *State) KnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer adds the peer, reporting whether it was unknown.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}
	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer removes the peer from the set of known peers.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}

// Status returns the status of this node.
func (s *State) Status() peer.PeerStatus {
	latest := s.chain.Latest()

	return peer.PeerStatus{
		Host:            s.host,
		LatestBlockHash: latest.Hash,
		LatestHeight:    latest.Height,
		ChainLength:     s.chain.Length(),
		MempoolCount:    s.mempool.Count(),
		KnownPeers:      s.KnownPeers(),
	}
}
