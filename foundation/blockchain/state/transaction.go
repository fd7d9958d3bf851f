package state

import (
	"time"

	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// SubmitWalletTransaction accepts a signed payload from a wallet. The
// transaction takes the next nonce of the sender, so when the sender already
// has a pending transaction the new one supersedes it. The transaction is
// validated against the current state, added to the mempool, shared with the
// peers and mining is signaled.
func (s *State) SubmitWalletTransaction(from string, to string, payload transaction.Payload, sig string) (transaction.Tx, error) {
	var tx transaction.Tx
	var err error

	switch existing, found := s.mempool.Existing(from); {
	case found:
		tx, err = transaction.Update(existing, from, to, payload, sig)
	default:
		tx, err = transaction.New(s.accountNonce(from), from, to, payload, sig)
	}
	if err != nil {
		return transaction.Tx{}, err
	}

	if err := s.submit(tx); err != nil {
		return transaction.Tx{}, err
	}

	return tx, nil
}

// QueryNextNonce returns the nonce the next wallet transaction of the
// address must be signed with.
func (s *State) QueryNextNonce(address string) uint64 {
	if existing, found := s.mempool.Existing(address); found {
		return existing.Nonce + 1
	}
	return s.accountNonce(address)
}

// accountNonce returns the next unused nonce of the account, zero when the
// account does not exist.
func (s *State) accountNonce(address string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, err := s.db.Account(address)
	if err != nil {
		return 0
	}
	return account.Nonce
}

// IssueReward queues the starting balance for a new wallet.
func (s *State) IssueReward(address string) (transaction.Tx, error) {
	tx, err := transaction.NewReward(address)
	if err != nil {
		return transaction.Tx{}, err
	}

	if err := s.submit(tx); err != nil {
		return transaction.Tx{}, err
	}

	return tx, nil
}

// ProcessPeerTransaction adds a transaction received from a peer to the
// mempool. It is validated when mined, not here.
func (s *State) ProcessPeerTransaction(tx transaction.Tx) error {
	if s.chain.HasTransaction(tx.ID) {
		s.evHandler("state: ProcessPeerTransaction: tx[%s]: already in chain", tx.ID)
		return nil
	}

	n, err := s.mempool.Upsert(tx)
	if err != nil {
		return err
	}

	s.evHandler("state: ProcessPeerTransaction: tx[%s]: mempool[%d]", tx, n)

	s.signalMining()

	return nil
}

// =============================================================================

func (s *State) submit(tx transaction.Tx) error {
	s.evHandler("state: submit: started: tx[%s]", tx)
	defer s.evHandler("state: submit: completed")

	s.mu.RLock()
	{
		if err := tx.Validate(s.db, time.Now().UnixMilli()); err != nil {
			s.mu.RUnlock()
			return err
		}
	}
	s.mu.RUnlock()

	n, err := s.mempool.Upsert(tx)
	if err != nil {
		return err
	}

	s.evHandler("state: submit: mempool[%d]", n)

	s.shareTx(tx)
	s.signalMining()

	return nil
}
