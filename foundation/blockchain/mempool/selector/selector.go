// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"
	"sort"

	"github.com/integr8/blockchain/foundation/blockchain/transaction"
)

// List of different select strategies.
const (
	StrategyLatest  = "latest"
	StrategyHighest = "highest"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyLatest:  latestSelect,
	StrategyHighest: highestSelect,
}

// Func defines a function that takes a mempool of transactions grouped by
// sender and selects howMany of them. All selector functions MUST return at
// most one transaction per sender and nonce. Receiving -1 for howMany must
// return all the selected transactions.
type Func func(transactions map[string][]transaction.Tx, howMany int) []transaction.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// latestSelect keeps, for every sender and nonce, the transaction with the
// latest timestamp. The result is ordered by id.
var latestSelect = func(m map[string][]transaction.Tx, howMany int) []transaction.Tx {
	var final []transaction.Tx

	for _, txs := range m {
		byNonce := make(map[uint64]transaction.Tx)
		for _, tx := range txs {
			cur, exists := byNonce[tx.Nonce]
			if !exists || newer(tx, cur) {
				byNonce[tx.Nonce] = tx
			}
		}

		for _, tx := range byNonce {
			final = append(final, tx)
		}
	}

	return limit(final, howMany)
}

// highestSelect keeps only the transaction with the highest nonce for every
// sender, breaking ties on the latest timestamp. The result is ordered by id.
var highestSelect = func(m map[string][]transaction.Tx, howMany int) []transaction.Tx {
	var final []transaction.Tx

	for key := range m {
		txs := m[key]
		if len(txs) == 0 {
			continue
		}

		sort.Sort(byNonce(txs))

		best := txs[len(txs)-1]
		for _, tx := range txs {
			if tx.Nonce == best.Nonce && newer(tx, best) {
				best = tx
			}
		}

		final = append(final, best)
	}

	return limit(final, howMany)
}

// newer reports whether a replaces b for the same nonce.
func newer(a transaction.Tx, b transaction.Tx) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.ID > b.ID
}

// limit orders the transactions by id and returns the first howMany.
func limit(txs []transaction.Tx, howMany int) []transaction.Tx {
	sort.Sort(byID(txs))

	if howMany >= 0 && len(txs) > howMany {
		txs = txs[:howMany]
	}

	if txs == nil {
		return []transaction.Tx{}
	}

	return txs
}

// =============================================================================

// byNonce provides sorting support by the transaction nonce value.
type byNonce []transaction.Tx

// Len returns the number of transactions in the list.
func (bn byNonce) Len() int {
	return len(bn)
}

// Less helps to sort the list by nonce in ascending order to keep the
// transactions in the right order of processing.
func (bn byNonce) Less(i, j int) bool {
	return bn[i].Nonce < bn[j].Nonce
}

// Swap moves transactions in the order of the nonce value.
func (bn byNonce) Swap(i, j int) {
	bn[i], bn[j] = bn[j], bn[i]
}

// =============================================================================

// byID provides sorting support by the transaction id, the order
// transactions are committed to a block.
type byID []transaction.Tx

// Len returns the number of transactions in the list.
func (bi byID) Len() int {
	return len(bi)
}

// Less helps to sort the list by id in ascending order.
func (bi byID) Less(i, j int) bool {
	return bi[i].ID < bi[j].ID
}

// Swap moves transactions in the order of the id value.
func (bi byID) Swap(i, j int) {
	bi[i], bi[j] = bi[j], bi[i]
}
