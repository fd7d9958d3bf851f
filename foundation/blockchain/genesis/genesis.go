// Package genesis maintains access to the genesis file and the constants
// that define the first block of the chain.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Values for the canonical genesis block. Every node must agree on these.
const (
	Timestamp int64 = 1726483691847
	LastHash        = "INTEGR8 GENESIS BLOCK LAST HASH"
	Hash            = "INTEGR8 GENESIS BLOCK HASH"
)

// RewardAddress is the sender of system issued coins.
const RewardAddress = "*ITG-authorized-reward*"

// StartingBalance is the number of coins issued to a newly created wallet.
const StartingBalance float64 = 100

// Logo represents the chain logo in different formats.
type Logo struct {
	PNG string `json:"png"`
	SVG string `json:"svg"`
}

// Metadata describes the chain.
type Metadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Logo        Logo   `json:"logo"`
	Description string `json:"description"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date     time.Time          `json:"date"`
	Metadata Metadata           `json:"metadata"`
	Balances map[string]float64 `json:"balances"` // Accounts funded before the first block.
}

// =============================================================================

// Default returns the genesis values used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date: time.UnixMilli(Timestamp).UTC(),
		Metadata: Metadata{
			Name:   "INTEGR8",
			Symbol: "ITG",
			Logo:   Logo{PNG: "ITG", SVG: "ITG"},
		},
		Balances: make(map[string]float64),
	}
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if genesis.Balances == nil {
		genesis.Balances = make(map[string]float64)
	}

	return genesis, nil
}
