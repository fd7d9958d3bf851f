package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/integr8/blockchain/foundation/blockchain/transaction"
	"github.com/spf13/cobra"
)

var (
	to      string
	amount  float64
	unstake bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Transfer coins to another wallet",
	Run: func(cmd *cobra.Command, args []string) {
		submit("/api/coin/transfer", to, transaction.CoinTransfer{Amount: amount})
	},
}

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Stake or unstake coins",
	Run: func(cmd *cobra.Command, args []string) {
		if unstake {
			submit("/api/coin/unstake", "", transaction.CoinUnstake{Amount: amount})
			return
		}
		submit("/api/coin/stake", "", transaction.CoinStake{Amount: amount})
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Coins to send.")
	sendCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(stakeCmd)
	stakeCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Coins to stake.")
	stakeCmd.Flags().BoolVar(&unstake, "unstake", false, "Release staked coins instead.")
}

// submit signs the payload and posts it to the route.
func submit(route string, to string, payload transaction.Payload) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	from := signature.PublicKeyToAddress(privateKey.PublicKey)

	nonce, err := nextNonce(from)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := transaction.Sign(privateKey, nonce, to, payload)
	if err != nil {
		log.Fatal(err)
	}

	req := map[string]any{
		"wallet":    from,
		"amount":    amount,
		"signature": tx.Signature,
	}
	if to != "" {
		req["recipient"] = to
	}

	data, err := json.Marshal(req)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(url+route, "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var result struct {
		Message     string         `json:"message"`
		Transaction transaction.Tx `json:"transaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("%d: %s", resp.StatusCode, result.Message)
	}

	fmt.Println(result.Message)
	fmt.Println("tx:", result.Transaction.ID)
}

// nextNonce asks the node for the nonce the next transaction of the wallet
// must be signed with.
func nextNonce(address string) (uint64, error) {
	resp, err := http.Get(fmt.Sprintf("%s/api/coin/%s/nonce", url, address))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var result struct {
		Message string `json:"message"`
		Nonce   uint64 `json:"nonce"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%d: %s", resp.StatusCode, result.Message)
	}

	return result.Nonce, nil
}
