package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/database"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the assets of the wallet",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	address := signature.PublicKeyToAddress(privateKey.PublicKey)

	resp, err := http.Get(fmt.Sprintf("%s/api/coin/%s", url, address))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var result struct {
		Message     string          `json:"message"`
		Assets      database.Assets `json:"assets"`
		MarketValue float64         `json:"marketValue"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("%d: %s", resp.StatusCode, result.Message)
	}

	fmt.Println("coins: ", result.Assets.Coins)
	fmt.Println("staked:", result.Assets.StakedCoins)
	for _, tb := range result.Assets.Tokens {
		fmt.Printf("token:  %+v\n", tb)
	}
	fmt.Println("value: ", result.MarketValue)
}
