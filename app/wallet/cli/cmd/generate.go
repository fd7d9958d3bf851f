package cmd

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/integr8/blockchain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair from a mnemonic",
	Run:   generateRun,
}

var recoverPhrase string

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&recoverPhrase, "mnemonic", "m", "", "Recover the key from an existing mnemonic.")
}

func generateRun(cmd *cobra.Command, args []string) {
	mnemonic := recoverPhrase
	if mnemonic == "" {
		var err error
		if mnemonic, err = signature.NewMnemonic(); err != nil {
			log.Fatal(err)
		}
	}

	privateKey, err := signature.KeyFromMnemonic(mnemonic)
	if err != nil {
		log.Fatal(err)
	}

	if err := crypto.SaveECDSA(getPrivateKeyPath(), privateKey); err != nil {
		log.Fatal(err)
	}

	fmt.Println("mnemonic:", mnemonic)
	fmt.Println("address: ", signature.PublicKeyToAddress(privateKey.PublicKey))
}
