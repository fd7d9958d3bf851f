// This program is a command line wallet for the INTEGR8 node.
package main

import "github.com/integr8/blockchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
