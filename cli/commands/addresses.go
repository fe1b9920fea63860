package commands

import (
	"fmt"

	"github.com/rachelyongies/Lockedin-sub005/pkg/rpcclient"
	"github.com/spf13/cobra"
)

func Addresses(rpcClient rpcclient.Client) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "addresses",
		Short: "Show the daemon's settlement address on every configured chain",
		Run: func(c *cobra.Command, args []string) {
			addrs, err := rpcClient.Addresses()
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}
			for chain, addr := range addrs {
				fmt.Printf("%s\t%s\n", chain, addr)
			}
		},
	}
	return cmd
}
