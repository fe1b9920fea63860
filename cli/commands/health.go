package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rachelyongies/Lockedin-sub005/pkg/rpcclient"
	"github.com/spf13/cobra"
)

func Health(rpcClient rpcclient.Client) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "health",
		Short: "Check that the daemon is up",
		Run: func(c *cobra.Command, args []string) {
			if _, err := rpcClient.Health(); err != nil {
				cobra.CheckErr(fmt.Errorf("daemon unreachable: %w", err))
			}
			color.Green("daemon is up")
		},
	}
	return cmd
}
