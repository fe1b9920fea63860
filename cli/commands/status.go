package commands

import (
	"encoding/json"
	"fmt"

	"github.com/rachelyongies/Lockedin-sub005/pkg/rpcclient"
	"github.com/spf13/cobra"
)

func Status(rpcClient rpcclient.Client) *cobra.Command {
	var swapID string

	var cmd = &cobra.Command{
		Use:   "status",
		Short: "Show one swap's full record",
		Run: func(c *cobra.Command, args []string) {
			view, err := rpcClient.SwapStatus(swapID)
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}
			out, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to marshal response: %w", err))
			}
			fmt.Println(string(out))
		},
	}

	cmd.Flags().StringVar(&swapID, "id", "", "Swap id to look up")
	cmd.MarkFlagRequired("id")
	return cmd
}
