package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rachelyongies/Lockedin-sub005/pkg/rpcclient"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/spf13/cobra"
)

func List(rpcClient rpcclient.Client) *cobra.Command {
	var states []string

	var cmd = &cobra.Command{
		Use:   "list",
		Short: "List swaps, optionally filtered by state",
		Run: func(c *cobra.Command, args []string) {
			filter := make([]swap.State, 0, len(states))
			for _, s := range states {
				filter = append(filter, swap.State(s))
			}
			views, err := rpcClient.ListSwaps(filter...)
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}
			if len(views) == 0 {
				fmt.Println("no swaps")
				return
			}
			for _, view := range views {
				line := fmt.Sprintf("%s\t%s\t%s %s -> %s %s",
					view.SwapID, view.State,
					view.SourceAmount, view.SourceChain,
					view.DestinationAmount, view.DestinationChain)
				switch view.State {
				case swap.StateCompleted:
					color.Green(line)
				case swap.StateFailed, swap.StateRefunded:
					color.Red(line)
				default:
					fmt.Println(line)
				}
			}
		},
	}

	cmd.Flags().StringSliceVar(&states, "state", nil, "Only show swaps in these states")
	return cmd
}
