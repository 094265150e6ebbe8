package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var contextForTaskCmd = &cobra.Command{
	Use:   "context-for-task <node-id>",
	Short: "Expands the weighted neighborhood of a node for task context (spec §4.8, §6)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		budget, _ := cmd.Flags().GetInt("budget")
		maxHops, _ := cmd.Flags().GetInt("max-hops")
		maxCost, _ := cmd.Flags().GetFloat64("max-cost")

		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.ContextForTask(context.Background(), command.ContextForTaskRequest{
				NodeID:  args[0],
				Budget:  budget,
				MaxHops: maxHops,
				MaxCost: maxCost,
			})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				for _, r := range resp.Results {
					fmt.Printf("%2d  %-20s  dist=%.3f  relevance=%.3f  hops=%d\n", r.Rank, r.NodeID, r.Distance, r.Relevance, r.Hops)
				}
				fmt.Printf("%d result(s)\n", len(resp.Results))
			})
			return nil
		})
	},
}

func init() {
	contextForTaskCmd.Flags().Int("budget", 0, "Maximum number of results to return (default: 20)")
	contextForTaskCmd.Flags().Int("max-hops", 0, "Maximum graph hops to traverse (default: 6)")
	contextForTaskCmd.Flags().Float64("max-cost", 0, "Maximum cumulative edge cost to traverse (default: 3.0)")
	rootCmd.AddCommand(contextForTaskCmd)
}
