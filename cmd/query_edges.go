package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var queryEdgesCmd = &cobra.Command{
	Use:   "query-edges",
	Short: "Lists edges, optionally filtered by endpoint node or type",
	Run: func(cmd *cobra.Command, args []string) {
		nodeID, _ := cmd.Flags().GetString("node")
		edgeType, _ := cmd.Flags().GetString("type")

		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.QueryEdges(context.Background(), command.QueryEdgesRequest{
				NodeID:   nodeID,
				EdgeType: edgeType,
			})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				for _, e := range resp.Edges {
					fmt.Printf("%s  %s --%s--> %s\n", e.ID, e.SourceID, e.Type, e.TargetID)
				}
				fmt.Printf("%d edge(s)\n", len(resp.Edges))
			})
			return nil
		})
	},
}

func init() {
	queryEdgesCmd.Flags().String("node", "", "Filter to edges touching this node id")
	queryEdgesCmd.Flags().String("type", "", "Filter to this edge type")
	rootCmd.AddCommand(queryEdgesCmd)
}
