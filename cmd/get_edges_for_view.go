package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var getEdgesForViewCmd = &cobra.Command{
	Use:   "get-edges-for-view <parent-id>",
	Short: "Lists the edges relevant to one hierarchy view (spec §6)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.GetEdgesForView(context.Background(), command.GetEdgesForViewRequest{ParentID: args[0]})
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
	rootCmd.AddCommand(getEdgesForViewCmd)
}
