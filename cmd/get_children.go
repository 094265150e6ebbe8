package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var getChildrenCmd = &cobra.Command{
	Use:   "get-children <parent-id>",
	Short: "Lists the direct children of a node",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.GetChildren(context.Background(), command.GetChildrenRequest{ParentID: args[0]})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				for _, n := range resp.Children {
					kind := "group"
					if n.IsItem {
						kind = "item"
					}
					fmt.Printf("%s  [%s]  %s\n", n.ID, kind, n.Title)
				}
				fmt.Printf("%d child(ren)\n", len(resp.Children))
			})
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(getChildrenCmd)
}
