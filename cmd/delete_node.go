package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var deleteNodeCmd = &cobra.Command{
	Use:     "delete-node <id>",
	Aliases: []string{"rm"},
	Short:   "Deletes a node and its incident edges",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.DeleteNode(context.Background(), command.DeleteNodeRequest{ID: args[0]})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				fmt.Printf("Deleted node %s: %t\n", args[0], resp.Deleted)
			})
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteNodeCmd)
}
