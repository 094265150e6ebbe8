package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var updateNodeCmd = &cobra.Command{
	Use:   "update-node <id>",
	Short: "Updates fields on an existing node",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		parentID, _ := cmd.Flags().GetString("parent")
		contentType, _ := cmd.Flags().GetString("content-type")

		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.UpdateNode(context.Background(), command.UpdateNodeRequest{
				ID:          args[0],
				Title:       title,
				Content:     content,
				ParentID:    parentID,
				ContentType: contentType,
			})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				fmt.Printf("Updated node %s %q\n", resp.Node.ID, resp.Node.Title)
			})
			return nil
		})
	},
}

func init() {
	updateNodeCmd.Flags().String("title", "", "New title")
	updateNodeCmd.Flags().String("content", "", "New body text")
	updateNodeCmd.Flags().String("parent", "", "New parent node id")
	updateNodeCmd.Flags().String("content-type", "", "New content classification")
	rootCmd.AddCommand(updateNodeCmd)
}
