package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var createNodeCmd = &cobra.Command{
	Use:   "create-node <id> <title>",
	Short: "Creates a new node in the corpus graph",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		content, _ := cmd.Flags().GetString("content")
		isItem, _ := cmd.Flags().GetBool("item")
		parentID, _ := cmd.Flags().GetString("parent")
		contentType, _ := cmd.Flags().GetString("content-type")

		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.CreateNode(context.Background(), command.CreateNodeRequest{
				ID:          args[0],
				Title:       args[1],
				Content:     content,
				IsItem:      isItem,
				ParentID:    parentID,
				ContentType: contentType,
			})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				fmt.Printf("Created node %s %q\n", resp.Node.ID, resp.Node.Title)
			})
			return nil
		})
	},
}

func init() {
	createNodeCmd.Flags().String("content", "", "Node body text")
	createNodeCmd.Flags().Bool("item", false, "Mark the node as a leaf item rather than a group")
	createNodeCmd.Flags().String("parent", "", "Parent node id")
	createNodeCmd.Flags().String("content-type", "", "Optional content classification")
	rootCmd.AddCommand(createNodeCmd)
}
