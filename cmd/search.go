package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text searches node titles and content",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		query := strings.Join(args, " ")

		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.Search(context.Background(), command.SearchRequest{Query: query, Limit: limit})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				for _, r := range resp.Results {
					fmt.Printf("%.3f  %s  %s\n", r.Rank, r.NodeID, r.Title)
				}
				fmt.Printf("%d result(s)\n", len(resp.Results))
			})
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().Int("limit", 20, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
