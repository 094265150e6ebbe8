package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var createEdgeCmd = &cobra.Command{
	Use:   "create-edge <source-id> <target-id> <type>",
	Short: "Creates a manual edge between two nodes",
	Long: `Creates a manual edge between two nodes. Type is any edge-type tag,
for example related, supports, contradicts, supersedes, derives_from.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = "edge-" + uuid.NewString()
		}
		reason, _ := cmd.Flags().GetString("reason")
		var weight *float64
		if cmd.Flags().Changed("weight") {
			w, _ := cmd.Flags().GetFloat64("weight")
			weight = &w
		}

		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.CreateEdge(context.Background(), command.CreateEdgeRequest{
				ID:       id,
				SourceID: args[0],
				TargetID: args[1],
				Type:     args[2],
				Weight:   weight,
				Reason:   reason,
			})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				fmt.Printf("Created edge %s: %s --%s--> %s\n", resp.Edge.ID, resp.Edge.SourceID, resp.Edge.Type, resp.Edge.TargetID)
			})
			return nil
		})
	},
}

func init() {
	createEdgeCmd.Flags().String("id", "", "Edge id (default: generated)")
	createEdgeCmd.Flags().Float64("weight", 0, "Edge weight in [0,1]")
	createEdgeCmd.Flags().String("reason", "", "Human-readable justification for the edge")
	rootCmd.AddCommand(createEdgeCmd)
}
