package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Reports corpus health: topology, fragility, and staleness (spec §4.9, §6)",
	Run: func(cmd *cobra.Command, args []string) {
		hubThreshold, _ := cmd.Flags().GetInt("hub-threshold")
		topN, _ := cmd.Flags().GetInt("top-n")
		staleDays, _ := cmd.Flags().GetInt("stale-days")
		if cfg, err := loadConfig(cmd); err == nil {
			if hubThreshold <= 0 {
				hubThreshold = cfg.Health.HubThreshold
			}
			if topN <= 0 {
				topN = cfg.Health.TopN
			}
			if staleDays <= 0 {
				staleDays = cfg.Health.StaleDays
			}
		}

		withHandler(cmd, func(h *command.Handler) error {
			resp, err := h.Analyze(context.Background(), command.AnalyzeRequest{
				HubThreshold: hubThreshold,
				TopN:         topN,
				StaleDays:    staleDays,
			})
			if err != nil {
				return err
			}
			printResult(cmd, resp, func() {
				r := resp.Report
				fmt.Printf("Score:       %.3f\n", r.Score.Overall)
				fmt.Printf("Topology:    %d hub(s), %d orphan(s), %d component(s)\n",
					len(r.Topology.Hubs), len(r.Topology.Orphans), r.Topology.NumComponents)
				fmt.Printf("Fragility:   %d bridge(s), %d articulation point(s)\n",
					len(r.Fragility.Bridges), len(r.Fragility.ArticulationPoints))
				fmt.Printf("Staleness:   %d stale node(s)\n", len(r.Staleness.StaleNodes))
			})
			return nil
		})
	},
}

func init() {
	analyzeCmd.Flags().Int("hub-threshold", 0, "Minimum degree to flag a node as a hub (default: config default)")
	analyzeCmd.Flags().Int("top-n", 0, "Maximum entries per report section (default: config default)")
	analyzeCmd.Flags().Int("stale-days", 0, "Age in days before a node is flagged stale (default: config default)")
	rootCmd.AddCommand(analyzeCmd)
}
