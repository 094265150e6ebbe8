package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var rebuildHierarchyCmd = &cobra.Command{
	Use:   "rebuild-hierarchy",
	Short: "Recomputes embeddings, similarity edges, and the dendrogram hierarchy (spec §4.11, §6)",
	Run: func(cmd *cobra.Command, args []string) {
		workers, _ := cmd.Flags().GetInt("workers")
		floor, _ := cmd.Flags().GetFloat64("similarity-floor")
		topK, _ := cmd.Flags().GetInt("top-k")

		cfg, err := loadConfig(cmd)
		if err != nil {
			HandleFatalError("Error: could not load configuration", err)
		}
		st, err := openStore(cfg)
		if err != nil {
			HandleFatalError("Error: could not open corpus store", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				PrintError("Warning: error closing corpus store", cerr)
			}
		}()

		embedder, err := buildEmbedder(cfg)
		if err != nil {
			HandleFatalError("Error: could not configure embedding collaborator", err)
		}
		if embedder == nil {
			HandleFatalError(fmt.Sprintf("Error: rebuild-hierarchy requires an embedding collaborator; set %s_EMBEDDING_API_KEY or embedding.api_key in config", "CORPUSGRAPH"), nil)
		}
		groupNamer, err := buildNamer(cfg)
		if err != nil {
			HandleFatalError("Error: could not configure naming collaborator", err)
		}
		if workers <= 0 {
			workers = cfg.Pipeline.Workers
		}
		if floor <= 0 {
			floor = cfg.Pipeline.SimilarityFloor
		}
		if topK <= 0 {
			topK = cfg.Pipeline.TopKNeighbors
		}

		h := &command.Handler{Store: st, Embedder: embedder, Namer: groupNamer}

		resp, err := h.RebuildHierarchy(context.Background(), command.RebuildHierarchyRequest{
			Workers:         workers,
			SimilarityFloor: floor,
			TopKNeighbors:   topK,
		})
		if err != nil {
			HandleFatalError("Error: rebuild-hierarchy failed", err)
		}
		printResult(cmd, resp, func() {
			r := resp.Report
			fmt.Printf("Embeddings computed: %d (failures: %d)\n", r.EmbeddingsComputed, r.EmbeddingFailures)
			fmt.Printf("Similarity edges:    %d\n", r.SimilarityEdgesEmitted)
			fmt.Printf("Dendrogram merges:   %d\n", r.DendrogramMerges)
			fmt.Printf("Groups created:      %d\n", r.GroupsCreated)
			fmt.Printf("Sibling edges:       %d\n", r.SiblingEdgesEmitted)
			fmt.Printf("Bridge edges:        %d\n", r.BridgeEdgesEmitted)
			if r.Cancelled {
				fmt.Println("(run was cancelled before completion)")
			}
		})
	},
}

func init() {
	rebuildHierarchyCmd.Flags().Int("workers", 0, "Worker pool size for the similarity stage (default: config default)")
	rebuildHierarchyCmd.Flags().Float64("similarity-floor", 0, "Minimum cosine similarity to keep an edge (default: config default)")
	rebuildHierarchyCmd.Flags().Int("top-k", 0, "Maximum similarity neighbors per node (default: config default)")
	rootCmd.AddCommand(rebuildHierarchyCmd)
}
