package cmd

import (
	"context"
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/spf13/cobra"
)

var regenerateEmbeddingsCmd = &cobra.Command{
	Use:   "regenerate-embeddings",
	Short: "Computes embeddings for every node missing one, without rebuilding the hierarchy",
	Run: func(cmd *cobra.Command, args []string) {
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
			HandleFatalError("Error: regenerate-embeddings requires an embedding collaborator; set embedding.api_key in config", nil)
		}

		h := &command.Handler{Store: st, Embedder: embedder}
		resp, err := h.RegenerateEmbeddings(context.Background(), command.RegenerateEmbeddingsRequest{})
		if err != nil {
			HandleFatalError("Error: regenerate-embeddings failed", err)
		}
		printResult(cmd, resp, func() {
			fmt.Printf("Computed: %d  Failures: %d\n", resp.Computed, resp.Failures)
		})
	},
}

func init() {
	rootCmd.AddCommand(regenerateEmbeddingsCmd)
}
