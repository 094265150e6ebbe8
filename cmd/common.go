package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/josephgoksu/corpusgraph/internal/command"
	"github.com/josephgoksu/corpusgraph/internal/config"
	"github.com/josephgoksu/corpusgraph/internal/embedcollab"
	"github.com/josephgoksu/corpusgraph/internal/namer"
	"github.com/josephgoksu/corpusgraph/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// anthropicModel converts a configured model name to anthropic.Model,
// falling back to the Haiku default namer.NewAnthropicNamer itself would
// pick for an empty string; named here so callers can pass cfg.Naming.Model
// straight through without caring about the zero value.
func anthropicModel(name string) anthropic.Model {
	if name == "" {
		return anthropic.ModelClaude3_5HaikuLatest
	}
	return anthropic.Model(name)
}

// HandleFatalError prints userMsg (or, in verbose mode, the technical error)
// and exits with status 1.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	os.Exit(1)
}

// PrintError prints an error without exiting, so callers can decide whether
// to continue.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// printResult writes v to stdout as pretty JSON when --json is set, or
// delegates to textFn for the human-readable rendering otherwise.
func printResult(cmd *cobra.Command, v any, textFn func()) {
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			HandleFatalError("Error: could not encode result as JSON", err)
		}
		return
	}
	textFn()
}

// loadConfig resolves the layered Config for this invocation, honoring
// --config and --data-dir overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	v := viper.GetViper()
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// openStore opens the corpus store at cfg.DataDir.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.DataDir)
}

// buildEmbedder constructs the embedding collaborator from cfg.Embedding.
// Returns (nil, nil) when no API key is configured, since most read-only
// commands (search, get-children, analyze, ...) don't need one.
func buildEmbedder(cfg *config.Config) (embedcollab.Embedder, error) {
	if cfg.Embedding.APIKey == "" {
		return nil, nil
	}
	switch cfg.Embedding.Provider {
	case config.EmbeddingProviderOpenAI, "":
		dim := cfg.Embedding.Dim
		if dim <= 0 {
			dim = config.DefaultEmbeddingDim
		}
		return embedcollab.NewOpenAIEmbedder(cfg.Embedding.APIKey, dim)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// buildNamer constructs the group-naming collaborator from cfg.Naming,
// falling back to the deterministic TF-IDF namer per the spec's fallback
// rule whenever no LLM naming provider is configured.
func buildNamer(cfg *config.Config) (namer.Namer, error) {
	if cfg.Naming.Provider != config.NamingProviderAnthropic || cfg.Naming.APIKey == "" {
		return namer.NewTFIDFNamer(), nil
	}
	return namer.NewAnthropicNamer(cfg.Naming.APIKey, anthropicModel(cfg.Naming.Model))
}

// newHandler wires a *command.Handler against an open store and the
// embedding collaborator the resolved config calls for. Namer is left nil;
// rebuild-hierarchy builds its own Handler with a Namer.
func newHandler(cfg *config.Config, st *store.Store) (*command.Handler, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return &command.Handler{Store: st, Embedder: embedder}, nil
}

// withHandler opens the store, builds a Handler, runs fn, and closes the
// store afterward regardless of fn's outcome. Every subcommand's Run uses
// this so store lifecycle handling lives in one place.
func withHandler(cmd *cobra.Command, fn func(*command.Handler) error) {
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

	h, err := newHandler(cfg, st)
	if err != nil {
		HandleFatalError("Error: could not configure collaborators", err)
	}

	if err := fn(h); err != nil {
		HandleFatalError("Error: command failed", err)
	}
}
