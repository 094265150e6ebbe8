package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CORPUSGRAPH"

// PipelineConfig configures a rebuild_hierarchy run (spec §4.11, §6).
type PipelineConfig struct {
	Workers         int     `mapstructure:"workers"`
	SimilarityFloor float64 `mapstructure:"similarity_floor"`
	TopKNeighbors   int     `mapstructure:"top_k_neighbors"`
}

// HealthConfig configures an analyze run (spec §4.9, §6).
type HealthConfig struct {
	HubThreshold int `mapstructure:"hub_threshold"`
	TopN         int `mapstructure:"top_n"`
	StaleDays    int `mapstructure:"stale_days"`
}

// EmbeddingConfig selects and authenticates the embedding collaborator
// (spec §6). Dim must agree with whatever dimension already-stored
// embeddings in DataDir/corpus.db were written with.
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Dim      int    `mapstructure:"dim"`
}

// NamingConfig selects the optional LLM group-naming collaborator (spec
// §6). Provider "tfidf" (the default) needs no APIKey; internal/namer's
// deterministic fallback is used either way when Provider is empty.
type NamingConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// Config is the fully resolved, layered configuration (spec §6's ambient
// settings): flags override environment variables, which override the
// config file, which overrides the defaults below.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Verbose   bool            `mapstructure:"verbose"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Health    HealthConfig    `mapstructure:"health"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Naming    NamingConfig    `mapstructure:"naming"`
}

// Load builds a Config from (in ascending priority) built-in defaults, a
// config file, environment variables prefixed CORPUSGRAPH_, and whatever
// flags the caller already bound into v. cfgFile, if non-empty, forces
// which config file is read instead of the default search path. DataDir,
// when no source sets it, defaults to DefaultDataDir() wherever the config
// file lives.
//
// A missing config file is not an error — defaults and env vars still
// apply. A config file that exists but fails to parse is.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "config: .env present but unreadable: %v\n", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)

	v.SetDefault("pipeline.workers", DefaultWorkers)
	v.SetDefault("pipeline.similarity_floor", DefaultSimilarityFloor)
	v.SetDefault("pipeline.top_k_neighbors", DefaultTopKNeighbors)

	v.SetDefault("health.hub_threshold", DefaultHubThreshold)
	v.SetDefault("health.top_n", DefaultHealthTopN)
	v.SetDefault("health.stale_days", DefaultStaleDays)

	v.SetDefault("embedding.provider", EmbeddingProviderOpenAI)
	v.SetDefault("embedding.dim", DefaultEmbeddingDim)

	v.SetDefault("naming.provider", NamingProviderTFIDF)
	v.SetDefault("naming.model", DefaultAnthropicModel)
}

// Save persists the embedding and naming collaborator credentials to the
// config file at path, creating it if absent. Grounded on the teacher's own
// viper-backed fallback writer (cmd/config.go's updateConfigWithViper):
// read-modify-write through a fresh *viper.Viper rather than hand-editing
// YAML text, since this config's key set is small and flat enough that
// viper's own round-trip is simpler than the teacher's full line-editor
// (which existed to preserve a much larger, deeply nested multi-provider
// apiKeys map this domain doesn't have).
func Save(path string, embedding EmbeddingConfig, naming NamingConfig) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("config: read existing config: %w", err)
		}
	}

	v.Set("embedding.provider", embedding.Provider)
	v.Set("embedding.api_key", embedding.APIKey)
	if embedding.Dim > 0 {
		v.Set("embedding.dim", embedding.Dim)
	}
	v.Set("naming.provider", naming.Provider)
	v.Set("naming.api_key", naming.APIKey)
	if naming.Model != "" {
		v.Set("naming.model", naming.Model)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create config directory: %w", err)
	}
	return v.WriteConfig()
}
