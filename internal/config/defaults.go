// Package config provides the layered settings for the corpus graph engine:
// flags, then environment variables, then a config file, then the defaults
// in this file — the same precedence the teacher's own cmd/config.go builds
// with spf13/viper.
package config

import (
	"github.com/josephgoksu/corpusgraph/internal/similarity"
)

// Embedding collaborator provider constants.
const (
	EmbeddingProviderOpenAI = "openai"
)

// Naming collaborator provider constants.
const (
	NamingProviderAnthropic = "anthropic"
	NamingProviderTFIDF     = "tfidf"
)

// Defaults mirrored from the packages they configure, so config.go has one
// place to fall back to instead of duplicating magic numbers.
const (
	DefaultEmbeddingDim      = 384
	DefaultWorkers           = 4
	DefaultSimilarityFloor   = similarity.DefaultFloor
	DefaultTopKNeighbors     = similarity.DefaultTopK
	DefaultHubThreshold      = 15
	DefaultHealthTopN        = 20
	DefaultStaleDays         = 60
	DefaultAnthropicModel    = "claude-3-5-haiku-latest"
	DefaultOpenAIEmbedModel  = "text-embedding-3-small"
)
