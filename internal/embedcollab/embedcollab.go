// Package embedcollab is the embedding collaborator contract (spec §6): a
// single `embed(text) -> vector<float32, D>` call the core treats as an
// opaque external dependency. It never trains or reloads a model and only
// requires deterministic output for the same text and model version.
package embedcollab

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder produces a fixed-dimension embedding for a piece of text.
type Embedder interface {
	// Embed returns a vector of store.EmbeddingDim float32s, or an error if
	// the collaborator is unreachable or returns a malformed response.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dim reports the fixed dimension this embedder produces.
	Dim() int
}

// OpenAIEmbedder is the default Embedder: a thin wrapper over
// sashabaranov/go-openai's embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// NewOpenAIEmbedder builds an Embedder backed by the OpenAI embeddings API.
// dim must match store.EmbeddingDim for the target database; text-embedding-3-small
// supports a `Dimensions` request override so any dim up to its native 1536
// can be requested directly from the API.
func NewOpenAIEmbedder(apiKey string, dim int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedcollab: API key required")
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.SmallEmbedding3,
		dim:    dim,
	}, nil
}

func (o *OpenAIEmbedder) Dim() int { return o.dim }

func (o *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      []string{text},
		Model:      o.model,
		Dimensions: o.dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embedcollab: create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedcollab: no embedding returned")
	}
	vec := resp.Data[0].Embedding
	if len(vec) != o.dim {
		return nil, fmt.Errorf("embedcollab: expected dimension %d, got %d", o.dim, len(vec))
	}
	return vec, nil
}
