// Package namer implements the optional group-naming collaborator (spec
// §6): given the titles of a freshly formed group's members and a set of
// forbidden names (names already used by siblings), produce one short,
// unused name. An LLM collaborator is preferred; internal/namer falls back
// to a deterministic TF-IDF keyword extraction when none is configured.
package namer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/josephgoksu/corpusgraph/internal/store"
)

// Namer names a freshly formed group from its members' titles, avoiding any
// name in forbidden.
type Namer interface {
	Name(ctx context.Context, titles []string, forbidden map[string]bool) (string, error)
}

// AnthropicNamer asks a Claude model for a short group name, grounded on the
// teacher's eino/claude model-client wiring but using the raw
// anthropic-sdk-go client directly since naming is a single short call with
// no need for eino's broader orchestration.
type AnthropicNamer struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicNamer builds a namer backed by apiKey. model defaults to
// Claude Haiku, the cheapest model capable of this task, if empty.
func NewAnthropicNamer(apiKey string, model anthropic.Model) (*AnthropicNamer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("namer: api key required")
	}
	if model == "" {
		model = anthropic.ModelClaude3_5HaikuLatest
	}
	return &AnthropicNamer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Name asks the model for one short name not in forbidden. A model reply
// that collides with forbidden anyway is rejected with an error and the
// collaborator is not retried (spec §7: external collaborator failure is
// restartable, not retried in place); the pipeline then uses its own
// placeholder name for the group.
func (n *AnthropicNamer) Name(ctx context.Context, titles []string, forbidden map[string]bool) (string, error) {
	if len(titles) == 0 {
		return "", fmt.Errorf("namer: no titles to name from")
	}

	var forbiddenList []string
	for name := range forbidden {
		forbiddenList = append(forbiddenList, name)
	}
	sort.Strings(forbiddenList)

	prompt := fmt.Sprintf(
		"Give one short category name (2-4 words, no punctuation) for a group of items titled:\n%s\n\nDo not use any of these existing names: %s\n\nReply with only the name.",
		strings.Join(titles, "\n"), strings.Join(forbiddenList, ", "))

	msg, err := n.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     n.model,
		MaxTokens: 20,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("namer: model call: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("namer: empty model response")
	}

	name := strings.TrimSpace(msg.Content[0].Text)
	if name == "" {
		return "", fmt.Errorf("namer: blank name returned")
	}
	if forbidden[name] {
		return "", fmt.Errorf("namer: model returned a forbidden name %q", name)
	}
	return name, nil
}

// TFIDFNamer is the deterministic fallback: TF-IDF-weighted keyword
// extraction over item titles and content, tokenized with
// store.Tokenize so results agree with full-text search term boundaries
// (spec §6).
type TFIDFNamer struct {
	TopK int // keywords combined into the name, default 3
}

// NewTFIDFNamer returns a TFIDFNamer with spec-stated defaults.
func NewTFIDFNamer() *TFIDFNamer {
	return &TFIDFNamer{TopK: 3}
}

// Name extracts TopK keywords by per-document weight tf * (1 + log(tf))
// summed across documents, then returns them title-cased and joined. If the
// result collides with forbidden, it retries with TopK+1 keywords (and once
// more with TopK+2) before giving up, since a slightly longer name is
// usually still distinct.
func (tn *TFIDFNamer) Name(_ context.Context, documents []string, forbidden map[string]bool) (string, error) {
	if len(documents) == 0 {
		return "", fmt.Errorf("namer: no documents to name from")
	}
	k := tn.TopK
	if k <= 0 {
		k = 3
	}

	weights := make(map[string]float64)
	for _, doc := range documents {
		tf := make(map[string]int)
		for _, tok := range store.Tokenize(doc) {
			tf[tok]++
		}
		for tok, count := range tf {
			f := float64(count)
			weights[tok] += f * (1 + math.Log(f))
		}
	}
	if len(weights) == 0 {
		return "", fmt.Errorf("namer: no keywords survived tokenization")
	}

	var ranked []scoredTerm
	for term, w := range weights {
		ranked = append(ranked, scoredTerm{term, w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].term < ranked[j].term
	})

	for attempt := 0; attempt < 3; attempt++ {
		n := k + attempt
		if n > len(ranked) {
			n = len(ranked)
		}
		name := joinTitleCase(ranked[:n])
		if !forbidden[name] {
			return name, nil
		}
	}
	return "", fmt.Errorf("namer: exhausted keyword combinations, all collide with existing names")
}

// scoredTerm pairs a token with its summed TF-IDF-style weight.
type scoredTerm struct {
	term   string
	weight float64
}

func joinTitleCase(terms []scoredTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = strings.ToUpper(t.term[:1]) + t.term[1:]
	}
	return strings.Join(parts, " ")
}
