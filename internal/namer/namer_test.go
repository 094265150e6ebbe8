package namer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTFIDFNamerPicksDistinctiveKeywords(t *testing.T) {
	n := NewTFIDFNamer()
	docs := []string{
		"postgres connection pooling tuning",
		"postgres replication lag alerting",
		"postgres vacuum schedule tuning",
	}
	name, err := n.Name(context.Background(), docs, nil)
	require.NoError(t, err)
	require.NotEmpty(t, name)
	require.Contains(t, name, "Postgres")
}

func TestTFIDFNamerRetriesOnForbiddenCollision(t *testing.T) {
	n := &TFIDFNamer{TopK: 1}
	docs := []string{"caching layer redis", "caching layer redis eviction"}
	forbidden := map[string]bool{"Caching": true}

	name, err := n.Name(context.Background(), docs, forbidden)
	require.NoError(t, err)
	require.NotEqual(t, "Caching", name)
}

func TestTFIDFNamerRejectsEmptyInput(t *testing.T) {
	n := NewTFIDFNamer()
	_, err := n.Name(context.Background(), nil, nil)
	require.Error(t, err)
}
