package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreprocessQueryLowercasesAndJoinsWithOr(t *testing.T) {
	got := PreprocessQuery("The Quick, Brown Fox!")
	require.Equal(t, "quick OR brown OR fox", got)
}

func TestPreprocessQueryDropsShortTokensAndStopWords(t *testing.T) {
	got := PreprocessQuery("a is to it of not")
	require.Equal(t, "", got)
}

func TestPreprocessQueryKeepsUnderscoreAndDot(t *testing.T) {
	got := PreprocessQuery("file_name.go is great")
	require.Equal(t, "file_name.go OR great", got)
}

func TestPreprocessQueryEmptyInput(t *testing.T) {
	require.Equal(t, "", PreprocessQuery(""))
	require.Equal(t, "", PreprocessQuery("   "))
}

func TestEmbeddingRoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.2, 0.3, 1.0, -1.0}
	buf := encodeEmbedding(vec)
	require.Len(t, buf, len(vec)*4)

	decoded, err := decodeEmbedding(buf, len(vec))
	require.NoError(t, err)
	require.Equal(t, vec, decoded)
}

func TestDecodeEmbeddingRejectsWrongDimension(t *testing.T) {
	buf := encodeEmbedding([]float32{1, 2, 3})
	_, err := decodeEmbedding(buf, 384)
	require.Error(t, err)
}

func TestDecodeEmbeddingRejectsNonMultipleOfFour(t *testing.T) {
	_, err := decodeEmbedding([]byte{1, 2, 3}, 0)
	require.Error(t, err)
}
