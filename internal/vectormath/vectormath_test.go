package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosineIdentical(t *testing.T) {
	a := []float32{1, 0, 0}
	require.InDelta(t, 1.0, float64(Cosine(a, a)), 1e-6)
}

func TestCosineOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	require.InDelta(t, 0.0, float64(Cosine(a, b)), 1e-9)
}

func TestCosineDimensionMismatch(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{1, 0, 0}
	require.Equal(t, float32(0), Cosine(a, b))
}

func TestCosineZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	require.Equal(t, float32(0), Cosine(a, b))
}

func TestCentroidNormalized(t *testing.T) {
	vecs := [][]float32{{1, 0}, {0, 1}}
	c := Centroid(vecs)
	require.InDelta(t, 1.0, math.Hypot(float64(c[0]), float64(c[1])), 1e-6)
}

func TestCentroidEmpty(t *testing.T) {
	require.Nil(t, Centroid(nil))
}

func TestCentroidSkipsMismatchedDims(t *testing.T) {
	vecs := [][]float32{{1, 0}, {1, 0, 0}}
	c := Centroid(vecs)
	require.InDelta(t, 1.0, float64(c[0]), 1e-6)
	require.InDelta(t, 0.0, float64(c[1]), 1e-6)
}
