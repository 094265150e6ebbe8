package unionfind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnionMergesDistinctSets(t *testing.T) {
	uf := New([]string{"a", "b", "c"})
	require.True(t, uf.Union("a", "b"))
	require.False(t, uf.Union("a", "b"))
	require.Equal(t, uf.Find("a"), uf.Find("b"))
	require.NotEqual(t, uf.Find("a"), uf.Find("c"))
}

func TestSizeOfAfterMerges(t *testing.T) {
	uf := New([]string{"a", "b", "c", "d"})
	uf.Union("a", "b")
	uf.Union("c", "d")
	uf.Union("b", "c")
	require.Equal(t, 4, uf.SizeOf("a"))
}

func TestComponentsDeterministicOrder(t *testing.T) {
	uf := New([]string{"z", "y", "x", "w"})
	uf.Union("z", "y")
	comps := uf.Components()
	require.Len(t, comps, 3)
	// sorted by lexicographic minimum id of each component
	require.Equal(t, "w", comps[0][0])
	require.Equal(t, "x", comps[1][0])
	require.Equal(t, []string{"y", "z"}, comps[2])
}

func TestFindUnknownIdIsIdentity(t *testing.T) {
	uf := New(nil)
	require.Equal(t, "ghost", uf.Find("ghost"))
}
