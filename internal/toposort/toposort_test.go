package toposort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortOrdersDependenciesFirst(t *testing.T) {
	nodes := []Node{
		{Name: "B", Depends: []string{"A"}},
		{Name: "A"},
		{Name: "C", Depends: []string{"A", "B"}},
	}
	order, err := Sort(nodes)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestSortIsDeterministicUnderPermutation(t *testing.T) {
	a := []Node{{Name: "X"}, {Name: "Y"}, {Name: "Z", Depends: []string{"X", "Y"}}}
	b := []Node{{Name: "Z", Depends: []string{"X", "Y"}}, {Name: "Y"}, {Name: "X"}}

	orderA, err := Sort(a)
	require.NoError(t, err)
	orderB, err := Sort(b)
	require.NoError(t, err)
	assert.Equal(t, orderA, orderB)
}

func TestSortDetectsCycle(t *testing.T) {
	nodes := []Node{
		{Name: "A", Depends: []string{"B"}},
		{Name: "B", Depends: []string{"A"}},
	}
	_, err := Sort(nodes)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestSortIgnoresExternalDependencies(t *testing.T) {
	nodes := []Node{{Name: "A", Depends: []string{"external.Thing"}}}
	order, err := Sort(nodes)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, order)
}
