package sizeexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarintSizeAsserts(t *testing.T) {
	assert.Equal(t, 10, VarintSize(-1))
	assert.Equal(t, 1, VarintSize(0))
	assert.Equal(t, 1, VarintSize(127))
	assert.Equal(t, 2, VarintSize(128))
}

func TestVarintSizeBoundaries(t *testing.T) {
	assert.Equal(t, 1, VarintSize((1<<7)-1))
	assert.Equal(t, 2, VarintSize(1<<7))
	assert.Equal(t, 2, VarintSize((1<<14)-1))
	assert.Equal(t, 3, VarintSize(1<<14))
}

func TestSizeBoundedConstantFolding(t *testing.T) {
	s := Of(3).Add(4)
	assert.True(t, s.Bounded())
	assert.Equal(t, uint64(7), s.Constant)
	assert.Equal(t, "7", s.String())
	assert.EqualValues(t, 7, s.UpperLimit())
}

func TestSizeSymbolicStringAndUpperLimit(t *testing.T) {
	s := Of(2).AddSymbol("Foo_size")
	assert.False(t, s.Bounded())
	assert.Equal(t, "(2 + Foo_size)", s.String())
	assert.EqualValues(t, MaxUint32, s.UpperLimit())
}

func TestSizeScaleDistributesTextually(t *testing.T) {
	s := Symbol("x").Scale(3)
	assert.Equal(t, []string{"3*x"}, s.Terms)

	plain := Of(4).Scale(3)
	assert.EqualValues(t, 12, plain.Constant)
}

func TestSizeScaleByOneIsNoOp(t *testing.T) {
	s := Symbol("x").Scale(1)
	assert.Equal(t, []string{"x"}, s.Terms)
}

func TestSizePlusDoesNotMergeTerms(t *testing.T) {
	a := Of(1).AddSymbol("a")
	b := Of(2).AddSymbol("a")
	sum := a.Plus(b)
	assert.EqualValues(t, 3, sum.Constant)
	assert.Equal(t, []string{"a", "a"}, sum.Terms)
}
