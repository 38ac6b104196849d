package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverlayWinsOnlyWhenSet(t *testing.T) {
	base := Builtins()
	size := uint32(10)
	overlay := Record{MaxSize: &size}

	merged := Merge(base, overlay)

	got, ok := merged.HasMaxSize()
	require.True(t, ok)
	assert.EqualValues(t, 10, got)
	assert.Equal(t, Default, merged.AllocType()) // base's Type preserved
}

func TestMergePreservesBaseWhenOverlayUnset(t *testing.T) {
	longNames := false
	base := Merge(Builtins(), Record{LongNames: &longNames})
	overlay := Record{} // nothing set

	merged := Merge(base, overlay)
	assert.False(t, merged.IsLongNames())
}

func TestAccessorsDefaultSanely(t *testing.T) {
	var empty Record
	assert.Equal(t, Default, empty.AllocType())
	assert.False(t, empty.IsFixedCount())
	assert.False(t, empty.IsProto3())
	assert.True(t, empty.IsLongNames())
	assert.Equal(t, Auto, empty.DescriptorWidth())
	assert.Equal(t, "pb_callback_t", empty.CallbackType())
}
