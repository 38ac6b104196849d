package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func namePart(name string, isExt bool) *descriptorpb.UninterpretedOption_NamePart {
	return &descriptorpb.UninterpretedOption_NamePart{
		NamePart:    proto.String(name),
		IsExtension: proto.Bool(isExt),
	}
}

func TestFromUninterpretedOptionsDecodesNanopbKeys(t *testing.T) {
	opts := []*descriptorpb.UninterpretedOption{
		{
			Name:             []*descriptorpb.UninterpretedOption_NamePart{namePart("nanopb", true), namePart("max_size", false)},
			PositiveIntValue: proto.Uint64(12),
		},
		{
			Name:            []*descriptorpb.UninterpretedOption_NamePart{namePart("nanopb", true), namePart("type", false)},
			IdentifierValue: proto.String("STATIC"),
		},
		{
			// Not a nanopb option -- ignored.
			Name:            []*descriptorpb.UninterpretedOption_NamePart{namePart("other", true), namePart("x", false)},
			IdentifierValue: proto.String("y"),
		},
	}

	rec, err := FromUninterpretedOptions(opts)
	require.NoError(t, err)

	size, ok := rec.HasMaxSize()
	require.True(t, ok)
	assert.EqualValues(t, 12, size)
	assert.Equal(t, Static, rec.AllocType())
}
