package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/ident"
	"github.com/toba/staticpb/internal/options"
)

func newTestMessage(t *testing.T, name string, fields []*descriptorpb.FieldDescriptorProto, fieldOpts map[string]options.Record) *Message {
	t.Helper()
	desc := &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
	msg, err := NewMessage("widget.proto", ident.New(name), desc, func(fd *descriptorpb.FieldDescriptorProto) options.Record {
		if rec, ok := fieldOpts[fd.GetName()]; ok {
			return rec
		}
		return options.Builtins()
	}, func(int) (string, bool) { return "", false })
	require.NoError(t, err)
	return msg
}

func TestMessageEncodedSizeSumsMembers(t *testing.T) {
	fields := []*descriptorpb.FieldDescriptorProto{
		scalarDesc("a", 1, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
		scalarDesc("b", 2, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
	}
	msg := newTestMessage(t, "Widget", fields, nil)

	deps := NewDependencies()
	deps.RegisterMessage(msg)

	total, ok := msg.EncodedSize(deps)
	require.True(t, ok)

	var want uint64
	for _, f := range msg.Fields() {
		sz, ok := f.EncodedSize(deps)
		require.True(t, ok)
		want += sz.Constant
	}
	assert.Equal(t, want, total.Constant)
}

func TestMessageEncodedSizeWithUnresolvedSubMessageIsSymbolicButBounded(t *testing.T) {
	fields := []*descriptorpb.FieldDescriptorProto{
		{
			Name:     proto.String("child"),
			Number:   proto.Int32(1),
			Label:    descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum(),
			Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
			TypeName: proto.String(".Child"),
		},
	}
	msg := newTestMessage(t, "Widget", fields, nil)

	sz, ok := msg.EncodedSize(NewDependencies())
	require.True(t, ok)
	assert.False(t, sz.Bounded())
	assert.Contains(t, sz.Terms[0], "Childsize")
}

func TestMessageEncodedSizeWithCallbackFieldIsUnbounded(t *testing.T) {
	fields := []*descriptorpb.FieldDescriptorProto{
		scalarDesc("tags", 1, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
	}
	msg := newTestMessage(t, "Widget", fields, nil)
	require.Equal(t, AllocCallback, msg.Fields()[0].Allocation)

	_, ok := msg.EncodedSize(NewDependencies())
	assert.False(t, ok)
}

// Boundary tests per required_descriptor_width (nanopb_generator.py:1083-1095):
// max_count>0xFFFF -> 8; max_tag>0x3FF || offset>0xFFFF || max_count>0x0FFF ||
// max_datasize>0x0FFF -> 4; max_tag>0x3F || offset>0xFF -> 2; else 1.
func TestRequiredDescriptorWidthBoundaries(t *testing.T) {
	t.Run("tag 30 with small offset and count stays width 1", func(t *testing.T) {
		fields := []*descriptorpb.FieldDescriptorProto{
			scalarDesc("f", 30, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
		}
		msg := newTestMessage(t, "Widget", fields, nil)
		assert.Equal(t, options.Width1, msg.RequiredDescriptorWidth(NewDependencies()))
	})

	t.Run("tag 100 requires width 2", func(t *testing.T) {
		fields := []*descriptorpb.FieldDescriptorProto{
			scalarDesc("f", 100, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
		}
		msg := newTestMessage(t, "Widget", fields, nil)
		assert.Equal(t, options.Width2, msg.RequiredDescriptorWidth(NewDependencies()))
	})

	t.Run("max_count 5000 requires width 4", func(t *testing.T) {
		fields := []*descriptorpb.FieldDescriptorProto{
			scalarDesc("f", 1, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
		}
		count := uint32(5000)
		opts := map[string]options.Record{
			"f": options.Merge(options.Builtins(), options.Record{MaxCount: &count}),
		}
		msg := newTestMessage(t, "Widget", fields, opts)
		assert.Equal(t, options.Width4, msg.RequiredDescriptorWidth(NewDependencies()))
	})

	t.Run("max_count above 0xFFFF requires width 8", func(t *testing.T) {
		fields := []*descriptorpb.FieldDescriptorProto{
			scalarDesc("f", 1, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
		}
		count := uint32(70000)
		opts := map[string]options.Record{
			"f": options.Merge(options.Builtins(), options.Record{MaxCount: &count}),
		}
		msg := newTestMessage(t, "Widget", fields, opts)
		assert.Equal(t, options.Width8, msg.RequiredDescriptorWidth(NewDependencies()))
	})

	t.Run("explicit descriptor width overrides auto selection", func(t *testing.T) {
		fields := []*descriptorpb.FieldDescriptorProto{
			scalarDesc("f", 1, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
		}
		msg := newTestMessage(t, "Widget", fields, nil)
		msg.SetDescriptorWidth(options.Width8)
		assert.Equal(t, options.Width8, msg.RequiredDescriptorWidth(NewDependencies()))
	})
}
