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

func scalarDesc(name string, num int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
}

func TestNewFieldRequiredScalarIsStatic(t *testing.T) {
	desc := scalarDesc("id", 1, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, descriptorpb.FieldDescriptorProto_TYPE_UINT32)
	f, err := NewField(ident.New("Widget"), desc, options.Builtins())
	require.NoError(t, err)

	assert.Equal(t, Required, f.Rule)
	assert.Equal(t, AllocStatic, f.Allocation)
	assert.Equal(t, PBUInt32, f.PBType)
	assert.Equal(t, "uint32_t", f.CType)
	assert.Equal(t, int32(1), f.MinTag())
}

func TestNewFieldUnboundedStringFallsBackToCallback(t *testing.T) {
	desc := scalarDesc("name", 2, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	f, err := NewField(ident.New("Widget"), desc, options.Builtins())
	require.NoError(t, err)

	assert.Equal(t, AllocCallback, f.Allocation)
}

func TestNewFieldStringWithMaxSizeIsStatic(t *testing.T) {
	desc := scalarDesc("name", 2, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	size := uint32(16)
	opts := options.Merge(options.Builtins(), options.Record{MaxSize: &size})

	f, err := NewField(ident.New("Widget"), desc, opts)
	require.NoError(t, err)

	assert.Equal(t, AllocStatic, f.Allocation)
	assert.Equal(t, "[16]", f.ArrayDecl)
}

func TestNewFieldExplicitStaticWithoutBoundIsAnnotationError(t *testing.T) {
	desc := scalarDesc("name", 2, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	static := options.Static
	opts := options.Merge(options.Builtins(), options.Record{Type: &static})

	_, err := NewField(ident.New("Widget"), desc, opts)
	assert.ErrorIs(t, err, options.ErrAnnotation)
}

func TestNewFieldRepeatedWithoutMaxCountFallsBackToCallback(t *testing.T) {
	desc := scalarDesc("tags", 3, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, descriptorpb.FieldDescriptorProto_TYPE_UINT32)
	f, err := NewField(ident.New("Widget"), desc, options.Builtins())
	require.NoError(t, err)

	assert.Equal(t, Repeated, f.Rule)
	assert.Equal(t, AllocCallback, f.Allocation)
}

func TestFieldEncodedSizeAddsTagOverhead(t *testing.T) {
	desc := scalarDesc("id", 1, descriptorpb.FieldDescriptorProto_LABEL_REQUIRED, descriptorpb.FieldDescriptorProto_TYPE_UINT32)
	f, err := NewField(ident.New("Widget"), desc, options.Builtins())
	require.NoError(t, err)

	sz, ok := f.EncodedSize(NewDependencies())
	require.True(t, ok)
	assert.Equal(t, f.encSize+1, sz.Constant)
}

func TestFieldEncodedSizeRepeatedScalesByMaxCount(t *testing.T) {
	desc := scalarDesc("tags", 3, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, descriptorpb.FieldDescriptorProto_TYPE_UINT32)
	count := uint32(4)
	opts := options.Merge(options.Builtins(), options.Record{MaxCount: &count})

	f, err := NewField(ident.New("Widget"), desc, opts)
	require.NoError(t, err)
	require.Equal(t, AllocStatic, f.Allocation)

	sz, ok := f.EncodedSize(NewDependencies())
	require.True(t, ok)
	assert.Equal(t, (f.encSize+1)*4, sz.Constant)
}
