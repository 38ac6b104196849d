package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/options"
	"github.com/toba/staticpb/internal/schema"
)

type stubResolver struct{}

func (stubResolver) ForField(dotted string, proto3 bool, inline []*descriptorpb.UninterpretedOption) (options.Record, error) {
	rec := options.Merge(options.Builtins(), options.Record{})
	return rec, nil
}
func (stubResolver) ForMessage(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, error) {
	return options.Builtins(), nil
}
func (stubResolver) ForEnum(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, error) {
	return options.Builtins(), nil
}
func (stubResolver) ForOneof(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, string, bool, error) {
	return options.Builtins(), "", false, nil
}
func (stubResolver) ForFile(fileOpts *descriptorpb.FileOptions) options.Record {
	return options.Builtins()
}

func buildFileDesc() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("widget.proto"),
		Package: proto.String("demo"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Widget"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     proto.String("id"),
						Number:   proto.Int32(1),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum(),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_UINT32.Enum(),
					},
				},
			},
		},
	}
}

func TestHeaderAndSourceSmoke(t *testing.T) {
	desc := buildFileDesc()
	f, err := schema.ParseFile(desc, stubResolver{})
	require.NoError(t, err)
	require.Len(t, f.Messages, 1)

	deps := schema.NewDependencies()
	f.Register(deps)

	byName := map[string]*schema.Message{}
	var order []string
	for _, m := range f.Messages {
		byName[m.Name.Symbol()] = m
		order = append(order, m.Name.Symbol())
	}

	header := Header(f, order, byName, deps)
	assert.Contains(t, string(header), "PB_WIDGET_PROTO_INCLUDED")
	assert.Contains(t, string(header), "Widget")

	source, err := Source(f, desc, order, byName, deps)
	require.NoError(t, err)
	assert.Contains(t, string(source), "PB_BIND(demo_Widget")
	assert.Contains(t, string(source), "gzipped FileDescriptorProto")
}
