package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toba/staticpb/internal/ident"
)

func boolField(t *testing.T, tag int32, allocation Allocation) *Field {
	t.Helper()
	f := &Field{
		Tag:        tag,
		StructName: ident.New("Widget"),
		Name:       "v",
		PBType:     PBBool,
		CType:      "bool",
		Allocation: allocation,
		encSize:    1,
	}
	return f
}

func TestOneofEncodedSizeAllNumericTakesMax(t *testing.T) {
	o := NewOneof(ident.New("Widget"), "payload", false)
	o.AddField(boolField(t, 1, AllocStatic))
	o.AddField(boolField(t, 2, AllocStatic))
	o.Fields[1].PBType = PBUInt32
	o.Fields[1].CType = "uint32_t"
	o.Fields[1].encSize = 5

	deps := NewDependencies()
	sz, ok := o.EncodedSize(deps)
	require.True(t, ok)
	assert.True(t, sz.Bounded())

	sz1, _ := o.Fields[0].EncodedSize(deps)
	sz2, _ := o.Fields[1].EncodedSize(deps)
	want := sz1.Constant
	if sz2.Constant > want {
		want = sz2.Constant
	}
	assert.Equal(t, want, sz.Constant)
}

func TestOneofEncodedSizeSingleSymbolicAddsFiveByteOverhead(t *testing.T) {
	o := NewOneof(ident.New("Widget"), "payload", false)
	msg := boolField(t, 1, AllocStatic)
	msg.PBType = PBMessage
	msg.SubMsgName = ident.New("Child")
	o.AddField(msg)

	deps := NewDependencies()
	sz, ok := o.EncodedSize(deps)
	require.True(t, ok)
	assert.False(t, sz.Bounded())
	require.Len(t, sz.Terms, 1)
	assert.Equal(t, "Childsize", sz.Terms[0])

	fieldSz, _ := msg.EncodedSize(deps)
	assert.Equal(t, fieldSz.Constant+5, sz.Constant)
}

func TestOneofEncodedSizeMixedWrapsInSizeofUnionPlusFive(t *testing.T) {
	o := NewOneof(ident.New("Widget"), "payload", false)
	o.AddField(boolField(t, 1, AllocStatic))
	msg := boolField(t, 2, AllocStatic)
	msg.PBType = PBMessage
	msg.SubMsgName = ident.New("Child")
	o.AddField(msg)

	deps := NewDependencies()
	sz, ok := o.EncodedSize(deps)
	require.True(t, ok)
	assert.False(t, sz.Bounded())
	require.Len(t, sz.Terms, 1)
	assert.Contains(t, sz.Terms[0], "sizeof(union{")
	assert.Contains(t, sz.Terms[0], "Childsize")
	assert.Equal(t, uint64(5), sz.Constant)
}

func TestOneofAnonymousRendersAnonymousUnion(t *testing.T) {
	o := NewOneof(ident.New("Widget"), "payload", true)
	o.AddField(boolField(t, 1, AllocStatic))
	o.Fields[0].Name = "a"
	second := boolField(t, 2, AllocStatic)
	second.Name = "b"
	o.AddField(second)

	member := o.StructMember()
	assert.Contains(t, member, "union {")
	assert.Contains(t, member, "bool a;")
	assert.Contains(t, member, "bool b;")
	assert.Contains(t, member, "which_payload")

	// The anonymous union has no typedef of its own: its ctype name is
	// never referenced from Types().
	assert.NotContains(t, o.Types(), o.CType())
}

func TestOneofNamedRendersTypedefUnion(t *testing.T) {
	o := NewOneof(ident.New("Widget"), "payload", false)
	o.AddField(boolField(t, 1, AllocStatic))
	o.Fields[0].Name = "a"

	types := o.Types()
	assert.Contains(t, types, "typedef union _"+o.CType())

	member := o.StructMember()
	assert.Contains(t, member, o.CType()+" payload;")
}
