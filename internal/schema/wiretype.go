package schema

import "google.golang.org/protobuf/types/descriptorpb"

// PBType is the wire class of a field -- what datatypes[...] selects in the
// source, independent of storage class.
type PBType string

const (
	PBBool             PBType = "BOOL"
	PBDouble           PBType = "DOUBLE"
	PBFixed32          PBType = "FIXED32"
	PBFixed64          PBType = "FIXED64"
	PBFloat            PBType = "FLOAT"
	PBInt32            PBType = "INT32"
	PBInt64            PBType = "INT64"
	PBSFixed32         PBType = "SFIXED32"
	PBSFixed64         PBType = "SFIXED64"
	PBSInt32           PBType = "SINT32"
	PBSInt64           PBType = "SINT64"
	PBUInt32           PBType = "UINT32"
	PBUInt64           PBType = "UINT64"
	PBEnum             PBType = "ENUM"
	PBUEnum            PBType = "UENUM"
	PBString           PBType = "STRING"
	PBBytes            PBType = "BYTES"
	PBFixedLengthBytes PBType = "FIXED_LENGTH_BYTES"
	PBMessage          PBType = "MESSAGE"
	PBExtension        PBType = "EXTENSION"
	PBOneof            PBType = "oneof"
)

// IntSize is the field.int_size annotation for overriding a scalar
// integer's storage width.
type IntSize int

const (
	IntSizeDefault IntSize = iota
	IntSize8
	IntSize16
	IntSize32
	IntSize64
)

type typeInfo struct {
	CType        string
	PBType       PBType
	EncSize      uint64
	DataItemSize uint64
}

// scalarTypes is the direct translation of the source's module-level
// `datatypes` dict (nanopb_generator.py lines 75-88): the fixed lookup by
// wire type used for every scalar field before the ENUM/STRING/BYTES/MESSAGE
// special cases take over.
var scalarTypes = map[descriptorpb.FieldDescriptorProto_Type]typeInfo{
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     {"bool", PBBool, 1, 4},
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   {"double", PBDouble, 8, 8},
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  {"uint32_t", PBFixed32, 4, 4},
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  {"uint64_t", PBFixed64, 8, 8},
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    {"float", PBFloat, 4, 4},
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    {"int32_t", PBInt32, 10, 4},
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    {"int64_t", PBInt64, 10, 8},
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: {"int32_t", PBSFixed32, 4, 4},
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: {"int64_t", PBSFixed64, 8, 8},
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   {"int32_t", PBSInt32, 5, 4},
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   {"int64_t", PBSInt64, 10, 8},
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   {"uint32_t", PBUInt32, 5, 4},
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   {"uint64_t", PBUInt64, 10, 8},
}

type intSizeKey struct {
	t descriptorpb.FieldDescriptorProto_Type
	s IntSize
}

// intSizeOverrides is the direct translation of the source's module-level
// int-size override table (nanopb_generator.py lines 90-114).
var intSizeOverrides = map[intSizeKey]typeInfo{
	{descriptorpb.FieldDescriptorProto_TYPE_INT32, IntSize8}:   {"int8_t", PBInt32, 10, 1},
	{descriptorpb.FieldDescriptorProto_TYPE_INT32, IntSize16}:  {"int16_t", PBInt32, 10, 2},
	{descriptorpb.FieldDescriptorProto_TYPE_INT32, IntSize32}:  {"int32_t", PBInt32, 10, 4},
	{descriptorpb.FieldDescriptorProto_TYPE_INT32, IntSize64}:  {"int64_t", PBInt32, 10, 8},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT32, IntSize8}:  {"int8_t", PBSInt32, 2, 1},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT32, IntSize16}: {"int16_t", PBSInt32, 3, 2},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT32, IntSize32}: {"int32_t", PBSInt32, 5, 4},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT32, IntSize64}: {"int64_t", PBSInt32, 10, 8},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT32, IntSize8}:  {"uint8_t", PBUInt32, 2, 1},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT32, IntSize16}: {"uint16_t", PBUInt32, 3, 2},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT32, IntSize32}: {"uint32_t", PBUInt32, 5, 4},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT32, IntSize64}: {"uint64_t", PBUInt32, 10, 8},
	{descriptorpb.FieldDescriptorProto_TYPE_INT64, IntSize8}:   {"int8_t", PBInt64, 10, 1},
	{descriptorpb.FieldDescriptorProto_TYPE_INT64, IntSize16}:  {"int16_t", PBInt64, 10, 2},
	{descriptorpb.FieldDescriptorProto_TYPE_INT64, IntSize32}:  {"int32_t", PBInt64, 10, 4},
	{descriptorpb.FieldDescriptorProto_TYPE_INT64, IntSize64}:  {"int64_t", PBInt64, 10, 8},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT64, IntSize8}:  {"int8_t", PBSInt64, 2, 1},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT64, IntSize16}: {"int16_t", PBSInt64, 3, 2},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT64, IntSize32}: {"int32_t", PBSInt64, 5, 4},
	{descriptorpb.FieldDescriptorProto_TYPE_SINT64, IntSize64}: {"int64_t", PBSInt64, 10, 8},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT64, IntSize8}:  {"uint8_t", PBUInt64, 2, 1},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT64, IntSize16}: {"uint16_t", PBUInt64, 3, 2},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT64, IntSize32}: {"uint32_t", PBUInt64, 5, 4},
	{descriptorpb.FieldDescriptorProto_TYPE_UINT64, IntSize64}: {"uint64_t", PBUInt64, 10, 8},
}

func lookupScalar(t descriptorpb.FieldDescriptorProto_Type, size IntSize) (typeInfo, bool) {
	if size != IntSizeDefault {
		if info, ok := intSizeOverrides[intSizeKey{t, size}]; ok {
			return info, true
		}
	}
	info, ok := scalarTypes[t]
	return info, ok
}
