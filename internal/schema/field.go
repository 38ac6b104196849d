package schema

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/ident"
	"github.com/toba/staticpb/internal/options"
	"github.com/toba/staticpb/internal/sizeexpr"
)

// Rule is how often a field's value appears.
type Rule string

const (
	Required Rule = "REQUIRED"
	Optional Rule = "OPTIONAL"
	Singular Rule = "SINGULAR"
	Repeated Rule = "REPEATED"
	FixArray Rule = "FIXARRAY"
	OneOfMember Rule = "ONEOF"
)

// Allocation is how the generated type holds a field's value.
type Allocation string

const (
	AllocStatic   Allocation = "STATIC"
	AllocPointer  Allocation = "POINTER"
	AllocCallback Allocation = "CALLBACK"
	AllocOneOf    Allocation = "ONEOF"
)

// Member is the shared contract every kind of struct member -- a plain
// field, a oneof, or an extension range -- satisfies, replacing the
// source's ad-hoc Field/OneOf/ExtensionRange subclass hierarchy with a
// single interface (the tagged-variant re-architecture called for in §9,
// realized in Go as one interface with a handful of small implementers
// rather than a discriminated-union struct, since Go's type system makes
// the interface form the more idiomatic of the two).
type Member interface {
	MinTag() int32
	StructMember() string
	Types() string
	Initializer(nullInit bool) string
	TagDefines(structName ident.Name) string
	EncodedSize(deps *Dependencies) (sizeexpr.Size, bool)
	DataSize(deps *Dependencies) uint64
	GetDependencies() []string
}

// Field is a single scalar/string/bytes/message/enum struct member.
type Field struct {
	Tag        int32
	StructName ident.Name
	Name       string
	UnionName  string
	Anonymous  bool

	Rule       Rule
	PBType     PBType
	Allocation Allocation
	CType      string
	SubMsgName ident.Name

	MaxSize    uint32
	MaxCount   uint32
	FixedCount bool
	ArrayDecl  string

	Default string

	encSize      uint64 // per-element encoded size from the scalar lookup; 0 for MESSAGE/ENUM (computed lazily)
	DataItemSize uint64

	CallbackDatatype string
}

// NewField constructs a Field from a FieldDescriptorProto and its resolved
// annotations, following the construction sequence of §4.4 exactly.
func NewField(structName ident.Name, desc *descriptorpb.FieldDescriptorProto, opts options.Record) (*Field, error) {
	f := &Field{
		Tag:              desc.GetNumber(),
		StructName:       structName,
		Name:             desc.GetName(),
		CallbackDatatype: opts.CallbackType(),
	}

	allocType := opts.AllocType()
	fixedLength := opts.IsFixedLength()
	if allocType == options.Inline {
		// Legacy rewrite: type=INLINE -> type=STATIC, fixed_length=true.
		allocType = options.Static
		fixedLength = true
	}

	if size, ok := opts.HasMaxSize(); ok {
		f.MaxSize = size
	}
	if desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_STRING {
		if length, ok := opts.MaxLength, opts.MaxLength != nil; ok {
			f.MaxSize = *length + 1
		}
	}
	if count, ok := opts.HasMaxCount(); ok {
		f.MaxCount = count
	}
	if desc.DefaultValue != nil {
		f.Default = desc.GetDefaultValue()
	}

	canBeStatic := true
	switch {
	case desc.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		f.Rule = Repeated
		if f.MaxCount == 0 {
			canBeStatic = false
		} else {
			f.ArrayDecl = fmt.Sprintf("[%d]", f.MaxCount)
			if opts.IsFixedCount() {
				f.Rule = FixArray
			}
		}
	case opts.IsProto3():
		f.Rule = Singular
	case desc.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		f.Rule = Required
	case desc.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL:
		f.Rule = Optional
	default:
		return nil, fmt.Errorf("%w: %s.%s: unsupported label %v", options.ErrInputDescriptor, structName, f.Name, desc.GetLabel())
	}

	if desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_STRING && f.MaxSize == 0 {
		canBeStatic = false
	}
	if desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_BYTES && f.MaxSize == 0 {
		canBeStatic = false
	}

	if allocType == options.Default {
		if canBeStatic {
			allocType = options.Static
		} else {
			allocType = options.Callback
		}
	}
	if allocType == options.Static && !canBeStatic {
		return nil, fmt.Errorf("%w: field %q is defined as static, but max_size or max_count is not given", options.ErrAnnotation, f.Name)
	}
	if opts.IsFixedCount() && f.MaxCount == 0 {
		return nil, fmt.Errorf("%w: field %q is defined as fixed count, but max_count is not given", options.ErrAnnotation, f.Name)
	}

	switch allocType {
	case options.Static:
		f.Allocation = AllocStatic
	case options.Pointer:
		f.Allocation = AllocPointer
	case options.Callback:
		f.Allocation = AllocCallback
	default:
		return nil, fmt.Errorf("%w: field %q: unsupported allocation %v", options.ErrInputDescriptor, f.Name, allocType)
	}

	intSize := IntSizeDefault
	if opts.IntSize != nil {
		switch *opts.IntSize {
		case 8:
			intSize = IntSize8
		case 16:
			intSize = IntSize16
		case 32:
			intSize = IntSize32
		case 64:
			intSize = IntSize64
		}
	}

	switch {
	case isScalarType(desc.GetType()):
		info, _ := lookupScalar(desc.GetType(), intSize)
		f.CType = info.CType
		f.PBType = info.PBType
		f.encSize = info.EncSize
		f.DataItemSize = info.DataItemSize
	case desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		f.PBType = PBEnum
		f.DataItemSize = 4
		f.CType = ident.FromDotted(desc.GetTypeName()).Symbol()
		f.SubMsgName = ident.FromDotted(desc.GetTypeName())
		if f.Default != "" {
			f.Default = f.SubMsgName.Append(f.Default).Symbol()
		}
		// Encoded size comes from the enum looked up in Dependencies by EncodedSize.
	case desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_STRING:
		f.PBType = PBString
		f.CType = "char"
		if f.Allocation == AllocStatic {
			f.ArrayDecl += fmt.Sprintf("[%d]", f.MaxSize)
			f.encSize = uint64(sizeexpr.VarintSize(int64(f.MaxSize))) + uint64(f.MaxSize) - 1
		}
	case desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		if fixedLength {
			f.PBType = PBFixedLengthBytes
			if f.MaxSize == 0 {
				return nil, fmt.Errorf("%w: field %q is defined as fixed length, but max_size is not given", options.ErrAnnotation, f.Name)
			}
			f.encSize = uint64(sizeexpr.VarintSize(int64(f.MaxSize))) + uint64(f.MaxSize)
			f.CType = "pb_byte_t"
			f.ArrayDecl += fmt.Sprintf("[%d]", f.MaxSize)
		} else {
			f.PBType = PBBytes
			f.CType = "pb_bytes_array_t"
			if f.Allocation == AllocStatic {
				f.CType = f.StructName.Symbol() + f.Name + "t"
				f.encSize = uint64(sizeexpr.VarintSize(int64(f.MaxSize))) + uint64(f.MaxSize)
			}
		}
	case desc.GetType() == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		f.PBType = PBMessage
		f.CType = ident.FromDotted(desc.GetTypeName()).Symbol()
		f.SubMsgName = ident.FromDotted(desc.GetTypeName())
		// Encoded size comes from the submessage looked up in Dependencies by EncodedSize.
	default:
		return nil, fmt.Errorf("%w: field %q: unsupported type %v", options.ErrInputDescriptor, f.Name, desc.GetType())
	}

	f.FixedCount = opts.IsFixedCount()
	return f, nil
}

func isScalarType(t descriptorpb.FieldDescriptorProto_Type) bool {
	_, ok := scalarTypes[t]
	return ok
}

// MinTag implements Member.
func (f *Field) MinTag() int32 { return f.Tag }

// GetDependencies implements Member: a STATIC field depends on its own
// ctype (only meaningful for MESSAGE/ENUM, but mirrors the source exactly
// which returns ctype unconditionally for STATIC allocation).
func (f *Field) GetDependencies() []string {
	if f.Allocation == AllocStatic {
		return []string{f.CType}
	}
	return nil
}

// RequiresCustomFieldCallback mirrors requires_custom_field_callback.
func (f *Field) RequiresCustomFieldCallback() bool {
	return f.Allocation == AllocCallback && f.CallbackDatatype != "pb_callback_t"
}

// StructMember implements Member: the C struct field declaration.
func (f *Field) StructMember() string {
	var b strings.Builder
	switch f.Allocation {
	case AllocPointer:
		if f.Rule == Repeated || f.Rule == FixArray {
			fmt.Fprintf(&b, "    pb_size_t %s_count;\n", f.Name)
		}
		switch {
		case f.PBType == PBMessage:
			fmt.Fprintf(&b, "    struct _%s *%s;", f.CType, f.Name)
		case f.PBType == PBFixedLengthBytes:
			fmt.Fprintf(&b, "    %s (*%s)%s;", f.CType, f.Name, f.ArrayDecl)
		case (f.Rule == Repeated || f.Rule == FixArray) && (f.PBType == PBString || f.PBType == PBBytes):
			fmt.Fprintf(&b, "    %s **%s;", f.CType, f.Name)
		default:
			fmt.Fprintf(&b, "    %s *%s;", f.CType, f.Name)
		}
	case AllocCallback:
		fmt.Fprintf(&b, "    %s %s;", f.CallbackDatatype, f.Name)
	default:
		if f.Rule == Optional {
			fmt.Fprintf(&b, "    bool has_%s;\n", f.Name)
		} else if f.Rule == Repeated || f.Rule == FixArray {
			fmt.Fprintf(&b, "    pb_size_t %s_count;\n", f.Name)
		}
		fmt.Fprintf(&b, "    %s %s%s;", f.CType, f.Name, f.ArrayDecl)
	}
	return b.String()
}

// Types implements Member: special typedefs the field needs ahead of the
// struct that contains it.
func (f *Field) Types() string {
	if f.PBType == PBBytes && f.Allocation == AllocStatic {
		return fmt.Sprintf("typedef PB_BYTES_ARRAY_T(%d) %s;\n", f.MaxSize, f.CType)
	}
	return ""
}

// TagDefines implements Member.
func (f *Field) TagDefines(structName ident.Name) string {
	identifier := fmt.Sprintf("%s_%s_tag", structName.Symbol(), f.Name)
	return fmt.Sprintf("#define %-40s %d\n", identifier, f.Tag)
}

// FieldListEntry renders this field's X-macro entry, honoring oneof naming.
func (f *Field) FieldListEntry() string {
	name := f.Name
	if f.Rule == OneOfMember {
		if !f.Anonymous {
			name = fmt.Sprintf("(%s,%s,%s)", f.UnionName, f.Name, f.UnionName+"."+f.Name)
		} else {
			name = fmt.Sprintf("(%s,%s,%s)", f.UnionName, f.Name, f.Name)
		}
	}
	return fmt.Sprintf("X(a, %s, %s, %s, %s, %d)", f.Allocation, f.Rule, f.PBType, name, f.Tag)
}

// DataSize implements Member: the estimated in-memory footprint, used to
// auto-select descriptor width.
func (f *Field) DataSize(deps *Dependencies) uint64 {
	var size uint64
	switch {
	case f.Allocation == AllocPointer || f.PBType == PBExtension:
		size = 8
	case f.Allocation == AllocCallback:
		size = 16
	case f.PBType == PBMessage:
		if sub, ok := deps.Message(f.SubMsgName.Symbol()); ok {
			size = sub.DataSize(deps)
		} else {
			size = 256
		}
	case f.PBType == PBString || f.PBType == PBFixedLengthBytes:
		size = uint64(f.MaxSize)
	case f.PBType == PBBytes:
		size = uint64(f.MaxSize) + 4
	default:
		size = f.DataItemSize
	}

	if (f.Rule == Repeated || f.Rule == FixArray) && f.Allocation == AllocStatic {
		size *= uint64(f.MaxCount)
	}
	if f.Rule != Required && f.Rule != Singular {
		size += 4
	}
	if size%4 != 0 {
		size += 4 - (size % 4)
	}
	return size
}

// EncodedSize implements Member, per §4.4's encoded_size(deps).
func (f *Field) EncodedSize(deps *Dependencies) (sizeexpr.Size, bool) {
	if f.Allocation != AllocStatic {
		return sizeexpr.Size{}, false
	}

	var encsize sizeexpr.Size
	switch f.PBType {
	case PBMessage:
		sub, found := deps.Message(f.SubMsgName.Symbol())
		if found {
			sz, ok := sub.EncodedSize(deps)
			if ok {
				encsize = sz.Add(uint64(sizeexpr.VarintSize(int64(sz.UpperLimit()))))
			} else {
				me, _ := deps.Message(f.StructName.Symbol())
				if me != nil && sub.ProtoFile == me.ProtoFile {
					return sizeexpr.Size{}, false
				}
				encsize = sizeexpr.Symbol(f.SubMsgName.Symbol()+"size").Add(5)
			}
		} else {
			encsize = sizeexpr.Symbol(f.SubMsgName.Symbol() + "size").Add(5)
		}
	case PBEnum, PBUEnum:
		if enum, ok := deps.Enum(f.CType); ok {
			encsize = sizeexpr.Of(uint64(enum.EncodedSize()))
		} else {
			encsize = sizeexpr.Of(10)
		}
	default:
		encsize = sizeexpr.Of(f.encSize)
	}

	encsize = encsize.Add(uint64(sizeexpr.VarintSize(int64(f.Tag) << 3)))

	if f.Rule == Repeated || f.Rule == FixArray {
		encsize = encsize.Scale(uint64(f.MaxCount))
		if f.MaxCount == 1 {
			encsize = encsize.Add(1)
		}
	}
	return encsize, true
}

// Initializer implements Member, per §4.4's get_initializer (the
// inner_init_only=false form used directly inside a struct initializer).
func (f *Field) Initializer(nullInit bool) string {
	return f.initializerOuter(nullInit)
}

func (f *Field) innerInitializer(nullInit bool) string {
	switch {
	case f.PBType == PBMessage:
		if nullInit {
			return f.CType + "_init_zero"
		}
		return f.CType + "_init_default"
	case f.Default == "" || nullInit:
		switch f.PBType {
		case PBString:
			return `""`
		case PBBytes:
			return "{0, {0}}"
		case PBFixedLengthBytes:
			return "{0}"
		case PBEnum, PBUEnum:
			return "_" + f.CType + "_MIN"
		default:
			return "0"
		}
	default:
		switch f.PBType {
		case PBString:
			return `"` + escapeCString(f.Default) + `"`
		case PBBytes:
			return bytesLiteral(f.Default, true)
		case PBFixedLengthBytes:
			return bytesLiteral(f.Default, false)
		case PBFixed32, PBUInt32:
			return f.Default + "u"
		case PBFixed64, PBUInt64:
			return f.Default + "ull"
		case PBSFixed64, PBInt64:
			return f.Default + "ll"
		default:
			return f.Default
		}
	}
}

func (f *Field) initializerOuter(nullInit bool) string {
	inner := f.innerInitializer(nullInit)
	switch f.Allocation {
	case AllocStatic:
		switch f.Rule {
		case Repeated:
			parts := make([]string, f.MaxCount)
			for i := range parts {
				parts[i] = inner
			}
			return "0, {" + strings.Join(parts, ", ") + "}"
		case FixArray:
			parts := make([]string, f.MaxCount)
			for i := range parts {
				parts[i] = inner
			}
			return "{" + strings.Join(parts, ", ") + "}"
		case Optional:
			return "false, " + inner
		default:
			return inner
		}
	case AllocPointer:
		if f.Rule == Repeated {
			return "0, NULL"
		}
		return "NULL"
	case AllocCallback:
		if f.PBType == PBExtension {
			return "NULL"
		}
		return "{{NULL}, NULL}"
	}
	return inner
}

func escapeCString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func bytesLiteral(raw string, withLength bool) string {
	data := []byte(raw)
	if len(data) == 0 {
		if withLength {
			return "{0, {0}}"
		}
		return "{0}"
	}
	parts := make([]string, len(data))
	for i, c := range data {
		parts[i] = fmt.Sprintf("0x%02x", c)
	}
	joined := strings.Join(parts, ",")
	if withLength {
		return fmt.Sprintf("{%d, {%s}}", len(data), joined)
	}
	return fmt.Sprintf("{%s}", joined)
}
