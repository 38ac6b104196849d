package schema

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/ident"
	"github.com/toba/staticpb/internal/options"
	"github.com/toba/staticpb/internal/sizeexpr"
)

// EnumValue is one named constant of an Enum.
type EnumValue struct {
	CName string
	Value int32
}

// Enum is the static C enum generated for a proto enum, per class Enum.
type Enum struct {
	Name      ident.Name
	Values    []EnumValue
	Packed    bool
	LongNames bool
	// Negative marks an enum with at least one negative value: such an enum
	// cannot use the packed/UENUM representation and is always signed.
	Negative bool
}

// NewEnum constructs an Enum from an EnumDescriptorProto, mirroring
// class Enum.__init__.
func NewEnum(parent ident.Name, desc *descriptorpb.EnumDescriptorProto, opts options.Record) *Enum {
	e := &Enum{
		Name:      parent.Append(desc.GetName()),
		Packed:    opts.PackedEnum != nil && *opts.PackedEnum,
		LongNames: opts.IsLongNames(),
	}

	for _, v := range desc.GetValue() {
		cname := v.GetName()
		if e.LongNames {
			cname = e.Name.Append(v.GetName()).Symbol()
		}
		e.Values = append(e.Values, EnumValue{CName: cname, Value: v.GetNumber()})
		if v.GetNumber() < 0 {
			e.Negative = true
		}
	}
	return e
}

// HasNegative reports whether any value is negative, mirroring
// Enum.has_negative().
func (e *Enum) HasNegative() bool { return e.Negative }

// EncodedSize mirrors Enum.encoded_size(): the widest varint any value in
// the enum could require.
func (e *Enum) EncodedSize() int {
	best := 1
	for _, v := range e.Values {
		size := sizeexpr.VarintSize(int64(v.Value))
		if size > best {
			best = size
		}
	}
	return best
}

// CType returns the C typedef identifier for this enum.
func (e *Enum) CType() string {
	return e.Name.Symbol()
}

// String renders the `typedef enum {...} Name;` declaration.
func (e *Enum) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "typedef enum _%s {\n", e.Name.Symbol())
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = fmt.Sprintf("    %s = %d", v.CName, v.Value)
	}
	b.WriteString(strings.Join(parts, ",\n"))
	fmt.Fprintf(&b, "\n} %s;\n", e.Name.Symbol())
	return b.String()
}

// MinMaxDefines renders the `_Name_MIN`/`_Name_MAX`/`_Name_ARRAYSIZE` macros
// the source emits alongside every enum typedef.
func (e *Enum) MinMaxDefines() string {
	if len(e.Values) == 0 {
		return ""
	}
	min, max := e.Values[0], e.Values[0]
	for _, v := range e.Values[1:] {
		if v.Value < min.Value {
			min = v
		}
		if v.Value > max.Value {
			max = v
		}
	}
	return fmt.Sprintf("#define _%s_MIN %s\n#define _%s_MAX %s\n#define _%s_ARRAYSIZE ((%s)(%s+1))\n",
		e.Name.Symbol(), min.CName, e.Name.Symbol(), max.CName, e.Name.Symbol(), e.Name.Symbol(), max.CName)
}

// EnumToStringDecl renders the optional `const char *Name_name(Name v)`
// prototype when enum_to_string is set.
func (e *Enum) EnumToStringDecl() string {
	return fmt.Sprintf("const char *%s_name(%s v);\n", e.Name.Symbol(), e.Name.Symbol())
}
