package schema

import (
	"fmt"
	"strings"

	"github.com/toba/staticpb/internal/ident"
	"github.com/toba/staticpb/internal/sizeexpr"
)

// Oneof is a proto oneof rendered as a tagged union member, per §4.6/class
// OneOf.
type Oneof struct {
	Name        string
	StructName  ident.Name
	Fields      []*Field
	Anonymous   bool
	ctype       string
}

// NewOneof constructs an empty Oneof ready for AddField calls, mirroring
// OneOf.__init__.
func NewOneof(structName ident.Name, name string, anonymous bool) *Oneof {
	o := &Oneof{Name: name, StructName: structName, Anonymous: anonymous}
	o.ctype = structName.Append(name).Symbol()
	return o
}

// AddField appends a member field, mirroring OneOf.add_field(): every
// member shares the oneof's tag allocation and is marked as the ONEOF rule.
func (o *Oneof) AddField(f *Field) {
	f.Rule = OneOfMember
	f.UnionName = o.Name
	f.Anonymous = o.Anonymous
	o.Fields = append(o.Fields, f)
}

// MinTag implements Member: the lowest tag among members, used for
// fields_declaration ordering.
func (o *Oneof) MinTag() int32 {
	min := int32(-1)
	for _, f := range o.Fields {
		if min == -1 || f.Tag < min {
			min = f.Tag
		}
	}
	return min
}

// CType is the name of the generated union/struct type.
func (o *Oneof) CType() string { return o.ctype }

// Types implements Member: each member's own special typedefs, plus a
// named typedef for the union itself when the oneof is not anonymous (an
// anonymous oneof's union has no name of its own -- it is emitted inline
// by StructMember -- so it needs no typedef here).
func (o *Oneof) Types() string {
	var b strings.Builder
	for _, f := range o.Fields {
		b.WriteString(f.Types())
	}
	if o.Anonymous {
		return b.String()
	}
	fmt.Fprintf(&b, "typedef union _%s {\n", o.ctype)
	for _, f := range o.Fields {
		b.WriteString(f.StructMember())
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "} %s;\n", o.ctype)
	return b.String()
}

// StructMember implements Member: the tag field plus the embedded union,
// mirroring the source's rendering of a oneof as
// `pb_size_t which_X; union { ... } X;`. An anonymous oneof emits the same
// union body, but as an unnamed, untyped anonymous union so its members
// still share storage while appearing directly in the enclosing struct's
// namespace, rather than being hoisted out as independent fields.
func (o *Oneof) StructMember() string {
	name := o.Name
	if o.Anonymous {
		var b strings.Builder
		fmt.Fprintf(&b, "    pb_size_t which_%s;\n", name)
		b.WriteString("    union {\n")
		for _, f := range o.Fields {
			b.WriteString("    " + f.StructMember())
			b.WriteString("\n")
		}
		b.WriteString("    };")
		return b.String()
	}
	return fmt.Sprintf("    pb_size_t which_%s;\n    %s %s;", name, o.ctype, name)
}

// Initializer implements Member: a oneof zero-initializes to its
// discriminant at 0 and its first member's zero value.
func (o *Oneof) Initializer(nullInit bool) string {
	if len(o.Fields) == 0 {
		return "0"
	}
	if o.Anonymous {
		return "0, " + o.Fields[0].Initializer(true)
	}
	return fmt.Sprintf("0, {%s}", o.Fields[0].Initializer(true))
}

// TagDefines implements Member.
func (o *Oneof) TagDefines(structName ident.Name) string {
	var b strings.Builder
	for _, f := range o.Fields {
		b.WriteString(f.TagDefines(structName))
	}
	return b.String()
}

// GetDependencies implements Member.
func (o *Oneof) GetDependencies() []string {
	var deps []string
	for _, f := range o.Fields {
		deps = append(deps, f.GetDependencies()...)
	}
	return deps
}

// DataSize implements Member: the union's size is the size of its largest
// member, per the "sizeof(union{...})" idiom the source relies on the C
// compiler to compute; here we compute that maximum directly instead.
func (o *Oneof) DataSize(deps *Dependencies) uint64 {
	var max uint64
	for _, f := range o.Fields {
		if s := f.DataSize(deps); s > max {
			max = s
		}
	}
	return max + 4 // plus the which_X discriminant
}

// EncodedSize mirrors OneOf.encoded_size(): every numeric (statically
// known) member size is folded into a single upper bound via max(), while
// any symbolic member sizes are kept as opaque alternatives inside a
// "sizeof(union{...})" expression the C compiler resolves, because the
// textual size algebra has no max() operator of its own. A single symbolic
// member with no numeric alternatives is returned as that bare symbol
// instead of a one-element union, matching the original's len(symbols)==1
// shortcut. Either symbolic path adds the 5-byte tag-class overhead the
// original's EncodedSize(5, [...]) bakes in for a oneof's wire tag.
func (o *Oneof) EncodedSize(deps *Dependencies) (sizeexpr.Size, bool) {
	var numeric []uint64
	var symbolic []sizeexpr.Size
	for _, f := range o.Fields {
		sz, ok := f.EncodedSize(deps)
		if !ok {
			return sizeexpr.Size{}, false
		}
		if sz.Bounded() {
			numeric = append(numeric, sz.Constant)
		} else {
			symbolic = append(symbolic, sz)
		}
	}

	var maxNumeric uint64
	for _, n := range numeric {
		if n > maxNumeric {
			maxNumeric = n
		}
	}

	if len(symbolic) == 0 {
		return sizeexpr.Of(maxNumeric), true
	}

	if len(symbolic) == 1 && len(numeric) == 0 {
		return symbolic[0].Add(5), true
	}

	// More than one alternative (mixed numeric/symbolic, or several
	// symbolic members): express the whole oneof as an opaque term naming
	// the union's runtime sizeof, since the members cannot be reduced to a
	// single textual expression.
	var alternatives []string
	if len(numeric) > 0 {
		alternatives = append(alternatives, fmt.Sprintf("char f%d[%d];", len(alternatives), maxNumeric))
	}
	for _, sz := range symbolic {
		alternatives = append(alternatives, fmt.Sprintf("char f%d[%s];", len(alternatives), sz.String()))
	}
	return sizeexpr.Symbol(fmt.Sprintf("sizeof(union{%s})", strings.Join(alternatives, " "))).Add(5), true
}
