package schema

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/ident"
	"github.com/toba/staticpb/internal/options"
	"github.com/toba/staticpb/internal/sizeexpr"
)

// Message is a single static C struct generated from a DescriptorProto,
// per §4.7/class Message.
type Message struct {
	Name      ident.Name
	ProtoFile string // the originating .proto path, used to break same-file recursive size lookups
	Members   []Member
	HasExtensionRange bool
	descriptorWidth   options.DescriptorWidth
}

// NewMessage builds a Message from a DescriptorProto and its resolved
// per-field annotations, mirroring Message.load_fields(): fields belonging
// to a oneof are routed into their Oneof instead of becoming standalone
// Members, and an extensions declaration contributes a trailing
// ExtensionRange member.
func NewMessage(protoFile string, name ident.Name, desc *descriptorpb.DescriptorProto, fieldOpts func(*descriptorpb.FieldDescriptorProto) options.Record, oneofOpts func(int) (string, bool)) (*Message, error) {
	m := &Message{Name: name, ProtoFile: protoFile}

	oneofs := make([]*Oneof, len(desc.GetOneofDecl()))
	for i, od := range desc.GetOneofDecl() {
		_, anon := oneofOpts(i)
		oneofs[i] = NewOneof(name, od.GetName(), anon)
	}

	for _, fd := range desc.GetField() {
		opts := fieldOpts(fd)
		f, err := NewField(name, fd, opts)
		if err != nil {
			return nil, err
		}
		if fd.OneofIndex != nil && !fd.GetProto3Optional() {
			idx := int(fd.GetOneofIndex())
			if idx < 0 || idx >= len(oneofs) {
				return nil, fmt.Errorf("%w: %s.%s: oneof_index out of range", options.ErrInputDescriptor, name, fd.GetName())
			}
			oneofs[idx].AddField(f)
			continue
		}
		m.Members = append(m.Members, f)
	}

	for _, o := range oneofs {
		if len(o.Fields) > 0 {
			m.Members = append(m.Members, o)
		}
	}

	if len(desc.GetExtensionRange()) > 0 {
		m.Members = append(m.Members, &ExtensionRange{StructName: name})
		m.HasExtensionRange = true
	}

	return m, nil
}

// GetDependencies mirrors Message.get_dependencies(): the set of
// distinct ctypes every STATIC member needs forward-declared or included.
func (m *Message) GetDependencies() []string {
	seen := map[string]bool{}
	var out []string
	for _, mem := range m.Members {
		for _, d := range mem.GetDependencies() {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// Fields flattens oneof members back into a single ordered Field list,
// mirroring Message.all_fields().
func (m *Message) Fields() []*Field {
	var out []*Field
	for _, mem := range m.Members {
		switch t := mem.(type) {
		case *Field:
			out = append(out, t)
		case *Oneof:
			out = append(out, t.Fields...)
		}
	}
	return out
}

// FieldForTag mirrors Message.field_for_tag().
func (m *Message) FieldForTag(tag int32) (*Field, bool) {
	for _, f := range m.Fields() {
		if f.Tag == tag {
			return f, true
		}
	}
	return nil, false
}

// CountAllFields mirrors Message.count_all_fields().
func (m *Message) CountAllFields() int { return len(m.Fields()) }

// CountRequiredFields mirrors Message.count_required_fields().
func (m *Message) CountRequiredFields() int {
	n := 0
	for _, f := range m.Fields() {
		if f.Rule == Required {
			n++
		}
	}
	return n
}

// fieldsDeclarationOrder mirrors fields_declaration()'s tag-ascending sort
// of the top-level member list (oneofs sort by their lowest member tag).
func (m *Message) fieldsDeclarationOrder() []Member {
	out := append([]Member(nil), m.Members...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinTag() < out[j].MinTag() })
	return out
}

// String renders the `typedef struct _Name {...} Name;` declaration,
// mirroring Message.__str__(): an empty message gets a dummy byte field so
// the struct is never zero-sized, matching the source's explicit
// workaround for the C rule against empty structs.
func (m *Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "typedef struct _%s {\n", m.Name.Symbol())
	ordered := m.fieldsDeclarationOrder()
	if len(ordered) == 0 {
		b.WriteString("    char dummy_field;\n")
	}
	for _, mem := range ordered {
		b.WriteString(mem.StructMember())
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "} %s;\n", m.Name.Symbol())
	return b.String()
}

// Types renders every member's special typedef ahead of the struct itself.
func (m *Message) Types() string {
	var b strings.Builder
	for _, mem := range m.Members {
		b.WriteString(mem.Types())
	}
	return b.String()
}

// TagDefines renders every member's `#define X_field_tag N` macros.
func (m *Message) TagDefines() string {
	var b strings.Builder
	for _, mem := range m.Members {
		b.WriteString(mem.TagDefines(m.Name))
	}
	return b.String()
}

// DataSize mirrors Message.data_size(): the estimated in-memory footprint
// used to auto-select the descriptor width.
func (m *Message) DataSize(deps *Dependencies) uint64 {
	var total uint64
	for _, mem := range m.Members {
		total += mem.DataSize(deps)
	}
	return total
}

// EncodedSize mirrors Message.encoded_size(): the sum of every member's
// encoded size, or (false) if any member's size cannot be determined
// statically (for example a CALLBACK field or an extension range). A
// submessage missing from deps contributes a symbolic `<Name>size` term
// rather than making the size undeterminable.
func (m *Message) EncodedSize(deps *Dependencies) (sizeexpr.Size, bool) {
	total := sizeexpr.Of(0)
	for _, mem := range m.Members {
		sz, ok := mem.EncodedSize(deps)
		if !ok {
			return sizeexpr.Size{}, false
		}
		total = total.Plus(sz)
	}
	return total, true
}

// RequiredDescriptorWidth mirrors required_descriptor_width()'s width
// selection: the narrowest pb_field word size (1/2/4/8 bytes) whose
// encoding limits comfortably bound this message's largest tag, struct
// offset, array count and data size.
func (m *Message) RequiredDescriptorWidth(deps *Dependencies) options.DescriptorWidth {
	if m.descriptorWidth != options.Auto {
		return m.descriptorWidth
	}

	var maxTag int32
	var maxCount uint32
	var maxDataSize uint64
	for _, f := range m.Fields() {
		if f.Tag > maxTag {
			maxTag = f.Tag
		}
		if f.MaxCount > maxCount {
			maxCount = f.MaxCount
		}
		if s := f.DataSize(deps); s > maxDataSize {
			maxDataSize = s
		}
	}
	offset := m.DataSize(deps)

	switch {
	case maxCount > 0xFFFF:
		return options.Width8
	case maxTag > 0x3FF || offset > 0xFFFF || maxCount > 0x0FFF || maxDataSize > 0x0FFF:
		return options.Width4
	case maxTag > 0x3F || offset > 0xFF:
		return options.Width2
	default:
		return options.Width1
	}
}

// SetDescriptorWidth overrides the auto-selected width, mirroring the
// descriptorsize annotation's effect when explicitly set to non-Auto.
func (m *Message) SetDescriptorWidth(w options.DescriptorWidth) { m.descriptorWidth = w }
