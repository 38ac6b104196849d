package schema

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/ident"
	"github.com/toba/staticpb/internal/options"
	"github.com/toba/staticpb/internal/sizeexpr"
)

// ExtensionRange is the CALLBACK-allocated pb_extension_t slot a message
// gets when its descriptor declares `extensions`, per §4.5.
type ExtensionRange struct {
	StructName ident.Name
}

func (e *ExtensionRange) MinTag() int32 { return 0 }

func (e *ExtensionRange) StructMember() string {
	return "    pb_extension_t *extensions;"
}

func (e *ExtensionRange) Types() string { return "" }

func (e *ExtensionRange) Initializer(nullInit bool) string { return "NULL" }

func (e *ExtensionRange) TagDefines(structName ident.Name) string { return "" }

func (e *ExtensionRange) GetDependencies() []string { return nil }

func (e *ExtensionRange) DataSize(deps *Dependencies) uint64 { return 8 }

func (e *ExtensionRange) EncodedSize(deps *Dependencies) (sizeexpr.Size, bool) {
	return sizeexpr.Size{}, false
}

// ExtensionField is a top-level `extend` declaration, modeled as a field
// belonging to a one-field pseudo-message, per §4.5/class ExtensionField.
type ExtensionField struct {
	Field      *Field
	ExtendeeMsg ident.Name
}

// NewExtensionField constructs an ExtensionField, mirroring
// ExtensionField.__init__: it builds the member field exactly like a
// normal field, then retags it PBExtension so it renders through a
// pb_extension_t instead of as an ordinary struct member.
func NewExtensionField(extendee ident.Name, fieldStructName ident.Name, desc *descriptorpb.FieldDescriptorProto, opts options.Record) (*ExtensionField, error) {
	f, err := NewField(fieldStructName, desc, opts)
	if err != nil {
		return nil, err
	}
	f.PBType = PBExtension
	return &ExtensionField{Field: f, ExtendeeMsg: extendee}, nil
}

// ExtensionDecl renders the `extern const pb_extension_type_t X;` forward
// declaration, mirroring ExtensionField.extension_decl().
func (ef *ExtensionField) ExtensionDecl() string {
	return fmt.Sprintf("extern const pb_extension_type_t %s;\n", ef.Field.StructName.Symbol())
}

// ExtensionDef renders the matching definition, mirroring
// ExtensionField.extension_def().
func (ef *ExtensionField) ExtensionDef() string {
	name := ef.Field.StructName.Symbol()
	return fmt.Sprintf(
		"typedef struct {\n%s\n} %s_struct;\n\n"+
			"static const pb_field_t %s_field = %s;\n\n"+
			"const pb_extension_type_t %s = {\n"+
			"    NULL,\n"+
			"    NULL,\n"+
			"    &%s_field\n"+
			"};\n",
		ef.Field.StructMember(), name, name, ef.fieldMacro(), name, name,
	)
}

func (ef *ExtensionField) fieldMacro() string {
	return fmt.Sprintf("PB_FIELD(%d, %s, %s, OPTIONAL, STATIC, FIRST, %s, 0)",
		ef.Field.Tag, ef.Field.PBType, ef.Field.Rule, ef.Field.StructName.Symbol())
}
