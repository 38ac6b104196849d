// Package options implements the annotation record and its merge
// precedence (builtin defaults -> CLI settings -> file-level -> side-file
// patterns -> inline schema annotations), plus the per-run context that
// carries the side-file pattern table across a single generator invocation.
package options

import "github.com/toba/staticpb/internal/ident"

// AllocType is the field.type annotation: how a field's storage is
// allocated.
type AllocType int

const (
	// Default lets the field model pick STATIC when feasible, else CALLBACK.
	Default AllocType = iota
	Static
	Pointer
	Callback
	Ignore
	// Inline is the legacy alias rewritten to Static+FixedLength during
	// field construction.
	Inline
)

// DescriptorWidth is the descriptorsize annotation.
type DescriptorWidth int

const (
	// Auto lets the message model compute the narrowest width that fits.
	Auto DescriptorWidth = iota
	Width1
	Width2
	Width4
	Width8
)

// Record is the flat annotation bag of every option recognized anywhere in
// the schema (field, message, enum, oneof or file scoped). Every field is a
// pointer so that "unset" is distinguishable from "set to the zero value" --
// this is the "which fields were set" bitmap called for by the
// re-architecture away from the original's dynamic attribute bag, expressed
// as per-field optionality instead of a separate bitmask, which is the
// idiomatic Go rendering of the same idea.
type Record struct {
	Type             *AllocType
	MaxSize          *uint32
	MaxLength        *uint32
	MaxCount         *uint32
	FixedCount       *bool
	FixedLength      *bool
	IntSize          *int
	LongNames        *bool
	PackedEnum       *bool
	PackedStruct     *bool
	EnumToString     *bool
	MsgID            *int32
	NoUnions         *bool
	AnonymousOneof   *bool
	Proto3           *bool
	MangleNames      *ident.Mangling
	SkipMessage      *bool
	CallbackDatatype *string
	CallbackFunction *string
	DescriptorSize   *DescriptorWidth
}

func boolPtr(v bool) *bool                   { return &v }
func u32Ptr(v uint32) *uint32                { return &v }
func allocPtr(v AllocType) *AllocType        { return &v }
func manglePtr(v ident.Mangling) *ident.Mangling { return &v }

// Default builtin values, per §3/§4. These are the lowest-precedence layer
// merge starts from.
func Builtins() Record {
	return Record{
		Type:             allocPtr(Default),
		FixedCount:       boolPtr(false),
		FixedLength:      boolPtr(false),
		LongNames:        boolPtr(true),
		PackedEnum:       boolPtr(false),
		PackedStruct:     boolPtr(false),
		EnumToString:     boolPtr(false),
		NoUnions:         boolPtr(false),
		AnonymousOneof:   boolPtr(false),
		Proto3:           boolPtr(false),
		MangleNames:      manglePtr(ident.None),
		SkipMessage:      boolPtr(false),
		CallbackDatatype: strPtr("pb_callback_t"),
		CallbackFunction: strPtr("pb_default_field_callback"),
	}
}

func strPtr(v string) *string { return &v }

// Merge layers overlay on top of base: any field overlay sets wins,
// otherwise base's value (set or not) is kept. This is the single
// operation the four-stage precedence chain in §4.3 is built from.
func Merge(base, overlay Record) Record {
	out := base
	if overlay.Type != nil {
		out.Type = overlay.Type
	}
	if overlay.MaxSize != nil {
		out.MaxSize = overlay.MaxSize
	}
	if overlay.MaxLength != nil {
		out.MaxLength = overlay.MaxLength
	}
	if overlay.MaxCount != nil {
		out.MaxCount = overlay.MaxCount
	}
	if overlay.FixedCount != nil {
		out.FixedCount = overlay.FixedCount
	}
	if overlay.FixedLength != nil {
		out.FixedLength = overlay.FixedLength
	}
	if overlay.IntSize != nil {
		out.IntSize = overlay.IntSize
	}
	if overlay.LongNames != nil {
		out.LongNames = overlay.LongNames
	}
	if overlay.PackedEnum != nil {
		out.PackedEnum = overlay.PackedEnum
	}
	if overlay.PackedStruct != nil {
		out.PackedStruct = overlay.PackedStruct
	}
	if overlay.EnumToString != nil {
		out.EnumToString = overlay.EnumToString
	}
	if overlay.MsgID != nil {
		out.MsgID = overlay.MsgID
	}
	if overlay.NoUnions != nil {
		out.NoUnions = overlay.NoUnions
	}
	if overlay.AnonymousOneof != nil {
		out.AnonymousOneof = overlay.AnonymousOneof
	}
	if overlay.Proto3 != nil {
		out.Proto3 = overlay.Proto3
	}
	if overlay.MangleNames != nil {
		out.MangleNames = overlay.MangleNames
	}
	if overlay.SkipMessage != nil {
		out.SkipMessage = overlay.SkipMessage
	}
	if overlay.CallbackDatatype != nil {
		out.CallbackDatatype = overlay.CallbackDatatype
	}
	if overlay.CallbackFunction != nil {
		out.CallbackFunction = overlay.CallbackFunction
	}
	if overlay.DescriptorSize != nil {
		out.DescriptorSize = overlay.DescriptorSize
	}
	return out
}

// Accessors with builtin-equivalent defaults, for callers that merged onto
// Builtins() and so can assume every field they read is either explicitly
// resolved or safely defaulted here as a last resort.

func (r Record) AllocType() AllocType {
	if r.Type == nil {
		return Default
	}
	return *r.Type
}

func (r Record) HasMaxSize() (uint32, bool) {
	if r.MaxSize == nil {
		return 0, false
	}
	return *r.MaxSize, true
}

func (r Record) HasMaxCount() (uint32, bool) {
	if r.MaxCount == nil {
		return 0, false
	}
	return *r.MaxCount, true
}

func (r Record) IsFixedCount() bool {
	return r.FixedCount != nil && *r.FixedCount
}

func (r Record) IsFixedLength() bool {
	return r.FixedLength != nil && *r.FixedLength
}

func (r Record) IsProto3() bool {
	return r.Proto3 != nil && *r.Proto3
}

func (r Record) IsLongNames() bool {
	return r.LongNames == nil || *r.LongNames
}

func (r Record) Mangling() ident.Mangling {
	if r.MangleNames == nil {
		return ident.None
	}
	return *r.MangleNames
}

func (r Record) IsSkipMessage() bool {
	return r.SkipMessage != nil && *r.SkipMessage
}

func (r Record) IsNoUnions() bool {
	return r.NoUnions != nil && *r.NoUnions
}

func (r Record) IsAnonymousOneof() bool {
	return r.AnonymousOneof != nil && *r.AnonymousOneof
}

func (r Record) DescriptorWidth() DescriptorWidth {
	if r.DescriptorSize == nil {
		return Auto
	}
	return *r.DescriptorSize
}

func (r Record) CallbackType() string {
	if r.CallbackDatatype == nil {
		return "pb_callback_t"
	}
	return *r.CallbackDatatype
}
