package emit

import "strings"

// HeaderGuard renders an `#ifndef PB_FOO_PROTO_INCLUDED` style include guard
// from a .proto file path, mirroring nanopb_generator.py's
// make_identifier (uppercase every non-alphanumeric run to `_`).
func HeaderGuard(protoPath string) string {
	return "PB_" + MakeIdentifier(protoPath) + "_INCLUDED"
}

// MakeIdentifier uppercases a path/name and replaces every run of
// non-alphanumeric characters with a single underscore.
func MakeIdentifier(s string) string {
	var b strings.Builder
	lastWasSep := false
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if isAlnum {
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			lastWasSep = false
		} else if !lastWasSep {
			b.WriteByte('_')
			lastWasSep = true
		}
	}
	return b.String()
}
