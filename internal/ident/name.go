// Package ident implements the hierarchical name model shared by every
// component that needs to turn a schema path into an emitted symbol.
package ident

import "strings"

// Mangling selects how a schema's package prefix is folded into emitted
// identifiers.
type Mangling int

const (
	// None keeps the full package path as a name prefix.
	None Mangling = iota
	// StripPackage drops the package prefix but keeps nested-type paths.
	StripPackage
	// Flatten keeps only the terminal segment of a name, discarding nesting.
	Flatten
	// PackageInitials replaces the package prefix with the first letter of
	// each dot-separated package component.
	PackageInitials
)

// Name is an ordered, immutable sequence of identifier segments. Names are
// composed top-down as the schema tree is walked; nothing outside this
// package concatenates raw strings to build an emitted symbol.
type Name struct {
	parts []string
}

// New builds a Name from one or more raw segments, splitting any segment
// that itself contains underscores is NOT performed here -- callers pass
// already-split segments.
func New(parts ...string) Name {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return Name{parts: out}
}

// FromDotted splits a dotted qualified name ("pkg.Outer.Inner") into a Name.
// A leading dot (the fully-qualified form protobuf descriptors use) is
// stripped first.
func FromDotted(dotted string) Name {
	dotted = strings.TrimPrefix(dotted, ".")
	if dotted == "" {
		return Name{}
	}
	return New(strings.Split(dotted, ".")...)
}

// IsZero reports whether the name has no segments.
func (n Name) IsZero() bool { return len(n.parts) == 0 }

// Append returns a new Name with segment appended.
func (n Name) Append(segment string) Name {
	if segment == "" {
		return n
	}
	parts := make([]string, len(n.parts), len(n.parts)+1)
	copy(parts, n.parts)
	parts = append(parts, segment)
	return Name{parts: parts}
}

// Join returns a new Name with other's segments appended after n's.
func (n Name) Join(other Name) Name {
	if other.IsZero() {
		return n
	}
	parts := make([]string, len(n.parts)+len(other.parts))
	copy(parts, n.parts)
	copy(parts[len(n.parts):], other.parts)
	return Name{parts: parts}
}

// Parts returns the segments, in order. The returned slice must not be
// mutated.
func (n Name) Parts() []string { return n.parts }

// Last returns the terminal segment, or "" for a zero Name.
func (n Name) Last() string {
	if len(n.parts) == 0 {
		return ""
	}
	return n.parts[len(n.parts)-1]
}

// DropLast returns a Name with its terminal segment removed.
func (n Name) DropLast() Name {
	if len(n.parts) == 0 {
		return n
	}
	return Name{parts: n.parts[:len(n.parts)-1]}
}

// Symbol renders the name as an underscore-joined C identifier, the form
// used for every emitted struct, enum, macro and function name.
func (n Name) Symbol() string { return strings.Join(n.parts, "_") }

// Qualified renders the name as a dot-joined path, the form used for
// side-file pattern matching and diagnostics.
func (n Name) Qualified() string { return strings.Join(n.parts, ".") }

// String implements fmt.Stringer as the underscore-joined symbol form,
// matching how the name model is used everywhere code is emitted.
func (n Name) String() string { return n.Symbol() }

// Equal reports structural equality.
func (n Name) Equal(other Name) bool {
	if len(n.parts) != len(other.parts) {
		return false
	}
	for i := range n.parts {
		if n.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}

// Initials concatenates the first character of each segment, used by
// PackageInitials mangling.
func Initials(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		if p != "" {
			b.WriteByte(p[0])
		}
	}
	return b.String()
}

// Mangle rewrites a dotted type reference ("." + pkg + "." + Type...)
// according to policy, given the file's package name. It mirrors
// ProtoFile.mangle_field_typename.
func Mangle(policy Mangling, pkg string, typeName string) string {
	switch policy {
	case Flatten:
		segs := strings.Split(typeName, ".")
		return "." + segs[len(segs)-1]
	case PackageInitials:
		stripPrefix := "." + pkg
		if strings.HasPrefix(typeName, stripPrefix) {
			replacement := Initials(strings.Split(pkg, "."))
			return "." + replacement + strings.TrimPrefix(typeName, stripPrefix)
		}
		return typeName
	case StripPackage:
		stripPrefix := "." + pkg
		if strings.HasPrefix(typeName, stripPrefix) {
			return strings.TrimPrefix(typeName, stripPrefix)
		}
		return typeName
	default:
		return typeName
	}
}

// BaseName returns the name prefix derived from a file's declared package,
// honoring the mangling policy the way ProtoFile.parse does when computing
// create_name's base_name.
func BaseName(policy Mangling, pkg string) Name {
	if pkg == "" {
		return Name{}
	}
	if policy == PackageInitials {
		return New(Initials(strings.Split(pkg, ".")))
	}
	return New(strings.Split(pkg, ".")...)
}

// Create builds the final emitted name for a schema-local path (e.g. a
// message's nested-type path) given the file's base name and mangling
// policy, mirroring ProtoFile.parse's create_name closure.
func Create(policy Mangling, base Name, local Name) Name {
	switch policy {
	case None, PackageInitials:
		return base.Join(local)
	case StripPackage:
		return local
	default: // Flatten
		return New(local.Last())
	}
}
