// Package sizeexpr implements the symbolic encoded-size algebra: a sum of a
// constant plus a list of symbolic terms, with addition, scalar
// multiplication and a conservative upper bound, but no term-to-term
// simplification.
package sizeexpr

import (
	"fmt"
	"strings"
)

// MaxUint32 is the saturation value UpperLimit returns once any symbolic
// term is present, standing in for "unbounded at generation time, bounded
// by the wire format's own ceiling".
const MaxUint32 = (1 << 32) - 1

// Size is constant + Σ terms. The zero value is the size zero.
type Size struct {
	Constant uint64
	Terms    []string
}

// Of builds a Size from a bare constant.
func Of(constant uint64) Size {
	return Size{Constant: constant}
}

// Symbol builds a Size consisting of a single symbolic term.
func Symbol(term string) Size {
	return Size{Terms: []string{term}}
}

// Plus returns the sum of two sizes. Terms are concatenated, never merged.
func (s Size) Plus(other Size) Size {
	out := Size{Constant: s.Constant + other.Constant}
	out.Terms = append(out.Terms, s.Terms...)
	out.Terms = append(out.Terms, other.Terms...)
	return out
}

// Add returns s + constant.
func (s Size) Add(constant uint64) Size {
	return Size{Constant: s.Constant + constant, Terms: s.Terms}
}

// AddSymbol returns s with an additional bare symbolic term.
func (s Size) AddSymbol(term string) Size {
	out := Size{Constant: s.Constant}
	out.Terms = append(out.Terms, s.Terms...)
	out.Terms = append(out.Terms, term)
	return out
}

// Scale multiplies both the constant and every term by n, rewriting each
// term textually as "n*term" rather than evaluating it.
func (s Size) Scale(n uint64) Size {
	out := Size{Constant: s.Constant * n}
	if n == 1 {
		out.Terms = append(out.Terms, s.Terms...)
		return out
	}
	out.Terms = make([]string, len(s.Terms))
	for i, t := range s.Terms {
		out.Terms[i] = fmt.Sprintf("%d*%s", n, t)
	}
	return out
}

// Bounded reports whether the size has no outstanding symbolic terms.
func (s Size) Bounded() bool { return len(s.Terms) == 0 }

// UpperLimit returns the constant when the size carries no symbolic terms,
// otherwise a saturating ceiling (the largest 32-bit unsigned value), used
// by callers that need a conservative numeric bound (e.g. to size a
// submessage's own length-prefix varint).
func (s Size) UpperLimit() uint64 {
	if s.Bounded() {
		return s.Constant
	}
	return MaxUint32
}

// String renders the size as a bare constant, or a parenthesized sum when
// symbolic terms are present.
func (s Size) String() string {
	if s.Bounded() {
		return fmt.Sprintf("%d", s.Constant)
	}
	parts := make([]string, 0, len(s.Terms)+1)
	parts = append(parts, fmt.Sprintf("%d", s.Constant))
	parts = append(parts, s.Terms...)
	return "(" + strings.Join(parts, " + ") + ")"
}
