// Package emit renders a schema.File into deterministic C header and
// source text, following the teacher's own buffered, Fprintf-style
// emission idiom (generator.go's Generator.P/In/Out) rather than reaching
// for a templating library -- the teacher itself builds output by hand
// with a buffer, so this package does too.
package emit

import (
	"bytes"
	"fmt"
)

// Printer accumulates generated text with tab-stop indentation, the same
// shape as Generator.P/In/Out in the teacher.
type Printer struct {
	buf    bytes.Buffer
	indent string
}

// P writes one line, indented to the current depth.
func (p *Printer) P(args ...any) {
	p.buf.WriteString(p.indent)
	for _, a := range args {
		switch v := a.(type) {
		case string:
			p.buf.WriteString(v)
		case int, int32, int64, uint, uint32, uint64:
			fmt.Fprintf(&p.buf, "%d", v)
		default:
			fmt.Fprintf(&p.buf, "%v", v)
		}
	}
	p.buf.WriteByte('\n')
}

// Pf writes one formatted, indented line.
func (p *Printer) Pf(format string, args ...any) {
	p.buf.WriteString(p.indent)
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// In increases indentation by one tab stop.
func (p *Printer) In() { p.indent += "    " }

// Out decreases indentation by one tab stop.
func (p *Printer) Out() {
	if len(p.indent) >= 4 {
		p.indent = p.indent[:len(p.indent)-4]
	}
}

// Bytes returns the accumulated text.
func (p *Printer) Bytes() []byte { return p.buf.Bytes() }

// String returns the accumulated text.
func (p *Printer) String() string { return p.buf.String() }
