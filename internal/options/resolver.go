package options

// Context is the per-run mutable bag described in §5: the side-file pattern
// table and the process-wide CLI settings layer, constructed once at driver
// entry and discarded at exit. This replaces the source's global module-level
// singletons (the verbose flag, the pattern table, the matched-patterns set)
// with a value threaded explicitly through the resolver and emitter, per the
// §9 re-architecture note.
type Context struct {
	// CLISettings is the builtin-defaults-overriding layer supplied via
	// -settings flags or plugin parameters; it applies to every element in
	// every file processed by this run.
	CLISettings Record
	// SideFiles accumulates every loaded side-file pattern across the run.
	SideFiles SideFileTable
}

// NewContext returns a Context seeded with the builtin defaults merged
// under the given CLI settings.
func NewContext(cliSettings Record) *Context {
	return &Context{CLISettings: Merge(Builtins(), cliSettings)}
}

// Resolve implements the four-stage precedence chain of §4.3:
// enclosing (already carries builtins+CLI+file-level) -> side-file matches
// (by dotted qualified name) -> inline schema annotations, last writer wins,
// each stage preserving any field a higher-precedence source already set.
func (c *Context) Resolve(enclosing Record, proto3 bool, dotted string, inline Record) Record {
	rec := enclosing
	if proto3 {
		t := true
		rec.Proto3 = &t
	}

	if sideMatch := c.SideFiles.Match(dotted); sideMatch != (Record{}) {
		rec = Merge(rec, sideMatch)
	}

	rec = Merge(rec, inline)
	return rec
}

// ResolveFileLevel produces the file-level annotation layer (stage 2 of the
// overall chain in §3): the CLI settings merged under any annotations the
// file itself carries (its own inline options), ahead of any
// message/field-specific side-file or inline layer.
func (c *Context) ResolveFileLevel(fileInline Record) Record {
	return Merge(c.CLISettings, fileInline)
}
