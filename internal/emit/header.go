package emit

import (
	"github.com/toba/staticpb/internal/schema"
)

// Header renders the `.h` text for a schema.File, mirroring
// ProtoFile.generate_header()'s overall shape: include guard, C++ extern
// "C" wrapper, struct/enum typedefs in dependency order, tag #defines,
// extern descriptor declarations, then the closing guard.
func Header(file *schema.File, order []string, byName map[string]*schema.Message, deps *schema.Dependencies) []byte {
	var p Printer
	guard := HeaderGuard(file.Path)

	p.P("/* Generated by staticpb. DO NOT EDIT. */")
	p.Pf("#ifndef %s", guard)
	p.Pf("#define %s", guard)
	p.P(`#include <pb.h>`)
	for _, imp := range file.Imports {
		p.Pf("#include \"%s.pb.h\"", stripProtoExt(imp))
	}
	p.P()
	p.P(`#ifdef __cplusplus`)
	p.P(`extern "C" {`)
	p.P(`#endif`)
	p.P()

	for _, e := range file.Enums {
		p.P(e.String())
		p.P(e.MinMaxDefines())
	}

	for _, name := range order {
		msg, ok := byName[name]
		if !ok {
			continue
		}
		p.P(msg.Types())
		p.P(msg.String())
	}

	for _, msg := range file.Messages {
		p.P(msg.TagDefines())
	}

	for _, msg := range file.Messages {
		p.Pf("extern const pb_msgdesc_t %s_msg;", msg.Name.Symbol())
	}
	for _, msg := range file.Messages {
		p.Pf("#define %s_fields &%s_msg", msg.Name.Symbol(), msg.Name.Symbol())
	}

	for _, msg := range file.Messages {
		size, ok := msg.EncodedSize(deps)
		if ok {
			p.Pf("#define %s_size %s", msg.Name.Symbol(), size.String())
		} else {
			p.Pf("/* %s_size depends on runtime data and cannot be a compile-time constant */", msg.Name.Symbol())
		}
	}

	for _, ef := range file.Extensions {
		p.P(ef.ExtensionDecl())
	}

	p.P()
	p.P(`#ifdef __cplusplus`)
	p.P(`}`)
	p.P(`#endif`)
	p.Pf("#endif")
	return p.Bytes()
}

func stripProtoExt(path string) string {
	if len(path) > 6 && path[len(path)-6:] == ".proto" {
		return path[:len(path)-6]
	}
	return path
}
