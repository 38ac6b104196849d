package emit

import (
	"bytes"
	"compress/gzip"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/options"
	"github.com/toba/staticpb/internal/schema"
)

// Source renders the `.c` text for a schema.File: the pb_msgdesc_t
// definitions plus a gzip-embedded copy of the (SourceCodeInfo-trimmed)
// FileDescriptorProto, mirroring file.go's generateFileDescriptor almost
// exactly -- gzip a cloned, trimmed descriptor and emit it as a byte-array
// literal, then describe it with a var/comment pair instead of Go's
// proto-registry init() (there is no runtime protobuf registry on the C
// side; the embedded bytes exist so downstream tooling can recover the
// original schema without shipping a second copy of the .proto file).
func Source(file *schema.File, desc *descriptorpb.FileDescriptorProto, order []string, byName map[string]*schema.Message, deps *schema.Dependencies) ([]byte, error) {
	var p Printer
	p.P("/* Generated by staticpb. DO NOT EDIT. */")
	p.Pf("#include \"%s.pb.h\"", stripProtoExt(file.Path))
	p.P()

	for _, name := range order {
		msg, ok := byName[name]
		if !ok {
			continue
		}
		width := msg.RequiredDescriptorWidth(deps)
		p.Pf("PB_BIND(%s, %s, %s)", msg.Name.Symbol(), msg.Name.Symbol(), descriptorWidthMacro(width))
		p.P()
	}

	gz, err := gzipDescriptor(desc)
	if err != nil {
		return nil, err
	}
	emitByteArray(&p, fmt.Sprintf("%s_descriptor", MakeIdentifier(file.Path)), gz)

	return p.Bytes(), nil
}

func descriptorWidthMacro(w options.DescriptorWidth) string {
	switch w {
	case options.Width1:
		return "AUTO"
	case options.Width2:
		return "2"
	case options.Width4:
		return "4"
	case options.Width8:
		return "8"
	default:
		return "AUTO"
	}
}

func gzipDescriptor(desc *descriptorpb.FileDescriptorProto) ([]byte, error) {
	trimmed := proto.Clone(desc).(*descriptorpb.FileDescriptorProto)
	trimmed.SourceCodeInfo = nil

	raw, err := proto.Marshal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func emitByteArray(p *Printer, varName string, data []byte) {
	p.Pf("static const unsigned char %s[] = {", varName)
	p.In()
	p.Pf("/* %d bytes of a gzipped FileDescriptorProto */", len(data))
	for len(data) > 0 {
		n := 16
		if n > len(data) {
			n = len(data)
		}
		var line string
		for _, c := range data[:n] {
			line += fmt.Sprintf("0x%02x,", c)
		}
		p.P(line)
		data = data[n:]
	}
	p.Out()
	p.P("};")
}
