package schema

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/toba/staticpb/internal/ident"
	"github.com/toba/staticpb/internal/options"
)

// File is the schema built from a single FileDescriptorProto, per §4.8/
// class ProtoFile. It owns every Message, Enum and ExtensionField declared
// directly in the file; cross-file references are resolved later through a
// shared Dependencies table once every file in the request has been parsed.
type File struct {
	Path     string
	Package  string
	Mangling ident.Mangling

	Messages   []*Message
	Enums      []*Enum
	Extensions []*ExtensionField

	Imports []string
}

// ResolveOptions is the per-field/message/enum/oneof annotation lookup a
// caller supplies when parsing a file, threading through the Context's
// builtin/CLI/side-file/inline precedence chain from §4.3.
type ResolveOptions interface {
	ForField(dotted string, proto3 bool, inline []*descriptorpb.UninterpretedOption) (options.Record, error)
	ForMessage(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, error)
	ForEnum(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, error)
	ForOneof(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, string, bool, error)
	ForFile(fileOpts *descriptorpb.FileOptions) options.Record
}

// ParseFile builds a File from a FileDescriptorProto, mirroring
// ProtoFile.parse(): messages and enums are created in declaration order,
// nested types are visited depth-first under their enclosing message's
// name, and every identifier is produced through the file's single naming
// policy (mirroring the create_name/mangle_field_typename closures).
func ParseFile(desc *descriptorpb.FileDescriptorProto, resolve ResolveOptions) (*File, error) {
	fileRec, err := fileRecord(desc, resolve)
	if err != nil {
		return nil, err
	}

	f := &File{
		Path:     desc.GetName(),
		Package:  desc.GetPackage(),
		Mangling: fileRec.Mangling(),
		Imports:  desc.GetDependency(),
	}

	base := ident.BaseName(f.Mangling, desc.GetPackage())

	qualify := func(parent, name string) string {
		if parent == "" {
			return name
		}
		return parent + "." + name
	}

	var walk func(parent ident.Name, dottedParent string, msgs []*descriptorpb.DescriptorProto) error
	walk = func(parent ident.Name, dottedParent string, msgs []*descriptorpb.DescriptorProto) error {
		for _, md := range msgs {
			local := parent.Append(md.GetName())
			name := ident.Create(f.Mangling, base, local)
			dotted := qualify(dottedParent, md.GetName())

			msgRec, err := resolve.ForMessage(dotted, md.GetOptions().GetUninterpretedOption())
			if err != nil {
				return err
			}
			if msgRec.IsSkipMessage() {
				continue
			}

			for _, ed := range md.GetEnumType() {
				enumDotted := dotted + "." + ed.GetName()
				enumRec, err := resolve.ForEnum(enumDotted, ed.GetOptions().GetUninterpretedOption())
				if err != nil {
					return err
				}
				f.Enums = append(f.Enums, NewEnum(name, ed, enumRec))
			}

			fieldOpts := func(fd *descriptorpb.FieldDescriptorProto) options.Record {
				fieldDotted := dotted + "." + fd.GetName()
				rec, ferr := resolve.ForField(fieldDotted, desc.GetSyntax() == "proto3", fd.GetOptions().GetUninterpretedOption())
				if ferr != nil {
					err = ferr
				}
				return rec
			}
			oneofOpts := func(i int) (string, bool) {
				od := md.GetOneofDecl()[i]
				oneofDotted := dotted + ".oneof." + od.GetName()
				rec, anonName, anon, oerr := resolve.ForOneof(oneofDotted, od.GetOptions().GetUninterpretedOption())
				if oerr != nil {
					err = oerr
				}
				_ = rec
				return anonName, anon
			}

			fieldsDesc := md
			if f.Mangling != ident.None {
				fieldsDesc = proto.Clone(md).(*descriptorpb.DescriptorProto)
				for _, fd := range fieldsDesc.GetField() {
					if fd.TypeName != nil {
						fd.TypeName = proto.String(ident.Mangle(f.Mangling, desc.GetPackage(), fd.GetTypeName()))
					}
				}
			}
			msg, merr := NewMessage(desc.GetName(), name, fieldsDesc, fieldOpts, oneofOpts)
			if merr != nil {
				return merr
			}
			if err != nil {
				return err
			}
			if width := msgRec.DescriptorWidth(); width != options.Auto {
				msg.SetDescriptorWidth(width)
			}
			f.Messages = append(f.Messages, msg)

			if err := walk(local, dotted, md.GetNestedType()); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(ident.New(), desc.GetPackage(), desc.GetMessageType()); err != nil {
		return nil, err
	}

	for _, ed := range desc.GetEnumType() {
		dotted := qualify(desc.GetPackage(), ed.GetName())
		enumRec, err := resolve.ForEnum(dotted, ed.GetOptions().GetUninterpretedOption())
		if err != nil {
			return nil, err
		}
		name := ident.Create(f.Mangling, base, ident.New(ed.GetName()))
		f.Enums = append(f.Enums, NewEnum(name.DropLast(), ed, enumRec))
	}

	for _, fd := range desc.GetExtension() {
		dotted := qualify(desc.GetPackage(), fd.GetName())
		rec, err := resolve.ForField(dotted, false, fd.GetOptions().GetUninterpretedOption())
		if err != nil {
			return nil, err
		}
		if f.Mangling != ident.None && fd.TypeName != nil {
			fd = proto.Clone(fd).(*descriptorpb.FieldDescriptorProto)
			fd.TypeName = proto.String(ident.Mangle(f.Mangling, desc.GetPackage(), fd.GetTypeName()))
		}
		extendee := ident.FromDotted(fd.GetExtendee())
		fieldName := ident.Create(f.Mangling, base, ident.New(fd.GetName()))
		ef, err := NewExtensionField(extendee, fieldName, fd, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", desc.GetName(), err)
		}
		f.Extensions = append(f.Extensions, ef)
	}

	return f, nil
}

func fileRecord(desc *descriptorpb.FileDescriptorProto, resolve ResolveOptions) (options.Record, error) {
	return resolve.ForFile(desc.GetOptions()), nil
}

// Register inserts every message and enum this file declares into the
// shared Dependencies table, the step that must run for every file in a
// request before any file's EncodedSize can safely resolve cross-file
// MESSAGE/ENUM field references.
func (f *File) Register(deps *Dependencies) {
	for _, m := range f.Messages {
		deps.RegisterMessage(m)
	}
	for _, e := range f.Enums {
		deps.RegisterEnum(e)
	}
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
