// Package driver orchestrates a full run: decoding the incoming
// CodeGeneratorRequest, building the per-file schema, stitching
// cross-file dependencies, ordering messages, emitting header/source
// text, and assembling the CodeGeneratorResponse -- the structural
// counterpart of toba-ts-protobuf/generator.go's Generator.GenerateAllFiles
// and nanopb_generator.py's process_file/main_plugin, rewritten end to end
// for the C static-descriptor emission domain.
package driver

import (
	"fmt"
	"path"
	"sync"

	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/toba/staticpb/internal/diag"
	"github.com/toba/staticpb/internal/emit"
	"github.com/toba/staticpb/internal/options"
	"github.com/toba/staticpb/internal/schema"
	"github.com/toba/staticpb/internal/toposort"
)

// Run builds a CodeGeneratorResponse for the given request, applying the
// CLI-level settings and side-file table supplied by the caller.
func Run(req *pluginpb.CodeGeneratorRequest, cliSettings options.Record, sideFiles options.SideFileTable, logger *diag.Logger) (*pluginpb.CodeGeneratorResponse, error) {
	ctx := options.NewContext(cliSettings)
	ctx.SideFiles = sideFiles

	deps := schema.NewDependencies()

	targets := make(map[string]bool, len(req.GetFileToGenerate()))
	for _, name := range req.GetFileToGenerate() {
		targets[name] = true
	}

	files := make([]*schema.File, 0, len(req.GetProtoFile()))
	for _, fd := range req.GetProtoFile() {
		resolver := &contextResolver{ctx: ctx, file: fd, fileLevel: ctx.CLISettings}
		f, err := schema.ParseFile(fd, resolver)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fd.GetName(), err)
		}
		f.Register(deps)
		files = append(files, f)
		logger.Debugf("parsed %s: %d messages, %d enums", fd.GetName(), len(f.Messages), len(f.Enums))
	}

	// Concurrency optimization over an otherwise sequential pipeline: each
	// target file's emission is independent once every file's messages and
	// enums have been registered into the shared Dependencies table above,
	// so generation can run on a bounded worker pool without changing the
	// generated output.
	type result struct {
		name string
		resp *pluginpb.CodeGeneratorResponse_File
		src  *pluginpb.CodeGeneratorResponse_File
		err  error
	}

	resultsCh := make(chan result, len(files))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workerLimit())

	for i, f := range files {
		fd := req.GetProtoFile()[i]
		if !targets[f.Path] {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(f *schema.File, fd *descriptorpb.FileDescriptorProto) {
			defer wg.Done()
			defer func() { <-sem }()

			order, err := orderMessages(f)
			if err != nil {
				resultsCh <- result{name: f.Path, err: err}
				return
			}

			byName := map[string]*schema.Message{}
			for _, m := range f.Messages {
				byName[m.Name.Symbol()] = m
			}

			header := emit.Header(f, order, byName, deps)
			source, err := emit.Source(f, fd, order, byName, deps)
			if err != nil {
				resultsCh <- result{name: f.Path, err: err}
				return
			}

			base := trimExt(f.Path)
			resultsCh <- result{
				name: f.Path,
				resp: &pluginpb.CodeGeneratorResponse_File{
					Name:    strPtr(base + ".pb.h"),
					Content: strPtr(string(header)),
				},
				src: &pluginpb.CodeGeneratorResponse_File{
					Name:    strPtr(base + ".pb.c"),
					Content: strPtr(string(source)),
				},
			}
		}(f, fd)
	}

	wg.Wait()
	close(resultsCh)

	collected := make(map[string]result, len(files))
	for r := range resultsCh {
		collected[r.name] = r
	}

	resp := &pluginpb.CodeGeneratorResponse{}
	var supported uint64 = uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)
	resp.SupportedFeatures = &supported

	for _, name := range req.GetFileToGenerate() {
		r, ok := collected[name]
		if !ok {
			continue
		}
		if r.err != nil {
			msg := r.err.Error()
			resp.Error = &msg
			return resp, nil
		}
		resp.File = append(resp.File, r.resp, r.src)
	}

	return resp, nil
}

func workerLimit() int { return 4 }

func strPtr(s string) *string { return &s }

func trimExt(p string) string {
	ext := path.Ext(p)
	return p[:len(p)-len(ext)]
}

// orderMessages builds the toposort.Node graph from each message's static
// dependencies and returns the emission order, per §4.9.
func orderMessages(f *schema.File) ([]string, error) {
	nodes := make([]toposort.Node, 0, len(f.Messages))
	for _, m := range f.Messages {
		nodes = append(nodes, toposort.Node{Name: m.Name.Symbol(), Depends: m.GetDependencies()})
	}
	return toposort.Sort(nodes)
}

// contextResolver adapts an options.Context (plus the enclosing file's
// syntax and file-level annotations) to schema.ResolveOptions.
type contextResolver struct {
	ctx       *options.Context
	file      *descriptorpb.FileDescriptorProto
	fileLevel options.Record
}

func (r *contextResolver) ForField(dotted string, proto3 bool, inline []*descriptorpb.UninterpretedOption) (options.Record, error) {
	inlineRec, err := options.FromUninterpretedOptions(inline)
	if err != nil {
		return options.Record{}, fmt.Errorf("%s: %w", dotted, err)
	}
	return r.ctx.Resolve(r.fileLevel, proto3, dotted, inlineRec), nil
}

func (r *contextResolver) ForMessage(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, error) {
	inlineRec, err := options.FromUninterpretedOptions(inline)
	if err != nil {
		return options.Record{}, fmt.Errorf("%s: %w", dotted, err)
	}
	return r.ctx.Resolve(r.fileLevel, r.file.GetSyntax() == "proto3", dotted, inlineRec), nil
}

func (r *contextResolver) ForEnum(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, error) {
	return r.ForMessage(dotted, inline)
}

func (r *contextResolver) ForOneof(dotted string, inline []*descriptorpb.UninterpretedOption) (options.Record, string, bool, error) {
	rec, err := r.ForMessage(dotted, inline)
	if err != nil {
		return options.Record{}, "", false, err
	}
	return rec, "", rec.IsAnonymousOneof(), nil
}

func (r *contextResolver) ForFile(fileOpts *descriptorpb.FileOptions) options.Record {
	var inline []*descriptorpb.UninterpretedOption
	if fileOpts != nil {
		inline = fileOpts.GetUninterpretedOption()
	}
	inlineRec, _ := options.FromUninterpretedOptions(inline)
	r.fileLevel = r.ctx.ResolveFileLevel(inlineRec)
	return r.fileLevel
}
