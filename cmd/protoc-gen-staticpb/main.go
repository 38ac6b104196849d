// Command protoc-gen-staticpb compiles protobuf schemas into static,
// pointer-free C descriptors. It runs either as a protoc/buf plugin
// (reading a CodeGeneratorRequest from stdin) or as a standalone CLI
// against a serialized FileDescriptorSet file, mirroring nanopb's own
// main_plugin/main_cli dispatch.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/toba/staticpb/internal/cliopts"
	"github.com/toba/staticpb/internal/diag"
	"github.com/toba/staticpb/internal/driver"
	"github.com/toba/staticpb/internal/options"
)

func main() {
	if isPluginInvocation() {
		runPlugin()
		return
	}
	if err := runCLI(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// isPluginInvocation mirrors nanopb_generator.py's choice between
// main_cli and main_plugin: protoc/buf always invoke a plugin with a
// request on stdin and no interactive terminal, so the presence of
// piped stdin (and the absence of any args at all, which the standalone
// CLI always requires) signals plugin mode.
func isPluginInvocation() bool {
	if len(os.Args) > 1 {
		return false
	}
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) == 0
}

func runPlugin() {
	opts := protogen.Options{}
	opts.Run(func(p *protogen.Plugin) error {
		req := requestFromPlugin(p)
		cliSettings := settingsFromParameter(req.GetParameter())

		logger := diag.New("info", "logfmt")
		resp, err := driver.Run(req, cliSettings, options.SideFileTable{}, logger)
		if err != nil {
			return err
		}
		applyResponse(p, resp)
		return nil
	})
}

// requestFromPlugin reconstructs the raw CodeGeneratorRequest shape the
// driver expects from the already-parsed *protogen.Plugin, since protogen
// does not expose the original request verbatim.
func requestFromPlugin(p *protogen.Plugin) *pluginpb.CodeGeneratorRequest {
	req := &pluginpb.CodeGeneratorRequest{
		Parameter: p.Request.Parameter,
	}
	for _, f := range p.Request.GetFileToGenerate() {
		req.FileToGenerate = append(req.FileToGenerate, f)
	}
	req.ProtoFile = p.Request.GetProtoFile()
	req.CompilerVersion = p.Request.CompilerVersion
	return req
}

func applyResponse(p *protogen.Plugin, resp *pluginpb.CodeGeneratorResponse) {
	if resp.GetError() != "" {
		p.Error(fmt.Errorf("%s", resp.GetError()))
		return
	}
	for _, f := range resp.GetFile() {
		out := p.NewGeneratedFile(f.GetName(), "")
		out.P(f.GetContent())
	}
}

func settingsFromParameter(parameter string) options.Record {
	params := cliopts.ParseParameter(parameter)
	rec := options.Builtins()
	for k, v := range params {
		applyParamSetting(&rec, k, v)
	}
	return rec
}

func applyParamSetting(rec *options.Record, key, val string) {
	if val == "" {
		// A bare key with no "=value" (e.g. "packed_enum" alone in a
		// --nanopb_opt/-opt string) is the common plugin-parameter shorthand
		// for a boolean flag set to true.
		val = "true"
	}
	settings, err := options.ParseSettings(key + "=" + val)
	if err != nil {
		return
	}
	*rec = options.Merge(*rec, settings)
}

func runCLI(args []string) error {
	cfg := cliopts.NewConfig()

	rootCmd := &cobra.Command{
		Use:           "protoc-gen-staticpb generate --descriptor-set <file>",
		Short:         "Compile a FileDescriptorSet into static C descriptors",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cfg, cmd.Flags())
		},
	}
	cfg.RegisterFlags(rootCmd.Flags())
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

func runGenerate(cfg *cliopts.Config, flags *pflag.FlagSet) error {
	if cfg.ConfigPath != "" {
		pc, err := cliopts.LoadProjectConfig(cfg.ConfigPath)
		if err != nil {
			return err
		}
		cfg.Merge(pc, flags.Changed)
	}

	if cfg.NoColor {
		color.NoColor = true
	}
	logger := diag.New(cfg.LogLevel, cfg.LogFormat)

	var data []byte
	var err error
	if cfg.DescriptorSet == "" || cfg.DescriptorSet == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(cfg.DescriptorSet)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", cliopts.ErrReadInput, err)
	}

	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("%w: %w", cliopts.ErrReadInput, err)
	}

	req := &pluginpb.CodeGeneratorRequest{ProtoFile: set.GetFile()}
	for _, f := range set.GetFile() {
		req.FileToGenerate = append(req.FileToGenerate, f.GetName())
	}
	req.Parameter = &cfg.OptionsString

	cliSettings := settingsFromParameter(cfg.OptionsString)
	if cfg.MangleNames != "" {
		applyParamSetting(&cliSettings, "mangle_names", cfg.MangleNames)
	}

	var sideFiles options.SideFileTable
	for _, path := range cfg.SideFiles {
		if err := options.LoadSideFile(&sideFiles, path); err != nil {
			return err
		}
	}

	resp, err := driver.Run(req, cliSettings, sideFiles, logger)
	if err != nil {
		return err
	}
	if resp.GetError() != "" {
		return fmt.Errorf("%w: %s", cliopts.ErrInvalidOption, resp.GetError())
	}

	for _, f := range resp.GetFile() {
		outPath := cfg.OutDir + "/" + f.GetName()
		if err := os.WriteFile(outPath, []byte(f.GetContent()), 0o644); err != nil {
			return fmt.Errorf("%w: %w", cliopts.ErrWriteOutput, err)
		}
		logger.Infof("wrote %s", outPath)
	}
	return nil
}
