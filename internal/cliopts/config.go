package cliopts

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var (
	// ErrReadInput wraps failures reading the descriptor set or project
	// config file from disk.
	ErrReadInput = errors.New("read input")
	// ErrInvalidOption wraps a malformed CLI flag or config value.
	ErrInvalidOption = errors.New("invalid option")
	// ErrWriteOutput wraps failures writing generated files.
	ErrWriteOutput = errors.New("write output")
)

// Flags holds the CLI flag names, letting callers rename flags while
// keeping sensible defaults, mirroring MacroPower-x/magicschema's Flags.
type Flags struct {
	Descriptor   string
	OutDir       string
	Options      string
	SideFiles    string
	Config       string
	LogLevel     string
	LogFormat    string
	NoColor      string
	MangleNames  string
}

// Config holds the standalone CLI's flag values plus whatever the project
// config file (staticpb.yaml) contributed, following §6's flag surface.
type Config struct {
	Flags Flags

	DescriptorSet string
	OutDir        string
	OptionsString string
	SideFiles     []string
	ConfigPath    string
	LogLevel      string
	LogFormat     string
	NoColor       bool
	MangleNames   string
}

// NewConfig returns a Config with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Descriptor:  "descriptor-set",
			OutDir:      "out-dir",
			Options:     "options",
			SideFiles:   "options-file",
			Config:      "config",
			LogLevel:    "log-level",
			LogFormat:   "log-format",
			NoColor:     "no-color",
			MangleNames: "mangle-names",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// RegisterFlags adds the standalone CLI's nine flags (descriptor set, output
// directory, options string, side files, config path, log level and format,
// color switch, mangling policy) to the given flag set, mirroring
// MacroPower-x/magicschema/config.go's Config.RegisterFlags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.DescriptorSet, c.Flags.Descriptor, "",
		"path to a serialized FileDescriptorSet (- for stdin)")
	flags.StringVarP(&c.OutDir, c.Flags.OutDir, "o", ".",
		"directory to write generated .h/.c files into")
	flags.StringVar(&c.OptionsString, c.Flags.Options, "",
		"comma-joined plugin-parameter-style annotation overrides")
	flags.StringSliceVar(&c.SideFiles, c.Flags.SideFiles, nil,
		"side-file(s) of dotted-pattern annotation overrides")
	flags.StringVar(&c.ConfigPath, c.Flags.Config, "",
		"path to a staticpb.yaml project config file")
	flags.StringVar(&c.LogLevel, c.Flags.LogLevel, c.LogLevel,
		"diagnostics level: debug, info, warn, error")
	flags.StringVar(&c.LogFormat, c.Flags.LogFormat, c.LogFormat,
		"diagnostics format: text, json, logfmt")
	flags.BoolVar(&c.NoColor, c.Flags.NoColor, false,
		"disable colorized diagnostics")
	flags.StringVar(&c.MangleNames, c.Flags.MangleNames, "",
		"default name-mangling policy: none, strip_package, flatten, package_initials")
}

// ProjectConfig is the shape of staticpb.yaml, following the Config +
// nested-struct-with-yaml-tags convention from vjache-cie/cmd/cie/config.go.
type ProjectConfig struct {
	SideFiles   []string          `yaml:"side_files"`
	Options     map[string]string `yaml:"options"`
	OutDir      string            `yaml:"out_dir"`
	MangleNames string            `yaml:"mangle_names"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// LoadProjectConfig reads and parses a staticpb.yaml file.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	var pc ProjectConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, path, err)
	}
	return &pc, nil
}

// Merge layers the project config under flags explicitly set on the
// command line: CLI flags always win, matching §3's precedence chain
// (CLI settings outrank file-level/side-file/config-file settings).
func (c *Config) Merge(pc *ProjectConfig, flagsSet func(name string) bool) {
	if pc == nil {
		return
	}
	if c.OutDir == "." && pc.OutDir != "" && !flagsSet(c.Flags.OutDir) {
		c.OutDir = pc.OutDir
	}
	if len(c.SideFiles) == 0 && len(pc.SideFiles) > 0 {
		c.SideFiles = pc.SideFiles
	}
	if c.MangleNames == "" && pc.MangleNames != "" {
		c.MangleNames = pc.MangleNames
	}
	if !flagsSet(c.Flags.LogLevel) && pc.Logging.Level != "" {
		c.LogLevel = pc.Logging.Level
	}
	if !flagsSet(c.Flags.LogFormat) && pc.Logging.Format != "" {
		c.LogFormat = pc.Logging.Format
	}
}
