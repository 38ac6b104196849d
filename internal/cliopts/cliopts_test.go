package cliopts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameterSplitsKeyValueAndBareKeys(t *testing.T) {
	params := ParseParameter("long_names=false,packed_enum,M.foo=bar")
	assert.Equal(t, "false", params["long_names"])
	assert.Equal(t, "", params["packed_enum"])
	assert.Equal(t, "bar", params["M.foo"])
}

func TestParseParameterEmptyString(t *testing.T) {
	assert.Empty(t, ParseParameter(""))
}

func TestRegisterFlagsPopulatesConfig(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"--out-dir=build", "--log-level=debug"}))
	assert.Equal(t, "build", cfg.OutDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadProjectConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staticpb.yaml")
	content := "out_dir: gen\nside_files:\n  - a.options\n  - b.options\nlogging:\n  level: warn\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pc, err := LoadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gen", pc.OutDir)
	assert.Equal(t, []string{"a.options", "b.options"}, pc.SideFiles)
	assert.Equal(t, "warn", pc.Logging.Level)
}

func TestMergePrefersCLIFlags(t *testing.T) {
	cfg := NewConfig()
	cfg.LogLevel = "debug"
	pc := &ProjectConfig{OutDir: "fromconfig"}
	pc.Logging.Level = "error"

	cfg.Merge(pc, func(name string) bool { return name == cfg.Flags.LogLevel })

	assert.Equal(t, "fromconfig", cfg.OutDir) // out-dir flag wasn't set, config wins
	assert.Equal(t, "debug", cfg.LogLevel)     // log-level flag was set, CLI wins
}
