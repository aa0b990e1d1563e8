package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pborges/simpio/internal/pico"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, pico.SerialRS232, cfg.SerialMode())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "simpio.yaml", `
output_dir: build
project: blinky
serial: usb
strict: true
log:
  level: debug
  format: json
`)
	cfg, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.OutputDir)
	assert.Equal(t, "blinky", cfg.Project)
	assert.Equal(t, pico.SerialUSB, cfg.SerialMode())
	assert.True(t, cfg.Strict)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, filepath.Join(dir, "simpio.yaml"), cfg.Path)
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "simpio.yml", "quiet: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, "rs232", cfg.Serial)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadHCL(t *testing.T) {
	t.Setenv("SIMPIO_TEST_OUT", "/tmp/pico")
	dir := t.TempDir()
	writeFile(t, dir, "simpio.hcl", `
output_dir = env.SIMPIO_TEST_OUT
project    = "echo"
quiet      = true

log {
  level = "info"
}
`)
	cfg, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pico", cfg.OutputDir)
	assert.Equal(t, "echo", cfg.Project)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadHCLRejectsUnknown(t *testing.T) {
	path := writeFile(t, t.TempDir(), "simpio.hcl", "colour = \"red\"\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to decode HCL file")
}

func TestYAMLWinsOverHCL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "simpio.hcl", "project = \"from_hcl\"\n")
	writeFile(t, dir, "simpio.yaml", "project: from_yaml\n")
	cfg, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, "from_yaml", cfg.Project)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "simpio.yaml", "project: file\nstrict: false\n")
	t.Setenv("SIMPIO_PROJECT", "env")
	t.Setenv("SIMPIO_STRICT", "true")
	t.Setenv("SIMPIO_SERIAL", "USB")
	t.Setenv("SIMPIO_OUTPUT_DIR", "out")
	t.Setenv("SIMPIO_LOG_LEVEL", "debug")

	cfg, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Project)
	assert.True(t, cfg.Strict)
	assert.Equal(t, pico.SerialUSB, cfg.SerialMode())
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInvalidStrictEnvIsIgnored(t *testing.T) {
	t.Setenv("SIMPIO_STRICT", "maybe")
	cfg, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.False(t, cfg.Strict)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		ok   bool
	}{
		{"defaults", func(*Config) {}, true},
		{"usb any case", func(c *Config) { c.Serial = "Usb" }, true},
		{"bad serial", func(c *Config) { c.Serial = "spi" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"project with slash", func(c *Config) { c.Project = "a/b" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mut(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "simpio.yaml", "strict: [\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}
