// Package config loads simpio project settings from simpio.yaml or
// simpio.hcl, with environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/pborges/simpio/internal/pico"
)

// FileNames are the config files looked up next to an input, in order.
var FileNames = []string{"simpio.yaml", "simpio.yml", "simpio.hcl"}

// Config holds the settings of one simpio project.
type Config struct {
	// OutputDir receives the artifacts. Empty means the input's directory.
	OutputDir string `yaml:"output_dir"`
	// Project names the artifacts. Empty means the input's base name.
	Project string `yaml:"project"`
	// Serial is the stdio transport used when the input has no
	// .CONFIG SERIAL line: rs232 or usb.
	Serial string `yaml:"serial"`
	Strict bool   `yaml:"strict"`
	Quiet  bool   `yaml:"quiet"`

	Log LogConfig `yaml:"log"`

	// Path is the file the config came from, if any.
	Path string `yaml:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Serial: "rs232",
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads the config at path and applies environment overrides. The
// format follows the extension: .hcl is HCL, anything else YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		err = decodeHCL(path, data, cfg)
	} else {
		err = decodeYAML(path, data, cfg)
	}
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover loads the first config file found in dir. Without one it returns
// the defaults with environment overrides applied.
func Discover(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// hclFile mirrors Config for gohcl. Every attribute is optional so unset
// ones keep their defaults; unknown ones are rejected by the decoder.
type hclFile struct {
	OutputDir *string `hcl:"output_dir,optional"`
	Project   *string `hcl:"project,optional"`
	Serial    *string `hcl:"serial,optional"`
	Strict    *bool   `hcl:"strict,optional"`
	Quiet     *bool   `hcl:"quiet,optional"`
	Log       *hclLog `hcl:"log,block"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

func decodeHCL(path string, data []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}

	var raw hclFile
	diags = gohcl.DecodeBody(file.Body, evalContext(), &raw)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
	}
	setString(&cfg.OutputDir, raw.OutputDir)
	setString(&cfg.Project, raw.Project)
	setString(&cfg.Serial, raw.Serial)
	if raw.Strict != nil {
		cfg.Strict = *raw.Strict
	}
	if raw.Quiet != nil {
		cfg.Quiet = *raw.Quiet
	}
	if raw.Log != nil {
		setString(&cfg.Log.Level, raw.Log.Level)
		setString(&cfg.Log.Format, raw.Log.Format)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// evalContext exposes the process environment to HCL expressions as
// env.NAME.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// applyEnvOverrides applies SIMPIO_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SIMPIO_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("SIMPIO_PROJECT"); v != "" {
		c.Project = v
	}
	if v := os.Getenv("SIMPIO_SERIAL"); v != "" {
		c.Serial = v
	}
	if v := os.Getenv("SIMPIO_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Strict = b
		}
	}
	if v := os.Getenv("SIMPIO_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Serial) {
	case "", "rs232", "usb":
	default:
		return fmt.Errorf("serial must be rs232 or usb, got %q", c.Serial)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}
	if strings.ContainsAny(c.Project, `/\`) {
		return fmt.Errorf("project name %q must not contain a path separator", c.Project)
	}
	return nil
}

// SerialMode returns the configured default transport.
func (c *Config) SerialMode() pico.Serial {
	return pico.ParseSerial(c.Serial)
}
