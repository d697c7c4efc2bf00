// Package config loads generator settings from a YAML file
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/raymyers/ralph-bindgen/pkg/layout"
)

// Link styles for the extern block attribute
const (
	LinkArgs = "args" // #[link_args = "-l<lib>"]
	LinkName = "name" // #[link(name = "<lib>")]
)

// Config holds generator settings. Zero fields take their defaults.
type Config struct {
	Target    string   `yaml:"target"`     // lp64, llp64 or ilp32
	Import    string   `yaml:"import"`     // module glob-imported for the C scalar types
	Header    string   `yaml:"header"`     // provenance comment
	LinkStyle string   `yaml:"link_style"` // args or name
	Keywords  []string `yaml:"keywords"`   // extra identifiers to escape
	Link      string   `yaml:"link"`       // default library name
}

// Default returns the settings used when no file is given
func Default() *Config {
	return &Config{
		Target:    "lp64",
		Import:    "std::os::raw",
		Header:    "automatically generated by rust-bindgen",
		LinkStyle: LinkArgs,
	}
}

// Load reads a config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML settings on top of the defaults and validates them
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	d := Default()
	if cfg.Target == "" {
		cfg.Target = d.Target
	}
	if cfg.Import == "" {
		cfg.Import = d.Import
	}
	if cfg.LinkStyle == "" {
		cfg.LinkStyle = d.LinkStyle
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if _, err := layout.ParseTarget(c.Target); err != nil {
		return err
	}
	switch c.LinkStyle {
	case LinkArgs, LinkName:
	default:
		return fmt.Errorf("unknown link_style %q (want %s or %s)", c.LinkStyle, LinkArgs, LinkName)
	}
	return nil
}

// LayoutTarget returns the configured data model
func (c *Config) LayoutTarget() layout.Target {
	t, err := layout.ParseTarget(c.Target)
	if err != nil {
		return layout.LP64
	}
	return t
}
