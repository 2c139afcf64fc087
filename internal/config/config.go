// Package config holds the settings of an assocgen run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up from the package directory
// upwards.
const FileName = "assocgen.yaml"

const (
	envSuffix = "ASSOCGEN_SUFFIX"
	envStrict = "ASSOCGEN_STRICT"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds configuration for generation.
type Config struct {
	// Suffix is appended to the lower-cased union name to form the
	// generated file name.
	// Defaults to _assoc.go
	Suffix string `yaml:"suffix,omitempty"`

	// Strict rejects reverse functions that could fail to match at run
	// time instead of generating a panic.
	Strict bool `yaml:"strict,omitempty"`

	// Types restricts generation to the named types. Empty means every
	// type carrying //assoc:func.
	Types []string `yaml:"types,omitempty"`

	// Color is one of auto, always or never.
	// Defaults to auto
	Color string `yaml:"color,omitempty"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Suffix: "_assoc.go",
		Color:  ColorAuto,
	}
}

// Load builds the configuration for a run in dir: defaults, then the
// config file (path, or the nearest assocgen.yaml when path is empty),
// then environment overrides.
func Load(dir, path string) (*Config, error) {
	if path == "" {
		found, err := FindConfig(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if cfg, err = ParseConfig(data, path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig parses assocgen.yaml content over the defaults.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// FindConfig searches for assocgen.yaml starting from dir and walking up
// to parent directories. It returns an empty path when there is none.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) applyEnv() error {
	if suffix := os.Getenv(envSuffix); suffix != "" {
		c.Suffix = suffix
	}
	if strict := os.Getenv(envStrict); strict != "" {
		v, err := strconv.ParseBool(strict)
		if err != nil {
			return fmt.Errorf("%s: %w", envStrict, err)
		}
		c.Strict = v
	}
	return c.Validate()
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.Suffix, ".go") || strings.HasSuffix(c.Suffix, "_test.go") {
		return fmt.Errorf("suffix %q must end in .go and must not name a test file", c.Suffix)
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain a path separator", c.Suffix)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be %s, %s or %s, got %q", ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	return nil
}
