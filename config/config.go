package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FileName = "tickflow.yaml"

	DefaultMaxCascadeDepth = 100
)

// Config represents the optional tickflow.yaml configuration.
type Config struct {
	FPS             int    `yaml:"fps,omitempty"`
	MaxCascadeDepth *int   `yaml:"max_cascade_depth,omitempty"` // 0 disables the cycle guard
	LogLevel        string `yaml:"log_level,omitempty"` // debug, info, warn, error
	NoColor         bool   `yaml:"no_color,omitempty"`
	StopOnKey       bool   `yaml:"stop_on_key,omitempty"`
	StatsSamples    int    `yaml:"stats_samples,omitempty"`
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads tickflow.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Resolve fills unset fields with defaults and validates the rest. An explicit
// max_cascade_depth of 0 is kept.
func (c *Config) Resolve() error {
	if c.FPS == 0 {
		c.FPS = 60
	}
	if c.MaxCascadeDepth == nil {
		depth := DefaultMaxCascadeDepth
		c.MaxCascadeDepth = &depth
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StatsSamples == 0 {
		c.StatsSamples = 1024
	}

	if c.FPS < 0 || c.FPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000, got %d", c.FPS)
	}
	if *c.MaxCascadeDepth < 0 {
		return fmt.Errorf("max_cascade_depth must not be negative, got %d", *c.MaxCascadeDepth)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
