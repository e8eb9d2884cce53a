// Package config reads the optional hostkit.yaml next to a scenario.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/hostkit/pkg/loop"
)

// FileName is the config file looked up by LoadOptional.
const FileName = "hostkit.yaml"

// Config represents the optional hostkit.yaml configuration.
type Config struct {
	Runner RunnerConfig `yaml:"runner"`
	Log    LogConfig    `yaml:"log"`
}

// RunnerConfig contains scenario runner settings.
type RunnerConfig struct {
	MaxDrainTicks int  `yaml:"max_drain_ticks,omitempty"`
	Trace         bool `yaml:"trace,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	MaxDrainTicks int
	Trace         bool
	Level         slog.Level
	Format        string
}

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LoadOptional reads hostkit.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve applies defaults and validates the values.
func (c *Config) Resolve() (*Resolved, error) {
	r := &Resolved{
		MaxDrainTicks: c.Runner.MaxDrainTicks,
		Trace:         c.Runner.Trace,
		Format:        strings.ToLower(strings.TrimSpace(c.Log.Format)),
	}
	if r.MaxDrainTicks < 0 {
		return nil, fmt.Errorf("runner.max_drain_ticks must not be negative (got %d)", r.MaxDrainTicks)
	}
	if r.MaxDrainTicks == 0 {
		r.MaxDrainTicks = loop.DefaultMaxDrainTicks
	}

	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	r.Level = level

	switch r.Format {
	case "":
		r.Format = FormatText
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("log.format must be %q or %q (got %q)", FormatText, FormatJSON, c.Log.Format)
	}

	return r, nil
}

// Resolve loads hostkit.yaml from dir (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// ParseLevel parses a log level name. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
