// Loads the command line configuration from a YAML file.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maruel/nuimages/internal/colormap"
)

// Config holds the settings shared by every command. Flags explicitly set on
// the command line take precedence over the file.
type Config struct {
	// DataRoot is the directory holding the version directories and the
	// images referenced by sample_data.filename.
	DataRoot string `yaml:"data_root"`

	// Version is the dataset version, e.g. v1.0-mini.
	Version string `yaml:"version"`

	// Lazy defers loading each table until it is first used.
	Lazy bool `yaml:"lazy"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// RenderScale scales the display figure.
	RenderScale float64 `yaml:"render_scale"`

	// Colors overrides the default category palette.
	Colors colormap.Overrides `yaml:"colors"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataRoot:    "/data/sets/nuimages",
		Version:     "v1.0-mini",
		Lazy:        true,
		LogLevel:    "info",
		RenderScale: 2,
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-specified config file
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DataRoot == "" {
		return errors.New("data_root is required")
	}
	if c.Version == "" {
		return errors.New("version is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.RenderScale <= 0 {
		return errors.New("render_scale must be positive")
	}
	return nil
}

// Palette returns the default palette with the configured overrides applied.
func (c *Config) Palette() colormap.Map {
	return c.Colors.Apply(colormap.Default())
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", level)
	}
}
