// Package config loads the book server settings from defaults, an optional
// YAML file and BOOK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all server settings
type Config struct {
	// Addr is the HTTP listen address
	Addr string `yaml:"addr"`
	// ContentDir is a directory of chapter markdown. Empty means the
	// chapters compiled into the binary.
	ContentDir string `yaml:"content_dir"`
	// Manifest is a YAML chapter table. Empty means the built-in table.
	Manifest string `yaml:"manifest"`
	// Metrics enables the /metrics endpoint
	Metrics bool      `yaml:"metrics"`
	Log     LogConfig `yaml:"log"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Addr:    ":8080",
		Metrics: true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. Fields missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("error opening config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from BOOK_* variables. BOOK_PATH points at a
// directory of chapter markdown.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("BOOK_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("BOOK_PATH"); v != "" {
		c.ContentDir = v
	}
	if v := getenv("BOOK_MANIFEST"); v != "" {
		c.Manifest = v
	}
	if v := getenv("BOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("BOOK_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := getenv("BOOK_METRICS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: BOOK_METRICS=%q: %v", ErrInvalidConfig, v, err)
		}
		c.Metrics = enabled
	}
	return nil
}

// Validate checks that the settings can be used
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q (want text or json)", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, l.Level)
	}
	return level, nil
}

// NewLogger builds a slog logger writing to w. Call Validate first; an
// unknown level falls back to info.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
