package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dani3/rash/internal/lint"
)

// Config holds the global rash configuration.
type Config struct {
	Prompt  string        `yaml:"prompt" validate:"required"`
	History HistoryConfig `yaml:"history"`
	Audit   AuditConfig   `yaml:"audit"`
	Output  OutputConfig  `yaml:"output"`
	Lint    LintConfig    `yaml:"lint"`
	Log     LogConfig     `yaml:"log"`
}

// HistoryConfig controls the read loop's line history.
type HistoryConfig struct {
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit" validate:"gte=0"`
}

// AuditConfig controls audit log settings.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// OutputConfig controls how parsed lines are rendered.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=text json yaml"`
	Color  string `yaml:"color" validate:"oneof=auto always never"`
}

// LintConfig controls the lint engine.
type LintConfig struct {
	Enabled  bool                       `yaml:"enabled"`
	Disabled []string                   `yaml:"disabled"`
	Script   string                     `yaml:"script"` // optional Starlark rule file
	Flags    map[string]lint.FlagConfig `yaml:"flags"`  // command -> options to flag
}

// LogConfig controls internal diagnostics.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Prompt: "> ",
		History: HistoryConfig{
			Path:  filepath.Join(home, ".local", "share", "rash", "history"),
			Limit: 1000,
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    filepath.Join(home, ".local", "share", "rash", "audit.jsonl"),
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Lint: LintConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rash", "config.yaml")
}

// Load reads the config from the standard location (~/.config/rash/config.yaml).
// If the file doesn't exist, returns the default config.
func Load(fsys afero.Fs) (*Config, error) {
	return LoadFrom(fsys, ConfigPath())
}

// LoadFrom reads the config from the given path.
func LoadFrom(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.History.Path = expandHome(cfg.History.Path)
	cfg.Audit.Path = expandHome(cfg.Audit.Path)
	cfg.Lint.Script = expandHome(cfg.Lint.Script)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate the configuration for basic semantic errors. Field names in
// errors use the yaml keys.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	return validate.Struct(c)
}

// NewLintEngine builds the lint engine described by the config, loading the
// Starlark script from fsys if one is configured.
func (c *Config) NewLintEngine(fsys afero.Fs) (*lint.Engine, error) {
	e := lint.NewEngine(lint.FlagRules(c.Lint.Flags)...)
	e.Disable(c.Lint.Disabled...)
	if c.Lint.Script == "" {
		return e, nil
	}
	src, err := afero.ReadFile(fsys, c.Lint.Script)
	if err != nil {
		return nil, fmt.Errorf("read lint script: %w", err)
	}
	rule, err := lint.LoadScript(c.Lint.Script, src)
	if err != nil {
		return nil, err
	}
	e.Add(rule)
	return e, nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, path[1:])
}
