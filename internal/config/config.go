// Package config provides configuration types and defaults for cuebird.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/tracing"
)

// Config holds all configuration options for cuebird.
type Config struct {
	// AutoReload re-reads the script when it changes on disk.
	AutoReload bool `mapstructure:"auto_reload"`

	// Theme names the color theme: "dark", "light", "high-contrast",
	// or "" for terminal detection.
	Theme string `mapstructure:"theme"`

	Reading  ReadingConfig  `mapstructure:"reading"`
	UI       UIConfig       `mapstructure:"ui"`
	Server   ServerConfig   `mapstructure:"server"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Tracing  tracing.Config `mapstructure:"tracing"`
}

// ReadingConfig holds pacing options.
type ReadingConfig struct {
	// WPM is the assumed base reading pace in words per minute.
	WPM float64 `mapstructure:"wpm"`

	// DefaultSpeed is the scroll speed multiplier on startup.
	DefaultSpeed float64 `mapstructure:"default_speed"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	ShowProgress  bool `mapstructure:"show_progress"`

	// FocusLine keeps the current line anchored at this fraction of
	// the viewport height, 0.0 (top) to 1.0 (bottom).
	FocusLine float64 `mapstructure:"focus_line"`
}

// ServerConfig holds the backend HTTP server options.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SessionsConfig holds reading-history persistence options.
type SessionsConfig struct {
	// Enabled turns on the SQLite reading history.
	Enabled bool `mapstructure:"enabled"`

	// DBPath overrides the history database location.
	// Default: ~/.config/cuebird/history.db
	DBPath string `mapstructure:"db_path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		AutoReload: true,
		Theme:      "",
		Reading: ReadingConfig{
			WPM:          150,
			DefaultSpeed: 1.0,
		},
		UI: UIConfig{
			ShowStatusBar: true,
			ShowProgress:  true,
			FocusLine:     0.33,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8480,
		},
		Sessions: SessionsConfig{
			Enabled: true,
			DBPath:  DefaultHistoryDBPath(),
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// DefaultHistoryDBPath returns ~/.config/cuebird/history.db, or empty
// string if the home directory is unavailable.
func DefaultHistoryDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cuebird", "history.db")
}

// DefaultTracesFilePath returns ~/.config/cuebird/traces/traces.jsonl,
// or empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cuebird", "traces", "traces.jsonl")
}

// Validate checks the configuration for errors.
// Empty values fall back to defaults and are always valid.
func Validate(cfg Config) error {
	if cfg.Reading.WPM < 0 {
		return fmt.Errorf("reading.wpm must not be negative, got %v", cfg.Reading.WPM)
	}
	if cfg.Reading.DefaultSpeed < 0 {
		return fmt.Errorf("reading.default_speed must not be negative, got %v", cfg.Reading.DefaultSpeed)
	}
	if cfg.UI.FocusLine < 0 || cfg.UI.FocusLine > 1 {
		return fmt.Errorf("ui.focus_line must be between 0.0 and 1.0, got %v", cfg.UI.FocusLine)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Sessions.DBPath != "" && !filepath.IsAbs(cfg.Sessions.DBPath) {
		return fmt.Errorf("sessions.db_path must be an absolute path, got %q", cfg.Sessions.DBPath)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}

	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# CueBird Configuration

# Re-read the script automatically when it changes on disk
auto_reload: true

# Color theme: dark, light, high-contrast
# Leave unset to detect from the terminal background
# theme: dark

# Reading pace
reading:
  wpm: 150           # Assumed base reading pace (words per minute)
  default_speed: 1.0 # Scroll speed multiplier on startup (0.1 - 5.0)

# UI settings
ui:
  show_status_bar: true # Elapsed / remaining / pace readout at the bottom
  show_progress: true   # Progress bar
  focus_line: 0.33      # Where the current line sits in the viewport (0 top, 1 bottom)

# Backend server (cuebird serve)
server:
  host: 127.0.0.1
  port: 8480

# Reading history
sessions:
  enabled: true
  # db_path: ~/.config/cuebird/history.db

# Tracing (backend server only)
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp
#   file_path: ~/.config/cuebird/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0
`
}

// WriteDefaultConfig creates a config file at the given path with
// default settings and comments, creating the parent directory first.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
