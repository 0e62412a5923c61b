package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuebird/cuebird/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.True(t, cfg.AutoReload)
	assert.Empty(t, cfg.Theme, "theme defaults to terminal detection")
	assert.InDelta(t, 150.0, cfg.Reading.WPM, 0.001)
	assert.InDelta(t, 1.0, cfg.Reading.DefaultSpeed, 0.001)
	assert.True(t, cfg.UI.ShowStatusBar)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8480, cfg.Server.Port)
	assert.True(t, cfg.Sessions.Enabled)
	assert.False(t, cfg.Tracing.Enabled)

	require.NoError(t, Validate(cfg), "defaults must validate")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "negative wpm",
			mutate:  func(c *Config) { c.Reading.WPM = -10 },
			wantErr: "reading.wpm",
		},
		{
			name:    "negative speed",
			mutate:  func(c *Config) { c.Reading.DefaultSpeed = -1 },
			wantErr: "reading.default_speed",
		},
		{
			name:    "focus line out of range",
			mutate:  func(c *Config) { c.UI.FocusLine = 1.5 },
			wantErr: "ui.focus_line",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "relative db path",
			mutate:  func(c *Config) { c.Sessions.DBPath = "history.db" },
			wantErr: "sessions.db_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{
			name: "disabled needs nothing",
			cfg:  tracing.Config{},
		},
		{
			name:    "bad sample rate",
			cfg:     tracing.Config{SampleRate: 1.5},
			wantErr: "sample_rate",
		},
		{
			name:    "unknown exporter",
			cfg:     tracing.Config{Exporter: "zipkin"},
			wantErr: "exporter",
		},
		{
			name:    "file exporter needs a path when enabled",
			cfg:     tracing.Config{Enabled: true, Exporter: "file"},
			wantErr: "file_path",
		},
		{
			name:    "otlp exporter needs an endpoint when enabled",
			cfg:     tracing.Config{Enabled: true, Exporter: "otlp"},
			wantErr: "otlp_endpoint",
		},
		{
			name: "disabled file exporter without path is fine",
			cfg:  tracing.Config{Enabled: false, Exporter: "file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "auto_reload: true")
	assert.Contains(t, string(data), "wpm: 150")
}
