package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SyncDir:         "/data/drive",
		StateFile:       "/data/status.json",
		TokenFile:       "/data/token.json",
		IntervalSeconds: 60,
		PageSize:        100,
		LogLevel:        "info",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "empty sync dir",
			mutate: func(c *Config) { c.SyncDir = "" },
			want:   "sync_dir must not be empty",
		},
		{
			name:   "relative sync dir",
			mutate: func(c *Config) { c.SyncDir = "relative/path" },
			want:   "must be an absolute path",
		},
		{
			name:   "empty state file",
			mutate: func(c *Config) { c.StateFile = "" },
			want:   "state_file must not be empty",
		},
		{
			name:   "interval too small",
			mutate: func(c *Config) { c.IntervalSeconds = 1 },
			want:   "interval_seconds must be at least",
		},
		{
			name:   "page size zero",
			mutate: func(c *Config) { c.PageSize = 0 },
			want:   "page_size must be between",
		},
		{
			name:   "page size too large",
			mutate: func(c *Config) { c.PageSize = 5000 },
			want:   "page_size must be between",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.LogLevel = "chatty" },
			want:   "log_level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.SyncDir = ""
	cfg.LogLevel = "chatty"
	cfg.IntervalSeconds = 0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync_dir")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "interval_seconds")
}
