package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names for overrides.
const (
	EnvConfig       = "DRIVESYNC_CONFIG"
	EnvSyncDir      = "DRIVESYNC_SYNC_DIR"
	EnvStateFile    = "DRIVESYNC_STATE_FILE"
	EnvTokenFile    = "DRIVESYNC_TOKEN_FILE"
	EnvClientID     = "DRIVESYNC_CLIENT_ID"
	EnvClientSecret = "DRIVESYNC_CLIENT_SECRET"
	EnvInterval     = "DRIVESYNC_INTERVAL_SECONDS"
	EnvLogLevel     = "DRIVESYNC_LOG_LEVEL"
)

// ApplyEnvOverrides overlays environment variables onto cfg. Only variables
// that are set and non-empty take effect. A malformed numeric variable is an
// error rather than a silent fallback.
func ApplyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvSyncDir); v != "" {
		cfg.SyncDir = v
	}

	if v := os.Getenv(EnvStateFile); v != "" {
		cfg.StateFile = v
	}

	if v := os.Getenv(EnvTokenFile); v != "" {
		cfg.TokenFile = v
	}

	if v := os.Getenv(EnvClientID); v != "" {
		cfg.ClientID = v
	}

	if v := os.Getenv(EnvClientSecret); v != "" {
		cfg.ClientSecret = v
	}

	if v := os.Getenv(EnvInterval); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: parsing %s=%q: %w", EnvInterval, v, err)
		}

		cfg.IntervalSeconds = n
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	return nil
}
