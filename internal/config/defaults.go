package config

import "path/filepath"

// Default values for configuration options. These are "layer 0" of the
// override chain and are chosen so a first run works without a config file
// (apart from OAuth credentials, which have no sensible default).
const (
	defaultIntervalSec = 60
	defaultPageSize    = 100
	defaultLogLevel    = "info"

	minIntervalSec = 5
	maxPageSize    = 1000
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()

	return &Config{
		SyncDir:         defaultSyncDir(),
		StateFile:       filepath.Join(dataDir, "status.json"),
		TokenFile:       filepath.Join(dataDir, "token.json"),
		IntervalSeconds: defaultIntervalSec,
		PageSize:        defaultPageSize,
		LogLevel:        defaultLogLevel,
	}
}
