// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for drivesync. Settings resolve through
// a four-layer override chain (defaults -> config file -> environment ->
// CLI flags), with CLI flags always winning.
package config

// Config is the flat configuration structure parsed from a TOML file.
// Every field has a working default except the OAuth client credentials,
// which Google does not let us ship.
type Config struct {
	SyncDir         string `toml:"sync_dir"`
	StateFile       string `toml:"state_file"`
	TokenFile       string `toml:"token_file"`
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	IntervalSeconds int    `toml:"interval_seconds"`
	PageSize        int    `toml:"page_size"`
	LogLevel        string `toml:"log_level"`
	LogFile         string `toml:"log_file"`
}
