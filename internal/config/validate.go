package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// validLogLevels are the accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.SyncDir == "" {
		errs = append(errs, errors.New("sync_dir must not be empty"))
	} else if !filepath.IsAbs(cfg.SyncDir) {
		errs = append(errs, fmt.Errorf("sync_dir %q must be an absolute path", cfg.SyncDir))
	}

	if cfg.StateFile == "" {
		errs = append(errs, errors.New("state_file must not be empty"))
	}

	if cfg.TokenFile == "" {
		errs = append(errs, errors.New("token_file must not be empty"))
	}

	if cfg.IntervalSeconds < minIntervalSec {
		errs = append(errs, fmt.Errorf("interval_seconds must be at least %d, got %d",
			minIntervalSec, cfg.IntervalSeconds))
	}

	if cfg.PageSize < 1 || cfg.PageSize > maxPageSize {
		errs = append(errs, fmt.Errorf("page_size must be between 1 and %d, got %d",
			maxPageSize, cfg.PageSize))
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q",
			cfg.LogLevel))
	}

	return errors.Join(errs...)
}
