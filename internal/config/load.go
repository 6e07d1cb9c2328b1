package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys are the valid flat top-level keys in the config file.
var knownKeys = map[string]bool{
	"sync_dir": true, "state_file": true, "token_file": true,
	"client_id": true, "client_secret": true,
	"interval_seconds": true, "page_size": true,
	"log_level": true, "log_file": true,
}

// knownKeysList is the sorted slice form of knownKeys for Levenshtein
// matching. Sorted for deterministic suggestions when two candidates have
// the same edit distance.
var knownKeysList = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are treated as fatal errors with "did you
// mean?" suggestions, since silently ignoring a typo in a config file leads to
// hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	cfg.SyncDir = ExpandHome(cfg.SyncDir)
	cfg.StateFile = ExpandHome(cfg.StateFile)
	cfg.TokenFile = ExpandHome(cfg.TokenFile)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values. This supports the zero-config
// first-run experience.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// checkUnknownKeys turns undecoded TOML keys into errors, attaching a
// suggestion when a known key is within edit distance.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	for _, key := range md.Undecoded() {
		name := key.String()

		if suggestion := closestKey(name); suggestion != "" {
			errs = append(errs, fmt.Errorf("config: unknown key %q (did you mean %q?)", name, suggestion))
			continue
		}

		errs = append(errs, fmt.Errorf("config: unknown key %q", name))
	}

	return errors.Join(errs...)
}

// closestKey returns the known key nearest to name, or "" when nothing is
// within maxLevenshteinDistance.
func closestKey(name string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, candidate := range knownKeysList {
		d := levenshtein(strings.ToLower(name), candidate)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}

	return best
}

// levenshtein computes the edit distance between two strings using the
// standard two-row dynamic programming formulation.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i

		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}

	if c < m {
		m = c
	}

	return m
}
