package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store file permissions: the status file names every tracked path.
const (
	storeFilePerms = 0o600
	storeDirPerms  = 0o700
)

// Store persists the full record mapping as a single human-inspectable JSON
// file, rewritten in full on every save. It is the sole source of truth
// between process runs.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store backed by the JSON file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the persisted record mapping. A missing file yields an empty
// mapping. An unparseable file also yields an empty mapping with a warning:
// corrupt state must never prevent startup, the worst outcome is re-tracking.
func (s *Store) Load() (map[string]*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]*Record), nil
	}

	if err != nil {
		return nil, fmt.Errorf("sync: reading status file %s: %w", s.path, err)
	}

	records := make(map[string]*Record)
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("status file is corrupt, starting with empty state",
			slog.String("path", s.path),
			slog.Any("error", err),
		)

		return make(map[string]*Record), nil
	}

	return records, nil
}

// Save atomically replaces the status file with the full mapping. The write
// goes to a temp file in the same directory followed by a rename, so a crash
// mid-save leaves the previous state intact and loadable.
func (s *Store) Save(records map[string]*Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("sync: encoding status: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirPerms); err != nil {
		return fmt.Errorf("sync: creating status directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("sync: creating temp status file: %w", err)
	}

	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := tmp.Chmod(storeFilePerms); err != nil {
		cleanup()

		return fmt.Errorf("sync: setting status file permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()

		return fmt.Errorf("sync: writing status file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()

		return fmt.Errorf("sync: syncing status file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("sync: closing status file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("sync: replacing status file: %w", err)
	}

	return nil
}
