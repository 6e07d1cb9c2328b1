package sync

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "status.json"), testLogger())

	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	store := NewStore(path, testLogger())

	records := map[string]*Record{
		"id1": {
			ID:                 "id1",
			Name:               "report.csv",
			LocalPath:          "/tmp/sync/report.csv",
			LastSyncedTime:     "2026-08-30T10:00:00Z",
			RemoteModifiedTime: "2026-08-30T09:59:00.000Z",
			LocalHashAtSync:    "abc123",
			DriveRootID:        "id1",
			DriveRelativePath:  "report.csv",
		},
		"id2": {
			ID:                "id2",
			Name:              "Docs",
			IsFolder:          true,
			LocalPath:         "/tmp/sync/Docs",
			DriveRootID:       "id2",
			DriveRelativePath: "Docs",
		},
	}

	require.NoError(t, store.Save(records))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestStore_SaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "status.json")
	store := NewStore(path, testLogger())

	require.NoError(t, store.Save(map[string]*Record{}))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path, testLogger())

	records, err := store.Load()
	require.NoError(t, err, "corrupt state must not be fatal")
	assert.Empty(t, records)
}

func TestStore_SaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status.json")
	store := NewStore(path, testLogger())

	require.NoError(t, store.Save(map[string]*Record{
		"a": {ID: "a", Name: "first"},
	}))
	require.NoError(t, store.Save(map[string]*Record{
		"b": {ID: "b", Name: "second"},
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "second", loaded["b"].Name)

	// No temp file debris after a successful save.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStore_FileIsHumanInspectable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	store := NewStore(path, testLogger())

	require.NoError(t, store.Save(map[string]*Record{
		"x": {ID: "x", Name: "notes.txt", LocalHashAtSync: "deadbeef"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var generic map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, "notes.txt", generic["x"]["name"])
	assert.Equal(t, "deadbeef", generic["x"]["local_hash_at_sync"])
}
