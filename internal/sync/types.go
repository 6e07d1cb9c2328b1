// Package sync implements the reconciliation engine for drivesync: the
// persisted tracking state, the recursive remote-tree walk that brings a
// folder under tracking, the periodic two-way push/pull passes, and the
// conflict state machine.
package sync

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/mholub/drivesync/internal/drive"
)

// ErrNotTracked is returned by operations that require an existing record.
var ErrNotTracked = errors.New("sync: item not tracked")

// ItemState is the transient per-item state surfaced to the presentation
// layer. It is not persisted; every process start begins from the durable
// record fields and re-derives state as passes run.
type ItemState string

// Per-item states. Folders only ever report StateTracked.
const (
	StateSynced        ItemState = "synced"
	StatePendingLocal  ItemState = "pending-local"
	StatePendingRemote ItemState = "pending-remote"
	StateConflict      ItemState = "conflict"
	StateResolveFailed ItemState = "resolve-failed"
	StateTracked       ItemState = "tracked"
)

// Record is one tracked remote item, keyed in the store by its remote ID.
// Field names mirror the on-disk status file.
type Record struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	IsFolder           bool   `json:"is_folder"`
	LocalPath          string `json:"local_path"`
	LastSyncedTime     string `json:"last_synced_time"`
	RemoteModifiedTime string `json:"remote_modified_time"`
	LocalHashAtSync    string `json:"local_hash_at_sync"`
	DriveRootID        string `json:"drive_root_id"`
	DriveRelativePath  string `json:"drive_relative_path"`
}

// remoteModified parses the record's stored remote modification timestamp.
// An unparseable or empty value is treated as the zero time, which makes
// any observed remote timestamp "newer" and errs toward conflict detection
// rather than silent overwrite.
func (r *Record) remoteModified() time.Time {
	if r.RemoteModifiedTime == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, r.RemoteModifiedTime)
	if err != nil {
		return time.Time{}
	}

	return t
}

// formatRemoteTime renders a remote timestamp the way the wire protocol
// delivered it, millisecond precision in UTC.
func formatRemoteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// RemoteClient is the slice of the drive API the engine depends on.
// *drive.Client satisfies it; tests substitute fakes.
type RemoteClient interface {
	ListChildren(ctx context.Context, folderID string) ([]drive.Item, error)
	GetMetadata(ctx context.Context, id string) (*drive.Item, error)
	Download(ctx context.Context, id string, w io.Writer) (int64, error)
	UploadNew(ctx context.Context, localPath, parentID string) (*drive.Item, error)
	UpdateContent(ctx context.Context, id, localPath string) (*drive.Item, error)
}
