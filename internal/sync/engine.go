package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	stdsync "sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// partialSuffix marks in-flight downloads; the final name appears only
// after a completed rename.
const partialSuffix = ".partial"

// Resolution is the user's decision for a conflicted item.
type Resolution string

// Conflict resolutions.
const (
	KeepLocal  Resolution = "local"
	KeepRemote Resolution = "remote"
)

// Engine owns the record mapping and implements track, untrack, the push
// and pull reconciliation passes, and conflict resolution. All access to
// the mapping is serialized behind a single mutex: the monitor goroutine
// and user-triggered operations never see each other's partial mutations.
type Engine struct {
	mu      stdsync.Mutex
	records map[string]*Record
	states  map[string]ItemState

	store   *Store
	client  RemoteClient
	syncDir string
	notify  Notifier
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine loads persisted state from store and returns a ready engine.
// notify may be nil.
func NewEngine(store *Store, client RemoteClient, syncDir string, notify Notifier, logger *slog.Logger) (*Engine, error) {
	records, err := store.Load()
	if err != nil {
		return nil, err
	}

	if notify == nil {
		notify = NopNotifier{}
	}

	logger.Debug("loaded sync state", slog.Int("records", len(records)))

	return &Engine{
		records: records,
		states:  make(map[string]ItemState),
		store:   store,
		client:  client,
		syncDir: syncDir,
		notify:  notify,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// localPath maps a slash-separated drive-relative path under the sync dir.
func (e *Engine) localPath(rel string) string {
	return filepath.Join(e.syncDir, filepath.FromSlash(rel))
}

// downloadTo streams remote content into localPath via a .partial sibling
// and a final rename, then returns the hash of the completed file. A failed
// download never leaves a truncated file under the final name.
func (e *Engine) downloadTo(ctx context.Context, id, localPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(localPath), storeDirPerms); err != nil {
		return "", fmt.Errorf("sync: creating directory for %s: %w", localPath, err)
	}

	partial := localPath + partialSuffix

	f, err := os.Create(partial)
	if err != nil {
		return "", fmt.Errorf("sync: creating %s: %w", partial, err)
	}

	if _, err := e.client.Download(ctx, id, f); err != nil {
		f.Close()
		os.Remove(partial)

		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(partial)

		return "", fmt.Errorf("sync: closing %s: %w", partial, err)
	}

	if err := os.Rename(partial, localPath); err != nil {
		os.Remove(partial)

		return "", fmt.Errorf("sync: finalizing %s: %w", localPath, err)
	}

	return FileSHA1(localPath)
}

// putRecord installs or replaces a record and persists the full mapping.
func (e *Engine) putRecord(rec *Record, state ItemState) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records[rec.ID] = rec
	e.states[rec.ID] = state

	return e.store.Save(e.records)
}

// TrackFile brings a single remote file under tracking: fetch metadata,
// download, hash, record, save. The remote modification time is captured
// before the download starts, so an edit landing mid-download is seen as
// "remote newer" on the next pass instead of being silently absorbed.
// On any failure no record is created; a partial local file may remain.
func (e *Engine) TrackFile(ctx context.Context, id, name, relPath, rootID string) error {
	meta, err := e.client.GetMetadata(ctx, id)
	if err != nil {
		return fmt.Errorf("sync: fetching metadata for %s: %w", id, err)
	}

	localPath := e.localPath(relPath)

	hash, err := e.downloadTo(ctx, id, localPath)
	if err != nil {
		return fmt.Errorf("sync: downloading %s: %w", name, err)
	}

	rec := &Record{
		ID:                 id,
		Name:               name,
		LocalPath:          localPath,
		LastSyncedTime:     e.now().Format(time.RFC3339),
		RemoteModifiedTime: formatRemoteTime(meta.ModifiedTime),
		LocalHashAtSync:    hash,
		DriveRootID:        rootID,
		DriveRelativePath:  relPath,
	}

	if err := e.putRecord(rec, StateSynced); err != nil {
		return err
	}

	e.logger.Info("tracked file",
		slog.String("id", id),
		slog.String("path", localPath),
	)

	return nil
}

// TrackFolder brings a whole remote subtree under tracking. The root
// directory and its record are created first; the walker then drives
// per-item processing. One item's failure is reported and skipped, it never
// aborts the rest of the tree. The operation completes when the walk is
// exhausted, partial success included.
func (e *Engine) TrackFolder(ctx context.Context, id, name string) error {
	rootRel := norm.NFC.String(name)
	rootPath := e.localPath(rootRel)

	if err := os.MkdirAll(rootPath, storeDirPerms); err != nil {
		return fmt.Errorf("sync: creating root directory %s: %w", rootPath, err)
	}

	root := &Record{
		ID:                id,
		Name:              name,
		IsFolder:          true,
		LocalPath:         rootPath,
		LastSyncedTime:    e.now().Format(time.RFC3339),
		DriveRootID:       id,
		DriveRelativePath: rootRel,
	}

	if err := e.putRecord(root, StateTracked); err != nil {
		return err
	}

	e.logger.Info("tracking folder",
		slog.String("id", id),
		slog.String("name", name),
	)

	walk := NewWalk(ctx, e.client, id, rootRel, e.logger)

	for {
		entry, ok := walk.Next()
		if !ok {
			break
		}

		err := e.trackWalkedItem(ctx, entry, id)
		if err != nil {
			e.logger.Warn("skipping item during folder tracking",
				slog.String("id", entry.Item.ID),
				slog.String("path", entry.RelPath),
				slog.Any("error", err),
			)
		}

		e.notify.Progress(ProgressEvent{
			ID:       entry.Item.ID,
			Name:     entry.Item.Name,
			RelPath:  entry.RelPath,
			IsFolder: entry.Item.IsFolder,
			Err:      err,
		})
	}

	return nil
}

// trackWalkedItem records one walker-yielded item: a directory for folders,
// a download plus hash for files.
func (e *Engine) trackWalkedItem(ctx context.Context, entry Entry, rootID string) error {
	localPath := e.localPath(entry.RelPath)

	rec := &Record{
		ID:                entry.Item.ID,
		Name:              entry.Item.Name,
		IsFolder:          entry.Item.IsFolder,
		LocalPath:         localPath,
		LastSyncedTime:    e.now().Format(time.RFC3339),
		DriveRootID:       rootID,
		DriveRelativePath: entry.RelPath,
	}

	state := StateSynced

	if entry.Item.IsFolder {
		if err := os.MkdirAll(localPath, storeDirPerms); err != nil {
			return fmt.Errorf("sync: creating directory %s: %w", localPath, err)
		}

		state = StateTracked
	} else {
		hash, err := e.downloadTo(ctx, entry.Item.ID, localPath)
		if err != nil {
			return err
		}

		rec.RemoteModifiedTime = formatRemoteTime(entry.Item.ModifiedTime)
		rec.LocalHashAtSync = hash
	}

	return e.putRecord(rec, state)
}

// Untrack removes an item and everything tracked beneath it: the local file
// or directory tree, the record for id, and every record whose DriveRootID
// is id. Untracking an unknown id is a no-op.
func (e *Engine) Untrack(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return nil
	}

	if rec.IsFolder {
		if err := os.RemoveAll(rec.LocalPath); err != nil {
			return fmt.Errorf("sync: removing directory %s: %w", rec.LocalPath, err)
		}
	} else if err := os.Remove(rec.LocalPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("sync: removing file %s: %w", rec.LocalPath, err)
	}

	removed := 0

	for key, r := range e.records {
		if r.ID == id || r.DriveRootID == id {
			delete(e.records, key)
			delete(e.states, key)
			removed++
		}
	}

	if err := e.store.Save(e.records); err != nil {
		return err
	}

	e.logger.Info("untracked",
		slog.String("id", id),
		slog.Int("records_removed", removed),
	)

	return nil
}

// PushLocal runs the local-to-remote half of a reconciliation pass over
// every tracked file. Per-item failures are logged and leave that record
// untouched for the next pass.
func (e *Engine) PushLocal(ctx context.Context) {
	for _, rec := range e.fileRecords() {
		e.pushOne(ctx, rec.ID)
	}
}

// pushOne reconciles a single file in the local-to-remote direction.
func (e *Engine) pushOne(ctx context.Context, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return
	}

	hash, err := FileSHA1(rec.LocalPath)
	if errors.Is(err, fs.ErrNotExist) {
		// Nothing to push yet; the local replica has not been created
		// or was deleted out of band.
		return
	}

	if err != nil {
		e.logger.Warn("push: hashing failed", slog.String("id", id), slog.Any("error", err))

		return
	}

	if hash == rec.LocalHashAtSync {
		return
	}

	meta, err := e.client.GetMetadata(ctx, rec.ID)
	if err != nil {
		e.logger.Warn("push: metadata fetch failed", slog.String("id", id), slog.Any("error", err))

		return
	}

	if meta.ModifiedTime.After(rec.remoteModified()) {
		// Both sides changed since the last agreement point. Pushing
		// would destroy the remote edit, so surface a conflict instead.
		e.states[id] = StateConflict
		e.logger.Warn("push: conflict detected",
			slog.String("id", id),
			slog.String("name", rec.Name),
		)

		return
	}

	e.states[id] = StatePendingLocal

	item, err := e.client.UpdateContent(ctx, rec.ID, rec.LocalPath)
	if err != nil {
		e.logger.Warn("push: upload failed", slog.String("id", id), slog.Any("error", err))

		return
	}

	rec.RemoteModifiedTime = formatRemoteTime(item.ModifiedTime)
	rec.LocalHashAtSync = hash
	rec.LastSyncedTime = e.now().Format(time.RFC3339)
	e.states[id] = StateSynced

	if err := e.store.Save(e.records); err != nil {
		e.logger.Error("push: saving state failed", slog.Any("error", err))

		return
	}

	e.logger.Info("pushed local change",
		slog.String("id", id),
		slog.String("name", rec.Name),
	)
}

// PullRemote runs the remote-to-local half of a reconciliation pass over
// every tracked file. Items already flagged as conflicts in this or an
// earlier pass are skipped until the user resolves them.
func (e *Engine) PullRemote(ctx context.Context) {
	for _, rec := range e.fileRecords() {
		e.pullOne(ctx, rec.ID)
	}
}

// pullOne reconciles a single file in the remote-to-local direction.
func (e *Engine) pullOne(ctx context.Context, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return
	}

	// A conflict flagged by the push half of the same cycle (or any
	// earlier pass) waits for the user; pulling would clobber the local
	// edit the push refused to overwrite remotely.
	if e.states[id] == StateConflict || e.states[id] == StateResolveFailed {
		return
	}

	meta, err := e.client.GetMetadata(ctx, rec.ID)
	if err != nil {
		e.logger.Warn("pull: metadata fetch failed", slog.String("id", id), slog.Any("error", err))

		return
	}

	if !meta.ModifiedTime.After(rec.remoteModified()) {
		return
	}

	hash, err := FileSHA1(rec.LocalPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger.Warn("pull: hashing failed", slog.String("id", id), slog.Any("error", err))

		return
	}

	// A missing local file hashes to "", which differs from any recorded
	// hash and lands in the conflict branch rather than silent re-download.
	if hash != rec.LocalHashAtSync {
		e.states[id] = StateConflict
		e.logger.Warn("pull: conflict detected",
			slog.String("id", id),
			slog.String("name", rec.Name),
		)

		return
	}

	e.states[id] = StatePendingRemote

	newHash, err := e.downloadTo(ctx, rec.ID, rec.LocalPath)
	if err != nil {
		e.logger.Warn("pull: download failed", slog.String("id", id), slog.Any("error", err))

		return
	}

	rec.LocalHashAtSync = newHash
	rec.RemoteModifiedTime = formatRemoteTime(meta.ModifiedTime)
	rec.LastSyncedTime = e.now().Format(time.RFC3339)
	e.states[id] = StateSynced

	if err := e.store.Save(e.records); err != nil {
		e.logger.Error("pull: saving state failed", slog.Any("error", err))

		return
	}

	e.logger.Info("pulled remote change",
		slog.String("id", id),
		slog.String("name", rec.Name),
	)
}

// Resolve settles a conflicted item by unconditionally re-pushing the local
// content (KeepLocal) or re-pulling the remote content (KeepRemote). A
// failure leaves the item in StateResolveFailed, distinguishable from both
// a live conflict and a clean sync.
func (e *Engine) Resolve(ctx context.Context, id string, choice Resolution) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotTracked, id)
	}

	if rec.IsFolder {
		return fmt.Errorf("sync: %s is a folder, nothing to resolve", id)
	}

	switch choice {
	case KeepLocal:
		if err := e.resolveKeepLocal(ctx, rec); err != nil {
			e.states[id] = StateResolveFailed

			return err
		}
	case KeepRemote:
		if err := e.resolveKeepRemote(ctx, rec); err != nil {
			e.states[id] = StateResolveFailed

			return err
		}
	default:
		return fmt.Errorf("sync: unknown resolution %q", choice)
	}

	e.states[id] = StateSynced

	if err := e.store.Save(e.records); err != nil {
		return err
	}

	e.logger.Info("resolved conflict",
		slog.String("id", id),
		slog.String("keep", string(choice)),
	)

	return nil
}

func (e *Engine) resolveKeepLocal(ctx context.Context, rec *Record) error {
	hash, err := FileSHA1(rec.LocalPath)
	if err != nil {
		return fmt.Errorf("sync: resolving %s: %w", rec.ID, err)
	}

	item, err := e.client.UpdateContent(ctx, rec.ID, rec.LocalPath)
	if err != nil {
		return fmt.Errorf("sync: re-pushing %s: %w", rec.ID, err)
	}

	rec.RemoteModifiedTime = formatRemoteTime(item.ModifiedTime)
	rec.LocalHashAtSync = hash
	rec.LastSyncedTime = e.now().Format(time.RFC3339)

	return nil
}

func (e *Engine) resolveKeepRemote(ctx context.Context, rec *Record) error {
	meta, err := e.client.GetMetadata(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("sync: resolving %s: %w", rec.ID, err)
	}

	hash, err := e.downloadTo(ctx, rec.ID, rec.LocalPath)
	if err != nil {
		return fmt.Errorf("sync: re-pulling %s: %w", rec.ID, err)
	}

	rec.RemoteModifiedTime = formatRemoteTime(meta.ModifiedTime)
	rec.LocalHashAtSync = hash
	rec.LastSyncedTime = e.now().Format(time.RFC3339)

	return nil
}

// ItemStatus pairs a record snapshot with its current transient state.
type ItemStatus struct {
	Record
	State ItemState `json:"state"`
}

// Status returns a snapshot of every tracked item with its derived state,
// sorted by drive-relative path. For files with no transient state on
// record, the state is derived from a fresh local hash: matching means
// synced, differing means a local edit is waiting to push, missing means
// the local replica is gone and a pull or resolution is needed.
func (e *Engine) Status() []ItemStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ItemStatus, 0, len(e.records))

	for id, rec := range e.records {
		out = append(out, ItemStatus{
			Record: *rec,
			State:  e.stateLocked(id, rec),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DriveRelativePath < out[j].DriveRelativePath
	})

	return out
}

// stateLocked derives the presentation state for one record. Caller holds mu.
func (e *Engine) stateLocked(id string, rec *Record) ItemState {
	if rec.IsFolder {
		return StateTracked
	}

	if st, ok := e.states[id]; ok {
		return st
	}

	hash, err := FileSHA1(rec.LocalPath)
	if errors.Is(err, fs.ErrNotExist) {
		return StatePendingRemote
	}

	if err != nil || hash != rec.LocalHashAtSync {
		return StatePendingLocal
	}

	return StateSynced
}

// Tracked reports whether id has a record.
func (e *Engine) Tracked(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.records[id]

	return ok
}

// fileRecords snapshots the IDs of all non-folder records so the push and
// pull passes iterate without holding the lock across network calls for
// the whole batch.
func (e *Engine) fileRecords() []*Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Record, 0, len(e.records))

	for _, rec := range e.records {
		if !rec.IsFolder {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DriveRelativePath < out[j].DriveRelativePath
	})

	return out
}
