package sync

import (
	"context"
	"log/slog"
	"path"

	"golang.org/x/text/unicode/norm"

	"github.com/mholub/drivesync/internal/drive"
)

// ChildLister is the single remote operation the walker needs.
type ChildLister interface {
	ListChildren(ctx context.Context, folderID string) ([]drive.Item, error)
}

// Entry is one item yielded by a walk: the remote metadata plus its
// slash-separated path relative to the walk root.
type Entry struct {
	Item    drive.Item
	RelPath string
}

// Walk is a lazy depth-first enumeration of a remote subtree. Each folder's
// children are listed only when the walk reaches it; a child is emitted
// before its own children (emit-then-recurse), siblings in remote list
// order. The walk holds no memory between runs; constructing a new Walk
// re-enumerates from the remote.
//
// A listing failure prunes only the failed folder's subtree: the error is
// logged and the walk continues with that folder's siblings. Sibling name
// collisions are not deduplicated; the last listed occupant of a relative
// path wins, matching remote list order.
type Walk struct {
	ctx     context.Context
	client  ChildLister
	logger  *slog.Logger
	rootID  string
	rootRel string
	started bool
	levels  [][]Entry
}

// NewWalk prepares a walk over the subtree rooted at rootID. rootRel is the
// relative path prefix applied to every yielded entry; the root item itself
// is not yielded.
func NewWalk(ctx context.Context, client ChildLister, rootID, rootRel string, logger *slog.Logger) *Walk {
	return &Walk{
		ctx:     ctx,
		client:  client,
		logger:  logger,
		rootID:  rootID,
		rootRel: rootRel,
	}
}

// Next returns the next entry in depth-first order. The second return is
// false once the enumeration is exhausted.
func (w *Walk) Next() (Entry, bool) {
	if !w.started {
		w.started = true
		w.push(w.rootID, w.rootRel)
	}

	for len(w.levels) > 0 {
		top := &w.levels[len(w.levels)-1]
		if len(*top) == 0 {
			w.levels = w.levels[:len(w.levels)-1]

			continue
		}

		entry := (*top)[0]
		*top = (*top)[1:]

		if entry.Item.IsFolder {
			w.push(entry.Item.ID, entry.RelPath)
		}

		return entry, true
	}

	return Entry{}, false
}

// push lists a folder's children and stacks them as a new level. On listing
// failure the subtree is skipped and the walk continues with the levels
// already stacked.
func (w *Walk) push(folderID, rel string) {
	children, err := w.client.ListChildren(w.ctx, folderID)
	if err != nil {
		w.logger.Warn("listing folder failed, skipping subtree",
			slog.String("folder_id", folderID),
			slog.String("path", rel),
			slog.Any("error", err),
		)

		return
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		// Remote names may arrive in any Unicode normalization form;
		// NFC keeps local paths stable across platforms.
		name := norm.NFC.String(child.Name)
		entries = append(entries, Entry{
			Item:    child,
			RelPath: path.Join(rel, name),
		})
	}

	w.levels = append(w.levels, entries)
}
