package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the sync directory tree with fsnotify and calls onChange
// for every relevant filesystem event. It exists only to wake the monitor
// early; correctness never depends on it, the interval pass catches
// anything the watcher misses.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	onChange func()
	logger   *slog.Logger
}

// NewWatcher builds a recursive watcher over root. Directories created
// after startup are added as their create events arrive.
func NewWatcher(root string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("sync: creating filesystem watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		root:     root,
		onChange: onChange,
		logger:   logger,
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()

		return nil, err
	}

	return w, nil
}

// addRecursive registers root and every directory beneath it. A directory
// that disappears mid-walk is skipped.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}

			return fmt.Errorf("sync: walking %s: %w", path, err)
		}

		if !d.IsDir() {
			return nil
		}

		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("sync: watching %s: %w", path, err)
		}

		return nil
	})
}

// Run pumps watcher events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.logger.Info("filesystem watcher started", slog.String("root", w.root))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("filesystem watcher error", slog.Any("error", err))
		}
	}
}

// handleEvent nudges on content-affecting events and extends the watch
// into newly created directories.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// In-flight downloads write .partial files; reacting to our own
	// writes would nudge the monitor into a useless extra pass.
	if strings.HasSuffix(event.Name, partialSuffix) {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("extending watch failed",
					slog.String("path", event.Name),
					slog.Any("error", err),
				)
			}
		}
	}

	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.logger.Debug("filesystem change", slog.String("path", event.Name))
		w.onChange()
	}
}
