package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	stdsync "sync"
	"time"

	"github.com/mholub/drivesync/internal/drive"
)

// fakeRemote is an in-memory RemoteClient for engine and walker tests.
// Per-operation error maps inject failures for specific item IDs.
type fakeRemote struct {
	mu    stdsync.Mutex
	items map[string]*fakeItem

	listErr     map[string]error
	getErr      map[string]error
	downloadErr map[string]error
	updateErr   map[string]error

	uploads int
}

type fakeItem struct {
	item     drive.Item
	content  []byte
	children []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		items:       make(map[string]*fakeItem),
		listErr:     make(map[string]error),
		getErr:      make(map[string]error),
		downloadErr: make(map[string]error),
		updateErr:   make(map[string]error),
	}
}

func (f *fakeRemote) addFolder(id, name, parentID string) {
	f.add(&fakeItem{item: drive.Item{ID: id, Name: name, IsFolder: true}}, parentID)
}

func (f *fakeRemote) addFile(id, name, parentID string, content []byte, modified time.Time) {
	f.add(&fakeItem{
		item: drive.Item{
			ID:           id,
			Name:         name,
			Size:         int64(len(content)),
			ModifiedTime: modified,
		},
		content: content,
	}, parentID)
}

func (f *fakeRemote) add(fi *fakeItem, parentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[fi.item.ID] = fi

	if parent, ok := f.items[parentID]; ok {
		parent.children = append(parent.children, fi.item.ID)
	}
}

// setContent simulates a remote edit: new content and a newer timestamp.
func (f *fakeRemote) setContent(id string, content []byte, modified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fi := f.items[id]
	fi.content = content
	fi.item.Size = int64(len(content))
	fi.item.ModifiedTime = modified
}

func (f *fakeRemote) ListChildren(_ context.Context, folderID string) ([]drive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.listErr[folderID]; err != nil {
		return nil, err
	}

	fi, ok := f.items[folderID]
	if !ok {
		return nil, drive.ErrNotFound
	}

	out := make([]drive.Item, 0, len(fi.children))
	for _, childID := range fi.children {
		out = append(out, f.items[childID].item)
	}

	return out, nil
}

func (f *fakeRemote) GetMetadata(_ context.Context, id string) (*drive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.getErr[id]; err != nil {
		return nil, err
	}

	fi, ok := f.items[id]
	if !ok {
		return nil, drive.ErrNotFound
	}

	item := fi.item

	return &item, nil
}

func (f *fakeRemote) Download(_ context.Context, id string, w io.Writer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.downloadErr[id]; err != nil {
		return 0, err
	}

	fi, ok := f.items[id]
	if !ok {
		return 0, drive.ErrNotFound
	}

	n, err := w.Write(fi.content)

	return int64(n), err
}

func (f *fakeRemote) UploadNew(_ context.Context, localPath, parentID string) (*drive.Item, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.uploads++
	id := fmt.Sprintf("uploaded-%d", f.uploads)
	f.mu.Unlock()

	fi := &fakeItem{
		item: drive.Item{
			ID:           id,
			Name:         filepath.Base(localPath),
			Size:         int64(len(content)),
			ModifiedTime: time.Now().UTC().Truncate(time.Second),
		},
		content: content,
	}

	f.add(fi, parentID)
	item := fi.item

	return &item, nil
}

func (f *fakeRemote) UpdateContent(_ context.Context, id, localPath string) (*drive.Item, error) {
	f.mu.Lock()
	err := f.updateErr[id]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fi, ok := f.items[id]
	if !ok {
		return nil, drive.ErrNotFound
	}

	fi.content = content
	fi.item.Size = int64(len(content))
	fi.item.ModifiedTime = fi.item.ModifiedTime.Add(time.Second)

	item := fi.item

	return &item, nil
}
