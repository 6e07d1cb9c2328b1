package sync

import (
	"context"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnWrite(t *testing.T) {
	root := t.TempDir()

	var (
		mu    stdsync.Mutex
		fired int
	)

	w, err := NewWatcher(root, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	}, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return fired > 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresPartialFiles(t *testing.T) {
	root := t.TempDir()

	var (
		mu    stdsync.Mutex
		fired int
	)

	w, err := NewWatcher(root, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	}, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"+partialSuffix), []byte("x"), 0o600))

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, fired)
}

func TestWatcher_MissingRoot(t *testing.T) {
	// A vanished sync dir is tolerated at construction; events just never
	// arrive until the interval pass recreates state.
	w, err := NewWatcher(filepath.Join(t.TempDir(), "gone"), func() {}, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, w.Run(ctx), context.Canceled)
}
