package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkAll(w *Walk) []Entry {
	var out []Entry

	for {
		entry, ok := w.Next()
		if !ok {
			return out
		}

		out = append(out, entry)
	}
}

func TestWalk_DepthFirstOrder(t *testing.T) {
	remote := newFakeRemote()
	mod := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	remote.addFolder("docs", "Docs", "")
	remote.addFile("a", "a.txt", "docs", []byte("a"), mod)
	remote.addFolder("sub", "Sub", "docs")
	remote.addFile("b", "b.txt", "sub", []byte("b"), mod)
	remote.addFile("c", "c.txt", "docs", []byte("c"), mod)

	walk := NewWalk(context.Background(), remote, "docs", "Docs", testLogger())
	entries := walkAll(walk)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.RelPath)
	}

	// Sub's contents come before Sub's next sibling: emit, then recurse.
	assert.Equal(t, []string{"Docs/a.txt", "Docs/Sub", "Docs/Sub/b.txt", "Docs/c.txt"}, paths)
}

func TestWalk_ListingFailurePrunesSubtree(t *testing.T) {
	remote := newFakeRemote()
	mod := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	remote.addFolder("docs", "Docs", "")
	remote.addFolder("bad", "Bad", "docs")
	remote.addFile("hidden", "hidden.txt", "bad", []byte("x"), mod)
	remote.addFile("c", "c.txt", "docs", []byte("c"), mod)
	remote.listErr["bad"] = errors.New("boom")

	walk := NewWalk(context.Background(), remote, "docs", "Docs", testLogger())
	entries := walkAll(walk)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.RelPath)
	}

	// Bad itself is yielded, its contents are not, siblings continue.
	assert.Equal(t, []string{"Docs/Bad", "Docs/c.txt"}, paths)
}

func TestWalk_RootListingFailureYieldsNothing(t *testing.T) {
	remote := newFakeRemote()
	remote.addFolder("docs", "Docs", "")
	remote.listErr["docs"] = errors.New("boom")

	walk := NewWalk(context.Background(), remote, "docs", "Docs", testLogger())

	assert.Empty(t, walkAll(walk))
}

func TestWalk_Restartable(t *testing.T) {
	remote := newFakeRemote()
	mod := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	remote.addFolder("docs", "Docs", "")
	remote.addFile("a", "a.txt", "docs", []byte("a"), mod)

	first := walkAll(NewWalk(context.Background(), remote, "docs", "Docs", testLogger()))
	second := walkAll(NewWalk(context.Background(), remote, "docs", "Docs", testLogger()))

	require.Equal(t, first, second)
}

func TestWalk_NormalizesNamesToNFC(t *testing.T) {
	remote := newFakeRemote()
	mod := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	remote.addFolder("docs", "Docs", "")
	// "é" in decomposed form (e + combining acute).
	remote.addFile("a", "café.txt", "docs", []byte("a"), mod)

	entries := walkAll(NewWalk(context.Background(), remote, "docs", "Docs", testLogger()))
	require.Len(t, entries, 1)
	assert.Equal(t, "Docs/café.txt", entries[0].RelPath)
}
