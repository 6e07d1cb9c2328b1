package sync

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_NudgeNeverBlocks(t *testing.T) {
	eng, _ := newTestEngine(t, newFakeRemote())
	mon := NewMonitor(eng, time.Hour, testLogger())

	// No consumer running; repeated nudges must still return immediately.
	for range 10 {
		mon.Nudge()
	}
}

func TestMonitor_InitialPassAndShutdown(t *testing.T) {
	remote := newFakeRemote()
	remote.addFile("f1", "report.csv", "", []byte("hello"), baseTime)

	eng, _ := newTestEngine(t, remote)
	require.NoError(t, eng.TrackFile(context.Background(), "f1", "report.csv", "report.csv", "f1"))
	require.NoError(t, os.WriteFile(eng.records["f1"].LocalPath, []byte("local edit"), 0o600))

	mon := NewMonitor(eng, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- mon.Run(ctx)
	}()

	// The immediate first pass pushes the local edit.
	require.Eventually(t, func() bool {
		remote.mu.Lock()
		defer remote.mu.Unlock()

		return string(remote.items["f1"].content) == "local edit"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
}

func TestMonitor_NudgeTriggersEarlyPass(t *testing.T) {
	remote := newFakeRemote()
	remote.addFile("f1", "report.csv", "", []byte("hello"), baseTime)

	eng, _ := newTestEngine(t, remote)
	require.NoError(t, eng.TrackFile(context.Background(), "f1", "report.csv", "report.csv", "f1"))

	localPath := eng.records["f1"].LocalPath
	mon := NewMonitor(eng, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- mon.Run(ctx)
	}()

	// Wait out the initial pass, then edit and nudge. The interval is an
	// hour, so only the nudge can explain a second push.
	require.Eventually(t, func() bool {
		eng.mu.Lock()
		defer eng.mu.Unlock()

		return eng.states["f1"] == StateSynced
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(localPath, []byte("nudged edit"), 0o600))
	mon.Nudge()

	require.Eventually(t, func() bool {
		remote.mu.Lock()
		defer remote.mu.Unlock()

		return string(remote.items["f1"].content) == "nudged edit"
	}, 10*time.Second, 50*time.Millisecond)
}
