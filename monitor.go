package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mholub/drivesync/internal/sync"
)

// Log rotation bounds for the monitor's file handler.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the background reconciliation loop",
		Long: `Run reconciliation passes on a fixed interval until interrupted. A
filesystem watcher on the sync directory triggers early passes after local
edits; remote changes are picked up by the interval polls. Only one monitor
can run per data directory.`,
		Args: cobra.NoArgs,
		RunE: runMonitor,
	}

	cmd.Flags().Int("interval", 0, "seconds between passes (overrides interval_seconds)")

	return cmd
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	if cfg.LogFile != "" {
		logger = monitorLogger(cfg.LogFile)
	}

	cleanup, err := writePIDFile(monitorPIDPath())
	if err != nil {
		return err
	}
	defer cleanup()

	intervalSec := cfg.IntervalSeconds
	if flagInterval, _ := cmd.Flags().GetInt("interval"); flagInterval > 0 {
		intervalSec = flagInterval
	}

	eng, err := newEngine(cmd, nil)
	if err != nil {
		return err
	}

	ctx := shutdownContext(cmd.Context(), logger)
	mon := sync.NewMonitor(eng, time.Duration(intervalSec)*time.Second, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mon.Run(ctx)
	})

	// The watcher is an optimization; a sync dir that cannot be watched
	// still reconciles on the interval.
	watcher, err := sync.NewWatcher(cfg.SyncDir, mon.Nudge, logger)
	if err != nil {
		logger.Warn("filesystem watching unavailable, relying on interval polls",
			slog.Any("error", err),
		)
	} else {
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// monitorLogger writes structured logs to a size-rotated file instead of
// stderr, for long-running unattended operation.
func monitorLogger(path string) *slog.Logger {
	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   true,
	}

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
