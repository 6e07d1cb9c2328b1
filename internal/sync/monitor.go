package sync

import (
	"context"
	"log/slog"
	"time"
)

// nudgeDebounce is how long the monitor waits after a filesystem nudge
// before running a pass, so a burst of editor writes triggers one pass.
const nudgeDebounce = 2 * time.Second

// Monitor runs reconciliation passes on a fixed interval until its context
// is cancelled. Each pass pushes local changes first, then pulls remote
// ones: a local edit either pushes cleanly or gets flagged as a conflict
// before the pull half can consider overwriting it.
type Monitor struct {
	engine   *Engine
	interval time.Duration
	nudge    chan struct{}
	logger   *slog.Logger
}

// NewMonitor returns a monitor driving engine every interval.
func NewMonitor(engine *Engine, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		engine:   engine,
		interval: interval,
		nudge:    make(chan struct{}, 1),
		logger:   logger,
	}
}

// Nudge asks the monitor to run a pass ahead of schedule. It never blocks;
// a nudge while one is already queued is absorbed.
func (m *Monitor) Nudge() {
	select {
	case m.nudge <- struct{}{}:
	default:
	}
}

// Run executes the monitor loop until ctx is cancelled, starting with an
// immediate pass. It always returns ctx's error.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", slog.Duration("interval", m.interval))

	m.pass(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")

			return ctx.Err()
		case <-ticker.C:
			m.pass(ctx)
		case <-m.nudge:
			if !m.debounce(ctx) {
				m.logger.Info("monitor stopped")

				return ctx.Err()
			}

			m.pass(ctx)
		}
	}
}

// debounce absorbs further nudges for nudgeDebounce. It returns false when
// the context was cancelled while waiting.
func (m *Monitor) debounce(ctx context.Context) bool {
	timer := time.NewTimer(nudgeDebounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-m.nudge:
		case <-timer.C:
			return true
		}
	}
}

// pass runs one full reconciliation cycle, push before pull.
func (m *Monitor) pass(ctx context.Context) {
	start := time.Now()

	m.engine.PushLocal(ctx)
	m.engine.PullRemote(ctx)

	m.logger.Debug("reconciliation pass complete",
		slog.Duration("elapsed", time.Since(start)),
	)
}
