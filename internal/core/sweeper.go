package core

// sweeper.go evicts expired view sessions in the background.
//
// Stores with native expiry (Redis) report zero evictions; the in-memory
// store relies on this loop to release abandoned views. The loop is
// context-aware for graceful shutdown and never fails the application:
// sweep errors are logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when StartSessionSweeper gets a non-positive interval.
const DefaultSweepInterval = time.Minute

// StartSessionSweeper periodically removes expired sessions from the store.
// It runs immediately on start, then every interval, and stops when ctx is
// cancelled.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started", "interval", interval.String())

	s.runSweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// SweepObserver is implemented by observers that also track evictions.
type SweepObserver interface {
	ObserveSweep(removed int)
}

// runSweep performs one eviction pass.
func (s *Service) runSweep(ctx context.Context) {
	start := time.Now()
	evicted, err := s.store.Sweep(ctx)
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}
	if so, ok := s.observer.(SweepObserver); ok {
		so.ObserveSweep(evicted)
	}
	if evicted > 0 {
		slog.Info("evicted expired sessions",
			"sessions_evicted", evicted,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
