// Package cleanup evicts idle registration sessions on a fixed interval.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionStore exposes cleanup for expired sessions.
type SessionStore interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// Recorder receives the number of evicted sessions.
type Recorder interface {
	RecordSessionsRemoved(n int, expired bool)
}

// CleanupService periodically removes expired sessions.
type CleanupService struct {
	store    SessionStore
	recorder Recorder
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*CleanupService)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *CleanupService) {
		s.recorder = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *CleanupService) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store SessionStore, opts ...Option) (*CleanupService, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	svc := &CleanupService{
		store:    store,
		interval: time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "session cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep and returns the number of evicted sessions.
func (s *CleanupService) RunOnce(ctx context.Context) (int, error) {
	deleted, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordSessionsRemoved(deleted, true)
	}
	if deleted > 0 {
		s.logger.DebugContext(ctx, "expired registration sessions removed", "count", deleted)
	}
	return deleted, nil
}
