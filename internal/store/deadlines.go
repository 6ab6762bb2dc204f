package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
)

// Deduper claims a notification key once. repositories.DedupRepository is
// the Redis implementation.
type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// NoDedup lets every scan raise the notification again.
type NoDedup struct{}

func (NoDedup) Claim(context.Context, string, time.Duration) (bool, error) { return true, nil }

func deadlineKey(t entities.Task) string {
	return fmt.Sprintf("%s:%s:%s", t.ID, entities.NotificationDeadlineApproaching, t.Deadline.UTC().Format(time.RFC3339))
}

// inDeadlineWindow: open task, now <= deadline <= now+window. A deadline
// that was filled in because the backend had none never qualifies.
func inDeadlineWindow(t entities.Task, now time.Time, window time.Duration) bool {
	if t.IsCompleted() || t.DeadlineDefaulted {
		return false
	}
	return !t.Deadline.Before(now) && !t.Deadline.After(now.Add(window))
}

// ScanDeadlines runs one scanner tick and returns how many tasks were
// notified.
func (s *Store) ScanDeadlines(ctx context.Context) (int, error) {
	if !s.Initialized() {
		return 0, nil
	}
	now := s.now()
	window := s.cfg.DeadlineWindow

	var (
		raised int
		errs   error
	)
	for _, t := range s.Tasks() {
		if !inDeadlineWindow(t, now, window) {
			continue
		}
		claimed, err := s.deduper.Claim(ctx, deadlineKey(t), window)
		if err != nil {
			// notify anyway: a duplicate beats a missed deadline
			s.logger.Warn("deadline dedup unavailable", zap.String("task", t.ID), zap.Error(err))
			claimed = true
		}
		if !claimed {
			continue
		}
		if err := s.notifier.DeadlineApproaching(ctx, t, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("task %s: %w", t.ID, err))
			continue
		}
		raised++
	}
	return raised, errs
}

func (s *Store) startScanner() {
	interval := s.cfg.DeadlineScanInterval
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	if s.user == nil || s.stopScanner != nil {
		s.mu.Unlock()
		cancel()
		return
	}
	s.stopScanner, s.scannerDone = cancel, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				raised, err := s.ScanDeadlines(ctx)
				if err != nil {
					s.logger.Error("deadline scan failed", zap.Error(err))
				}
				if raised > 0 {
					s.logger.Info("deadline notifications raised", zap.Int("count", raised))
					s.reload(ctx)
				}
			}
		}
	}()
}
