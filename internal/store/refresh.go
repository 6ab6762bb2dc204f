package store

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskflow-gateway/internal/events"
	apperrors "taskflow-gateway/pkg/errors"
)

type loader struct {
	collection Collection
	load       func(ctx context.Context, next *Snapshot) error
}

func (s *Store) loaders() []loader {
	return []loader{
		{CollectionServices, func(ctx context.Context, next *Snapshot) (err error) {
			next.Services, err = s.backend.Services(ctx)
			return err
		}},
		{CollectionTasks, func(ctx context.Context, next *Snapshot) (err error) {
			next.Tasks, err = s.backend.Tasks(ctx)
			return err
		}},
		{CollectionProjects, func(ctx context.Context, next *Snapshot) (err error) {
			next.Projects, err = s.backend.Projects(ctx)
			return err
		}},
		{CollectionNotifications, func(ctx context.Context, next *Snapshot) (err error) {
			next.Notifications, err = s.backend.Notifications(ctx)
			return err
		}},
		{CollectionEmployeeLoans, func(ctx context.Context, next *Snapshot) (err error) {
			next.EmployeeLoans, err = s.backend.EmployeeLoans(ctx)
			return err
		}},
		{CollectionUrgencyModes, func(ctx context.Context, next *Snapshot) (err error) {
			next.UrgencyModes, err = s.backend.UrgencyModes(ctx)
			return err
		}},
		{CollectionUsers, func(ctx context.Context, next *Snapshot) (err error) {
			next.Users, err = s.backend.Users(ctx)
			return err
		}},
	}
}

// Refresh reloads all seven collections concurrently. A collection whose
// fetch fails keeps its previous contents; the failures are kept in
// LastError. Results are dropped when a newer reload started meanwhile.
// Only lifecycle problems are returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return apperrors.ErrNotInitialized
	}
	s.generation++
	gen := s.generation
	userID := s.user.ID
	for _, c := range Collections {
		s.states[c] = StateLoading
	}
	s.mu.Unlock()

	loaders := s.loaders()
	results := make([]Snapshot, len(loaders))
	errs := make([]error, len(loaders))

	var g errgroup.Group
	for i, l := range loaders {
		i, l := i, l
		g.Go(func() error {
			if err := l.load(ctx, &results[i]); err != nil {
				errs[i] = fmt.Errorf("failed to load %s: %w", l.collection, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	if gen != s.generation || s.user == nil {
		s.stale++
		s.mu.Unlock()
		s.logger.Debug("discarding stale reload", zap.Uint64("generation", gen))
		return nil
	}

	var failed []string
	for i, l := range loaders {
		if errs[i] != nil {
			failed = append(failed, string(l.collection))
			if s.loaded[l.collection] {
				s.states[l.collection] = StateReady
			} else {
				s.states[l.collection] = StateUninitialized
			}
			continue
		}
		s.apply(l.collection, &results[i])
		s.loaded[l.collection] = true
		s.states[l.collection] = StateReady
	}
	s.lastErr = multierr.Combine(errs...)
	lastErr := s.lastErr
	s.mu.Unlock()

	if lastErr != nil {
		s.logger.Warn("reload finished with errors", zap.Uint64("generation", gen), zap.Strings("failed", failed), zap.Error(lastErr))
	} else {
		s.logger.Debug("reload finished", zap.Uint64("generation", gen))
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.StoreRefreshedEvent{
			SessionID:  s.sessionID,
			UserID:     userID,
			Generation: gen,
			Failed:     failed,
		})
	}
	return nil
}

// apply copies one collection out of a loader's result. Callers hold s.mu.
func (s *Store) apply(c Collection, next *Snapshot) {
	switch c {
	case CollectionServices:
		s.data.Services = next.Services
	case CollectionTasks:
		s.data.Tasks = next.Tasks
	case CollectionProjects:
		s.data.Projects = next.Projects
	case CollectionNotifications:
		s.data.Notifications = next.Notifications
	case CollectionEmployeeLoans:
		s.data.EmployeeLoans = next.EmployeeLoans
	case CollectionUrgencyModes:
		s.data.UrgencyModes = next.UrgencyModes
	case CollectionUsers:
		s.data.Users = next.Users
	}
}

// reload is the post-mutation refresh: its failures never fail the mutation.
func (s *Store) reload(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("reload after mutation skipped", zap.Error(err))
	}
}
