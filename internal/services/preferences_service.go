package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/repositories"
	apperrors "taskflow-gateway/pkg/errors"
)

var defaultViews = []string{"board", "list", "calendar"}

type PreferencesServiceInterface interface {
	Get(ctx context.Context, userID string) (*entities.TaskPreferences, error)
	Save(ctx context.Context, prefs entities.TaskPreferences) (*entities.TaskPreferences, error)
	Reset(ctx context.Context, userID string) (*entities.TaskPreferences, error)
}

type PreferencesService struct {
	repo   repositories.PreferencesRepositoryInterface
	logger *zap.Logger
}

func NewPreferencesService(repo repositories.PreferencesRepositoryInterface, logger *zap.Logger) PreferencesServiceInterface {
	return &PreferencesService{repo: repo, logger: logger}
}

// Get falls back to the defaults for a user who never saved anything.
func (s *PreferencesService) Get(ctx context.Context, userID string) (*entities.TaskPreferences, error) {
	if err := backend.ValidateID(userID, "user"); err != nil {
		return nil, err
	}
	prefs, err := s.repo.FindByUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		defaults := entities.DefaultTaskPreferences(userID)
		return &defaults, nil
	}
	if err != nil {
		s.logger.Error("failed to load task preferences", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

func (s *PreferencesService) Save(ctx context.Context, prefs entities.TaskPreferences) (*entities.TaskPreferences, error) {
	if err := ValidatePreferences(prefs); err != nil {
		return nil, err
	}
	saved, err := s.repo.Upsert(ctx, prefs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task preferences saved", zap.String("user_id", prefs.UserID))
	return saved, nil
}

func (s *PreferencesService) Reset(ctx context.Context, userID string) (*entities.TaskPreferences, error) {
	if err := backend.ValidateID(userID, "user"); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to reset preferences: %w", err)
	}
	defaults := entities.DefaultTaskPreferences(userID)
	return &defaults, nil
}

func ValidatePreferences(p entities.TaskPreferences) error {
	if err := backend.ValidateID(p.UserID, "user"); err != nil {
		return err
	}
	if !slices.Contains(defaultViews, p.DefaultView) {
		return apperrors.NewInvalidInputError("unknown view %q", p.DefaultView)
	}
	if !isAll(p.FilterPriority) && !entities.Priority(p.FilterPriority).Valid() {
		return apperrors.NewInvalidInputError("unknown priority filter %q", p.FilterPriority)
	}
	if !isAll(p.FilterTaskType) && !entities.TaskType(p.FilterTaskType).Valid() {
		return apperrors.NewInvalidInputError("unknown task type filter %q", p.FilterTaskType)
	}
	if !isAll(p.FilterAssignee) && p.FilterAssignee != "me" {
		if err := backend.ValidateID(p.FilterAssignee, "assignee filter"); err != nil {
			return err
		}
	}
	if len(p.Columns) == 0 {
		return apperrors.NewInvalidInputError("at least one board column is required")
	}
	seen := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		if !entities.TaskStatus(c).Valid() {
			return apperrors.NewInvalidInputError("unknown board column %q", c)
		}
		if seen[c] {
			return apperrors.NewInvalidInputError("duplicate board column %q", c)
		}
		seen[c] = true
	}
	return nil
}

func isAll(v string) bool { return v == "" || v == "all" }

// BoardFilter turns saved preferences into the board's task filter.
func BoardFilter(p entities.TaskPreferences) authz.TaskFilter {
	return authz.TaskFilter{
		Type:          p.FilterTaskType,
		Priority:      p.FilterPriority,
		Assignee:      p.FilterAssignee,
		HideCompleted: !p.ShowCompleted,
	}
}
