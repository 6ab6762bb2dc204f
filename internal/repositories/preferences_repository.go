package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	apperrors "taskflow-gateway/pkg/errors"
)

const preferencesTable = "task_preferences"

var preferencesColumns = []string{
	"user_id", "default_view", "filter_priority", "filter_assignee",
	"filter_task_type", "show_completed", "columns", "updated_at",
}

type PreferencesRepositoryInterface interface {
	FindByUser(ctx context.Context, userID string) (*entities.TaskPreferences, error)
	Upsert(ctx context.Context, prefs entities.TaskPreferences) (*entities.TaskPreferences, error)
	Delete(ctx context.Context, userID string) error
}

type PreferencesRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewPreferencesRepository(storage *pgxpool.Pool, logger *zap.Logger) PreferencesRepositoryInterface {
	return &PreferencesRepository{storage: storage, logger: logger}
}

func scanPreferences(row pgx.Row) (*entities.TaskPreferences, error) {
	var p entities.TaskPreferences
	err := row.Scan(
		&p.UserID, &p.DefaultView, &p.FilterPriority, &p.FilterAssignee,
		&p.FilterTaskType, &p.ShowCompleted, &p.Columns, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PreferencesRepository) FindByUser(ctx context.Context, userID string) (*entities.TaskPreferences, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(preferencesColumns...).
		From(preferencesTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanPreferences(r.storage.QueryRow(ctx, query, args...))
}

func (r *PreferencesRepository) Upsert(ctx context.Context, p entities.TaskPreferences) (*entities.TaskPreferences, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(preferencesTable).
		Columns(preferencesColumns[:7]...).
		Values(p.UserID, p.DefaultView, p.FilterPriority, p.FilterAssignee, p.FilterTaskType, p.ShowCompleted, p.Columns).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			default_view = EXCLUDED.default_view,
			filter_priority = EXCLUDED.filter_priority,
			filter_assignee = EXCLUDED.filter_assignee,
			filter_task_type = EXCLUDED.filter_task_type,
			show_completed = EXCLUDED.show_completed,
			columns = EXCLUDED.columns,
			updated_at = NOW()
			RETURNING ` + strings.Join(preferencesColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}
	saved, err := scanPreferences(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		r.logger.Error("failed to upsert task preferences", zap.String("user_id", p.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return saved, nil
}

func (r *PreferencesRepository) Delete(ctx context.Context, userID string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(preferencesTable).Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.storage.Exec(ctx, query, args...)
	return err
}
