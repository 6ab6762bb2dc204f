package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	apperrors "taskflow-gateway/pkg/errors"
)

const prefsUser = "7f1d2a4e-8f43-4a0e-9a35-2cde4a3b9c11"

type fakePreferencesRepo struct {
	rows    map[string]entities.TaskPreferences
	failGet error
	upserts int
}

func (r *fakePreferencesRepo) FindByUser(_ context.Context, userID string) (*entities.TaskPreferences, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	p, ok := r.rows[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (r *fakePreferencesRepo) Upsert(_ context.Context, p entities.TaskPreferences) (*entities.TaskPreferences, error) {
	if r.rows == nil {
		r.rows = map[string]entities.TaskPreferences{}
	}
	r.upserts++
	r.rows[p.UserID] = p
	return &p, nil
}

func (r *fakePreferencesRepo) Delete(_ context.Context, userID string) error {
	delete(r.rows, userID)
	return nil
}

func TestPreferencesService_GetReturnsDefaults(t *testing.T) {
	svc := NewPreferencesService(&fakePreferencesRepo{}, zap.NewNop())

	prefs, err := svc.Get(context.Background(), prefsUser)

	require.NoError(t, err)
	assert.Equal(t, entities.DefaultTaskPreferences(prefsUser), *prefs)
}

func TestPreferencesService_GetPropagatesStorageErrors(t *testing.T) {
	svc := NewPreferencesService(&fakePreferencesRepo{failGet: errors.New("connection refused")}, zap.NewNop())

	_, err := svc.Get(context.Background(), prefsUser)

	assert.Error(t, err)
}

func TestPreferencesService_SaveValidates(t *testing.T) {
	repo := &fakePreferencesRepo{}
	svc := NewPreferencesService(repo, zap.NewNop())

	cases := map[string]func(p *entities.TaskPreferences){
		"bad view":         func(p *entities.TaskPreferences) { p.DefaultView = "gantt" },
		"bad priority":     func(p *entities.TaskPreferences) { p.FilterPriority = "critical" },
		"bad type":         func(p *entities.TaskPreferences) { p.FilterTaskType = "personal" },
		"bad assignee":     func(p *entities.TaskPreferences) { p.FilterAssignee = "bob" },
		"no columns":       func(p *entities.TaskPreferences) { p.Columns = nil },
		"duplicate column": func(p *entities.TaskPreferences) { p.Columns = []string{"todo", "todo"} },
		"bad user":         func(p *entities.TaskPreferences) { p.UserID = "nope" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := entities.DefaultTaskPreferences(prefsUser)
			mutate(&p)

			_, err := svc.Save(context.Background(), p)

			assert.True(t, apperrors.IsInvalidInput(err), "got %v", err)
		})
	}
	assert.Zero(t, repo.upserts)
}

func TestPreferencesService_SaveAndReset(t *testing.T) {
	repo := &fakePreferencesRepo{}
	svc := NewPreferencesService(repo, zap.NewNop())
	p := entities.DefaultTaskPreferences(prefsUser)
	p.FilterAssignee = "me"
	p.FilterPriority = "urgent"
	p.Columns = []string{"in_progress", "review"}

	_, err := svc.Save(context.Background(), p)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), prefsUser)
	require.NoError(t, err)
	assert.Equal(t, "urgent", got.FilterPriority)

	reset, err := svc.Reset(context.Background(), prefsUser)
	require.NoError(t, err)
	assert.Equal(t, "all", reset.FilterPriority)
	assert.Empty(t, repo.rows)
}

func TestBoardFilter(t *testing.T) {
	p := entities.DefaultTaskPreferences(prefsUser)
	p.ShowCompleted = false
	p.FilterTaskType = string(entities.TaskProject)

	f := BoardFilter(p)

	assert.True(t, f.HideCompleted)
	assert.Equal(t, "projet", f.Type)
	assert.Equal(t, "all", f.Assignee)
}
