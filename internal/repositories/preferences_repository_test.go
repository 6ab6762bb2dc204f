package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	apperrors "taskflow-gateway/pkg/errors"
)

// testPool connects to TEST_DATABASE_URL; without it the integration tests skip.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(pool))
	_, err = pool.Exec(context.Background(), `TRUNCATE TABLE task_preferences`)
	require.NoError(t, err, "failed to clean task_preferences")
	return pool
}

func TestPreferencesRepository_Integration_Upsert(t *testing.T) {
	pool := testPool(t)
	repo := NewPreferencesRepository(pool, zap.NewNop())
	ctx := context.Background()

	_, err := repo.FindByUser(ctx, "u-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	prefs := entities.DefaultTaskPreferences("u-1")
	prefs.DefaultView = "list"
	saved, err := repo.Upsert(ctx, prefs)
	require.NoError(t, err)
	assert.Equal(t, "list", saved.DefaultView)
	assert.Equal(t, prefs.Columns, saved.Columns)
	assert.False(t, saved.UpdatedAt.IsZero())

	prefs.ShowCompleted = false
	prefs.Columns = []string{"todo", "completed"}
	_, err = repo.Upsert(ctx, prefs)
	require.NoError(t, err)

	found, err := repo.FindByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, found.ShowCompleted)
	assert.Equal(t, []string{"todo", "completed"}, found.Columns)

	require.NoError(t, repo.Delete(ctx, "u-1"))
	_, err = repo.FindByUser(ctx, "u-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
