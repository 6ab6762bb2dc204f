package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-gateway/internal/analytics"
	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/store"
	apperrors "taskflow-gateway/pkg/errors"
)

var dashNow = time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)

type staticSource struct {
	user *entities.User
	snap store.Snapshot
}

func (s staticSource) User() *entities.User     { return s.user }
func (s staticSource) Snapshot() store.Snapshot { return s.snap }

func dashboardSource(role entities.Role) staticSource {
	me := &entities.User{ID: "u1", Role: role, Service: null.StringFrom("s1")}
	return staticSource{
		user: me,
		snap: store.Snapshot{
			Services: []entities.Service{{ID: "s1", Name: "Dev"}, {ID: "s2", Name: "Ops"}},
			Users:    []entities.User{*me, {ID: "u2", Service: null.StringFrom("s2")}},
			Tasks: []entities.Task{
				{ID: "mine-soon", ServiceID: "s1", AssignedTo: []string{"u1"}, Status: entities.TaskTodo, Deadline: dashNow.Add(48 * time.Hour), CreatedAt: dashNow},
				{ID: "mine-late", ServiceID: "s1", AssignedTo: []string{"u1"}, Status: entities.TaskInProgress, Deadline: dashNow.Add(-time.Hour), CreatedAt: dashNow},
				{ID: "mine-done", ServiceID: "s1", AssignedTo: []string{"u1"}, Status: entities.TaskCompleted, Deadline: dashNow.Add(time.Hour), CreatedAt: dashNow},
				{ID: "other", ServiceID: "s2", AssignedTo: []string{"u2"}, Status: entities.TaskTodo, Deadline: dashNow.Add(time.Hour), CreatedAt: dashNow},
			},
			Notifications: []entities.Notification{
				{ID: "n1", UserID: "u1"},
				{ID: "n2", UserID: "u1", IsRead: true},
				{ID: "n3", UserID: "u2"},
			},
			UrgencyModes: []entities.UrgencyMode{
				{ID: "m1", ServiceID: "s1", IsActive: true},
				{ID: "m2", ServiceID: "s2", IsActive: true},
				{ID: "m3", ServiceID: "s1"},
			},
		},
	}
}

func newDashboard() *DashboardService {
	return NewDashboardService(func() time.Time { return dashNow }, zap.NewNop())
}

func TestDashboardService_Summary(t *testing.T) {
	sum, err := newDashboard().Summary(dashboardSource(entities.RoleEmployee))

	require.NoError(t, err)
	assert.Equal(t, 2, sum.MyOpenTasks)
	assert.Equal(t, 1, sum.MyOverdueTasks)
	require.Len(t, sum.DueSoon, 1)
	assert.Equal(t, "mine-soon", sum.DueSoon[0].ID)
	assert.Equal(t, 1, sum.UnreadNotifications)
	require.Len(t, sum.ActiveUrgencies, 1)
	assert.Equal(t, "m1", sum.ActiveUrgencies[0].ID)
	assert.Equal(t, 3, sum.Metrics.TotalTasks, "the other service's task is not visible")
	assert.True(t, sum.Permissions.CanCreateTasks)
}

func TestDashboardService_AnalyticsGate(t *testing.T) {
	d := newDashboard()

	_, err := d.Analytics(dashboardSource(entities.RoleEmployee), analytics.PeriodAll, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = d.Analytics(dashboardSource(entities.RoleDirector), "decade", "")
	assert.True(t, apperrors.IsInvalidInput(err))

	report, err := d.Analytics(dashboardSource(entities.RoleAdmin), analytics.PeriodMonth, "")
	require.NoError(t, err)
	assert.Equal(t, 4, report.MainMetrics.TotalTasks)
}

func TestDashboardService_Board(t *testing.T) {
	tasks, err := newDashboard().Board(dashboardSource(entities.RoleEmployee), authz.TaskFilter{HideCompleted: true})

	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = newDashboard().Board(staticSource{}, authz.TaskFilter{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestDashboardService_ExportTasks(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorIs(t, newDashboard().ExportTasks(&buf, dashboardSource(entities.RoleEmployee)), apperrors.ErrForbidden)
	require.NoError(t, newDashboard().ExportTasks(&buf, dashboardSource(entities.RoleManager)))
	assert.NotZero(t, buf.Len())
	assert.Equal(t, "taches_2025-05-02.xlsx", newDashboard().ReportFileName())
}
