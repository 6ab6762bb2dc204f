package services

import (
	"io"
	"slices"
	"time"

	"go.uber.org/zap"

	"taskflow-gateway/internal/analytics"
	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/store"
	apperrors "taskflow-gateway/pkg/errors"
)

const dueSoonWindow = 7 * 24 * time.Hour

// SnapshotSource is the read side of a session store.
type SnapshotSource interface {
	User() *entities.User
	Snapshot() store.Snapshot
}

// DashboardSummary is the landing page of every user.
type DashboardSummary struct {
	Permissions         authz.UserPermissions  `json:"permissions"`
	MyOpenTasks         int                    `json:"myOpenTasks"`
	MyOverdueTasks      int                    `json:"myOverdueTasks"`
	DueSoon             []entities.Task        `json:"dueSoon"`
	UnreadNotifications int                    `json:"unreadNotifications"`
	ActiveUrgencies     []entities.UrgencyMode `json:"activeUrgencies"`
	Metrics             analytics.MainMetrics  `json:"metrics"`
}

type DashboardService struct {
	clock  func() time.Time
	logger *zap.Logger
}

func NewDashboardService(clock func() time.Time, logger *zap.Logger) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardService{clock: clock, logger: logger}
}

// visible is the caller's universe: visible tasks and projects, plus the
// shared user and service lists.
func visible(src SnapshotSource) (*authz.Principal, analytics.Input, error) {
	user := src.User()
	if user == nil {
		return nil, analytics.Input{}, apperrors.ErrUnauthorized
	}
	p := authz.For(user)
	snap := src.Snapshot()
	return p, analytics.Input{
		Tasks:    p.VisibleTasks(snap.Tasks, authz.IndexProjects(snap.Projects)),
		Projects: p.VisibleProjects(snap.Projects),
		Users:    snap.Users,
		Services: snap.Services,
	}, nil
}

func (s *DashboardService) Summary(src SnapshotSource) (*DashboardSummary, error) {
	p, in, err := visible(src)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	me := p.User().ID
	snap := src.Snapshot()

	out := &DashboardSummary{
		Permissions:     p.Summary(),
		DueSoon:         []entities.Task{},
		ActiveUrgencies: []entities.UrgencyMode{},
	}
	for i := range in.Tasks {
		t := &in.Tasks[i]
		if t.IsCompleted() || !t.IsAssignedTo(me) {
			continue
		}
		out.MyOpenTasks++
		if t.IsOverdue(now) {
			out.MyOverdueTasks++
		} else if !t.DeadlineDefaulted && t.Deadline.Before(now.Add(dueSoonWindow)) {
			out.DueSoon = append(out.DueSoon, *t)
		}
	}
	slices.SortFunc(out.DueSoon, func(a, b entities.Task) int { return a.Deadline.Compare(b.Deadline) })

	for _, n := range snap.Notifications {
		if n.UserID == me && !n.IsRead {
			out.UnreadNotifications++
		}
	}
	service := p.User().ServiceID()
	for _, m := range snap.UrgencyModes {
		if m.IsActive && (p.IsAdmin() || service == "" || m.ServiceID == service) {
			out.ActiveUrgencies = append(out.ActiveUrgencies, m)
		}
	}
	out.Metrics = analytics.Compute(in, analytics.Filter{Now: now}).MainMetrics
	return out, nil
}

// Board is the visible task list narrowed by f.
func (s *DashboardService) Board(src SnapshotSource, f authz.TaskFilter) ([]entities.Task, error) {
	user := src.User()
	if user == nil {
		return nil, apperrors.ErrUnauthorized
	}
	snap := src.Snapshot()
	return authz.For(user).BoardTasks(snap.Tasks, authz.IndexProjects(snap.Projects), f), nil
}

func (s *DashboardService) Analytics(src SnapshotSource, period analytics.Period, serviceID string) (*analytics.Report, error) {
	p, in, err := visible(src)
	if err != nil {
		return nil, err
	}
	if !p.CanViewAnalytics() {
		return nil, apperrors.ErrForbidden
	}
	if !period.Valid() {
		return nil, apperrors.NewInvalidInputError("unknown period %q", period)
	}
	report := analytics.Compute(in, analytics.Filter{Period: period, ServiceID: serviceID, Now: s.clock()})
	return &report, nil
}

// ExportTasks writes the caller's visible tasks as a workbook.
func (s *DashboardService) ExportTasks(w io.Writer, src SnapshotSource) error {
	p, in, err := visible(src)
	if err != nil {
		return err
	}
	if !p.CanViewAnalytics() {
		return apperrors.ErrForbidden
	}
	if err := analytics.ExportTasksXLSX(w, in.Tasks, in.Users, in.Services); err != nil {
		s.logger.Error("failed to build task report", zap.String("user_id", p.User().ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *DashboardService) ReportFileName() string {
	return analytics.ReportFileName(s.clock())
}
