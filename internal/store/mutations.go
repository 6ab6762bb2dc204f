package store

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
	apperrors "taskflow-gateway/pkg/errors"
)

// actor returns the session user or ErrNotInitialized.
func (s *Store) actor() (entities.User, error) {
	u := s.User()
	if u == nil {
		return entities.User{}, apperrors.ErrNotInitialized
	}
	return *u, nil
}

// --- Tasks ---

func (s *Store) AddTask(ctx context.Context, t entities.Task) (entities.Task, error) {
	me, err := s.actor()
	if err != nil {
		return entities.Task{}, err
	}
	if err := validateScope(t.Type, t.ServiceID, t.ProjectID); err != nil {
		return entities.Task{}, err
	}
	for _, id := range t.AssignedTo {
		if err := backend.ValidateID(id, "assignee"); err != nil {
			return entities.Task{}, err
		}
	}
	if t.Status == "" {
		t.Status = entities.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = entities.PriorityMedium
	}
	if t.Type == "" {
		t.Type = entities.TaskPersonal
	}
	if t.WorkloadPoints == 0 {
		t.WorkloadPoints = 1
	}

	created, err := s.backend.CreateTask(ctx, transformers.TaskToBackend(t))
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	if created.Title == "" {
		created.Title = t.Title
	}
	if created.Priority == "" {
		created.Priority = t.Priority
	}
	s.notifyAssigned(ctx, me.ID, created, t.AssignedTo)
	s.reload(ctx)
	return created, nil
}

// UpdateTask sends the patch and notifies the assignees the patch adds.
// Switching type without a scoping id reuses the cached task's one, and
// patching a scoping id without a type uses the cached task's type.
func (s *Store) UpdateTask(ctx context.Context, id string, patch transformers.TaskPatch) (entities.Task, error) {
	if err := backend.ValidateID(id, "task"); err != nil {
		return entities.Task{}, err
	}
	me, err := s.actor()
	if err != nil {
		return entities.Task{}, err
	}
	for _, a := range patch.AssignedTo {
		if err := backend.ValidateID(a, "assignee"); err != nil {
			return entities.Task{}, err
		}
	}

	previous, cached := s.FindTask(id)
	if patch.Type == nil && cached && (patch.ServiceID != nil || patch.ProjectID != nil) {
		typ := previous.Type
		if typ == "" {
			typ = entities.TaskPersonal
		}
		patch.Type = &typ
	}
	if patch.Type != nil {
		if patch.ServiceID == nil && previous.ServiceID != "" {
			patch.ServiceID = &previous.ServiceID
		}
		if patch.ProjectID == nil && previous.ProjectID != "" {
			patch.ProjectID = &previous.ProjectID
		}
		if err := validateScope(*patch.Type, deref(patch.ServiceID), deref(patch.ProjectID)); err != nil {
			return entities.Task{}, err
		}
	}

	updated, err := s.backend.UpdateTask(ctx, id, patch.ToBackend())
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to update task %s: %w", id, err)
	}
	if updated.Title == "" && cached {
		updated = patch.Apply(previous)
	}
	if patch.AssignedTo != nil {
		var added []string
		for _, a := range patch.AssignedTo {
			if !cached || !previous.IsAssignedTo(a) {
				added = append(added, a)
			}
		}
		s.notifyAssigned(ctx, me.ID, updated, added)
	}
	s.reload(ctx)
	return updated, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := backend.ValidateID(id, "task"); err != nil {
		return err
	}
	if err := s.backend.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	s.reload(ctx)
	return nil
}

func validateScope(typ entities.TaskType, serviceID, projectID string) error {
	switch typ {
	case entities.TaskService:
		if serviceID != "" {
			return backend.ValidateID(serviceID, "service")
		}
	case entities.TaskProject:
		if projectID != "" {
			return backend.ValidateID(projectID, "project")
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Store) notifyAssigned(ctx context.Context, actorID string, task entities.Task, userIDs []string) {
	if len(userIDs) == 0 || s.notifier == nil {
		return
	}
	if err := s.notifier.TaskAssigned(ctx, actorID, task, userIDs); err != nil {
		s.logger.Warn("some assignment notifications failed", zap.String("task", task.ID), zap.Error(err))
	}
}

// --- Projects ---

func (s *Store) AddProject(ctx context.Context, p entities.Project) (entities.Project, error) {
	if _, err := s.actor(); err != nil {
		return entities.Project{}, err
	}
	if err := validateIDs("member", p.MemberIDs); err != nil {
		return entities.Project{}, err
	}
	created, err := s.backend.CreateProject(ctx, transformers.ProjectToBackend(p))
	if err != nil {
		return entities.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	s.reload(ctx)
	return created, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, p entities.Project) (entities.Project, error) {
	if err := backend.ValidateID(id, "project"); err != nil {
		return entities.Project{}, err
	}
	if err := validateIDs("member", p.MemberIDs); err != nil {
		return entities.Project{}, err
	}
	updated, err := s.backend.UpdateProject(ctx, id, transformers.ProjectToBackend(p))
	if err != nil {
		return entities.Project{}, fmt.Errorf("failed to update project %s: %w", id, err)
	}
	s.reload(ctx)
	return updated, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := backend.ValidateID(id, "project"); err != nil {
		return err
	}
	if err := s.backend.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	s.reload(ctx)
	return nil
}

func validateIDs(resource string, ids []string) error {
	for _, id := range ids {
		if err := backend.ValidateID(id, resource); err != nil {
			return err
		}
	}
	return nil
}

// --- Services ---

func (s *Store) AddService(ctx context.Context, svc entities.Service) (entities.Service, error) {
	if _, err := s.actor(); err != nil {
		return entities.Service{}, err
	}
	created, err := s.backend.CreateService(ctx, transformers.ServiceToBackend(svc))
	if err != nil {
		return entities.Service{}, fmt.Errorf("failed to create service: %w", err)
	}
	s.reload(ctx)
	return created, nil
}

func (s *Store) UpdateService(ctx context.Context, id string, svc entities.Service) (entities.Service, error) {
	if err := backend.ValidateID(id, "service"); err != nil {
		return entities.Service{}, err
	}
	updated, err := s.backend.UpdateService(ctx, id, transformers.ServiceToBackend(svc))
	if err != nil {
		return entities.Service{}, fmt.Errorf("failed to update service %s: %w", id, err)
	}
	s.reload(ctx)
	return updated, nil
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	if err := backend.ValidateID(id, "service"); err != nil {
		return err
	}
	if err := s.backend.DeleteService(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service %s: %w", id, err)
	}
	s.reload(ctx)
	return nil
}

// --- Users ---

func (s *Store) AddUser(ctx context.Context, u transformers.NewUser) (*entities.User, error) {
	if _, err := s.actor(); err != nil {
		return nil, err
	}
	if sid := u.ServiceID(); sid != "" {
		if err := backend.ValidateID(sid, "service"); err != nil {
			return nil, err
		}
	}
	created, err := s.backend.Register(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.reload(ctx)
	return created, nil
}

// UpdateUser sends the editable profile fields. Updating oneself also
// replaces the session user.
func (s *Store) UpdateUser(ctx context.Context, id string, u entities.User) (entities.User, error) {
	if err := backend.ValidateID(id, "user"); err != nil {
		return entities.User{}, err
	}
	me, err := s.actor()
	if err != nil {
		return entities.User{}, err
	}
	payload := transformers.UserToBackend(transformers.NewUser{User: u})
	if u.Username == "" {
		delete(payload, "username")
	}
	if u.Role == "" {
		delete(payload, "role")
	}
	updated, err := s.backend.UpdateUser(ctx, id, payload)
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	if id == me.ID {
		s.SetUser(updated)
	}
	s.reload(ctx)
	return updated, nil
}

// --- Comments ---

// AddComment posts the comment and notifies the users it mentions.
func (s *Store) AddComment(ctx context.Context, taskID string, c entities.Comment) (entities.Comment, error) {
	if err := backend.ValidateID(taskID, "task"); err != nil {
		return entities.Comment{}, err
	}
	me, err := s.actor()
	if err != nil {
		return entities.Comment{}, err
	}
	if c.ParentID != "" {
		if err := backend.ValidateID(c.ParentID, "comment"); err != nil {
			return entities.Comment{}, err
		}
	}
	if c.AuthorID == "" {
		c.AuthorID = me.ID
	}
	mentions := transformers.ExtractMentions(c.Content)
	c.Mentions = mentions

	payload := transformers.CommentToBackend(c)
	payload["auteur"] = c.AuthorID
	created, err := s.backend.CreateComment(ctx, taskID, payload)
	if err != nil {
		return entities.Comment{}, fmt.Errorf("failed to add comment to task %s: %w", taskID, err)
	}
	if created.AuthorID == "" {
		created.AuthorID = c.AuthorID
	}
	if created.Content == "" {
		created.Content = c.Content
	}

	if len(mentions) > 0 && s.notifier != nil {
		task, ok := s.FindTask(taskID)
		if !ok {
			task = entities.Task{ID: taskID}
		}
		if err := s.notifier.CommentMention(ctx, created, task, mentions, s.Users()); err != nil {
			s.logger.Warn("some mention notifications failed", zap.String("task", taskID), zap.Error(err))
		}
	}
	s.reload(ctx)
	return created, nil
}

func (s *Store) UpdateComment(ctx context.Context, taskID, commentID, content string) (entities.Comment, error) {
	if err := backend.ValidateID(taskID, "task"); err != nil {
		return entities.Comment{}, err
	}
	if err := backend.ValidateID(commentID, "comment"); err != nil {
		return entities.Comment{}, err
	}
	updated, err := s.backend.UpdateComment(ctx, taskID, commentID, map[string]any{
		"content":  content,
		"mentions": transformers.ExtractMentions(content),
	})
	if err != nil {
		return entities.Comment{}, fmt.Errorf("failed to update comment %s: %w", commentID, err)
	}
	s.reload(ctx)
	return updated, nil
}

func (s *Store) DeleteComment(ctx context.Context, taskID, commentID string) error {
	if err := backend.ValidateID(taskID, "task"); err != nil {
		return err
	}
	if err := backend.ValidateID(commentID, "comment"); err != nil {
		return err
	}
	if err := s.backend.DeleteComment(ctx, taskID, commentID); err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}
	s.reload(ctx)
	return nil
}

// --- Attachments ---

func (s *Store) AddAttachment(ctx context.Context, up backend.Upload) (entities.Attachment, error) {
	if !up.Owner.Valid() {
		return entities.Attachment{}, apperrors.NewInvalidInputError("relatedTo and relatedId are required")
	}
	if err := backend.ValidateID(up.Owner.ID, string(up.Owner.Kind)); err != nil {
		return entities.Attachment{}, err
	}
	if up.Content == nil {
		return entities.Attachment{}, apperrors.NewInvalidInputError("no file provided")
	}
	created, err := s.backend.UploadAttachment(ctx, up)
	if err != nil {
		return entities.Attachment{}, fmt.Errorf("failed to upload attachment: %w", err)
	}
	s.reload(ctx)
	return created, nil
}

func (s *Store) DeleteAttachment(ctx context.Context, id string) error {
	if err := backend.ValidateID(id, "attachment"); err != nil {
		return err
	}
	if err := s.backend.DeleteAttachment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", id, err)
	}
	s.reload(ctx)
	return nil
}

// --- Notifications ---

func (s *Store) AddNotification(ctx context.Context, n entities.Notification) (entities.Notification, error) {
	if err := backend.ValidateID(n.UserID, "user"); err != nil {
		return entities.Notification{}, err
	}
	created, err := s.backend.CreateNotification(ctx, n)
	if err != nil {
		return entities.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}
	s.reload(ctx)
	return created, nil
}

func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	if err := backend.ValidateID(id, "notification"); err != nil {
		return err
	}
	if err := s.backend.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	s.reload(ctx)
	return nil
}

func (s *Store) MarkNotificationAsRead(ctx context.Context, id string) error {
	if err := backend.ValidateID(id, "notification"); err != nil {
		return err
	}
	if _, err := s.backend.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", id, err)
	}
	s.reload(ctx)
	return nil
}

// MarkAllNotificationsAsRead marks every cached unread notification of the
// session user. Each one is attempted; failures are combined.
func (s *Store) MarkAllNotificationsAsRead(ctx context.Context) error {
	me, err := s.actor()
	if err != nil {
		return err
	}
	unread := slices.DeleteFunc(s.Notifications(), func(n entities.Notification) bool {
		return n.IsRead || (n.UserID != "" && n.UserID != me.ID)
	})

	var errs error
	for _, n := range unread {
		if err := backend.ValidateID(n.ID, "notification"); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, err := s.backend.MarkNotificationRead(ctx, n.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notification %s: %w", n.ID, err))
		}
	}
	s.reload(ctx)
	return errs
}

// --- Employee loans ---

func (s *Store) CreateEmployeeLoan(ctx context.Context, l entities.EmployeeLoan) (entities.EmployeeLoan, error) {
	if err := backend.ValidateID(l.EmployeeID, "employee"); err != nil {
		return entities.EmployeeLoan{}, err
	}
	for _, sid := range []string{l.FromServiceID, l.ToServiceID} {
		if err := backend.ValidateID(sid, "service"); err != nil {
			return entities.EmployeeLoan{}, err
		}
	}
	created, err := s.backend.CreateEmployeeLoan(ctx, transformers.EmployeeLoanToBackend(l))
	if err != nil {
		return entities.EmployeeLoan{}, fmt.Errorf("failed to create employee loan: %w", err)
	}
	s.reload(ctx)
	return created, nil
}

func (s *Store) UpdateEmployeeLoan(ctx context.Context, id string, l entities.EmployeeLoan) (entities.EmployeeLoan, error) {
	if err := backend.ValidateID(id, "employee_loan"); err != nil {
		return entities.EmployeeLoan{}, err
	}
	updated, err := s.backend.UpdateEmployeeLoan(ctx, id, transformers.EmployeeLoanToBackend(l))
	if err != nil {
		return entities.EmployeeLoan{}, fmt.Errorf("failed to update employee loan %s: %w", id, err)
	}
	s.reload(ctx)
	return updated, nil
}

// --- Urgency modes ---

func (s *Store) ActivateUrgencyMode(ctx context.Context, m entities.UrgencyMode) (entities.UrgencyMode, error) {
	me, err := s.actor()
	if err != nil {
		return entities.UrgencyMode{}, err
	}
	if err := backend.ValidateID(m.ServiceID, "service"); err != nil {
		return entities.UrgencyMode{}, err
	}
	m.IsActive = true
	if m.ActivatedBy == "" {
		m.ActivatedBy = me.ID
	}
	if m.StartDate.IsZero() {
		m.StartDate = s.now()
	}
	created, err := s.backend.ActivateUrgencyMode(ctx, transformers.UrgencyModeToBackend(m))
	if err != nil {
		return entities.UrgencyMode{}, fmt.Errorf("failed to activate urgency mode: %w", err)
	}
	s.reload(ctx)
	return created, nil
}

func (s *Store) DeactivateUrgencyMode(ctx context.Context, id string) (entities.UrgencyMode, error) {
	if err := backend.ValidateID(id, "urgency_mode"); err != nil {
		return entities.UrgencyMode{}, err
	}
	updated, err := s.backend.DeactivateUrgencyMode(ctx, id, s.now())
	if err != nil {
		return entities.UrgencyMode{}, fmt.Errorf("failed to deactivate urgency mode %s: %w", id, err)
	}
	s.reload(ctx)
	return updated, nil
}
