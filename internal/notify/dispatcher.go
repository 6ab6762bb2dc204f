// Package notify turns task events into backend notifications.
package notify

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/events"
	"taskflow-gateway/pkg/eventbus"
)

// Creator persists one notification; backend.Client implements it.
type Creator interface {
	CreateNotification(ctx context.Context, n entities.Notification) (entities.Notification, error)
}

type Publisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type Dispatcher struct {
	creator Creator
	bus     Publisher
	logger  *zap.Logger
}

// NewDispatcher builds a dispatcher. bus may be nil.
func NewDispatcher(creator Creator, bus Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		creator: creator,
		bus:     bus,
		logger:  logger.Named("notify"),
	}
}

// TaskAssigned notifies every assignee except the actor.
func (d *Dispatcher) TaskAssigned(ctx context.Context, actorID string, task entities.Task, userIDs []string) error {
	priority := entities.NotificationMedium
	if task.Priority == entities.PriorityUrgent {
		priority = entities.NotificationHigh
	}
	var batch []entities.Notification
	for _, id := range recipients(userIDs, actorID) {
		batch = append(batch, entities.Notification{
			UserID:    id,
			Type:      entities.NotificationTaskAssigned,
			Title:     "Nouvelle tâche assignée",
			Message:   fmt.Sprintf("La tâche %q vous a été assignée.", task.Title),
			Priority:  priority,
			RelatedID: task.ID,
		})
	}
	return d.dispatch(ctx, batch)
}

// CommentMention notifies the known users named in usernames, except the
// comment's author. A mention matches a username case-insensitively, or
// failing that a part of a user's full name.
func (d *Dispatcher) CommentMention(ctx context.Context, comment entities.Comment, task entities.Task, usernames []string, users []entities.User) error {
	var ids []string
	for _, name := range usernames {
		id, ok := resolveMention(name, users)
		if !ok {
			d.logger.Debug("mention of unknown user ignored", zap.String("username", name))
			continue
		}
		ids = append(ids, id)
	}

	var batch []entities.Notification
	for _, id := range recipients(ids, comment.AuthorID) {
		batch = append(batch, entities.Notification{
			UserID:    id,
			Type:      entities.NotificationCommentMention,
			Title:     "Vous avez été mentionné",
			Message:   fmt.Sprintf("Vous avez été mentionné dans un commentaire sur la tâche %q.", task.Title),
			Priority:  entities.NotificationMedium,
			RelatedID: task.ID,
		})
	}
	return d.dispatch(ctx, batch)
}

func resolveMention(name string, users []entities.User) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, name) {
			return u.ID, true
		}
	}
	needle := strings.ToLower(name)
	for _, u := range users {
		full := strings.ToLower(strings.TrimSpace(u.FirstName + " " + u.LastName))
		if full != "" && strings.Contains(full, needle) {
			return u.ID, true
		}
	}
	return "", false
}

// DeadlineApproaching notifies every assignee of an open task whose deadline
// is still ahead of now.
func (d *Dispatcher) DeadlineApproaching(ctx context.Context, task entities.Task, now time.Time) error {
	left := task.Deadline.Sub(now)
	if left <= 0 || task.IsCompleted() {
		return nil
	}
	hours := int(math.Round(left.Hours()))

	var batch []entities.Notification
	for _, id := range recipients(task.AssignedTo, "") {
		batch = append(batch, entities.Notification{
			UserID:    id,
			Type:      entities.NotificationDeadlineApproaching,
			Title:     "Échéance proche",
			Message:   fmt.Sprintf("La tâche %q arrive à échéance dans %dh.", task.Title, hours),
			Priority:  entities.NotificationHigh,
			RelatedID: task.ID,
		})
	}
	return d.dispatch(ctx, batch)
}

// dispatch creates each notification independently: a failure is recorded
// and the rest of the batch still goes out.
func (d *Dispatcher) dispatch(ctx context.Context, batch []entities.Notification) error {
	var errs error
	for _, n := range batch {
		created, err := d.creator.CreateNotification(ctx, n)
		if err != nil {
			d.logger.Warn("failed to create notification",
				zap.String("type", string(n.Type)),
				zap.String("user", n.UserID),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("notify %s: %w", n.UserID, err))
			continue
		}
		if created.UserID == "" {
			created.UserID = n.UserID
		}
		if created.Type == "" {
			created.Type = n.Type
		}
		if d.bus != nil {
			d.bus.Publish(ctx, events.NotificationCreatedEvent{Notification: created})
		}
	}
	return errs
}

// recipients drops empty ids, duplicates and skip.
func recipients(ids []string, skip string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == skip {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
