package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type NotificationType string

const (
	NotificationTaskAssigned        NotificationType = "task_assigned"
	NotificationCommentMention      NotificationType = "comment_mention"
	NotificationDeadlineApproaching NotificationType = "deadline_approaching"
	NotificationProjectUpdate       NotificationType = "project_update"
	NotificationStatusUpdate        NotificationType = "status_update"
	NotificationSecurityAlert       NotificationType = "security_alert"
)

type NotificationPriority string

const (
	NotificationLow    NotificationPriority = "low"
	NotificationMedium NotificationPriority = "medium"
	NotificationHigh   NotificationPriority = "high"
)

type Notification struct {
	ID        string               `json:"id"`
	UserID    string               `json:"userId"`
	Type      NotificationType     `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	IsRead    bool                 `json:"isRead"`
	CreatedAt time.Time            `json:"createdAt"`
	RelatedID string               `json:"relatedId,omitempty"`
	Priority  NotificationPriority `json:"priority"`
	ExpiresAt null.Time            `json:"expiresAt"`
}
