package events

import "taskflow-gateway/internal/entities"

// NotificationCreatedEvent is published once the backend has accepted a
// notification for a recipient.
type NotificationCreatedEvent struct {
	Notification entities.Notification
}

func (e NotificationCreatedEvent) Name() string {
	return "notification.created"
}

// StoreRefreshedEvent is published after a session's data store applied a
// full reload.
type StoreRefreshedEvent struct {
	SessionID  string
	UserID     string
	Generation uint64
	Failed     []string
}

func (e StoreRefreshedEvent) Name() string {
	return "store.refreshed"
}

// MessagesPolledEvent carries the latest message list of the conversation a
// session is watching.
type MessagesPolledEvent struct {
	UserID         string
	ConversationID string
	Messages       []entities.Message
}

func (e MessagesPolledEvent) Name() string {
	return "messages.polled"
}
