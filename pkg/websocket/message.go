package websocket

import "time"

// Envelope wraps every frame pushed to the browser; Type tells the
// frontend how to read Payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	TypeNotification = "notification"
	TypeRefresh      = "refresh"
	TypeMessages     = "messages"
)

// RefreshPayload tells the frontend that the cached collections changed.
type RefreshPayload struct {
	Generation uint64   `json:"generation"`
	Failed     []string `json:"failed,omitempty"`
}

// MessagesPayload is the latest message list of a watched conversation.
type MessagesPayload struct {
	ConversationID string      `json:"conversationId"`
	Messages       interface{} `json:"messages"`
}
