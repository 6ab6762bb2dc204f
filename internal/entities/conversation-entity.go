package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type Conversation struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ParticipantIDs  []string  `json:"participantIds"`
	LastMessage     string    `json:"lastMessage,omitempty"`
	LastMessageTime null.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation"`
	Content        string    `json:"content"`
	AuthorID       string    `json:"authorId"`
	Timestamp      time.Time `json:"timestamp"`
}
