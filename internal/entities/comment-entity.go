package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type Comment struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"taskId,omitempty"`
	Content        string    `json:"content"`
	AuthorID       string    `json:"authorId"`
	AuthorFullName string    `json:"authorFullName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Mentions       []string  `json:"mentions"`
	ParentID       string    `json:"parentId,omitempty"`
	Replies        []Comment `json:"replies"`
	IsEdited       bool      `json:"isEdited"`
	EditedAt       null.Time `json:"editedAt"`
}

// Flatten returns the comment followed by all nested replies, depth first.
func (c Comment) Flatten() []Comment {
	out := []Comment{c}
	out[0].Replies = nil
	for _, r := range c.Replies {
		out = append(out, r.Flatten()...)
	}
	return out
}
