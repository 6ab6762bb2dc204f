package entities

import (
	"slices"
	"time"

	"github.com/aarondl/null/v8"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskCompleted  TaskStatus = "completed"
)

// TaskStatuses is the board column order.
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskReview, TaskCompleted}

func (s TaskStatus) Valid() bool { return slices.Contains(TaskStatuses, s) }

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TaskType decides which scoping field of a task is authoritative.
type TaskType string

const (
	TaskPersonal TaskType = "personnel"
	TaskService  TaskType = "service"
	TaskProject  TaskType = "projet"
)

func (t TaskType) Valid() bool {
	return t == TaskPersonal || t == TaskService || t == TaskProject
}

type Task struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Status            TaskStatus   `json:"status"`
	Priority          Priority     `json:"priority"`
	Deadline          time.Time    `json:"deadline"`
	DeadlineDefaulted bool         `json:"deadlineDefaulted,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
	CreatorID         string       `json:"creatorId"`
	AssignedTo        []string     `json:"assignedTo"`
	Type              TaskType     `json:"type"`
	ProjectID         string       `json:"projectId"`
	ServiceID         string       `json:"serviceId"`
	Tags              []string     `json:"tags"`
	Attachments       []Attachment `json:"attachments"`
	Comments          []Comment    `json:"comments"`
	TimeTracked       int          `json:"timeTracked"`
	EstimatedTime     int          `json:"estimatedTime"`
	CompletedAt       null.Time    `json:"completedAt"`
	WorkloadPoints    int          `json:"workloadPoints"`
}

func (t *Task) IsAssignedTo(userID string) bool {
	return userID != "" && slices.Contains(t.AssignedTo, userID)
}

func (t *Task) IsCompleted() bool {
	return t.Status == TaskCompleted
}

// IsOverdue reports a past deadline on an open task.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted() && t.Deadline.Before(now)
}
