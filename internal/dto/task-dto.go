package dto

import (
	"time"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
)

type CreateTaskDTO struct {
	Title          string     `json:"title" validate:"required,max=255"`
	Description    string     `json:"description"`
	Status         string     `json:"status" validate:"omitempty,task_status"`
	Priority       string     `json:"priority" validate:"omitempty,priority"`
	Deadline       *time.Time `json:"deadline"`
	AssignedTo     []string   `json:"assignedTo" validate:"dive,entity_id"`
	Type           string     `json:"type" validate:"omitempty,task_type"`
	ProjectID      string     `json:"projectId" validate:"omitempty,entity_id"`
	ServiceID      string     `json:"serviceId" validate:"omitempty,entity_id"`
	Tags           []string   `json:"tags"`
	EstimatedTime  int        `json:"estimatedTime" validate:"gte=0"`
	WorkloadPoints int        `json:"workloadPoints" validate:"gte=0"`
}

func (d CreateTaskDTO) ToEntity() entities.Task {
	t := entities.Task{
		Title:          d.Title,
		Description:    d.Description,
		Status:         entities.TaskStatus(d.Status),
		Priority:       entities.Priority(d.Priority),
		AssignedTo:     d.AssignedTo,
		Type:           entities.TaskType(d.Type),
		ProjectID:      d.ProjectID,
		ServiceID:      d.ServiceID,
		Tags:           d.Tags,
		EstimatedTime:  d.EstimatedTime,
		WorkloadPoints: d.WorkloadPoints,
	}
	if d.Deadline != nil {
		t.Deadline = *d.Deadline
	} else {
		t.DeadlineDefaulted = true
	}
	return t
}

// UpdateTaskDTO: absent fields are left untouched.
type UpdateTaskDTO struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Description    *string  `json:"description,omitempty"`
	Status         *string  `json:"status,omitempty" validate:"omitempty,task_status"`
	Priority       *string  `json:"priority,omitempty" validate:"omitempty,priority"`
	Deadline       *string  `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AssignedTo     []string `json:"assignedTo,omitempty" validate:"omitempty,dive,entity_id"`
	Type           *string  `json:"type,omitempty" validate:"omitempty,task_type"`
	ProjectID      *string  `json:"projectId,omitempty" validate:"omitempty,entity_id"`
	ServiceID      *string  `json:"serviceId,omitempty" validate:"omitempty,entity_id"`
	Tags           []string `json:"tags,omitempty"`
	EstimatedTime  *int     `json:"estimatedTime,omitempty" validate:"omitempty,gte=0"`
	TimeTracked    *int     `json:"timeTracked,omitempty" validate:"omitempty,gte=0"`
	WorkloadPoints *int     `json:"workloadPoints,omitempty" validate:"omitempty,gte=0"`
}

func (d UpdateTaskDTO) ToPatch() transformers.TaskPatch {
	p := transformers.TaskPatch{
		Title:          d.Title,
		Description:    d.Description,
		Deadline:       d.Deadline,
		AssignedTo:     d.AssignedTo,
		ProjectID:      d.ProjectID,
		ServiceID:      d.ServiceID,
		Tags:           d.Tags,
		EstimatedTime:  d.EstimatedTime,
		TimeTracked:    d.TimeTracked,
		WorkloadPoints: d.WorkloadPoints,
	}
	if d.Status != nil {
		s := entities.TaskStatus(*d.Status)
		p.Status = &s
	}
	if d.Priority != nil {
		pr := entities.Priority(*d.Priority)
		p.Priority = &pr
	}
	if d.Type != nil {
		t := entities.TaskType(*d.Type)
		p.Type = &t
	}
	return p
}

// BoardQuery overrides the saved board preferences for one request.
type BoardQuery struct {
	Type      string `query:"type"`
	Priority  string `query:"priority"`
	Status    string `query:"status"`
	Assignee  string `query:"assignee"`
	ServiceID string `query:"serviceId"`
	ProjectID string `query:"projectId"`
	Search    string `query:"search"`
}

type CreateCommentDTO struct {
	Content  string `json:"content" validate:"required,max=5000"`
	ParentID string `json:"parentId" validate:"omitempty,entity_id"`
}

func (d CreateCommentDTO) ToEntity() entities.Comment {
	return entities.Comment{Content: d.Content, ParentID: d.ParentID}
}

type UpdateCommentDTO struct {
	Content string `json:"content" validate:"required,max=5000"`
}
