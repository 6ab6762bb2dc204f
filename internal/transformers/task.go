package transformers

import (
	"taskflow-gateway/internal/entities"
)

var (
	taskTitle         = Keys{"title", "titre"}
	taskDescription   = Keys{"description"}
	taskStatus        = Keys{"status", "statut"}
	taskPriority      = Keys{"priority", "priorite"}
	taskDeadline      = Keys{"deadline", "date_echeance"}
	taskCreatedAt     = Keys{"createdAt", "date_creation"}
	taskUpdatedAt     = Keys{"updatedAt", "date_modification"}
	taskCompletedAt   = Keys{"completedAt", "date_completion"}
	taskCreator       = Keys{"creatorId", "createdBy", "createur"}
	taskAssignees     = Keys{"assignedTo", "assigneeIds"}
	taskAssignee      = Keys{"assignee"}
	taskProject       = Keys{"projectId", "projet", "project"}
	taskService       = Keys{"serviceId", "service", "serviceIdInput"}
	taskTags          = Keys{"tags"}
	taskAttachments   = Keys{"attachments"}
	taskComments      = Keys{"comments"}
	taskTimeTracked   = Keys{"timeTracked", "temps_suivi"}
	taskEstimatedTime = Keys{"estimatedTime", "temps_estime"}
	taskWorkload      = Keys{"workloadPoints", "points_charge"}
	taskType          = Keys{"type", "type_tache"}
)

// Task maps a backend task record. A missing or unparsable deadline becomes
// now and is flagged with DeadlineDefaulted.
func Task(r Record) entities.Task {
	deadline, defaulted := r.TimeOrNow(taskDeadline)
	createdAt, _ := r.TimeOrNow(taskCreatedAt)
	updatedAt, _ := r.TimeOrNow(taskUpdatedAt)

	assigned, ok := r.StringSlice(taskAssignees)
	if !ok {
		assigned = []string{}
		if a := r.String(taskAssignee, ""); a != "" {
			assigned = []string{a}
		}
	}

	t := entities.Task{
		ID:                r.String(Keys{"id"}, ""),
		Title:             r.String(taskTitle, ""),
		Description:       r.String(taskDescription, ""),
		Status:            entities.TaskStatus(r.String(taskStatus, string(entities.TaskTodo))),
		Priority:          entities.Priority(r.String(taskPriority, string(entities.PriorityMedium))),
		Deadline:          deadline,
		DeadlineDefaulted: defaulted,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		CreatorID:         r.String(taskCreator, ""),
		AssignedTo:        assigned,
		ProjectID:         r.String(taskProject, ""),
		ServiceID:         r.String(taskService, ""),
		Tags:              r.StringsOr(taskTags),
		Attachments:       Attachments(r.List(taskAttachments)),
		Comments:          Comments(r.List(taskComments), nil),
		TimeTracked:       r.Int(taskTimeTracked, 0),
		EstimatedTime:     r.Int(taskEstimatedTime, 0),
		CompletedAt:       r.NullTime(taskCompletedAt),
		WorkloadPoints:    r.Int(taskWorkload, 1),
		Type:              entities.TaskType(r.String(taskType, string(entities.TaskPersonal))),
	}
	if t.Attachments == nil {
		t.Attachments = []entities.Attachment{}
	}
	if t.Comments == nil {
		t.Comments = []entities.Comment{}
	}
	return t
}

func Tasks(records []Record) []entities.Task {
	out := make([]entities.Task, 0, len(records))
	for _, r := range records {
		out = append(out, Task(r))
	}
	return out
}

// TaskToBackend builds the write payload. The scoping key that does not
// match the task type is left out of the map entirely.
func TaskToBackend(t entities.Task) map[string]any {
	payload := map[string]any{
		"title":          t.Title,
		"description":    t.Description,
		"status":         string(t.Status),
		"priority":       string(t.Priority),
		"estimatedTime":  t.EstimatedTime,
		"workloadPoints": t.WorkloadPoints,
		"type":           string(t.Type),
		"tags":           nonNil(t.Tags),
		"assigneeIds":    nonNil(t.AssignedTo),
		"assignee":       nil,
	}
	if !t.Deadline.IsZero() {
		payload["deadline"] = formatTime(t.Deadline)
	}
	if len(t.AssignedTo) > 0 {
		payload["assignee"] = t.AssignedTo[0]
	}
	scopeTask(payload, t.Type, t.ServiceID, t.ProjectID)
	return payload
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *entities.TaskStatus
	Priority       *entities.Priority
	Deadline       *string
	AssignedTo     []string
	Type           *entities.TaskType
	ProjectID      *string
	ServiceID      *string
	Tags           []string
	EstimatedTime  *int
	TimeTracked    *int
	WorkloadPoints *int
}

// Apply merges the patch onto a copy of t.
func (p TaskPatch) Apply(t entities.Task) entities.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Deadline != nil {
		if d, ok := parseTime(*p.Deadline); ok {
			t.Deadline = d
			t.DeadlineDefaulted = false
		}
	}
	if p.AssignedTo != nil {
		t.AssignedTo = append([]string{}, p.AssignedTo...)
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.ServiceID != nil {
		t.ServiceID = *p.ServiceID
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, p.Tags...)
	}
	if p.EstimatedTime != nil {
		t.EstimatedTime = *p.EstimatedTime
	}
	if p.TimeTracked != nil {
		t.TimeTracked = *p.TimeTracked
	}
	if p.WorkloadPoints != nil {
		t.WorkloadPoints = *p.WorkloadPoints
	}
	return t
}

// ToBackend is the payload for a task that is not cached: only the patched
// fields, and scoping keys only when the type is known.
func (p TaskPatch) ToBackend() map[string]any {
	payload := map[string]any{}
	setString(payload, "title", p.Title)
	setString(payload, "description", p.Description)
	if p.Status != nil {
		payload["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		payload["priority"] = string(*p.Priority)
	}
	if p.Deadline != nil {
		if d, ok := parseTime(*p.Deadline); ok {
			payload["deadline"] = formatTime(d)
		}
	}
	if p.AssignedTo != nil {
		payload["assigneeIds"] = p.AssignedTo
		payload["assignee"] = nil
		if len(p.AssignedTo) > 0 {
			payload["assignee"] = p.AssignedTo[0]
		}
	}
	if p.Tags != nil {
		payload["tags"] = p.Tags
	}
	setInt(payload, "estimatedTime", p.EstimatedTime)
	setInt(payload, "timeTracked", p.TimeTracked)
	setInt(payload, "workloadPoints", p.WorkloadPoints)
	if p.Type != nil {
		payload["type"] = string(*p.Type)
		scopeTask(payload, *p.Type, deref(p.ServiceID), deref(p.ProjectID))
	}
	return payload
}

func scopeTask(payload map[string]any, typ entities.TaskType, serviceID, projectID string) {
	switch typ {
	case entities.TaskService:
		if serviceID != "" {
			payload["serviceIdInput"] = serviceID
		}
	case entities.TaskProject:
		if projectID != "" {
			payload["projectId"] = projectID
		}
	}
}

func setString(payload map[string]any, key string, v *string) {
	if v != nil {
		payload[key] = *v
	}
}

func setInt(payload map[string]any, key string, v *int) {
	if v != nil {
		payload[key] = *v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
