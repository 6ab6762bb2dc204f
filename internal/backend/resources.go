package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
)

// --- Services ---

func (c *Client) Services(ctx context.Context) ([]entities.Service, error) {
	return listEntities(c, ctx, "/api/services/", transformers.Service)
}

func (c *Client) CreateService(ctx context.Context, payload map[string]any) (entities.Service, error) {
	return requestEntity(c, ctx, http.MethodPost, "/api/services/", payload, transformers.Service)
}

func (c *Client) UpdateService(ctx context.Context, id string, payload map[string]any) (entities.Service, error) {
	if err := ValidateID(id, "service"); err != nil {
		return entities.Service{}, err
	}
	return requestEntity(c, ctx, http.MethodPut, "/api/services/"+id+"/", payload, transformers.Service)
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	if err := ValidateID(id, "service"); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/services/"+id+"/", nil, nil)
}

// --- Users ---

func (c *Client) Users(ctx context.Context) ([]entities.User, error) {
	return listEntities(c, ctx, "/api/users/", transformers.User)
}

func (c *Client) UpdateUser(ctx context.Context, id string, payload map[string]any) (entities.User, error) {
	if err := ValidateID(id, "user"); err != nil {
		return entities.User{}, err
	}
	return requestEntity(c, ctx, http.MethodPut, "/api/users/"+id+"/", payload, transformers.User)
}

// --- Projects ---

func (c *Client) Projects(ctx context.Context) ([]entities.Project, error) {
	return listEntities(c, ctx, "/api/projects/", transformers.Project)
}

func (c *Client) Project(ctx context.Context, id string) (entities.Project, error) {
	if err := ValidateID(id, "project"); err != nil {
		return entities.Project{}, err
	}
	return requestEntity(c, ctx, http.MethodGet, "/api/projects/"+id+"/", nil, transformers.Project)
}

func (c *Client) CreateProject(ctx context.Context, payload map[string]any) (entities.Project, error) {
	return requestEntity(c, ctx, http.MethodPost, "/api/projects/", payload, transformers.Project)
}

func (c *Client) UpdateProject(ctx context.Context, id string, payload map[string]any) (entities.Project, error) {
	if err := ValidateID(id, "project"); err != nil {
		return entities.Project{}, err
	}
	return requestEntity(c, ctx, http.MethodPut, "/api/projects/"+id+"/", payload, transformers.Project)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := ValidateID(id, "project"); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/projects/"+id+"/", nil, nil)
}

// --- Tasks ---

func (c *Client) Tasks(ctx context.Context) ([]entities.Task, error) {
	return listEntities(c, ctx, "/api/tasks/", transformers.Task)
}

func (c *Client) Task(ctx context.Context, id string) (entities.Task, error) {
	if err := ValidateID(id, "task"); err != nil {
		return entities.Task{}, err
	}
	return requestEntity(c, ctx, http.MethodGet, "/api/tasks/"+id+"/", nil, transformers.Task)
}

func (c *Client) SearchTasks(ctx context.Context, query string) ([]entities.Task, error) {
	return listEntities(c, ctx, "/api/tasks/search/?q="+url.QueryEscape(query), transformers.Task)
}

func (c *Client) CreateTask(ctx context.Context, payload map[string]any) (entities.Task, error) {
	return requestEntity(c, ctx, http.MethodPost, "/api/tasks/", payload, transformers.Task)
}

func (c *Client) UpdateTask(ctx context.Context, id string, payload map[string]any) (entities.Task, error) {
	if err := ValidateID(id, "task"); err != nil {
		return entities.Task{}, err
	}
	return requestEntity(c, ctx, http.MethodPut, "/api/tasks/"+id+"/", payload, transformers.Task)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := ValidateID(id, "task"); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id+"/", nil, nil)
}

// --- Comments ---

// CreateComment posts to the flat comments collection; payload carries the task.
func (c *Client) CreateComment(ctx context.Context, taskID string, payload map[string]any) (entities.Comment, error) {
	if err := ValidateID(taskID, "task"); err != nil {
		return entities.Comment{}, err
	}
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["task"] = taskID
	return requestEntity(c, ctx, http.MethodPost, "/api/comments/", body, commentMapper)
}

func (c *Client) UpdateComment(ctx context.Context, taskID, commentID string, payload map[string]any) (entities.Comment, error) {
	if err := ValidateID(taskID, "task"); err != nil {
		return entities.Comment{}, err
	}
	if err := ValidateID(commentID, "comment"); err != nil {
		return entities.Comment{}, err
	}
	return requestEntity(c, ctx, http.MethodPut, "/api/tasks/"+taskID+"/comments/"+commentID+"/", payload, commentMapper)
}

func (c *Client) DeleteComment(ctx context.Context, taskID, commentID string) error {
	if err := ValidateID(taskID, "task"); err != nil {
		return err
	}
	if err := ValidateID(commentID, "comment"); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+taskID+"/comments/"+commentID+"/", nil, nil)
}

func commentMapper(r transformers.Record) entities.Comment {
	return transformers.Comment(r, nil)
}

// --- Notifications ---

func (c *Client) Notifications(ctx context.Context) ([]entities.Notification, error) {
	return listEntities(c, ctx, "/api/notifications/", transformers.Notification)
}

func (c *Client) CreateNotification(ctx context.Context, n entities.Notification) (entities.Notification, error) {
	return requestEntity(c, ctx, http.MethodPost, "/api/notifications/", transformers.NotificationToBackend(n), transformers.Notification)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (entities.Notification, error) {
	if err := ValidateID(id, "notification"); err != nil {
		return entities.Notification{}, err
	}
	return requestEntity(c, ctx, http.MethodPatch, "/api/notifications/"+id+"/", map[string]any{"isRead": true}, transformers.Notification)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if err := ValidateID(id, "notification"); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/notifications/"+id+"/", nil, nil)
}

// --- Employee loans ---

func (c *Client) EmployeeLoans(ctx context.Context) ([]entities.EmployeeLoan, error) {
	return listEntities(c, ctx, "/api/employee-loans/", transformers.EmployeeLoan)
}

func (c *Client) CreateEmployeeLoan(ctx context.Context, payload map[string]any) (entities.EmployeeLoan, error) {
	return requestEntity(c, ctx, http.MethodPost, "/api/employee-loans/", payload, transformers.EmployeeLoan)
}

func (c *Client) UpdateEmployeeLoan(ctx context.Context, id string, payload map[string]any) (entities.EmployeeLoan, error) {
	if err := ValidateID(id, "employee_loan"); err != nil {
		return entities.EmployeeLoan{}, err
	}
	return requestEntity(c, ctx, http.MethodPut, "/api/employee-loans/"+id+"/", payload, transformers.EmployeeLoan)
}

// --- Urgency modes ---

func (c *Client) UrgencyModes(ctx context.Context) ([]entities.UrgencyMode, error) {
	return listEntities(c, ctx, "/api/urgencies/", transformers.UrgencyMode)
}

func (c *Client) ActivateUrgencyMode(ctx context.Context, payload map[string]any) (entities.UrgencyMode, error) {
	return requestEntity(c, ctx, http.MethodPost, "/api/urgencies/", payload, transformers.UrgencyMode)
}

func (c *Client) DeactivateUrgencyMode(ctx context.Context, id string, at time.Time) (entities.UrgencyMode, error) {
	if err := ValidateID(id, "urgency_mode"); err != nil {
		return entities.UrgencyMode{}, err
	}
	return requestEntity(c, ctx, http.MethodPatch, "/api/urgencies/"+id+"/", map[string]any{
		"isActive": false,
		"endDate":  at.UTC().Format(time.RFC3339),
	}, transformers.UrgencyMode)
}

// --- Attachments ---

func (c *Client) Attachments(ctx context.Context) ([]entities.Attachment, error) {
	return listEntities(c, ctx, "/api/attachments/", transformers.Attachment)
}

func (c *Client) DeleteAttachment(ctx context.Context, id string) error {
	if err := ValidateID(id, "attachment"); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/attachments/"+id+"/", nil, nil)
}

// --- Conversations ---

func (c *Client) Conversations(ctx context.Context) ([]entities.Conversation, error) {
	return listEntities(c, ctx, "/api/conversations/", transformers.Conversation)
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]entities.Message, error) {
	if err := ValidateID(conversationID, "conversation"); err != nil {
		return nil, err
	}
	return listEntities(c, ctx, "/api/conversations/"+conversationID+"/messages/", transformers.Message)
}

func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (entities.Message, error) {
	if err := ValidateID(conversationID, "conversation"); err != nil {
		return entities.Message{}, err
	}
	return requestEntity(c, ctx, http.MethodPost, "/api/conversations/"+conversationID+"/messages/",
		map[string]any{"content": content}, transformers.Message)
}
