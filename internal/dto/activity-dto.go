package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"taskflow-gateway/internal/entities"
)

type CreateNotificationDTO struct {
	UserID    string     `json:"userId" validate:"required,entity_id"`
	Type      string     `json:"type" validate:"required,oneof=task_assigned comment_mention deadline_approaching project_update status_update security_alert"`
	Title     string     `json:"title" validate:"required,max=255"`
	Message   string     `json:"message" validate:"required"`
	RelatedID string     `json:"relatedId" validate:"omitempty,entity_id"`
	Priority  string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (d CreateNotificationDTO) ToEntity() entities.Notification {
	n := entities.Notification{
		UserID:    d.UserID,
		Type:      entities.NotificationType(d.Type),
		Title:     d.Title,
		Message:   d.Message,
		RelatedID: d.RelatedID,
		Priority:  entities.NotificationPriority(d.Priority),
		ExpiresAt: null.TimeFromPtr(d.ExpiresAt),
	}
	if n.Priority == "" {
		n.Priority = entities.NotificationMedium
	}
	return n
}

type EmployeeLoanDTO struct {
	EmployeeID     string    `json:"employeeId" validate:"required,entity_id"`
	FromServiceID  string    `json:"fromServiceId" validate:"required,entity_id"`
	ToServiceID    string    `json:"toServiceId" validate:"required,entity_id,nefield=FromServiceID"`
	StartDate      time.Time `json:"startDate" validate:"required"`
	EndDate        time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
	Reason         string    `json:"reason" validate:"required"`
	Status         string    `json:"status" validate:"omitempty,oneof=pending approved active completed rejected"`
	WorkloadImpact int       `json:"workloadImpact" validate:"gte=0"`
	Cost           *float64  `json:"cost" validate:"omitempty,gte=0"`
}

func (d EmployeeLoanDTO) ToEntity() entities.EmployeeLoan {
	l := entities.EmployeeLoan{
		EmployeeID:     d.EmployeeID,
		FromServiceID:  d.FromServiceID,
		ToServiceID:    d.ToServiceID,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		Reason:         d.Reason,
		Status:         entities.LoanStatus(d.Status),
		WorkloadImpact: d.WorkloadImpact,
		Cost:           null.Float64FromPtr(d.Cost),
	}
	if l.Status == "" {
		l.Status = entities.LoanPending
	}
	return l
}

type UrgencyModeDTO struct {
	ServiceID          string     `json:"serviceId" validate:"required,entity_id"`
	Title              string     `json:"title" validate:"required,max=255"`
	Description        string     `json:"description"`
	EndDate            *time.Time `json:"endDate"`
	Severity           string     `json:"severity" validate:"required,oneof=medium high critical"`
	AffectedProjects   []string   `json:"affectedProjects" validate:"dive,entity_id"`
	ResourcesAllocated int        `json:"resourcesAllocated" validate:"gte=0"`
}

func (d UrgencyModeDTO) ToEntity() entities.UrgencyMode {
	return entities.UrgencyMode{
		ServiceID:          d.ServiceID,
		Title:              d.Title,
		Description:        d.Description,
		EndDate:            null.TimeFromPtr(d.EndDate),
		Severity:           entities.Severity(d.Severity),
		AffectedProjects:   d.AffectedProjects,
		ResourcesAllocated: d.ResourcesAllocated,
	}
}

type SendMessageDTO struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type PreferencesDTO struct {
	DefaultView    string   `json:"defaultView" validate:"required"`
	FilterPriority string   `json:"filterPriority"`
	FilterAssignee string   `json:"filterAssignee"`
	FilterTaskType string   `json:"filterTaskType"`
	ShowCompleted  bool     `json:"showCompleted"`
	Columns        []string `json:"columns" validate:"required,min=1,dive,task_status"`
}

func (d PreferencesDTO) ToEntity(userID string) entities.TaskPreferences {
	return entities.TaskPreferences{
		UserID:         userID,
		DefaultView:    d.DefaultView,
		FilterPriority: d.FilterPriority,
		FilterAssignee: d.FilterAssignee,
		FilterTaskType: d.FilterTaskType,
		ShowCompleted:  d.ShowCompleted,
		Columns:        d.Columns,
	}
}

type AnalyticsQuery struct {
	Period    string `query:"period"`
	ServiceID string `query:"serviceId"`
}
