package entities

import (
	"slices"

	"github.com/aarondl/null/v8"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

type Project struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Status             ProjectStatus `json:"status"`
	Progress           int           `json:"progress"`
	Color              string        `json:"color"`
	StartDate          null.Time     `json:"startDate"`
	EndDate            null.Time     `json:"endDate"`
	RiskLevel          string        `json:"riskLevel,omitempty"`
	CreatorID          string        `json:"creatorId"`
	ChefID             string        `json:"chefId"`
	MemberIDs          []string      `json:"memberIds"`
	ServiceID          string        `json:"serviceId"`
	ServiceIDs         []string      `json:"serviceIds"`
	TaskIDs            []string      `json:"tasks"`
	TaskCount          int           `json:"taskCount"`
	CompletedTaskCount int           `json:"completedTaskCount"`
	Attachments        []Attachment  `json:"attachments"`
}

// HasMember covers the chef and the member list.
func (p *Project) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	return p.ChefID == userID || slices.Contains(p.MemberIDs, userID)
}

// InService matches the primary service and the many-to-many service list.
func (p *Project) InService(serviceID string) bool {
	if serviceID == "" {
		return false
	}
	return p.ServiceID == serviceID || slices.Contains(p.ServiceIDs, serviceID)
}
