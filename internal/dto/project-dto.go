package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"taskflow-gateway/internal/entities"
)

type ProjectDTO struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	Progress    int        `json:"progress" validate:"gte=0,lte=100"`
	Color       string     `json:"color" validate:"omitempty,hexcolor"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	RiskLevel   string     `json:"riskLevel" validate:"omitempty,oneof=low medium high"`
	ChefID      string     `json:"chefId" validate:"omitempty,entity_id"`
	MemberIDs   []string   `json:"memberIds" validate:"dive,entity_id"`
	ServiceID   string     `json:"serviceId" validate:"omitempty,entity_id"`
	ServiceIDs  []string   `json:"serviceIds" validate:"dive,entity_id"`
}

func (d ProjectDTO) ToEntity() entities.Project {
	p := entities.Project{
		Name:        d.Name,
		Description: d.Description,
		Status:      entities.ProjectStatus(d.Status),
		Progress:    d.Progress,
		Color:       d.Color,
		StartDate:   null.TimeFromPtr(d.StartDate),
		EndDate:     null.TimeFromPtr(d.EndDate),
		RiskLevel:   d.RiskLevel,
		ChefID:      d.ChefID,
		MemberIDs:   d.MemberIDs,
		ServiceID:   d.ServiceID,
		ServiceIDs:  d.ServiceIDs,
	}
	if p.Status == "" {
		p.Status = entities.ProjectPlanning
	}
	return p
}

type ServiceDTO struct {
	Name             string   `json:"name" validate:"required,max=255"`
	Description      string   `json:"description"`
	HeadID           string   `json:"headId" validate:"omitempty,entity_id"`
	MemberIDs        []string `json:"memberIds" validate:"dive,entity_id"`
	Color            string   `json:"color" validate:"omitempty,hexcolor"`
	WorkloadCapacity int      `json:"workloadCapacity" validate:"gte=0"`
}

func (d ServiceDTO) ToEntity() entities.Service {
	return entities.Service{
		Name:             d.Name,
		Description:      d.Description,
		HeadID:           d.HeadID,
		MemberIDs:        d.MemberIDs,
		Color:            d.Color,
		WorkloadCapacity: d.WorkloadCapacity,
	}
}
