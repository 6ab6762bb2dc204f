package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// UrgencyMode is a time-boxed crisis flag raised by a service.
type UrgencyMode struct {
	ID                 string    `json:"id"`
	ServiceID          string    `json:"serviceId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	IsActive           bool      `json:"isActive"`
	StartDate          time.Time `json:"startDate"`
	EndDate            null.Time `json:"endDate"`
	ActivatedBy        string    `json:"activatedBy"`
	Severity           Severity  `json:"severity"`
	AffectedProjects   []string  `json:"affectedProjects"`
	ResourcesAllocated int       `json:"resourcesAllocated"`
}
