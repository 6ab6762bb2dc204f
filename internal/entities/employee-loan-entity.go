package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
	LoanRejected  LoanStatus = "rejected"
)

// EmployeeLoan is a temporary cross-service reassignment request.
type EmployeeLoan struct {
	ID             string       `json:"id"`
	EmployeeID     string       `json:"employeeId"`
	FromServiceID  string       `json:"fromServiceId"`
	ToServiceID    string       `json:"toServiceId"`
	StartDate      time.Time    `json:"startDate"`
	EndDate        time.Time    `json:"endDate"`
	Reason         string       `json:"reason"`
	Status         LoanStatus   `json:"status"`
	ApprovedBy     string       `json:"approvedBy,omitempty"`
	WorkloadImpact int          `json:"workloadImpact"`
	Cost           null.Float64 `json:"cost"`
}
