// Package compliance derives a tenant's standing from live tenancy, invoice,
// insurance, document, and checklist state. Everything here is computed on
// read; nothing is persisted, so the snapshot can never drift from the
// underlying signals.
package compliance

import (
	"time"

	"quarters/internal/insurance"
)

// Status is the overall standing classification.
type Status string

const (
	StatusGoodStanding    Status = "GOOD_STANDING"
	StatusActionRequired  Status = "ACTION_REQUIRED"
	StatusNotInCompliance Status = "NOT_IN_COMPLIANCE"
)

// RentStatus summarizes the tenant's invoice position.
type RentStatus string

const (
	RentPaid      RentStatus = "PAID"
	RentNoInvoice RentStatus = "NO_INVOICE"
	RentDue       RentStatus = "DUE"
	RentOverdue   RentStatus = "OVERDUE"
)

// Severity ranks an issue. Critical issues drive NOT_IN_COMPLIANCE.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// IssueType identifies the discrete condition an issue reports.
type IssueType string

const (
	IssueRentOverdue         IssueType = "RENT_OVERDUE"
	IssueRentDue             IssueType = "RENT_DUE"
	IssueInsuranceMissing    IssueType = "INSURANCE_MISSING"
	IssueInsuranceExpired    IssueType = "INSURANCE_EXPIRED"
	IssueInsurancePending    IssueType = "INSURANCE_PENDING"
	IssueInsuranceRejected   IssueType = "INSURANCE_REJECTED"
	IssueChecklistIncomplete IssueType = "CHECKLIST_INCOMPLETE"
)

// Issue is one transient, typed, severity-ranked notice. Never stored.
type Issue struct {
	Type        IssueType  `json:"type"`
	Severity    Severity   `json:"severity"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ActionURL   string     `json:"actionUrl,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Summary condenses the per-signal results.
type Summary struct {
	RentStatus        RentStatus       `json:"rentStatus"`
	InsuranceStatus   insurance.Status `json:"insuranceStatus"`
	RequiredCompleted int              `json:"requiredCompleted"`
	RequiredTotal     int              `json:"requiredTotal"`
}

// LeaseExpiry reports the remaining term of a fixed-term lease. DaysRemaining
// is nil for month-to-month tenancies.
type LeaseExpiry struct {
	EndDate       *time.Time `json:"endDate"`
	DaysRemaining *int       `json:"daysRemaining"`
	ShowWarning   bool       `json:"showWarning"`
}

// ProfileCompletion scores the tenant's profile from four binary checks.
type ProfileCompletion struct {
	Percentage int      `json:"percentage"`
	Missing    []string `json:"missing"`
}

// Snapshot is the full derived standing for one tenant at one instant.
type Snapshot struct {
	Status            Status            `json:"status"`
	Issues            []Issue           `json:"issues"`
	Summary           Summary           `json:"summary"`
	LeaseExpiry       LeaseExpiry       `json:"leaseExpiry"`
	ProfileCompletion ProfileCompletion `json:"profileCompletion"`
}
