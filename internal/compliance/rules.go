package compliance

import (
	"fmt"
	"time"

	"quarters/internal/checklist"
	"quarters/internal/insurance"
	"quarters/internal/tenancy"
)

// rentDueWarningDays is the window before the due date in which an open
// invoice surfaces a RENT_DUE warning.
const rentDueWarningDays = 7

// leaseExpiryWarningDays is the remaining-term threshold below which a
// fixed-term lease shows the renewal warning.
const leaseExpiryWarningDays = 90

// evaluateRent classifies the tenant's invoice position. outstanding is the
// unit's earliest OPEN/OVERDUE invoice, nil when none exists.
func evaluateRent(outstanding *Invoice, hasPaid bool, now time.Time) (RentStatus, *Issue) {
	if outstanding == nil {
		if hasPaid {
			return RentPaid, nil
		}
		return RentNoInvoice, nil
	}

	if outstanding.Status == InvoiceOverdue || !outstanding.DueDate.After(now) {
		return RentOverdue, &Issue{
			Type:        IssueRentOverdue,
			Severity:    SeverityCritical,
			Title:       "Rent payment overdue",
			Description: "An invoice is past its due date. Please pay as soon as possible.",
			ActionURL:   "/payments",
			DueDate:     &outstanding.DueDate,
		}
	}

	daysUntilDue := daysBetween(now, outstanding.DueDate)
	if daysUntilDue <= rentDueWarningDays {
		return RentDue, &Issue{
			Type:        IssueRentDue,
			Severity:    SeverityWarning,
			Title:       "Rent payment due soon",
			Description: fmt.Sprintf("An invoice is due in %d days.", daysUntilDue),
			ActionURL:   "/payments",
			DueDate:     &outstanding.DueDate,
		}
	}
	return RentDue, nil
}

// evaluateInsurance derives the effective status and its issue, if any.
// Expiry overrides stored approval; the status APPROVED is the only one that
// emits nothing.
func evaluateInsurance(record insurance.Record, now time.Time) (insurance.Status, *Issue) {
	effective := record.EffectiveStatus(now)
	switch effective {
	case insurance.StatusMissing:
		return effective, &Issue{
			Type:        IssueInsuranceMissing,
			Severity:    SeverityWarning,
			Title:       "Renter's insurance missing",
			Description: "No proof of insurance is on file.",
			ActionURL:   "/insurance",
		}
	case insurance.StatusExpired:
		return effective, &Issue{
			Type:        IssueInsuranceExpired,
			Severity:    SeverityCritical,
			Title:       "Renter's insurance expired",
			Description: "Your insurance policy has expired. Upload a current policy.",
			ActionURL:   "/insurance",
			DueDate:     record.ExpiresAt,
		}
	case insurance.StatusPending:
		return effective, &Issue{
			Type:        IssueInsurancePending,
			Severity:    SeverityWarning,
			Title:       "Renter's insurance under review",
			Description: "Your uploaded policy is awaiting approval.",
			ActionURL:   "/insurance",
		}
	case insurance.StatusRejected:
		return effective, &Issue{
			Type:        IssueInsuranceRejected,
			Severity:    SeverityWarning,
			Title:       "Renter's insurance rejected",
			Description: "Your uploaded policy was rejected. Upload a valid policy.",
			ActionURL:   "/insurance",
		}
	}
	return effective, nil
}

// evaluateChecklist reports outstanding required items.
func evaluateChecklist(progress checklist.Progress) *Issue {
	outstanding := progress.RequiredTotal - progress.RequiredCompleted
	if outstanding <= 0 {
		return nil
	}
	return &Issue{
		Type:        IssueChecklistIncomplete,
		Severity:    SeverityWarning,
		Title:       "Checklist items outstanding",
		Description: fmt.Sprintf("%d required checklist items are not yet complete.", outstanding),
		ActionURL:   "/checklist",
	}
}

// evaluateLeaseExpiry computes the remaining term. Month-to-month tenancies
// report a nil end date and never warn.
func evaluateLeaseExpiry(t *tenancy.Tenancy, now time.Time) LeaseExpiry {
	days, fixed := t.DaysUntilEnd(now)
	if !fixed {
		return LeaseExpiry{}
	}
	return LeaseExpiry{
		EndDate:       t.EndDate,
		DaysRemaining: &days,
		ShowWarning:   days > 0 && days <= leaseExpiryWarningDays,
	}
}

// evaluateProfile scores four binary checks: phone on file, insurance
// effectively approved, at least one document, checklist fully completed.
func evaluateProfile(phone string, effectiveInsurance insurance.Status, documentCount int, progress checklist.Progress) ProfileCompletion {
	missing := make([]string, 0, 4)
	if phone == "" {
		missing = append(missing, "phone")
	}
	if effectiveInsurance != insurance.StatusApproved {
		missing = append(missing, "insurance")
	}
	if documentCount == 0 {
		missing = append(missing, "documents")
	}
	if progress.Completed < progress.Total {
		missing = append(missing, "checklist")
	}
	return ProfileCompletion{
		Percentage: (4 - len(missing)) * 100 / 4,
		Missing:    missing,
	}
}

// overallStatus collapses the signals into one classification. A critical
// condition always dominates, no matter how many warnings coexist.
func overallStatus(rent RentStatus, effectiveInsurance insurance.Status, issues []Issue) Status {
	if rent == RentOverdue || effectiveInsurance == insurance.StatusExpired {
		return StatusNotInCompliance
	}
	if len(issues) > 0 {
		return StatusActionRequired
	}
	return StatusGoodStanding
}

// daysBetween counts whole days from now until later, rounding partial days
// up so an invoice due tomorrow morning reads as one day out.
func daysBetween(now, later time.Time) int {
	d := later.Sub(now)
	days := int(d.Hours() / 24)
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
