package compliance

import (
	"context"
	"time"

	id "quarters/pkg/domain"
)

// InvoiceStatus mirrors the states the billing module assigns.
type InvoiceStatus string

const (
	InvoiceOpen    InvoiceStatus = "OPEN"
	InvoiceOverdue InvoiceStatus = "OVERDUE"
	InvoicePaid    InvoiceStatus = "PAID"
)

// Invoice is the slice of a billing record the rent rule reads.
type Invoice struct {
	UnitID  id.UnitID
	Status  InvoiceStatus
	DueDate time.Time
}

// InvoiceReader supplies the rent facts for one unit. Billing is owned by an
// out-of-scope module; this port reads its table directly.
type InvoiceReader interface {
	// EarliestOutstanding returns the unit's earliest OPEN or OVERDUE invoice,
	// or sentinel.ErrNotFound when none exists.
	EarliestOutstanding(ctx context.Context, unitID id.UnitID) (*Invoice, error)
	// HasPaid reports whether any PAID invoice exists for the unit.
	HasPaid(ctx context.Context, unitID id.UnitID) (bool, error)
}

// DocumentCounter reports how many documents a tenant has on file, for the
// profile-completion check.
type DocumentCounter interface {
	CountByTenant(ctx context.Context, tenantID id.UserID) (int, error)
}
