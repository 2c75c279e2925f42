// Package insurance models renter-insurance state as consumed from the user
// records owned by the account module. Only the effective-status derivation
// lives here; uploading and approving policies is out of scope.
package insurance

import (
	"context"
	"time"

	id "quarters/pkg/domain"
)

// Status is the stored review state of a tenant's policy.
type Status string

const (
	StatusMissing  Status = "MISSING"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

// Record is the slice of the user row this core reads.
type Record struct {
	Status    Status
	ExpiresAt *time.Time
}

// EffectiveStatus applies the expiry override: a policy stored as APPROVED
// whose expiry date has passed reports EXPIRED regardless of the stored value.
// The boundary is strict - a policy expiring exactly now is still valid.
func (r Record) EffectiveStatus(now time.Time) Status {
	if r.Status == StatusApproved && r.ExpiresAt != nil && r.ExpiresAt.Before(now) {
		return StatusExpired
	}
	if r.Status == "" {
		return StatusMissing
	}
	return r.Status
}

// Reader supplies the tenant's current insurance record. Implemented by an
// adapter over the account store.
type Reader interface {
	ByTenant(ctx context.Context, tenantID id.UserID) (Record, error)
}
