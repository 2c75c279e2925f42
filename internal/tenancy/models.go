package tenancy

import (
	"time"

	id "quarters/pkg/domain"
)

// Tenancy is one tenant's occupancy of one unit. The record is never hard
// deleted; moving out clears Active and stamps MoveOutDate so history stays
// queryable.
type Tenancy struct {
	ID       id.TenancyID
	TenantID id.UserID
	UnitID   id.UnitID
	Active   bool

	StartDate time.Time
	// EndDate is nil for month-to-month occupancies.
	EndDate     *time.Time
	MoveOutDate *time.Time

	// LegacyMoveIn marks occupancies that predate the portal; they are exempt
	// from move-in compliance entirely.
	LegacyMoveIn bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DaysUntilEnd returns the days remaining on a fixed-term lease, floored at
// zero, and false for month-to-month tenancies.
func (t Tenancy) DaysUntilEnd(now time.Time) (int, bool) {
	if t.EndDate == nil {
		return 0, false
	}
	days := int(t.EndDate.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}
