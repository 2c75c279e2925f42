package tenancy

import (
	"context"
	"time"

	id "quarters/pkg/domain"
)

// Store is interface-driven to keep the domain logic testable and to allow
// swapping in-memory and postgres persistence without rewiring business code.
type Store interface {
	Create(ctx context.Context, t *Tenancy) error
	FindByID(ctx context.Context, tenancyID id.TenancyID) (*Tenancy, error)
	// FindActiveByTenant returns the tenant's single active occupancy.
	FindActiveByTenant(ctx context.Context, tenantID id.UserID) (*Tenancy, error)
	// End clears the active flag and stamps the move-out date.
	End(ctx context.Context, tenancyID id.TenancyID, moveOutDate time.Time) error
}
