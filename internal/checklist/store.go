package checklist

import (
	"context"
	"time"

	id "quarters/pkg/domain"
)

// Store is interface-driven to keep the domain logic testable and to allow
// swapping in-memory and postgres persistence without rewiring business code.
//
// CreateChecklist must be atomic: the existence check for the tenancy+type
// pair and the item inserts happen under one lock or transaction, returning
// sentinel.ErrConflict when a checklist of that type already exists.
type Store interface {
	CreateChecklist(ctx context.Context, tenancyID id.TenancyID, checklistType Type, items []*Item) error
	FindItem(ctx context.Context, itemID id.ChecklistItemID) (*Item, error)
	// ListByTenancy returns all items for the tenancy ordered by checklist
	// type then sort order.
	ListByTenancy(ctx context.Context, tenancyID id.TenancyID) ([]*Item, error)
	ListByType(ctx context.Context, tenancyID id.TenancyID, checklistType Type) ([]*Item, error)
	// MarkCompleted sets completion atomically, first writer wins: when the
	// item is already complete it returns the existing row unchanged and
	// completed=false, so a racing retry can never overwrite attribution.
	MarkCompleted(ctx context.Context, itemID id.ChecklistItemID, actorID id.UserID, at time.Time) (item *Item, completed bool, err error)
	UpdateItem(ctx context.Context, item *Item) error
	AddItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, itemID id.ChecklistItemID) error
}
