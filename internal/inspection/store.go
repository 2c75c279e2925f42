package inspection

import (
	"context"
	"time"

	id "quarters/pkg/domain"
)

// Store is interface-driven to keep the state machine testable and to allow
// swapping in-memory and postgres persistence without rewiring business code.
//
// Every mutating method enforces the finalization lock inside the store's own
// atomicity boundary (mutex or transaction), so an item update racing a
// finalize cannot land after the lock is set:
//   - sentinel.ErrNotFound: the referenced record does not exist
//   - sentinel.ErrInvalidState: the parent inspection is finalized (or, for
//     Finalize/Reopen, is in the wrong lock state)
//   - *IncompleteError: Finalize found ungraded items
type Store interface {
	Create(ctx context.Context, insp *Inspection, items []*Item) error
	Find(ctx context.Context, inspectionID id.InspectionID) (*Inspection, error)
	FindByTenancy(ctx context.Context, tenancyID id.TenancyID, phase Phase) (*Inspection, error)
	FindItem(ctx context.Context, itemID id.InspectionItemID) (*Item, error)
	ListItems(ctx context.Context, inspectionID id.InspectionID) ([]*Item, error)
	FindPhoto(ctx context.Context, photoID id.PhotoID) (*Photo, error)
	ListPhotos(ctx context.Context, inspectionID id.InspectionID) ([]*Photo, error)

	// UpdateItem writes condition/notes and auto-promotes the parent from
	// NOT_STARTED to IN_PROGRESS in the same atomic step.
	UpdateItem(ctx context.Context, item *Item) error
	SetDamageReport(ctx context.Context, inspectionID id.InspectionID, damageFound bool, damageNotes string) error
	AddPhoto(ctx context.Context, photo *Photo) error
	// DeletePhoto returns the removed photo so the caller can clean up the
	// blob behind it.
	DeletePhoto(ctx context.Context, photoID id.PhotoID) (*Photo, error)

	// Finalize is a single atomic check-then-write: verify the lock is clear
	// and every item is graded, then set COMPLETED + the lock. Two concurrent
	// calls cannot both succeed.
	Finalize(ctx context.Context, inspectionID id.InspectionID, actorID id.UserID, at time.Time) (*Inspection, error)
	// Reopen clears the lock, wipes who/when, and forces IN_PROGRESS.
	Reopen(ctx context.Context, inspectionID id.InspectionID) (*Inspection, error)
}
