package audit

import (
	"context"
	"time"

	id "quarters/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Action    Action
	// ActorID is who performed the action (admin or tenant user).
	ActorID id.UserID
	// TenancyID ties the event to an occupancy when one is involved.
	TenancyID id.TenancyID
	// RecordID is the checklist/inspection/item the action touched, when any.
	RecordID string
	Reason   string
}

// Action names an auditable domain action.
type Action string

const (
	// Checklist events
	ActionChecklistInitialized Action = "checklist_initialized"
	ActionItemCompleted        Action = "checklist_item_completed"
	ActionItemUncompleted      Action = "checklist_item_uncompleted"

	// Inspection events
	ActionInspectionInitialized Action = "inspection_initialized"
	ActionInspectionFinalized   Action = "inspection_finalized"
	ActionInspectionReopened    Action = "inspection_reopened"
	ActionPhotoAdded            Action = "inspection_photo_added"
	ActionPhotoDeleted          Action = "inspection_photo_deleted"
)

// Store persists audit events. Implementations must be append-only; events are
// never updated or deleted by the application.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByTenancy(ctx context.Context, tenancyID id.TenancyID) ([]Event, error)
}
