// Package inspection models the condition-graded, photo-evidenced review of a
// unit tied to a move phase. One entity parameterized by phase covers both
// move-in and move-out flows, so the finalize/reopen state machine exists
// exactly once.
package inspection

import (
	"fmt"
	"time"

	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
)

// Phase is the move phase an inspection belongs to.
type Phase string

const (
	PhaseMoveIn  Phase = "MOVE_IN"
	PhaseMoveOut Phase = "MOVE_OUT"
)

var validPhases = map[Phase]bool{
	PhaseMoveIn:  true,
	PhaseMoveOut: true,
}

// ParsePhase constructs a Phase from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !validPhases[p] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid inspection phase")
	}
	return p, nil
}

// Status tracks how far an inspection has progressed. It is orthogonal to the
// finalization lock: a reopened inspection returns to IN_PROGRESS while the
// lock clears.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Condition grades the state of one inspected area.
type Condition string

const (
	ConditionExcellent Condition = "EXCELLENT"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
	ConditionPoor      Condition = "POOR"
	ConditionDamaged   Condition = "DAMAGED"
)

var validConditions = map[Condition]bool{
	ConditionExcellent: true,
	ConditionGood:      true,
	ConditionFair:      true,
	ConditionPoor:      true,
	ConditionDamaged:   true,
}

// ParseCondition constructs a Condition from external input.
//
// Errors: returns CodeInvalidInput when the value is unsupported.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !validConditions[c] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid condition grade")
	}
	return c, nil
}

// Category is the closed set of room/system areas an inspection covers.
type Category string

const (
	CategoryLivingRoom     Category = "LIVING_ROOM"
	CategoryKitchen        Category = "KITCHEN"
	CategoryBathroom       Category = "BATHROOM"
	CategoryBedroom        Category = "BEDROOM"
	CategoryWallsCeilings  Category = "WALLS_CEILINGS"
	CategoryFloors         Category = "FLOORS"
	CategoryWindowsDoors   Category = "WINDOWS_DOORS"
	CategoryAppliances     Category = "APPLIANCES"
	CategoryPlumbing       Category = "PLUMBING"
	CategoryElectrical     Category = "ELECTRICAL"
	CategorySmokeDetectors Category = "SMOKE_DETECTORS"
)

// defaultCategories seeds one item per area at initialization, in walkthrough
// order.
var defaultCategories = []Category{
	CategoryLivingRoom,
	CategoryKitchen,
	CategoryBathroom,
	CategoryBedroom,
	CategoryWallsCeilings,
	CategoryFloors,
	CategoryWindowsDoors,
	CategoryAppliances,
	CategoryPlumbing,
	CategoryElectrical,
	CategorySmokeDetectors,
}

// Inspection is the checklist-level record carrying the status and the
// finalization lock. Once IsFinalized is set, no item, photo, or
// checklist-level field may change until Reopen.
type Inspection struct {
	ID        id.InspectionID
	TenancyID id.TenancyID
	Phase     Phase
	Status    Status

	DamageFound bool
	DamageNotes string

	IsFinalized bool
	FinalizedAt *time.Time
	FinalizedBy id.UserID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one graded area. Condition stays nil until someone grades it;
// finalize refuses while any item is ungraded.
type Item struct {
	ID           id.InspectionItemID
	InspectionID id.InspectionID
	Category     Category
	Condition    *Condition
	Notes        string
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Photo is evidence attached to one item. The binary lives in the blob store
// under StorageKey.
type Photo struct {
	ID           id.PhotoID
	ItemID       id.InspectionItemID
	InspectionID id.InspectionID
	StorageKey   string
	Filename     string
	Caption      string
	CreatedAt    time.Time
}

// Warnings are advisory findings computed at finalize time. They accompany a
// success result and never block finalization. Zero values marshal to absent
// fields so clients treat them as "no warning".
type Warnings struct {
	NoPhotos              bool `json:"noPhotos,omitempty"`
	DamageWithoutEvidence bool `json:"damageWithoutEvidence,omitempty"`
}

// ComputeWarnings derives the advisory findings from current record state.
// Deterministic over unchanged state: reopen followed by finalize with no
// edits reproduces the same result.
func ComputeWarnings(insp *Inspection, items []*Item, photos []*Photo) Warnings {
	w := Warnings{NoPhotos: len(photos) == 0}

	if insp.DamageFound && insp.DamageNotes == "" {
		evidenced := false
		damagedItems := make(map[id.InspectionItemID]bool)
		for _, item := range items {
			if item.Condition != nil && (*item.Condition == ConditionPoor || *item.Condition == ConditionDamaged) {
				damagedItems[item.ID] = true
			}
		}
		for _, photo := range photos {
			if damagedItems[photo.ItemID] {
				evidenced = true
				break
			}
		}
		w.DamageWithoutEvidence = !evidenced
	}
	return w
}

// IncompleteError reports how many items still lack a condition grade when
// finalize is refused. Stores return it; the service translates it into the
// caller-facing INCOMPLETE_ITEMS code.
type IncompleteError struct {
	Missing int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d items missing a condition grade", e.Missing)
}

// DefaultItems builds the seeded item set for a new inspection.
func DefaultItems(inspectionID id.InspectionID, newID func() id.InspectionItemID, now time.Time) []*Item {
	items := make([]*Item, 0, len(defaultCategories))
	for i, category := range defaultCategories {
		items = append(items, &Item{
			ID:           newID(),
			InspectionID: inspectionID,
			Category:     category,
			SortOrder:    i,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return items
}
