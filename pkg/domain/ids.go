package domain

import "github.com/google/uuid"

// Typed IDs keep entity references from being mixed up at call sites. They are
// thin uuid wrappers; construct via uuid.New() casts or Parse helpers at trust
// boundaries.
type (
	UserID           uuid.UUID
	TenancyID        uuid.UUID
	UnitID           uuid.UUID
	ChecklistItemID  uuid.UUID
	InspectionID     uuid.UUID
	InspectionItemID uuid.UUID
	PhotoID          uuid.UUID
)

func (id UserID) String() string           { return uuid.UUID(id).String() }
func (id TenancyID) String() string        { return uuid.UUID(id).String() }
func (id UnitID) String() string           { return uuid.UUID(id).String() }
func (id ChecklistItemID) String() string  { return uuid.UUID(id).String() }
func (id InspectionID) String() string     { return uuid.UUID(id).String() }
func (id InspectionItemID) String() string { return uuid.UUID(id).String() }
func (id PhotoID) String() string          { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id TenancyID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id UnitID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id ChecklistItemID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id InspectionID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id InspectionItemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PhotoID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }

// ParseTenancyID constructs a TenancyID from external input.
func ParseTenancyID(s string) (TenancyID, error) {
	u, err := uuid.Parse(s)
	return TenancyID(u), err
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	return UserID(u), err
}

// ParseChecklistItemID constructs a ChecklistItemID from external input.
func ParseChecklistItemID(s string) (ChecklistItemID, error) {
	u, err := uuid.Parse(s)
	return ChecklistItemID(u), err
}

// ParseInspectionID constructs an InspectionID from external input.
func ParseInspectionID(s string) (InspectionID, error) {
	u, err := uuid.Parse(s)
	return InspectionID(u), err
}

// ParseInspectionItemID constructs an InspectionItemID from external input.
func ParseInspectionItemID(s string) (InspectionItemID, error) {
	u, err := uuid.Parse(s)
	return InspectionItemID(u), err
}

// ParsePhotoID constructs a PhotoID from external input.
func ParsePhotoID(s string) (PhotoID, error) {
	u, err := uuid.Parse(s)
	return PhotoID(u), err
}
