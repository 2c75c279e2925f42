package checklist

import (
	"time"

	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
)

// Type separates the two move phases a checklist can belong to.
type Type string

const (
	TypeMoveIn  Type = "MOVE_IN"
	TypeMoveOut Type = "MOVE_OUT"
)

var validTypes = map[Type]bool{
	TypeMoveIn:  true,
	TypeMoveOut: true,
}

// ParseType constructs a Type from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !validTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid checklist type")
	}
	return t, nil
}

// ItemType tags what a default item represents. Custom items added by admins
// always carry ItemCustom and are exempt from the fixed enum.
type ItemType string

const (
	// Move-in item types
	ItemLeaseSigned       ItemType = "LEASE_SIGNED"
	ItemDepositReceived   ItemType = "DEPOSIT_RECEIVED"
	ItemInsuranceUploaded ItemType = "INSURANCE_UPLOADED"
	ItemKeysIssued        ItemType = "KEYS_ISSUED"
	ItemUnitInspected     ItemType = "UNIT_INSPECTED"
	ItemWelcomePacketSent ItemType = "WELCOME_PACKET_SENT"

	// Move-out item types
	ItemNoticeReceived       ItemType = "NOTICE_RECEIVED"
	ItemForwardingAddress    ItemType = "FORWARDING_ADDRESS"
	ItemUtilitiesTransferred ItemType = "UTILITIES_TRANSFERRED"
	ItemKeysReturned         ItemType = "KEYS_RETURNED"
	ItemFinalInspection      ItemType = "FINAL_INSPECTION"
	ItemDepositProcessed     ItemType = "DEPOSIT_PROCESSED"

	ItemCustom ItemType = "CUSTOM"
)

// Item is a single boolean-completable task tied to a tenancy and move phase.
type Item struct {
	ID            id.ChecklistItemID
	TenancyID     id.TenancyID
	ChecklistType Type
	ItemType      ItemType
	Title         string
	Description   string
	IsRequired    bool
	IsCompleted   bool
	CompletedAt   *time.Time
	CompletedBy   id.UserID
	SortOrder     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// seedItem describes one default checklist entry.
type seedItem struct {
	itemType   ItemType
	title      string
	desc       string
	isRequired bool
}

// defaultItems is the static seed table per checklist type. Admins can add
// and remove entries afterwards; this only controls initialization.
var defaultItems = map[Type][]seedItem{
	TypeMoveIn: {
		{ItemLeaseSigned, "Lease signed", "Signed lease agreement on file", true},
		{ItemDepositReceived, "Security deposit received", "Deposit payment cleared", true},
		{ItemInsuranceUploaded, "Renter's insurance uploaded", "Proof of insurance uploaded and acknowledged", true},
		{ItemKeysIssued, "Keys issued", "Unit and mailbox keys handed over", true},
		{ItemUnitInspected, "Move-in inspection completed", "Walkthrough inspection finalized", true},
		{ItemWelcomePacketSent, "Welcome packet sent", "Building info and contacts emailed", false},
	},
	TypeMoveOut: {
		{ItemNoticeReceived, "Notice to vacate received", "Written notice on file", true},
		{ItemForwardingAddress, "Forwarding address provided", "Address for deposit return and mail", true},
		{ItemUtilitiesTransferred, "Utilities transferred", "Utility accounts closed or transferred", false},
		{ItemKeysReturned, "Keys returned", "All keys and fobs collected", true},
		{ItemFinalInspection, "Move-out inspection completed", "Final walkthrough finalized", true},
		{ItemDepositProcessed, "Deposit processed", "Deductions assessed and refund issued", true},
	},
}

// DefaultItems builds the seeded item set for a tenancy and checklist type.
func DefaultItems(tenancyID id.TenancyID, checklistType Type, newID func() id.ChecklistItemID, now time.Time) []*Item {
	seeds := defaultItems[checklistType]
	items := make([]*Item, 0, len(seeds))
	for i, seed := range seeds {
		items = append(items, &Item{
			ID:            newID(),
			TenancyID:     tenancyID,
			ChecklistType: checklistType,
			ItemType:      seed.itemType,
			Title:         seed.title,
			Description:   seed.desc,
			IsRequired:    seed.isRequired,
			SortOrder:     i,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return items
}

// Progress counts completion over a set of items.
type Progress struct {
	Total             int
	Completed         int
	RequiredTotal     int
	RequiredCompleted int
}

// Tally computes completion counts for a set of items.
func Tally(items []*Item) Progress {
	var p Progress
	for _, item := range items {
		p.Total++
		if item.IsCompleted {
			p.Completed++
		}
		if item.IsRequired {
			p.RequiredTotal++
			if item.IsCompleted {
				p.RequiredCompleted++
			}
		}
	}
	return p
}
