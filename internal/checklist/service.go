package checklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quarters/internal/insurance"
	"quarters/internal/tenancy"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
	"quarters/pkg/platform/audit"
	"quarters/pkg/platform/sentinel"
)

// AuditSink receives domain events without blocking the caller.
type AuditSink interface {
	Emit(event audit.Event)
}

// Service owns checklist initialization and item completion. It keeps
// orchestration out of handlers and domain logic thin.
type Service struct {
	store     Store
	tenancies tenancy.Store
	insurance insurance.Reader
	auditor   AuditSink
}

func NewService(store Store, tenancies tenancy.Store, ins insurance.Reader, auditor AuditSink) *Service {
	return &Service{store: store, tenancies: tenancies, insurance: ins, auditor: auditor}
}

// Initialize seeds the default item set for a tenancy and checklist type.
//
// Errors: CodeNotFound when the tenancy does not exist; CodeAlreadyExists when
// a checklist of that type is already present.
func (s *Service) Initialize(ctx context.Context, tenancyID id.TenancyID, checklistType Type) ([]*Item, error) {
	if _, err := s.tenancies.FindByID(ctx, tenancyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenancy not found")
		}
		return nil, fmt.Errorf("find tenancy: %w", err)
	}

	now := time.Now()
	items := DefaultItems(tenancyID, checklistType, func() id.ChecklistItemID {
		return id.ChecklistItemID(uuid.New())
	}, now)

	if err := s.store.CreateChecklist(ctx, tenancyID, checklistType, items); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeAlreadyExists, "checklist already exists for this tenancy and type")
		}
		return nil, fmt.Errorf("create checklist: %w", err)
	}

	s.auditor.Emit(audit.Event{
		Action:    audit.ActionChecklistInitialized,
		TenancyID: tenancyID,
		Reason:    string(checklistType),
	})
	return items, nil
}

// CompleteItem marks an item complete. Tenant actors pass through the
// self-completion gate; admins may complete any item. Re-completing an
// already-complete item is a no-op, not an error.
//
// Errors: CodeNotFound, CodeNotAllowed (tenant actor on an admin-only item),
// CodeInsuranceNotValid (insurance acknowledgement precondition).
func (s *Service) CompleteItem(ctx context.Context, itemID id.ChecklistItemID, actorID id.UserID, role id.Role) (*Item, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if role == id.RoleTenant {
		if err := s.checkSelfCompletion(ctx, item, actorID); err != nil {
			return nil, err
		}
	}

	// The store sets completion atomically, first writer wins: a retry or a
	// racing duplicate gets the existing row back with its attribution intact.
	item, completed, err := s.store.MarkCompleted(ctx, itemID, actorID, time.Now())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "checklist item not found")
		}
		return nil, fmt.Errorf("complete checklist item: %w", err)
	}

	if completed {
		s.auditor.Emit(audit.Event{
			Action:    audit.ActionItemCompleted,
			ActorID:   actorID,
			TenancyID: item.TenancyID,
			RecordID:  item.ID.String(),
		})
	}
	return item, nil
}

func (s *Service) checkSelfCompletion(ctx context.Context, item *Item, actorID id.UserID) error {
	if err := s.authorizeTenant(ctx, item.TenancyID, actorID); err != nil {
		return err
	}
	if !CanSelfComplete(item) {
		return dErrors.New(dErrors.CodeNotAllowed, "item cannot be self-completed by a tenant")
	}
	if item.ItemType != ItemInsuranceUploaded {
		return nil
	}

	record, err := s.insurance.ByTenant(ctx, actorID)
	if err != nil {
		return fmt.Errorf("read insurance record: %w", err)
	}
	switch record.EffectiveStatus(time.Now()) {
	case insurance.StatusMissing, insurance.StatusRejected, insurance.StatusExpired:
		return dErrors.New(dErrors.CodeInsuranceNotValid, "insurance must be on file and valid before acknowledging")
	}
	return nil
}

// authorizeTenant verifies the actor occupies the tenancy. Reported as
// CodeNotFound so another tenant's records stay indistinguishable from
// nonexistent ones.
func (s *Service) authorizeTenant(ctx context.Context, tenancyID id.TenancyID, actorID id.UserID) error {
	t, err := s.tenancies.FindByID(ctx, tenancyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "tenancy not found")
		}
		return fmt.Errorf("find tenancy: %w", err)
	}
	if t.TenantID != actorID {
		return dErrors.New(dErrors.CodeNotFound, "tenancy not found")
	}
	return nil
}

// UncompleteItem clears completion state. Admin-only; the route layer
// enforces the role.
func (s *Service) UncompleteItem(ctx context.Context, itemID id.ChecklistItemID, actorID id.UserID) (*Item, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsCompleted {
		return item, nil
	}

	item.IsCompleted = false
	item.CompletedAt = nil
	item.CompletedBy = id.UserID{}
	item.UpdatedAt = time.Now()
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update checklist item: %w", err)
	}

	s.auditor.Emit(audit.Event{
		Action:    audit.ActionItemUncompleted,
		ActorID:   actorID,
		TenancyID: item.TenancyID,
		RecordID:  item.ID.String(),
	})
	return item, nil
}

// AddCustomItem appends an admin-defined item to an existing checklist.
//
// Errors: CodeInvalidInput on an empty title, CodeNotFound when the tenancy
// has no checklist of that type yet.
func (s *Service) AddCustomItem(ctx context.Context, tenancyID id.TenancyID, checklistType Type, title, description string, isRequired bool) (*Item, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "title cannot be empty")
	}

	existing, err := s.store.ListByType(ctx, tenancyID, checklistType)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	if len(existing) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "checklist not initialized for this tenancy and type")
	}
	maxOrder := 0
	for _, it := range existing {
		if it.SortOrder > maxOrder {
			maxOrder = it.SortOrder
		}
	}

	now := time.Now()
	item := &Item{
		ID:            id.ChecklistItemID(uuid.New()),
		TenancyID:     tenancyID,
		ChecklistType: checklistType,
		ItemType:      ItemCustom,
		Title:         title,
		Description:   description,
		IsRequired:    isRequired,
		SortOrder:     maxOrder + 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add checklist item: %w", err)
	}
	return item, nil
}

// RemoveItem deletes a checklist item. Admin-only at the route layer.
func (s *Service) RemoveItem(ctx context.Context, itemID id.ChecklistItemID) error {
	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "checklist item not found")
		}
		return fmt.Errorf("delete checklist item: %w", err)
	}
	return nil
}

// List returns all items for a tenancy with completion tallies. Tenant actors
// may only list their own tenancy.
func (s *Service) List(ctx context.Context, tenancyID id.TenancyID, actorID id.UserID, role id.Role) ([]*Item, Progress, error) {
	if role == id.RoleTenant {
		if err := s.authorizeTenant(ctx, tenancyID, actorID); err != nil {
			return nil, Progress{}, err
		}
	}
	items, err := s.store.ListByTenancy(ctx, tenancyID)
	if err != nil {
		return nil, Progress{}, fmt.Errorf("list checklist items: %w", err)
	}
	return items, Tally(items), nil
}

func (s *Service) findItem(ctx context.Context, itemID id.ChecklistItemID) (*Item, error) {
	item, err := s.store.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "checklist item not found")
		}
		return nil, fmt.Errorf("find checklist item: %w", err)
	}
	return item, nil
}
