package inspection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"quarters/internal/account"
	"quarters/internal/blob"
	"quarters/internal/notify"
	"quarters/internal/tenancy"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
	"quarters/pkg/email"
	"quarters/pkg/platform/audit"
	"quarters/pkg/platform/sentinel"
)

// AuditSink receives domain events without blocking the caller.
type AuditSink interface {
	Emit(event audit.Event)
}

// Service orchestrates the inspection lifecycle: initialization, grading,
// photo evidence, and the finalize/reopen state machine. Lock enforcement
// lives in the store; the service translates store facts into caller-facing
// codes and handles the side effects (blobs, audit, notification).
type Service struct {
	store     Store
	tenancies tenancy.Store
	accounts  account.Store
	blobs     blob.Store
	notifier  notify.Notifier
	auditor   AuditSink
	logger    *slog.Logger
}

func NewService(store Store, tenancies tenancy.Store, accounts account.Store, blobs blob.Store, notifier notify.Notifier, auditor AuditSink, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		tenancies: tenancies,
		accounts:  accounts,
		blobs:     blobs,
		notifier:  notifier,
		auditor:   auditor,
		logger:    logger,
	}
}

// View is the full read model for one inspection: the record, its items in
// walkthrough order, and all photos.
type View struct {
	Inspection *Inspection
	Items      []*Item
	Photos     []*Photo
}

// FinalizeResult pairs the finalized record with its advisory warnings.
type FinalizeResult struct {
	Inspection *Inspection
	Warnings   Warnings
}

// Initialize creates the inspection for a tenancy and phase, seeded with the
// default category items, in NOT_STARTED and unlocked.
//
// Errors: CodeNotFound when the tenancy does not exist; CodeAlreadyExists when
// an inspection for that tenancy and phase is already present.
func (s *Service) Initialize(ctx context.Context, tenancyID id.TenancyID, phase Phase) (*View, error) {
	if _, err := s.tenancies.FindByID(ctx, tenancyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenancy not found")
		}
		return nil, fmt.Errorf("find tenancy: %w", err)
	}

	now := time.Now()
	insp := &Inspection{
		ID:        id.InspectionID(uuid.New()),
		TenancyID: tenancyID,
		Phase:     phase,
		Status:    StatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := DefaultItems(insp.ID, func() id.InspectionItemID {
		return id.InspectionItemID(uuid.New())
	}, now)

	if err := s.store.Create(ctx, insp, items); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeAlreadyExists, "inspection already exists for this tenancy and phase")
		}
		return nil, fmt.Errorf("create inspection: %w", err)
	}

	s.auditor.Emit(audit.Event{
		Action:    audit.ActionInspectionInitialized,
		TenancyID: tenancyID,
		RecordID:  insp.ID.String(),
		Reason:    string(phase),
	})
	return &View{Inspection: insp, Items: items}, nil
}

// Get returns the inspection for a tenancy and phase with items and photos.
// Tenant actors may only read their own tenancy.
//
// Errors: CodeNotFound when no inspection exists for that tenancy and phase.
func (s *Service) Get(ctx context.Context, tenancyID id.TenancyID, phase Phase, actorID id.UserID, role id.Role) (*View, error) {
	if role == id.RoleTenant {
		if err := s.authorizeTenant(ctx, tenancyID, actorID); err != nil {
			return nil, err
		}
	}
	insp, err := s.store.FindByTenancy(ctx, tenancyID, phase)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "inspection not found")
		}
		return nil, fmt.Errorf("find inspection: %w", err)
	}
	return s.view(ctx, insp)
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

func (s *Service) view(ctx context.Context, insp *Inspection) (*View, error) {
	items, err := s.store.ListItems(ctx, insp.ID)
	if err != nil {
		return nil, fmt.Errorf("list inspection items: %w", err)
	}
	photos, err := s.store.ListPhotos(ctx, insp.ID)
	if err != nil {
		return nil, fmt.Errorf("list inspection photos: %w", err)
	}
	return &View{Inspection: insp, Items: items, Photos: photos}, nil
}

// UpdateItem grades one item and/or replaces its notes. A write to any item of
// a NOT_STARTED inspection promotes the record to IN_PROGRESS.
//
// Errors: CodeNotFound; CodeChecklistFinalized when the record is locked.
func (s *Service) UpdateItem(ctx context.Context, itemID id.InspectionItemID, condition *Condition, notes *string) (*Item, error) {
	item, err := s.store.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "inspection item not found")
		}
		return nil, fmt.Errorf("find inspection item: %w", err)
	}

	if condition != nil {
		item.Condition = condition
	}
	if notes != nil {
		item.Notes = *notes
	}
	item.UpdatedAt = time.Now()

	if err := s.store.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeChecklistFinalized, "inspection is finalized")
		}
		return nil, fmt.Errorf("update inspection item: %w", err)
	}
	return item, nil
}

// SetDamageReport records the inspection-level damage flag and notes.
//
// Errors: CodeNotFound; CodeChecklistFinalized when the record is locked.
func (s *Service) SetDamageReport(ctx context.Context, inspectionID id.InspectionID, damageFound bool, damageNotes string) error {
	if err := s.store.SetDamageReport(ctx, inspectionID, damageFound, damageNotes); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "inspection not found")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeChecklistFinalized, "inspection is finalized")
		}
		return fmt.Errorf("set damage report: %w", err)
	}
	return nil
}

// AddPhoto stores the photo bytes under a fresh key and attaches the record to
// an item. The blob write happens first; if the record insert is refused (lock,
// missing item) the blob is removed again.
//
// Errors: CodeInvalidInput on empty content; CodeNotFound;
// CodeChecklistFinalized when the record is locked.
func (s *Service) AddPhoto(ctx context.Context, itemID id.InspectionItemID, actorID id.UserID, filename, contentType, caption string, content []byte) (*Photo, error) {
	if len(content) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "photo content cannot be empty")
	}

	item, err := s.store.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "inspection item not found")
		}
		return nil, fmt.Errorf("find inspection item: %w", err)
	}

	photoID := id.PhotoID(uuid.New())
	key := storageKey(item.InspectionID, photoID, filename)
	if _, err := s.blobs.Put(ctx, key, content, contentType); err != nil {
		return nil, fmt.Errorf("store photo blob: %w", err)
	}

	photo := &Photo{
		ID:           photoID,
		ItemID:       itemID,
		InspectionID: item.InspectionID,
		StorageKey:   key,
		Filename:     filename,
		Caption:      caption,
		CreatedAt:    time.Now(),
	}
	if err := s.store.AddPhoto(ctx, photo); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "orphaned photo blob after failed insert",
				"key", key, "error", delErr)
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeChecklistFinalized, "inspection is finalized")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "inspection item not found")
		}
		return nil, fmt.Errorf("add inspection photo: %w", err)
	}

	s.auditor.Emit(audit.Event{
		Action:   audit.ActionPhotoAdded,
		ActorID:  actorID,
		RecordID: photo.ID.String(),
	})
	return photo, nil
}

// GetPhotoContent returns a photo record with its bytes for serving. Tenant
// actors may only read photos of their own tenancy's inspections.
//
// Errors: CodeNotFound when either the record or the blob is missing.
func (s *Service) GetPhotoContent(ctx context.Context, photoID id.PhotoID, actorID id.UserID, role id.Role) (*Photo, []byte, error) {
	photo, err := s.store.FindPhoto(ctx, photoID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "photo not found")
		}
		return nil, nil, fmt.Errorf("find photo: %w", err)
	}
	if role == id.RoleTenant {
		insp, err := s.store.Find(ctx, photo.InspectionID)
		if err != nil {
			return nil, nil, fmt.Errorf("find inspection: %w", err)
		}
		if err := s.authorizeTenant(ctx, insp.TenancyID, actorID); err != nil {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "photo not found")
		}
	}
	content, err := s.blobs.Get(ctx, photo.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "photo content not found")
		}
		return nil, nil, fmt.Errorf("read photo blob: %w", err)
	}
	return photo, content, nil
}

// DeletePhoto removes the record and then the blob behind it. A failed blob
// delete is logged, not surfaced: the record is already gone and the key is
// unreachable.
//
// Errors: CodeNotFound; CodeChecklistFinalized when the record is locked.
func (s *Service) DeletePhoto(ctx context.Context, photoID id.PhotoID, actorID id.UserID) error {
	photo, err := s.store.DeletePhoto(ctx, photoID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "photo not found")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeChecklistFinalized, "inspection is finalized")
		}
		return fmt.Errorf("delete inspection photo: %w", err)
	}

	if err := s.blobs.Delete(ctx, photo.StorageKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.logger.WarnContext(ctx, "orphaned photo blob after record delete",
			"key", photo.StorageKey, "error", err)
	}

	s.auditor.Emit(audit.Event{
		Action:   audit.ActionPhotoDeleted,
		ActorID:  actorID,
		RecordID: photo.ID.String(),
	})
	return nil
}

// Finalize locks the inspection after verifying every item is graded, records
// who and when, and computes advisory warnings. Warnings never block the
// transition. The tenant notification is fire-and-forget.
//
// Errors: CodeNotFound; CodeAlreadyFinalized on a second finalize;
// CodeIncompleteItems (with a missing_count detail) while items are ungraded.
func (s *Service) Finalize(ctx context.Context, inspectionID id.InspectionID, actorID id.UserID) (*FinalizeResult, error) {
	insp, err := s.store.Finalize(ctx, inspectionID, actorID, time.Now())
	if err != nil {
		var incomplete *IncompleteError
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "inspection not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeAlreadyFinalized, "inspection is already finalized")
		case errors.As(err, &incomplete):
			return nil, dErrors.New(dErrors.CodeIncompleteItems, "all items must be graded before finalizing").
				WithDetail("missing_count", incomplete.Missing)
		}
		return nil, fmt.Errorf("finalize inspection: %w", err)
	}

	items, err := s.store.ListItems(ctx, insp.ID)
	if err != nil {
		return nil, fmt.Errorf("list inspection items: %w", err)
	}
	photos, err := s.store.ListPhotos(ctx, insp.ID)
	if err != nil {
		return nil, fmt.Errorf("list inspection photos: %w", err)
	}
	warnings := ComputeWarnings(insp, items, photos)

	s.auditor.Emit(audit.Event{
		Action:    audit.ActionInspectionFinalized,
		ActorID:   actorID,
		TenancyID: insp.TenancyID,
		RecordID:  insp.ID.String(),
	})
	go s.notifyFinalized(context.WithoutCancel(ctx), insp)

	return &FinalizeResult{Inspection: insp, Warnings: warnings}, nil
}

// Reopen clears the lock so corrections can be made. The record returns to
// IN_PROGRESS regardless of its status before finalization.
//
// Errors: CodeNotFound; CodeNotFinalized when the record is not locked.
func (s *Service) Reopen(ctx context.Context, inspectionID id.InspectionID, actorID id.UserID, reason string) (*Inspection, error) {
	insp, err := s.store.Reopen(ctx, inspectionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "inspection not found")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeNotFinalized, "inspection is not finalized")
		}
		return nil, fmt.Errorf("reopen inspection: %w", err)
	}

	s.auditor.Emit(audit.Event{
		Action:    audit.ActionInspectionReopened,
		ActorID:   actorID,
		TenancyID: insp.TenancyID,
		RecordID:  insp.ID.String(),
		Reason:    reason,
	})
	return insp, nil
}

func (s *Service) notifyFinalized(ctx context.Context, insp *Inspection) {
	t, err := s.tenancies.FindByID(ctx, insp.TenancyID)
	if err != nil {
		s.logger.WarnContext(ctx, "skip finalize notification, tenancy lookup failed",
			"tenancy_id", insp.TenancyID, "error", err)
		return
	}
	user, err := s.accounts.FindByID(ctx, t.TenantID)
	if err != nil || user.Email == "" {
		s.logger.WarnContext(ctx, "skip finalize notification, no tenant email",
			"tenant_id", t.TenantID, "error", err)
		return
	}

	firstName, _ := email.DeriveNameFromEmail(user.Email)
	msg := notify.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Your %s inspection report is ready", phaseLabel(insp.Phase)),
		Body: fmt.Sprintf("Hi %s,\n\nThe %s inspection for your unit has been completed and the report is now available in your portal.",
			firstName, phaseLabel(insp.Phase)),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "finalize notification failed",
			"to", user.Email, "error", err)
	}
}

func phaseLabel(p Phase) string {
	if p == PhaseMoveOut {
		return "move-out"
	}
	return "move-in"
}

func storageKey(inspectionID id.InspectionID, photoID id.PhotoID, filename string) string {
	ext := path.Ext(filename)
	return "inspections/" + inspectionID.String() + "/" + photoID.String() + ext
}
