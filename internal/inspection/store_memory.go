package inspection

import (
	"context"
	"sort"
	"sync"
	"time"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// InMemory keeps the inspection graph in mutex-guarded maps. One mutex covers
// records, items, and photos so every lock check and write is atomic with
// respect to a concurrent finalize.
type InMemory struct {
	mu          sync.RWMutex
	inspections map[id.InspectionID]Inspection
	items       map[id.InspectionItemID]Item
	photos      map[id.PhotoID]Photo
}

func NewInMemory() *InMemory {
	return &InMemory{
		inspections: make(map[id.InspectionID]Inspection),
		items:       make(map[id.InspectionItemID]Item),
		photos:      make(map[id.PhotoID]Photo),
	}
}

func (s *InMemory) Create(_ context.Context, insp *Inspection, items []*Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.inspections {
		if existing.TenancyID == insp.TenancyID && existing.Phase == insp.Phase {
			return sentinel.ErrConflict
		}
	}
	s.inspections[insp.ID] = *insp
	for _, item := range items {
		s.items[item.ID] = *item
	}
	return nil
}

func (s *InMemory) Find(_ context.Context, inspectionID id.InspectionID) (*Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if insp, ok := s.inspections[inspectionID]; ok {
		copied := insp
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByTenancy(_ context.Context, tenancyID id.TenancyID, phase Phase) (*Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, insp := range s.inspections {
		if insp.TenancyID == tenancyID && insp.Phase == phase {
			copied := insp
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindItem(_ context.Context, itemID id.InspectionItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[itemID]; ok {
		copied := item
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListItems(_ context.Context, inspectionID id.InspectionID) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Item
	for _, item := range s.items {
		if item.InspectionID == inspectionID {
			copied := item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *InMemory) FindPhoto(_ context.Context, photoID id.PhotoID) (*Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if photo, ok := s.photos[photoID]; ok {
		copied := photo
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListPhotos(_ context.Context, inspectionID id.InspectionID) ([]*Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Photo
	for _, photo := range s.photos {
		if photo.InspectionID == inspectionID {
			copied := photo
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) UpdateItem(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[item.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	parent, ok := s.inspections[current.InspectionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if parent.IsFinalized {
		return sentinel.ErrInvalidState
	}

	s.items[item.ID] = *item
	if parent.Status == StatusNotStarted {
		parent.Status = StatusInProgress
		parent.UpdatedAt = time.Now()
		s.inspections[parent.ID] = parent
	}
	return nil
}

func (s *InMemory) SetDamageReport(_ context.Context, inspectionID id.InspectionID, damageFound bool, damageNotes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	insp, ok := s.inspections[inspectionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if insp.IsFinalized {
		return sentinel.ErrInvalidState
	}
	insp.DamageFound = damageFound
	insp.DamageNotes = damageNotes
	if insp.Status == StatusNotStarted {
		insp.Status = StatusInProgress
	}
	insp.UpdatedAt = time.Now()
	s.inspections[inspectionID] = insp
	return nil
}

func (s *InMemory) AddPhoto(_ context.Context, photo *Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[photo.ItemID]
	if !ok {
		return sentinel.ErrNotFound
	}
	parent, ok := s.inspections[item.InspectionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if parent.IsFinalized {
		return sentinel.ErrInvalidState
	}
	s.photos[photo.ID] = *photo
	return nil
}

func (s *InMemory) DeletePhoto(_ context.Context, photoID id.PhotoID) (*Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	photo, ok := s.photos[photoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	parent, ok := s.inspections[photo.InspectionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if parent.IsFinalized {
		return nil, sentinel.ErrInvalidState
	}
	delete(s.photos, photoID)
	copied := photo
	return &copied, nil
}

func (s *InMemory) Finalize(_ context.Context, inspectionID id.InspectionID, actorID id.UserID, at time.Time) (*Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	insp, ok := s.inspections[inspectionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if insp.IsFinalized {
		return nil, sentinel.ErrInvalidState
	}

	missing := 0
	for _, item := range s.items {
		if item.InspectionID == inspectionID && item.Condition == nil {
			missing++
		}
	}
	if missing > 0 {
		return nil, &IncompleteError{Missing: missing}
	}

	insp.Status = StatusCompleted
	insp.IsFinalized = true
	insp.FinalizedAt = &at
	insp.FinalizedBy = actorID
	insp.UpdatedAt = at
	s.inspections[inspectionID] = insp
	copied := insp
	return &copied, nil
}

func (s *InMemory) Reopen(_ context.Context, inspectionID id.InspectionID) (*Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	insp, ok := s.inspections[inspectionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !insp.IsFinalized {
		return nil, sentinel.ErrInvalidState
	}

	insp.IsFinalized = false
	insp.FinalizedAt = nil
	insp.FinalizedBy = id.UserID{}
	// A reopened record is presumptively unfinished, even if it was COMPLETED.
	insp.Status = StatusInProgress
	insp.UpdatedAt = time.Now()
	s.inspections[inspectionID] = insp
	copied := insp
	return &copied, nil
}
