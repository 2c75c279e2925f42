package checklist

import (
	"context"
	"sort"
	"sync"
	"time"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// InMemory keeps checklist items in a mutex-guarded map. It intentionally
// favors clarity over performance.
type InMemory struct {
	mu    sync.RWMutex
	items map[id.ChecklistItemID]Item
}

func NewInMemory() *InMemory {
	return &InMemory{items: make(map[id.ChecklistItemID]Item)}
}

func (s *InMemory) CreateChecklist(_ context.Context, tenancyID id.TenancyID, checklistType Type, items []*Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.TenancyID == tenancyID && existing.ChecklistType == checklistType {
			return sentinel.ErrConflict
		}
	}
	for _, item := range items {
		s.items[item.ID] = *item
	}
	return nil
}

func (s *InMemory) FindItem(_ context.Context, itemID id.ChecklistItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[itemID]; ok {
		copied := item
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByTenancy(_ context.Context, tenancyID id.TenancyID) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Item
	for _, item := range s.items {
		if item.TenancyID == tenancyID {
			copied := item
			out = append(out, &copied)
		}
	}
	sortItems(out)
	return out, nil
}

func (s *InMemory) ListByType(_ context.Context, tenancyID id.TenancyID, checklistType Type) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Item
	for _, item := range s.items {
		if item.TenancyID == tenancyID && item.ChecklistType == checklistType {
			copied := item
			out = append(out, &copied)
		}
	}
	sortItems(out)
	return out, nil
}

func (s *InMemory) MarkCompleted(_ context.Context, itemID id.ChecklistItemID, actorID id.UserID, at time.Time) (*Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, false, sentinel.ErrNotFound
	}
	if item.IsCompleted {
		copied := item
		return &copied, false, nil
	}
	item.IsCompleted = true
	item.CompletedAt = &at
	item.CompletedBy = actorID
	item.UpdatedAt = at
	s.items[itemID] = item
	copied := item
	return &copied, true, nil
}

func (s *InMemory) UpdateItem(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.items[item.ID] = *item
	return nil
}

func (s *InMemory) AddItem(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return sentinel.ErrConflict
	}
	s.items[item.ID] = *item
	return nil
}

func (s *InMemory) DeleteItem(_ context.Context, itemID id.ChecklistItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[itemID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, itemID)
	return nil
}

func sortItems(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ChecklistType != items[j].ChecklistType {
			return items[i].ChecklistType < items[j].ChecklistType
		}
		return items[i].SortOrder < items[j].SortOrder
	})
}
