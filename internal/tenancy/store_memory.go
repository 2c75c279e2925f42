package tenancy

import (
	"context"
	"sync"
	"time"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// InMemory keeps tenancies in a mutex-guarded map. It intentionally favors
// clarity over performance.
type InMemory struct {
	mu        sync.RWMutex
	tenancies map[id.TenancyID]Tenancy
}

func NewInMemory() *InMemory {
	return &InMemory{tenancies: make(map[id.TenancyID]Tenancy)}
}

func (s *InMemory) Create(_ context.Context, t *Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenancies[t.ID]; ok {
		return sentinel.ErrConflict
	}
	if t.Active {
		for _, existing := range s.tenancies {
			if existing.Active && existing.TenantID == t.TenantID {
				return sentinel.ErrConflict
			}
		}
	}
	s.tenancies[t.ID] = *t
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenancyID id.TenancyID) (*Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tenancies[tenancyID]; ok {
		copied := t
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindActiveByTenant(_ context.Context, tenantID id.UserID) (*Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenancies {
		if t.Active && t.TenantID == tenantID {
			copied := t
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) End(_ context.Context, tenancyID id.TenancyID, moveOutDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenancies[tenancyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	t.Active = false
	t.MoveOutDate = &moveOutDate
	t.UpdatedAt = time.Now()
	s.tenancies[tenancyID] = t
	return nil
}
