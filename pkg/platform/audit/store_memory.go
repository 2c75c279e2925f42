package audit

import (
	"context"
	"sync"

	id "quarters/pkg/domain"
)

// InMemoryStore keeps audit events in process memory. Suitable for tests and
// single-node development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByTenancy(_ context.Context, tenancyID id.TenancyID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.TenancyID == tenancyID {
			out = append(out, e)
		}
	}
	return out, nil
}
