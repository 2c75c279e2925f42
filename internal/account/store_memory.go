package account

import (
	"context"
	"sync"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// InMemory keeps user records in a mutex-guarded map.
type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]User)}
}

func (s *InMemory) Save(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		copied := user
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}
