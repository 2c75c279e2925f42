package blob

import (
	"context"
	"sync"
)

// Memory is an in-memory Store suitable for tests and development.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, key string, content []byte, contentType string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(content))
	copy(copied, content)
	m.blobs[key] = copied
	return Info{Key: key, Size: int64(len(content)), ContentType: contentType}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(content))
	copy(copied, content)
	return copied, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}
