package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "quarters/pkg/domain"
)

type memoryStore struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (m *memoryStore) Append(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("store down")
	}
	m.events = append(m.events, event)
	return nil
}

func (m *memoryStore) ListByTenancy(_ context.Context, tenancyID id.TenancyID) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.TenancyID == tenancyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *memoryStore) has(action Action) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.Action == action {
			return true
		}
	}
	return false
}

func (m *memoryStore) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherStampsTimestamp(t *testing.T) {
	inbox := make(chan Event, 1)
	NewPublisher(inbox, discard()).Emit(Event{Action: ActionItemCompleted})

	event := <-inbox
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublisherDropsWhenFull(t *testing.T) {
	inbox := make(chan Event, 1)
	p := NewPublisher(inbox, discard())

	// The second emit finds the inbox full and must return without blocking.
	p.Emit(Event{Action: ActionItemCompleted})
	done := make(chan struct{})
	go func() {
		p.Emit(Event{Action: ActionItemUncompleted})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full inbox")
	}

	assert.Len(t, inbox, 1)
	assert.Equal(t, ActionItemCompleted, (<-inbox).Action)
}

func TestWorkerDrainsInbox(t *testing.T) {
	store := &memoryStore{}
	inbox := make(chan Event, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewWorker(store, inbox, discard()).Run(ctx) }()

	for i := 0; i < 5; i++ {
		inbox <- Event{Action: ActionInspectionFinalized, Timestamp: time.Now()}
	}
	require.Eventually(t, func() bool { return store.count() == 5 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorkerSurvivesStoreFailure(t *testing.T) {
	store := &memoryStore{fail: true}
	inbox := make(chan Event, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = NewWorker(store, inbox, discard()).Run(ctx) }()

	inbox <- Event{Action: ActionPhotoAdded}
	inbox <- Event{Action: ActionPhotoDeleted}

	// A failing store must not wedge the inbox.
	require.Eventually(t, func() bool { return len(inbox) == 0 }, time.Second, 5*time.Millisecond)

	store.setFail(false)
	inbox <- Event{Action: ActionInspectionReopened}
	require.Eventually(t, func() bool { return store.has(ActionInspectionReopened) }, time.Second, 5*time.Millisecond)
}
