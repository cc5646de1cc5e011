package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tradedist/backend/internal/domain/shared"
)

// MockEventHandler records every event it receives. It satisfies
// shared.EventHandler so bus and service tests can subscribe it and assert
// on delivery order and count. Safe for concurrent use.
type MockEventHandler struct {
	mu      sync.Mutex
	types   []string
	seen    []shared.DomainEvent
	handleE error
}

// NewMockEventHandler builds a handler subscribed to the given event types.
// With no types it acts as a wildcard subscriber.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{types: eventTypes}
}

func (h *MockEventHandler) EventTypes() []string { return h.types }

// Handle records the event, then returns the injected error if one is set.
func (h *MockEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, event)
	return h.handleE
}

// Handled returns a copy of the recorded events in delivery order.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.seen...)
}

// HandledCount reports how many events Handle has recorded.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

// SetError makes subsequent Handle calls fail with err. Events are still
// recorded, matching how real handlers observe an event before failing.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handleE = err
}

// Reset discards recorded events and any injected error.
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = nil
	h.handleE = nil
}

// TestEvent is a minimal domain event for wiring tests that do not care
// about a specific aggregate.
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent builds a test event with a fresh event and aggregate id.
func NewTestEvent(eventType string, tenantID uuid.UUID) *TestEvent {
	return NewTestEventWithID(uuid.New(), eventType, tenantID)
}

// NewTestEventWithID builds a test event with a caller-chosen event id, for
// idempotency and dedup assertions.
func NewTestEventWithID(eventID uuid.UUID, eventType string, tenantID uuid.UUID) *TestEvent {
	base := shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), tenantID)
	base.ID = eventID
	return &TestEvent{BaseDomainEvent: base}
}

// WaitForCondition polls condition every interval until it holds or timeout
// elapses. It reports whether the condition was met, leaving the failure
// decision to the caller.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// WaitForEventCount reports whether handler records at least count events
// within timeout.
func WaitForEventCount(t *testing.T, handler *MockEventHandler, count int, timeout time.Duration) bool {
	t.Helper()

	return WaitForCondition(t, func() bool {
		return handler.HandledCount() >= count
	}, timeout, 10*time.Millisecond)
}
