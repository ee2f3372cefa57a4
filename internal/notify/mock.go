package notify

import (
	"context"
	"sync"
)

// MockNotifier records events for tests.
type MockNotifier struct {
	// Err, when set, is returned from every Send.
	Err error

	mu     sync.Mutex
	events []Event
}

func (m *MockNotifier) Name() string { return "mock" }

func (m *MockNotifier) Send(ctx context.Context, evt Event) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

// Events returns a copy of everything sent so far.
func (m *MockNotifier) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
