package session

import "sync"

// MemoryStore is an in-process Store. Used by tests and by commands that
// must not persist a token.
type MemoryStore struct {
	mu     sync.Mutex
	token  string
	nextID int
	subs   map[int]func(string)
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[int]func(string))}
}

// Get returns the current token.
func (s *MemoryStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Set replaces the token and notifies subscribers.
func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	s.token = token
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(token)
	}
	return nil
}

// Clear removes the token and notifies subscribers.
func (s *MemoryStore) Clear() error {
	return s.Set("")
}

// OnChange registers a change subscriber.
func (s *MemoryStore) OnChange(fn func(string)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close drops all subscriptions.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.subs = make(map[int]func(string))
	s.mu.Unlock()
	return nil
}

// snapshot copies the subscriber list so callbacks run without the lock held.
// Callers must hold s.mu.
func (s *MemoryStore) snapshot() []func(string) {
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}
