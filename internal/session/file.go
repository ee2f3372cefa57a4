package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists the token to a single file, mirroring the browser
// client's fixed local-storage key. The token is cached in memory; the file
// is only read once at open.
type FileStore struct {
	path string

	mu     sync.Mutex
	token  string
	nextID int
	subs   map[int]func(string)
}

// OpenFileStore opens (or initializes) a token file at path.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		subs: make(map[int]func(string)),
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		s.token = strings.TrimSpace(string(data))
	case os.IsNotExist(err):
		// No session yet.
	default:
		return nil, fmt.Errorf("session: read token file %s: %w", path, err)
	}
	return s, nil
}

// Get returns the current token.
func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Set persists the token and notifies subscribers.
func (s *FileStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("session: write token file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.token = token
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(token)
	}
	return nil
}

// Clear removes the token file and notifies subscribers.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove token file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.token = ""
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn("")
	}
	return nil
}

// OnChange registers a change subscriber.
func (s *FileStore) OnChange(fn func(string)) func() {
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

// Close drops all subscriptions. The token file is left in place.
func (s *FileStore) Close() error {
	s.mu.Lock()
	s.subs = make(map[int]func(string))
	s.mu.Unlock()
	return nil
}

func (s *FileStore) snapshot() []func(string) {
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}
