package session

import (
	"log"
	"sync"
	"time"
)

// Manager watches a Store and enforces token expiry: a token already past
// its exp claim is cleared immediately, a live token is cleared by a
// one-shot timer at exactly its expiry instant. Replacing the token cancels
// the previously armed timer so a stale timer can never fire against a
// newer token.
type Manager struct {
	store Store
	now   func() time.Time

	mu       sync.Mutex
	timer    *time.Timer
	unsub    func()
	claims   Claims
	hasToken bool
}

// ManagerOpts holds parameters for creating a Manager.
type ManagerOpts struct {
	Store Store
	Now   func() time.Time // defaults to time.Now
}

// NewManager creates a Manager and evaluates the store's current token.
func NewManager(opts ManagerOpts) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := &Manager{store: opts.Store, now: now}
	m.unsub = opts.Store.OnChange(m.handleToken)

	if tok, err := opts.Store.Get(); err == nil {
		m.handleToken(tok)
	}
	return m
}

// Claims returns the claims of the current token. Zero claims mean no
// session (or a malformed token, which is treated the same).
func (m *Manager) Claims() Claims {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims
}

// Active reports whether a token is currently held.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasToken
}

// UpdateToken persists a new token through the store.
func (m *Manager) UpdateToken(token string) error {
	return m.store.Set(token)
}

// Logout clears the persisted token.
func (m *Manager) Logout() error {
	return m.store.Clear()
}

// Close cancels the expiry timer and the store subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// handleToken re-evaluates expiry state on every token change. The previous
// timer is always stopped first.
func (m *Manager) handleToken(token string) {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if token == "" {
		m.claims = Claims{}
		m.hasToken = false
		m.mu.Unlock()
		return
	}

	claims := DecodeClaims(token)
	m.claims = claims
	m.hasToken = true
	now := m.now()

	if claims.Expired(now) {
		m.mu.Unlock()
		// Already stale: clear without flashing an authenticated state.
		if err := m.store.Clear(); err != nil {
			log.Printf("session: clear expired token: %v", err)
		}
		return
	}

	if !claims.Exp.IsZero() {
		m.timer = time.AfterFunc(claims.Exp.Sub(now), func() {
			if err := m.store.Clear(); err != nil {
				log.Printf("session: clear token at expiry: %v", err)
			}
		})
	}
	m.mu.Unlock()
}
