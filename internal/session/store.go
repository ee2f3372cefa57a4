// Package session holds the bearer token, decodes its claims, and schedules
// its own invalidation at expiry. The token is the only shared mutable state
// in the client: components depend on the Store interface, never on ambient
// storage.
package session

// Store is the capability interface for the persisted bearer token. All
// consumers treat the token as read/replace-whole.
type Store interface {
	// Get returns the current token, or "" if none is held.
	Get() (string, error)

	// Set replaces the token and notifies subscribers.
	Set(token string) error

	// Clear removes the token and notifies subscribers.
	Clear() error

	// OnChange registers fn to be called with the new token (possibly "")
	// whenever the token changes. The returned cancel releases the
	// subscription and is safe to call more than once.
	OnChange(fn func(token string)) (cancel func())

	// Close releases the store and all subscriptions.
	Close() error
}
