// Package localstate persists the small pieces of client state that survive
// restarts: the session token blob and the language preference.
package localstate

import "context"

// Well-known keys.
const (
	// KeySession holds the serialized session token blob. Cleared on
	// logout and forced logout.
	KeySession = "session"

	// KeyLanguage holds the UI language preference. Outside the sync
	// core's scope, stored beside the session for convenience.
	KeyLanguage = "language"
)

// Repository is a persistent key-value store. Get returns nil (not an
// error) for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
