// Package store contains the client-side synchronization core: two stores
// that keep local view state (current user, profile, two post collections)
// consistent with the remote services under interleaved asynchronous
// operations, plus the event bus that connects them.
package store

import "sync"

// Bus carries session lifecycle notifications between stores. The session
// store publishes; the post store subscribes at construction. This is the
// one sanctioned cross-component invalidation path.
type Bus struct {
	mu           sync.Mutex
	sessionEnded []func()
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeSessionEnded registers fn to run whenever a session ends.
func (b *Bus) SubscribeSessionEnded(fn func()) {
	b.mu.Lock()
	b.sessionEnded = append(b.sessionEnded, fn)
	b.mu.Unlock()
}

// PublishSessionEnded runs every subscriber synchronously.
func (b *Bus) PublishSessionEnded() {
	b.mu.Lock()
	subscribers := make([]func(), len(b.sessionEnded))
	copy(subscribers, b.sessionEnded)
	b.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}
