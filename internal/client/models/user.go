// Package models contains the domain types shared by the plaza client:
// the authenticated user, the application profile row, posts, and the small
// value types the synchronizers expose to the view layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity reported by the remote session service. It exists
// only while a session is active.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Profile is the application-level user row, keyed by the auth user id.
// It is created lazily on first fetch when missing.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
