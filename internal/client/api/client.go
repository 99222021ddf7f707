// Package api defines the contracts of the two remote services the plaza
// client consumes — the session service (credentials, server-side session)
// and the data service (users and posts collections) — plus a concrete
// client speaking the hosted backend's REST dialect.
package api

import (
	"context"
	"time"

	"github.com/dsmatveev/plaza/internal/client/models"
	"github.com/google/uuid"
)

// SessionEvent identifies a session state transition delivered to
// subscribers. Notifications are at-least-once.
type SessionEvent string

const (
	EventSignedIn       SessionEvent = "SIGNED_IN"
	EventSignedOut      SessionEvent = "SIGNED_OUT"
	EventTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
)

// Session is the server-issued proof of authentication: time-bounded and
// refreshable. It is the unit persisted to local storage.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         models.User `json:"user"`
}

// Expired reports whether the access token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionListener receives session change notifications. session is nil for
// sign-out events.
type SessionListener func(event SessionEvent, session *Session)

// SessionClient is the remote session service contract.
//
// Contract:
//   - CurrentUser: identity of the active session, or nil when signed out.
//   - SignUp / SignInWithPassword: password auth; sign-in installs the
//     session on the client and notifies listeners.
//   - SignOut: drops the session locally, notifies listeners, then tells the
//     server; the server round-trip is best-effort.
//   - RestoreSession: installs a previously persisted session (refreshing it
//     when expired) and notifies listeners.
//   - OnSessionChange: subscribes to session transitions.
type SessionClient interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	SignUp(ctx context.Context, email, password, username string) (*models.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	RestoreSession(ctx context.Context, session *Session) error
	OnSessionChange(fn SessionListener)
	Session() *Session
}

// PostChanges describes a partial update of a post row. Nil fields are left
// untouched; ClearPublished wins over PublishedAt and resets the row to
// unpublished.
type PostChanges struct {
	Title          *string
	Content        *string
	PublishedAt    *time.Time
	ClearPublished bool
}

// DataClient is the remote data service contract over the users and posts
// collections. Mutations are attributed to the authenticated caller by the
// server; the client never sends an owner id on insert.
type DataClient interface {
	Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	InsertProfile(ctx context.Context, profile *models.Profile) error

	PublishedPosts(ctx context.Context) ([]models.Post, error)
	UserPosts(ctx context.Context, userID uuid.UUID) ([]models.Post, error)
	InsertPost(ctx context.Context, title, content string) error
	UpdatePost(ctx context.Context, id int64, changes PostChanges) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}
