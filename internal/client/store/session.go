package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dsmatveev/plaza/internal/client/api"
	"github.com/dsmatveev/plaza/internal/client/models"
	"github.com/dsmatveev/plaza/internal/client/repositories/localstate"
	"github.com/dsmatveev/plaza/internal/logging"
	"github.com/google/uuid"
)

// signOutTimeout bounds the detached remote sign-out call fired by Logout.
const signOutTimeout = 5 * time.Second

// SessionStore is the session synchronizer: it owns the current user and
// profile, mediates login/registration/logout, and reacts to session change
// notifications from the remote session service.
//
// Profile fetching is centralized in the session listener rather than in
// Login/Register, so every sign-in path synchronizes the profile exactly
// once per session transition regardless of which code path triggered it.
type SessionStore struct {
	client api.SessionClient
	data   api.DataClient
	state  localstate.Repository
	bus    *Bus
	log    logging.Logger

	listenOnce sync.Once

	mu              sync.RWMutex
	user            *models.User
	profile         *models.Profile
	loading         bool
	profileFetching bool
}

func NewSessionStore(client api.SessionClient, data api.DataClient, state localstate.Repository, bus *Bus, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Discard()
	}
	return &SessionStore{
		client: client,
		data:   data,
		state:  state,
		bus:    bus,
		log:    log.With("component", "session"),
	}
}

// User returns the current authenticated identity, or nil when signed out.
func (s *SessionStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Profile returns the current application profile, or nil.
func (s *SessionStore) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionStore) IsAuthenticated() bool {
	return s.User() != nil
}

// Username returns the display name: the profile username when present,
// falling back to the auth email.
func (s *SessionStore) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile != nil && s.profile.Username != "" {
		return s.profile.Username
	}
	if s.user != nil {
		return s.user.Email
	}
	return ""
}

// Initialize asks the remote session service for the current session's user
// and records it. Idempotent against concurrent calls: while one Initialize
// is in flight, others are no-ops. The profile is deliberately not fetched
// here; that is the session listener's job.
func (s *SessionStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.log.Debug(ctx, "initialize already in progress, skipping")
		return
	}
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to fetch current user", "err", err)
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Register creates an account and then the matching profile row. A profile
// insert failure does not fail registration: the row is self-healed on the
// next profile fetch. Local state is not touched here; the session listener
// reacts to the resulting sign-in.
func (s *SessionStore) Register(ctx context.Context, email, password, username string) models.Result {
	user, err := s.client.SignUp(ctx, email, password, username)
	if err != nil {
		s.log.Error(ctx, "sign up failed", "err", err)
		return models.Fail(err)
	}

	profile := &models.Profile{ID: user.ID, Email: email, Username: username}
	if err := s.data.InsertProfile(ctx, profile); err != nil {
		s.log.Warn(ctx, "failed to create profile after sign up", "user", user.ID, "err", err)
	}

	return models.OK()
}

// Login performs password sign-in. Local state is not touched here; the
// session listener reacts to the notification the sign-in produces.
func (s *SessionStore) Login(ctx context.Context, email, password string) models.Result {
	if _, err := s.client.SignInWithPassword(ctx, email, password); err != nil {
		s.log.Error(ctx, "sign in failed", "err", err)
		return models.Fail(err)
	}
	return models.OK()
}

// Logout is optimistic and non-blocking: local state and the persisted
// session blob are cleared synchronously, then the remote sign-out runs in a
// detached task whose failure is logged and otherwise ignored.
func (s *SessionStore) Logout() models.Result {
	ctx := context.Background()

	s.mu.Lock()
	s.user = nil
	s.profile = nil
	s.mu.Unlock()

	if err := s.state.Delete(ctx, localstate.KeySession); err != nil {
		s.log.Warn(ctx, "failed to clear persisted session", "err", err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
		defer cancel()
		if err := s.client.SignOut(ctx); err != nil {
			s.log.Warn(ctx, "remote sign out failed, local state already cleared", "err", err)
		}
	}()

	return models.OK()
}

// ForceLogout clears local state without any network call. Recovery path for
// when the remote call path is itself failing.
func (s *SessionStore) ForceLogout() models.Result {
	ctx := context.Background()

	s.mu.Lock()
	s.user = nil
	s.profile = nil
	s.mu.Unlock()

	if err := s.state.Delete(ctx, localstate.KeySession); err != nil {
		s.log.Warn(ctx, "failed to clear persisted session", "err", err)
	}

	return models.OK()
}

// SetupListener subscribes once to the remote session service's change
// notifications.
func (s *SessionStore) SetupListener() {
	s.listenOnce.Do(func() {
		s.client.OnSessionChange(s.onSessionChange)
	})
}

func (s *SessionStore) onSessionChange(event api.SessionEvent, session *api.Session) {
	ctx := context.Background()
	s.log.Debug(ctx, "session change", "event", string(event))

	if session != nil {
		u := session.User
		s.mu.Lock()
		s.user = &u
		s.mu.Unlock()

		s.persistSession(ctx, session)
		s.FetchProfile(ctx, u.ID)
		return
	}

	s.mu.Lock()
	s.user = nil
	s.profile = nil
	s.mu.Unlock()

	if err := s.state.Delete(ctx, localstate.KeySession); err != nil {
		s.log.Warn(ctx, "failed to clear persisted session", "err", err)
	}

	if s.bus != nil {
		s.bus.PublishSessionEnded()
	}
}

func (s *SessionStore) persistSession(ctx context.Context, session *api.Session) {
	blob, err := json.Marshal(session)
	if err != nil {
		s.log.Warn(ctx, "failed to encode session", "err", err)
		return
	}
	if err := s.state.Set(ctx, localstate.KeySession, blob); err != nil {
		s.log.Warn(ctx, "failed to persist session", "err", err)
	}
}

// RestoreSession loads the persisted session blob, if any, and hands it to
// the session service. A stale or corrupt blob is discarded. State updates
// flow through the session listener like any other sign-in.
func (s *SessionStore) RestoreSession(ctx context.Context) {
	blob, err := s.state.Get(ctx, localstate.KeySession)
	if err != nil {
		s.log.Warn(ctx, "failed to read persisted session", "err", err)
		return
	}
	if len(blob) == 0 {
		return
	}

	var session api.Session
	if err := json.Unmarshal(blob, &session); err != nil {
		s.log.Warn(ctx, "discarding corrupt session blob", "err", err)
		_ = s.state.Delete(ctx, localstate.KeySession)
		return
	}

	if err := s.client.RestoreSession(ctx, &session); err != nil {
		s.log.Warn(ctx, "persisted session rejected", "err", err)
		_ = s.state.Delete(ctx, localstate.KeySession)
	}
}

// FetchProfile synchronizes the profile row for userID. A no-op while
// another fetch is already running. The guard must not block: a token
// refresh during the fetch re-enters this method from the session listener
// on the same goroutine. A missing row is self-healed by inserting a minimal
// profile and rereading it; any other failure is logged and leaves the
// profile unchanged.
func (s *SessionStore) FetchProfile(ctx context.Context, userID uuid.UUID) {
	s.mu.Lock()
	if s.profileFetching {
		s.mu.Unlock()
		s.log.Debug(ctx, "profile fetch already in progress, skipping")
		return
	}
	s.profileFetching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.profileFetching = false
		s.mu.Unlock()
	}()

	s.fetchProfile(ctx, userID)
}

func (s *SessionStore) fetchProfile(ctx context.Context, userID uuid.UUID) {
	profile, err := s.data.Profile(ctx, userID)
	switch {
	case err == nil:
		s.mu.Lock()
		s.profile = profile
		s.mu.Unlock()
	case errors.Is(err, api.ErrNotFound):
		s.healProfile(ctx, userID)
	default:
		s.log.Error(ctx, "failed to fetch profile", "user", userID, "err", err)
	}
}

// healProfile creates the missing profile row and rereads it.
func (s *SessionStore) healProfile(ctx context.Context, userID uuid.UUID) {
	email := s.emailFor(ctx, userID)

	insert := &models.Profile{ID: userID, Email: email, Username: usernameFromEmail(email)}
	if err := s.data.InsertProfile(ctx, insert); err != nil {
		s.log.Error(ctx, "failed to create missing profile", "user", userID, "err", err)
		return
	}

	profile, err := s.data.Profile(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "failed to reread profile after insert", "user", userID, "err", err)
		return
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
}

func (s *SessionStore) emailFor(ctx context.Context, userID uuid.UUID) string {
	if u := s.User(); u != nil && u.ID == userID {
		return u.Email
	}
	u, err := s.client.CurrentUser(ctx)
	if err != nil || u == nil || u.ID != userID {
		return ""
	}
	return u.Email
}

// ForceRefreshAuth re-runs Initialize under its loading guard. Manual
// recovery after suspected desync, e.g. on resume.
func (s *SessionStore) ForceRefreshAuth(ctx context.Context) {
	s.log.Info(ctx, "refreshing auth state")
	s.Initialize(ctx)
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	if email != "" {
		return email
	}
	return "user"
}
