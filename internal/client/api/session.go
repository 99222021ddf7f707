package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dsmatveev/plaza/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OnSessionChange subscribes fn to session transitions. Listeners are called
// synchronously, in subscription order, on sign-in, sign-out, restore and
// token refresh.
func (c *RESTClient) OnSessionChange(fn SessionListener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *RESTClient) emit(event SessionEvent, session *Session) {
	c.mu.RLock()
	listeners := make([]SessionListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(event, session)
	}
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         models.User `json:"user"`
}

func (r *tokenResponse) session() *Session {
	return &Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(r.ExpiresIn) * time.Second),
		User:         r.User,
	}
}

// SignUp creates an account with the session service. The optional username
// travels as signup metadata; the application profile row is the caller's
// concern.
func (c *RESTClient) SignUp(ctx context.Context, email, password, username string) (*models.User, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if username != "" {
		body["data"] = map[string]string{"username": username}
	}

	var resp struct {
		ID    uuid.UUID    `json:"id"`
		Email string       `json:"email"`
		User  *models.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", nil, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	// depending on confirmation settings the user object arrives either at
	// the top level or nested
	if resp.User != nil {
		return resp.User, nil
	}
	return &models.User{ID: resp.ID, Email: resp.Email}, nil
}

// SignInWithPassword exchanges credentials for a session, installs it, and
// notifies listeners.
func (c *RESTClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": []string{"password"}}
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token", query, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s := resp.session()
	c.setSession(s)
	c.emit(EventSignedIn, s)
	return s, nil
}

// SignOut drops the local session immediately and notifies listeners, then
// revokes the session server-side. The returned error concerns only the
// server round-trip; local sign-out has already happened.
func (c *RESTClient) SignOut(ctx context.Context) error {
	s := c.Session()
	c.setSession(nil)
	c.emit(EventSignedOut, nil)

	if s == nil {
		return nil
	}
	headers := map[string]string{"Authorization": "Bearer " + s.AccessToken}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", nil, headers, nil, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// CurrentUser asks the session service who the active session belongs to.
// Returns (nil, nil) when no session is installed.
func (c *RESTClient) CurrentUser(ctx context.Context) (*models.User, error) {
	if c.Session() == nil {
		return nil, nil
	}

	var u models.User
	if err := c.authedJSON(ctx, http.MethodGet, "/auth/v1/user", nil, nil, nil, &u); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &u, nil
}

// RestoreSession installs a previously persisted session. An expired session
// is refreshed first; a session that cannot be refreshed is rejected so the
// caller can discard the stale blob.
func (c *RESTClient) RestoreSession(ctx context.Context, session *Session) error {
	if session == nil || session.AccessToken == "" {
		return fmt.Errorf("restore session: empty session")
	}

	id, email, exp, err := identityFromToken(session.AccessToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if session.User.ID == uuid.Nil {
		session.User = models.User{ID: id, Email: email}
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = exp
	}

	if session.Expired(time.Now()) {
		if _, err := c.refreshWith(ctx, session.RefreshToken); err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		return nil
	}

	c.setSession(session)
	c.emit(EventSignedIn, session)
	return nil
}

// refreshWith exchanges a refresh token for a fresh session, installs it,
// and notifies listeners.
func (c *RESTClient) refreshWith(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh session: no refresh token")
	}

	query := url.Values{"grant_type": []string{"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token", query, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	s := resp.session()
	c.setSession(s)
	c.emit(EventTokenRefreshed, s)
	return s, nil
}

// identityFromToken reads the identity claims out of an access token. The
// signature is not checked here: tokens are validated by the backend on
// every call, this is only used to rehydrate local state.
func identityFromToken(raw string) (uuid.UUID, string, time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return uuid.Nil, "", time.Time{}, fmt.Errorf("invalid access token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", time.Time{}, fmt.Errorf("invalid access token: %w", err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", time.Time{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	email, _ := claims["email"].(string)

	var expiry time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Time
	}

	return id, email, expiry, nil
}
