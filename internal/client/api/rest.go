package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dsmatveev/plaza/internal/logging"
)

// clientInfoHeader identifies this client to the backend on every request.
const clientInfoHeader = "plaza-cli"

// RESTClient talks to the hosted backend: password auth under /auth/v1 and
// filtered row access under /rest/v1. A single instance implements both
// SessionClient and DataClient so that data calls carry the ambient
// session's bearer token.
type RESTClient struct {
	baseURL string
	anonKey string
	hc      *http.Client
	log     logging.Logger

	mu        sync.RWMutex
	session   *Session
	listeners []SessionListener
}

var (
	_ SessionClient = (*RESTClient)(nil)
	_ DataClient    = (*RESTClient)(nil)
)

func NewRESTClient(baseURL, anonKey string, timeout time.Duration, log logging.Logger) *RESTClient {
	if log == nil {
		log = logging.Discard()
	}
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Session returns a copy of the currently installed session, or nil.
func (c *RESTClient) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *RESTClient) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// token returns the bearer token for outbound requests: the session's access
// token when signed in, the anon key otherwise.
func (c *RESTClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.anonKey
}

// doJSON performs one JSON request/response round-trip. Transport failures
// map to ErrUnavailable; HTTP error statuses map through statusErr.
func (c *RESTClient) doJSON(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.token())
	req.Header.Set("X-Client-Info", clientInfoHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusErr(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// authedJSON is doJSON plus one refresh-and-retry on an expired token,
// mirroring how the session service expects clients to behave.
func (c *RESTClient) authedJSON(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) error {
	err := c.doJSON(ctx, method, path, query, headers, body, out)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	s := c.Session()
	if s == nil || s.RefreshToken == "" {
		return err
	}
	if _, rerr := c.refreshWith(ctx, s.RefreshToken); rerr != nil {
		return err
	}
	return c.doJSON(ctx, method, path, query, headers, body, out)
}

// statusErr converts an HTTP error response into a sentinel-wrapped error.
// The backend reports messages under different keys depending on the
// subsystem, so all known ones are tried.
func (c *RESTClient) statusErr(resp *http.Response) error {
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Msg
	}
	if msg == "" {
		msg = payload.ErrorDescription
	}
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotAcceptable:
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s: %w", msg, ErrUnavailable)
	default:
		return fmt.Errorf("remote error (%d): %s", resp.StatusCode, msg)
	}
}
