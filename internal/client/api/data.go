package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dsmatveev/plaza/internal/client/models"
	"github.com/google/uuid"
)

// postSelect embeds the author username into every post row via the
// posts.user_id -> users single-row join.
const postSelect = "*,users:user_id(username)"

func eqID(id int64) string {
	return "eq." + strconv.FormatInt(id, 10)
}

// Profile fetches the application profile row for the given user id.
// Returns ErrNotFound when the row does not exist yet.
func (c *RESTClient) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", "eq."+id.String())

	var rows []models.Profile
	if err := c.authedJSON(ctx, http.MethodGet, "/rest/v1/users", query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

// InsertProfile creates the application profile row.
func (c *RESTClient) InsertProfile(ctx context.Context, profile *models.Profile) error {
	headers := map[string]string{"Prefer": "return=minimal"}
	if err := c.authedJSON(ctx, http.MethodPost, "/rest/v1/users", nil, headers, profile, nil); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// PublishedPosts lists every published post, any owner, newest publication
// first, with the author username embedded.
func (c *RESTClient) PublishedPosts(ctx context.Context) ([]models.Post, error) {
	query := url.Values{}
	query.Set("select", postSelect)
	query.Set("published_at", "not.is.null")
	query.Set("order", "published_at.desc")

	var rows []models.Post
	if err := c.authedJSON(ctx, http.MethodGet, "/rest/v1/posts", query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch published posts: %w", err)
	}
	return rows, nil
}

// UserPosts lists every post owned by userID, published or not, newest
// creation first.
func (c *RESTClient) UserPosts(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	query := url.Values{}
	query.Set("select", postSelect)
	query.Set("user_id", "eq."+userID.String())
	query.Set("order", "created_at.desc")

	var rows []models.Post
	if err := c.authedJSON(ctx, http.MethodGet, "/rest/v1/posts", query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch user posts: %w", err)
	}
	return rows, nil
}

// InsertPost creates a post row. Only title and content travel: the server
// assigns the id, the timestamps and the owner from the ambient session.
func (c *RESTClient) InsertPost(ctx context.Context, title, content string) error {
	body := map[string]string{"title": title, "content": content}
	headers := map[string]string{"Prefer": "return=minimal"}
	if err := c.authedJSON(ctx, http.MethodPost, "/rest/v1/posts", nil, headers, body, nil); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// UpdatePost applies a partial update to the post row, stamps updated_at,
// and returns the updated row with the author join embedded.
func (c *RESTClient) UpdatePost(ctx context.Context, id int64, changes PostChanges) (*models.Post, error) {
	body := map[string]any{
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if changes.Title != nil {
		body["title"] = *changes.Title
	}
	if changes.Content != nil {
		body["content"] = *changes.Content
	}
	switch {
	case changes.ClearPublished:
		body["published_at"] = nil
	case changes.PublishedAt != nil:
		body["published_at"] = changes.PublishedAt.UTC().Format(time.RFC3339)
	}

	query := url.Values{}
	query.Set("id", eqID(id))
	query.Set("select", postSelect)
	headers := map[string]string{
		"Prefer": "return=representation",
		"Accept": "application/vnd.pgrst.object+json",
	}

	var post models.Post
	if err := c.authedJSON(ctx, http.MethodPatch, "/rest/v1/posts", query, headers, body, &post); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	return &post, nil
}

// DeletePost removes the post row.
func (c *RESTClient) DeletePost(ctx context.Context, id int64) error {
	query := url.Values{}
	query.Set("id", eqID(id))
	headers := map[string]string{"Prefer": "return=minimal"}
	if err := c.authedJSON(ctx, http.MethodDelete, "/rest/v1/posts", query, headers, nil, nil); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}
