package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dsmatveev/plaza/internal/client/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRESTClient_Profile(t *testing.T) {
	id := uuid.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/rest/v1/users", r.URL.Path)
		require.Equal(t, "*", r.URL.Query().Get("select"))
		require.Equal(t, "eq."+id.String(), r.URL.Query().Get("id"))

		writeJSON(t, w, []map[string]any{{
			"id":       id,
			"email":    "alice@example.com",
			"username": "alice",
		}})
	})
	c := newTestClient(t, handler)

	profile, err := c.Profile(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, profile.ID)
	require.Equal(t, "alice", profile.Username)
}

func TestRESTClient_Profile_EmptyResultIsNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{})
	})
	c := newTestClient(t, handler)

	_, err := c.Profile(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRESTClient_InsertProfile(t *testing.T) {
	id := uuid.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/v1/users", r.URL.Path)
		require.Equal(t, "return=minimal", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, id.String(), body["id"])
		require.Equal(t, "alice@example.com", body["email"])
		require.Equal(t, "alice", body["username"])
		require.NotContains(t, body, "created_at", "the server assigns the creation timestamp")

		w.WriteHeader(http.StatusCreated)
	})
	c := newTestClient(t, handler)

	err := c.InsertProfile(context.Background(), &models.Profile{
		ID:       id,
		Email:    "alice@example.com",
		Username: "alice",
	})
	require.NoError(t, err)
}

func TestRESTClient_PublishedPosts(t *testing.T) {
	owner := uuid.New()
	published := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/posts", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "*,users:user_id(username)", q.Get("select"))
		require.Equal(t, "not.is.null", q.Get("published_at"))
		require.Equal(t, "published_at.desc", q.Get("order"))

		writeJSON(t, w, []map[string]any{{
			"id":           7,
			"user_id":      owner,
			"title":        "hello",
			"content":      "world",
			"created_at":   published,
			"updated_at":   published,
			"published_at": published,
			"users":        map[string]string{"username": "alice"},
		}})
	})
	c := newTestClient(t, handler)

	posts, err := c.PublishedPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, int64(7), posts[0].ID)
	require.Equal(t, owner, posts[0].UserID)
	require.True(t, posts[0].Published())
	require.Equal(t, "alice", posts[0].AuthorName())
}

func TestRESTClient_UserPosts(t *testing.T) {
	owner := uuid.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "*,users:user_id(username)", q.Get("select"))
		require.Equal(t, "eq."+owner.String(), q.Get("user_id"))
		require.Equal(t, "created_at.desc", q.Get("order"))

		writeJSON(t, w, []map[string]any{{
			"id":           3,
			"user_id":      owner,
			"title":        "draft",
			"content":      "wip",
			"created_at":   time.Now().UTC(),
			"updated_at":   time.Now().UTC(),
			"published_at": nil,
		}})
	})
	c := newTestClient(t, handler)

	posts, err := c.UserPosts(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.False(t, posts[0].Published())
	require.Empty(t, posts[0].AuthorName())
}

func TestRESTClient_InsertPost(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/v1/posts", r.URL.Path)
		require.Equal(t, "return=minimal", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{"title": "T", "content": "C"}, body,
			"only title and content travel, ownership comes from the session")

		w.WriteHeader(http.StatusCreated)
	})
	c := newTestClient(t, handler)

	require.NoError(t, c.InsertPost(context.Background(), "T", "C"))
}

func TestRESTClient_UpdatePost_TitleAndContent(t *testing.T) {
	owner := uuid.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		q := r.URL.Query()
		require.Equal(t, "eq.5", q.Get("id"))
		require.Equal(t, "*,users:user_id(username)", q.Get("select"))
		require.Equal(t, "return=representation", r.Header.Get("Prefer"))
		require.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "new title", body["title"])
		require.Equal(t, "new content", body["content"])
		require.Contains(t, body, "updated_at")
		require.NotContains(t, body, "published_at")

		writeJSON(t, w, map[string]any{
			"id":         5,
			"user_id":    owner,
			"title":      "new title",
			"content":    "new content",
			"created_at": time.Now().UTC(),
			"updated_at": time.Now().UTC(),
		})
	})
	c := newTestClient(t, handler)

	title, content := "new title", "new content"
	post, err := c.UpdatePost(context.Background(), 5, PostChanges{Title: &title, Content: &content})
	require.NoError(t, err)
	require.Equal(t, "new title", post.Title)
}

func TestRESTClient_UpdatePost_Publish(t *testing.T) {
	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, stamp.Format(time.RFC3339), body["published_at"])
		require.NotContains(t, body, "title")

		writeJSON(t, w, map[string]any{
			"id":           5,
			"user_id":      uuid.New(),
			"title":        "t",
			"content":      "c",
			"created_at":   stamp,
			"updated_at":   stamp,
			"published_at": stamp,
		})
	})
	c := newTestClient(t, handler)

	post, err := c.UpdatePost(context.Background(), 5, PostChanges{PublishedAt: &stamp})
	require.NoError(t, err)
	require.True(t, post.Published())
}

func TestRESTClient_UpdatePost_Unpublish(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		// the key must be present and explicitly null to clear the column
		v, ok := body["published_at"]
		require.True(t, ok)
		require.Nil(t, v)

		writeJSON(t, w, map[string]any{
			"id":         5,
			"user_id":    uuid.New(),
			"title":      "t",
			"content":    "c",
			"created_at": time.Now().UTC(),
			"updated_at": time.Now().UTC(),
		})
	})
	c := newTestClient(t, handler)

	post, err := c.UpdatePost(context.Background(), 5, PostChanges{ClearPublished: true})
	require.NoError(t, err)
	require.False(t, post.Published())
}

func TestRESTClient_DeletePost(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/rest/v1/posts", r.URL.Path)
		require.Equal(t, "eq.9", r.URL.Query().Get("id"))
		require.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, handler)

	require.NoError(t, c.DeletePost(context.Background(), 9))
}

func TestRESTClient_UpdatePost_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		writeJSON(t, w, map[string]string{"message": "JSON object requested, multiple (or no) rows returned"})
	})
	c := newTestClient(t, handler)

	title := "x"
	_, err := c.UpdatePost(context.Background(), 404, PostChanges{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}
