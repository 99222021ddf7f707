package store

import (
	"context"
	"sync"
	"time"

	"github.com/dsmatveev/plaza/internal/client/api"
	"github.com/dsmatveev/plaza/internal/client/models"
	"github.com/dsmatveev/plaza/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Single-flight keys, one per (entity, fetch-kind) pair.
const (
	keyPublished = "published"
	keyOwned     = "owned"
)

// PostStore is the post collection synchronizer. It owns two parallel
// collections — every published post, and every post of the current user —
// plus the shared view filter. After any successful mutation both
// collections reflect the new state or the post's absence; neither may hold
// a stale copy.
//
// Reads are fail-empty: a failed fetch replaces the collection with an empty
// one rather than leaving stale rows. Single-row mutations patch in place to
// avoid clobbering concurrent unrelated reads.
type PostStore struct {
	data api.DataClient
	log  logging.Logger

	group singleflight.Group

	mu        sync.RWMutex
	published []models.Post
	owned     []models.Post
	filter    models.Filter
	loading   bool
}

// NewPostStore builds the store and, when a bus is given, subscribes to
// session-ended notifications so a logout resets every collection.
func NewPostStore(data api.DataClient, bus *Bus, log logging.Logger) *PostStore {
	if log == nil {
		log = logging.Discard()
	}
	p := &PostStore{
		data:   data,
		log:    log.With("component", "posts"),
		filter: models.FilterAll,
	}
	if bus != nil {
		bus.SubscribeSessionEnded(p.ForceResetAll)
	}
	return p
}

// Published returns a copy of the published collection.
func (p *PostStore) Published() []models.Post {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Post(nil), p.published...)
}

// Owned returns a copy of the current user's collection.
func (p *PostStore) Owned() []models.Post {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Post(nil), p.owned...)
}

func (p *PostStore) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

func (p *PostStore) Filter() models.Filter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

// SetFilter changes the shared view filter. Pure local state, no network
// effect.
func (p *PostStore) SetFilter(f models.Filter) {
	p.mu.Lock()
	p.filter = f
	p.mu.Unlock()
}

// FilteredPublished returns the published collection narrowed by the current
// filter, preserving relative order.
func (p *PostStore) FilteredPublished() []models.Post {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return filterPosts(p.published, p.filter)
}

// FilteredOwned returns the owned collection narrowed by the current filter,
// preserving relative order.
func (p *PostStore) FilteredOwned() []models.Post {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return filterPosts(p.owned, p.filter)
}

func filterPosts(posts []models.Post, f models.Filter) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		if f.Match(&posts[i]) {
			out = append(out, posts[i])
		}
	}
	return out
}

// FetchPublished refreshes the published collection wholesale. Single-flight:
// concurrent calls share one remote query. On failure the collection becomes
// empty, never stale.
func (p *PostStore) FetchPublished(ctx context.Context) {
	_, _, _ = p.group.Do(keyPublished, func() (any, error) {
		p.setLoading(true)
		defer p.setLoading(false)

		posts, err := p.data.PublishedPosts(ctx)
		if err != nil {
			p.log.Error(ctx, "failed to fetch published posts", "err", err)
			posts = nil
		}

		p.mu.Lock()
		p.published = posts
		p.mu.Unlock()
		return nil, nil
	})
}

// FetchOwned refreshes the owned collection wholesale for userID.
// Single-flight per collection; fail-empty on error.
func (p *PostStore) FetchOwned(ctx context.Context, userID uuid.UUID) {
	_, _, _ = p.group.Do(keyOwned, func() (any, error) {
		p.setLoading(true)
		defer p.setLoading(false)

		posts, err := p.data.UserPosts(ctx, userID)
		if err != nil {
			p.log.Error(ctx, "failed to fetch user posts", "user", userID, "err", err)
			posts = nil
		}

		p.mu.Lock()
		p.owned = posts
		p.mu.Unlock()
		return nil, nil
	})
}

// Create inserts a new post. The server assigns id, timestamps and owner
// from the ambient session; ownerID is used only as the refetch target, so
// there is no optimistic local insert that could disagree with
// server-assigned values.
func (p *PostStore) Create(ctx context.Context, title, content string, ownerID uuid.UUID) models.Result {
	if err := p.data.InsertPost(ctx, title, content); err != nil {
		p.log.Error(ctx, "failed to create post", "err", err)
		return models.Fail(err)
	}
	p.FetchOwned(ctx, ownerID)
	return models.OK()
}

// Update edits the post's title and/or content and patches the updated row
// in place wherever it currently appears.
func (p *PostStore) Update(ctx context.Context, id int64, title, content *string) (*models.Post, models.Result) {
	return p.mutate(ctx, id, api.PostChanges{Title: title, Content: content})
}

// Publish stamps the post with a publication timestamp.
func (p *PostStore) Publish(ctx context.Context, id int64) (*models.Post, models.Result) {
	now := time.Now().UTC()
	return p.mutate(ctx, id, api.PostChanges{PublishedAt: &now})
}

// Unpublish clears the post's publication timestamp.
func (p *PostStore) Unpublish(ctx context.Context, id int64) (*models.Post, models.Result) {
	return p.mutate(ctx, id, api.PostChanges{ClearPublished: true})
}

func (p *PostStore) mutate(ctx context.Context, id int64, changes api.PostChanges) (*models.Post, models.Result) {
	post, err := p.data.UpdatePost(ctx, id, changes)
	if err != nil {
		p.log.Error(ctx, "failed to update post", "id", id, "err", err)
		return nil, models.Fail(err)
	}
	p.patch(post)
	return post, models.OK()
}

// patch replaces the matching row, by id, in whichever collections currently
// hold it. The embedded author row is kept when the update response omits
// the join.
func (p *PostStore) patch(post *models.Post) {
	p.mu.Lock()
	defer p.mu.Unlock()
	patchSlice(p.published, post)
	patchSlice(p.owned, post)
}

func patchSlice(posts []models.Post, post *models.Post) {
	for i := range posts {
		if posts[i].ID != post.ID {
			continue
		}
		author := posts[i].Author
		posts[i] = *post
		if posts[i].Author == nil {
			posts[i].Author = author
		}
	}
}

// Delete removes the post remotely, then drops the id from both collections
// unconditionally.
func (p *PostStore) Delete(ctx context.Context, id int64) models.Result {
	if err := p.data.DeletePost(ctx, id); err != nil {
		p.log.Error(ctx, "failed to delete post", "id", id, "err", err)
		return models.Fail(err)
	}

	p.mu.Lock()
	p.published = dropID(p.published, id)
	p.owned = dropID(p.owned, id)
	p.mu.Unlock()

	return models.OK()
}

func dropID(posts []models.Post, id int64) []models.Post {
	out := posts[:0]
	for i := range posts {
		if posts[i].ID != id {
			out = append(out, posts[i])
		}
	}
	return out
}

// ResetLoadingState clears the loading flag and forgets any latched fetch
// keys without touching data. Recovery for a guard stuck after an unhandled
// failure.
func (p *PostStore) ResetLoadingState() {
	p.group.Forget(keyPublished)
	p.group.Forget(keyOwned)

	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()
}

// ForceResetAll clears both collections, the filter and all guards. Invoked
// by the session synchronizer when the session ends.
func (p *PostStore) ForceResetAll() {
	p.group.Forget(keyPublished)
	p.group.Forget(keyOwned)

	p.mu.Lock()
	p.published = nil
	p.owned = nil
	p.filter = models.FilterAll
	p.loading = false
	p.mu.Unlock()
}

func (p *PostStore) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}
