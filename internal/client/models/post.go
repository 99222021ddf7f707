package models

import (
	"time"

	"github.com/google/uuid"
)

// PostAuthor is the denormalized author row embedded into a post by the
// remote data service's single-row join (posts.user_id -> users.username).
type PostAuthor struct {
	Username string `json:"username"`
}

// Post is a blog post row. The canonical copy lives in the remote data
// service; local copies exist only inside the post collections.
// A non-nil PublishedAt means the post is published.
type Post struct {
	ID          int64       `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	PublishedAt *time.Time  `json:"published_at"`
	Author      *PostAuthor `json:"users,omitempty"`
}

// Published reports whether the post carries a published timestamp.
func (p *Post) Published() bool {
	return p.PublishedAt != nil
}

// AuthorName returns the denormalized author username, or an empty string
// when the join was not requested or the author row is gone.
func (p *Post) AuthorName() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Username
}
