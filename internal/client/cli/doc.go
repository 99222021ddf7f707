// Package cli provides the interactive plaza command-line client.
//
// It wires configuration, local state storage, the backend API client and
// the two synchronizers (session and posts) into a REPL. Typical flow:
// restore a persisted session, then execute user commands against the feed
// of published posts and the user's own posts.
//
// Key commands:
//   - register / login / logout / whoami
//   - feed — browse published posts
//   - mine — list your own posts
//   - new / edit / publish / unpublish / delete
//   - filter — narrow both listings to all, published or unpublished
//   - refresh — recover from a suspected desync
//   - lang — language preference
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
