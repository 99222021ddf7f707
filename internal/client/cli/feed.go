package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dsmatveev/plaza/internal/client/models"
	"github.com/dsmatveev/plaza/internal/client/repositories/localstate"
)

// Feed refreshes and prints the public square: every published post, newest
// publication first, narrowed by the current filter.
func (a *App) Feed(ctx context.Context) error {
	a.posts.FetchPublished(ctx)
	printPosts(os.Stdout, a.posts.FilteredPublished())
	return nil
}

// Mine refreshes and prints the current user's posts, drafts included.
func (a *App) Mine(ctx context.Context) error {
	user := a.session.User()
	if user == nil {
		printlnFn("Please log in first.")
		return nil
	}

	a.posts.FetchOwned(ctx, user.ID)
	printPosts(os.Stdout, a.posts.FilteredOwned())
	return nil
}

func printPosts(w io.Writer, posts []models.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "(no posts)")
		return
	}
	for i := range posts {
		p := &posts[i]
		status := "draft"
		when := p.CreatedAt
		if p.Published() {
			status = "published"
			when = *p.PublishedAt
		}
		author := p.AuthorName()
		if author == "" {
			author = p.UserID.String()
		}
		fmt.Fprintf(w, "%6d  %-9s  %-16s  %s  %s\n",
			p.ID, status, author, when.Format("2006-01-02 15:04"), p.Title)
	}
}

// Lang shows or sets the persisted language preference.
func (a *App) Lang(ctx context.Context, args []string) error {
	if len(args) == 0 {
		current, err := a.state.Get(ctx, localstate.KeyLanguage)
		if err != nil {
			printlnFn("Failed to read language:", err.Error())
			return nil
		}
		if len(current) == 0 {
			current = []byte("en")
		}
		printlnFn("Language:", string(current))
		return nil
	}

	lang := args[0]
	if lang != "en" && lang != "zh" {
		printlnFn("Supported languages: en, zh")
		return nil
	}
	if err := a.state.Set(ctx, localstate.KeyLanguage, []byte(lang)); err != nil {
		printlnFn("Failed to save language:", err.Error())
		return nil
	}
	printlnFn("Language set to", lang)
	return nil
}
