package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dsmatveev/plaza/internal/client/models"
)

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("post id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q", args[0])
	}
	return id, nil
}

func (a *App) NewPost(ctx context.Context) error {
	user := a.session.User()
	if user == nil {
		printlnFn("Please log in first.")
		return nil
	}

	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter content", os.Stdout)
	if err != nil {
		return err
	}
	if title == "" || content == "" {
		printlnFn("Title and content must not be empty.")
		return nil
	}

	res := a.posts.Create(ctx, title, content, user.ID)
	if !res.Success {
		printlnFn("Failed to create post:", res.Error)
		return nil
	}
	printlnFn("Post created.")
	return nil
}

func (a *App) EditPost(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		printlnFn("Usage: edit <id>")
		return nil
	}

	title, err := GetSimpleText(a.reader, "New title (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "New content (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}

	var titlePtr, contentPtr *string
	if title != "" {
		titlePtr = &title
	}
	if content != "" {
		contentPtr = &content
	}
	if titlePtr == nil && contentPtr == nil {
		printlnFn("Nothing to change.")
		return nil
	}

	post, res := a.posts.Update(ctx, id, titlePtr, contentPtr)
	if !res.Success {
		printlnFn("Failed to update post:", res.Error)
		return nil
	}
	printlnFn("Updated:", post.Title)
	return nil
}

func (a *App) Publish(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		printlnFn("Usage: publish <id>")
		return nil
	}

	post, res := a.posts.Publish(ctx, id)
	if !res.Success {
		printlnFn("Failed to publish:", res.Error)
		return nil
	}
	printlnFn("Published:", post.Title)
	return nil
}

func (a *App) Unpublish(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		printlnFn("Usage: unpublish <id>")
		return nil
	}

	post, res := a.posts.Unpublish(ctx, id)
	if !res.Success {
		printlnFn("Failed to unpublish:", res.Error)
		return nil
	}
	printlnFn("Unpublished:", post.Title)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		printlnFn("Usage: delete <id>")
		return nil
	}

	res := a.posts.Delete(ctx, id)
	if !res.Success {
		printlnFn("Failed to delete:", res.Error)
		return nil
	}
	printlnFn("Deleted.")
	return nil
}

func (a *App) SetFilter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Current filter:", string(a.posts.Filter()))
		return nil
	}

	f, err := models.ParseFilter(args[0])
	if err != nil {
		printlnFn(err.Error())
		return nil
	}
	a.posts.SetFilter(f)
	printlnFn("Filter set to", args[0])
	return nil
}
