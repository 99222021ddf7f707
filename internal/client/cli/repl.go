package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with
// a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Feed(ctx context.Context) error
	Mine(ctx context.Context) error
	NewPost(ctx context.Context) error
	EditPost(ctx context.Context, args []string) error
	Publish(ctx context.Context, args []string) error
	Unpublish(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	SetFilter(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Lang(ctx context.Context, args []string) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on a. The loop exits on scanner EOF or
// when the user types "exit" or "quit". Errors returned by handlers are
// ignored here; handlers report their own failures.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("plaza %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: feed, mine, new, edit <id>, publish <id>, unpublish <id>, delete <id>, filter <all|published|unpublished>, whoami, refresh, lang, logout, exit")
			} else {
				printlnFn("Available commands: feed, register, login, filter, lang, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "f", "feed":
			_ = a.Feed(ctx)

		case "m", "mine":
			_ = a.Mine(ctx)

		case "new":
			_ = a.NewPost(ctx)

		case "edit":
			_ = a.EditPost(ctx, args)

		case "publish":
			_ = a.Publish(ctx, args)

		case "unpublish":
			_ = a.Unpublish(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "filter":
			_ = a.SetFilter(ctx, args)

		case "refresh":
			_ = a.Refresh(ctx)

		case "lang":
			_ = a.Lang(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
