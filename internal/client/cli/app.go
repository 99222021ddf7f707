package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dsmatveev/plaza/internal/client/api"
	"github.com/dsmatveev/plaza/internal/client/config"
	"github.com/dsmatveev/plaza/internal/client/repositories/localstate"
	"github.com/dsmatveev/plaza/internal/client/store"
	"github.com/dsmatveev/plaza/internal/logging"

	_ "modernc.org/sqlite"
)

// App holds the wired-up client: config, local state, API client and the
// two synchronizers. The REPL dispatches into its methods.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	state   localstate.Repository
	session *store.SessionStore
	posts   *store.PostStore
	reader  *bufio.Reader
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	db, err := localstate.Open(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing local state db: %w", err)
	}
	state := localstate.NewSQLiteRepository(db)

	client := api.NewRESTClient(cfg.BackendURL, cfg.AnonKey, cfg.RequestTimeout, logger)

	bus := store.NewBus()
	sessionStore := store.NewSessionStore(client, client, state, bus, logger)
	postStore := store.NewPostStore(client, bus, logger)
	sessionStore.SetupListener()

	return &App{
		config:  cfg,
		log:     logger,
		db:      db,
		state:   state,
		session: sessionStore,
		posts:   postStore,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores any persisted session, initializes auth state, and blocks in
// the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	a.session.RestoreSession(ctx)
	a.session.Initialize(ctx)

	printlnFn("Welcome to plaza (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	s := a.session.Username()
	if f := a.posts.Filter(); f != "all" {
		if s != "" {
			s += " "
		}
		s += string(f)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
