package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"daylist/internal/auth"
	"daylist/internal/config"
	"daylist/internal/logging"
	"daylist/internal/store"
	"daylist/internal/view"
)

var rootCmd = &cobra.Command{
	Use:   "daylist",
	Short: "Personal task lists with remote sync",
	Long: `daylist keeps your tasks and lists in a local database that can
sync against a remote libSQL primary.

Sign in once with 'daylist login', then capture and work tasks:

  daylist add "Buy milk" --due tomorrow
  daylist day
  daylist done <task-id>`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Task Commands:"},
		&cobra.Group{ID: "lists", Title: "List Commands:"},
		&cobra.Group{ID: "account", Title: "Account Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
	)
}

// app bundles the pieces every command needs: config, logger, the open
// store, and the persisted session.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *store.Store
	session auth.Session
	auth    *auth.Manager
}

// newApp loads config and session and opens the store. Any failure is fatal;
// commands assume a working app.
func newApp() *app {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("daylist", cfg.LogFile)

	s, err := store.Open(store.Options{
		Path:         cfg.DBPath,
		PrimaryURL:   cfg.PrimaryURL,
		AuthToken:    cfg.AuthToken,
		SyncInterval: cfg.SyncInterval,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	if err := s.InitSchema(context.Background()); err != nil {
		s.Close()
		fmt.Fprintf(os.Stderr, "Error initializing schema: %v\n", err)
		os.Exit(1)
	}

	mgr := auth.NewManager(config.Dir())
	session, err := mgr.Load()
	if err != nil {
		s.Close()
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		session: session,
		auth:    mgr,
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Printf("Error closing store: %v", err)
	}
}

// scope returns the signed-in identity for store operations.
func (a *app) scope() store.Scope {
	return store.Scope{UserID: a.session.ExternalID}
}

// mustSignIn exits with a hint when no session exists.
func (a *app) mustSignIn() {
	if !a.session.SignedIn {
		fmt.Fprintf(os.Stderr, "Error: not signed in\n")
		fmt.Fprintf(os.Stderr, "Run 'daylist login' first\n")
		os.Exit(1)
	}
}

// collection builds a loaded task collection over fetch. The returned
// collection is ready for mutations.
func (a *app) collection(ctx context.Context, fetch view.FetchFunc) *view.Collection {
	c := view.New(view.Config{
		Gateway:  a.store,
		Fetch:    fetch,
		Scope:    a.scope(),
		SignedIn: a.session.SignedIn,
		Logger:   a.logger,
	})
	c.Load(ctx)
	return c
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
