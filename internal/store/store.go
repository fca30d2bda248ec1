// Package store is the typed access layer between daylist and its relational
// store. It issues create/read/update/delete and filtered-query operations
// against the lists, tasks, and users tables and translates driver failures
// into a uniform error taxonomy (ValidationError, StoreError, NotFoundError).
//
// The store runs in one of two modes:
//   - Embedded: a local SQLite file opened through ncruces/go-sqlite3 with
//     WAL for concurrent reads.
//   - Replica: a libSQL embedded replica synced against a remote primary
//     (tursodatabase/go-libsql) when a primary URL is configured.
//
// Every operation takes an explicit Scope carrying the externally-asserted
// user identity. The store never reads ambient session state, so it is fully
// testable without a live sign-in. All queries and writes are constrained to
// the scope's rows; a row owned by another account is indistinguishable from
// a row that does not exist.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tursodatabase/go-libsql"
)

// timeFormat is a fixed-width RFC 3339 layout. Fixed width keeps stored
// timestamps lexicographically ordered, which the created_at sort relies on.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultTimeout bounds each store operation when the caller's context
// carries no deadline. Expiry surfaces as a StoreError.
const DefaultTimeout = 5 * time.Second

// Scope carries the externally-asserted identity that every operation is
// constrained to. The store never issues credentials itself.
type Scope struct {
	UserID string
}

// Valid reports whether the scope carries an identity.
func (s Scope) Valid() bool {
	return s.UserID != ""
}

// Options configures Open.
type Options struct {
	// Path is the local database file.
	Path string

	// PrimaryURL, when set, opens the database as a libSQL embedded replica
	// synced against this remote primary. Empty means pure embedded mode.
	PrimaryURL string

	// AuthToken authenticates against the remote primary.
	AuthToken string

	// SyncInterval is how often the embedded replica syncs with the primary.
	// Zero means the go-libsql default.
	SyncInterval time.Duration

	// Timeout bounds each operation when the caller's context has no
	// deadline. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Store wraps the database connection with daylist's typed operations.
type Store struct {
	conn      *sql.DB
	path      string
	timeout   time.Duration
	connector *libsql.Connector // non-nil in replica mode
}

// Open creates a database connection at opts.Path.
//
// If the database does not exist it is created; call InitSchema before first
// use. The caller MUST call Close when done.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	// Ensure parent directory exists
	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	var (
		conn      *sql.DB
		connector *libsql.Connector
	)
	if opts.PrimaryURL != "" {
		var copts []libsql.Option
		if opts.AuthToken != "" {
			copts = append(copts, libsql.WithAuthToken(opts.AuthToken))
		}
		if opts.SyncInterval > 0 {
			copts = append(copts, libsql.WithSyncInterval(opts.SyncInterval))
		}
		c, err := libsql.NewEmbeddedReplicaConnector(opts.Path, opts.PrimaryURL, copts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create replica connector: %w", err)
		}
		connector = c
		conn = sql.OpenDB(c)
	} else {
		var err error
		conn, err = sql.Open("sqlite3", fmt.Sprintf("file:%s", opts.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		conn:      conn,
		path:      opts.Path,
		timeout:   opts.Timeout,
		connector: connector,
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := s.conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}

	return s, nil
}

// RawDB returns the underlying sql.DB connection.
func (s *Store) RawDB() *sql.DB {
	return s.conn
}

// Close closes the database connection. In embedded mode a WAL checkpoint is
// performed first so all changes are persisted.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if s.connector == nil {
		if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
		}
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil

	if s.connector != nil {
		if err := s.connector.Close(); err != nil {
			return fmt.Errorf("failed to close replica connector: %w", err)
		}
		s.connector = nil
	}
	return nil
}

// Sync forces an embedded-replica sync with the remote primary.
// It is a no-op in embedded mode.
func (s *Store) Sync() error {
	if s.connector == nil {
		return nil
	}
	if _, err := s.connector.Sync(); err != nil {
		return &StoreError{Op: "sync replica", Err: err}
	}
	return nil
}

// InitSchema creates the users, lists, and tasks tables along with their
// indexes. Idempotent - safe to call on every startup.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		clerk_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		background_type TEXT NOT NULL DEFAULT 'color'
			CHECK (background_type IN ('color', 'photo', 'custom')),
		background_value TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		list_id TEXT REFERENCES lists(id) ON DELETE SET NULL,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		important INTEGER NOT NULL DEFAULT 0,
		due_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lists_user ON lists(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_important ON tasks(user_id, important);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// opCtx applies the store's bounded timeout when the caller supplied no
// deadline of its own.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// now returns the current UTC time truncated to the stored precision, so a
// written timestamp round-trips exactly.
func now() time.Time {
	t := time.Now().UTC()
	parsed, err := time.Parse(timeFormat, t.Format(timeFormat))
	if err != nil {
		return t
	}
	return parsed
}
