package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore opens a fresh embedded database with schema under a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return s
}

func testScope() Scope {
	return Scope{UserID: "clerk_user_1"}
}

// TestOpen_Success tests database creation and initialization.
func TestOpen_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if s.path != path {
		t.Errorf("path = %q, want %q", s.path, path)
	}
	if s.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", s.timeout, DefaultTimeout)
	}
}

// TestOpen_MissingPath tests that an empty path is rejected.
func TestOpen_MissingPath(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatal("Open() with empty path succeeded, want error")
	}
}

// TestInitSchema_Idempotent tests that schema initialization is idempotent.
func TestInitSchema_Idempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.InitSchema(context.Background()); err != nil {
		t.Errorf("Second InitSchema() failed: %v", err)
	}

	tables := []string{"users", "lists", "tasks"}
	for _, table := range tables {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := s.conn.QueryRow(query, table).Scan(&count); err != nil {
			t.Fatalf("Failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Table %s does not exist", table)
		}
	}
}

// TestOpCtx_AppliesTimeout tests that operations get a bounded deadline when
// the caller supplies none.
func TestOpCtx_AppliesTimeout(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := s.opCtx(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("opCtx() returned context without deadline")
	}
	if remaining := time.Until(deadline); remaining > DefaultTimeout {
		t.Errorf("deadline %v from now, want <= %v", remaining, DefaultTimeout)
	}

	// A caller-supplied deadline is kept as-is.
	parent, parentCancel := context.WithTimeout(context.Background(), time.Minute)
	defer parentCancel()
	ctx2, cancel2 := s.opCtx(parent)
	defer cancel2()
	d2, _ := ctx2.Deadline()
	pd, _ := parent.Deadline()
	if !d2.Equal(pd) {
		t.Errorf("opCtx() replaced caller deadline %v with %v", pd, d2)
	}
}

// TestNow_RoundTrips tests that generated timestamps survive storage exactly.
func TestNow_RoundTrips(t *testing.T) {
	ts := now()
	parsed, err := parseStoredTime(ts.Format(timeFormat))
	if err != nil {
		t.Fatalf("parseStoredTime() failed: %v", err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("round-trip changed timestamp: %v != %v", parsed, ts)
	}
}

// TestSync_EmbeddedNoop tests that Sync is a no-op without a remote primary.
func TestSync_EmbeddedNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.Sync(); err != nil {
		t.Errorf("Sync() in embedded mode failed: %v", err)
	}
}
