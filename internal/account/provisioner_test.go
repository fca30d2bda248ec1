package account

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"daylist/internal/model"
	"daylist/internal/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return s
}

// TestEnsure_CreatesRow tests first-time provisioning.
func TestEnsure_CreatesRow(t *testing.T) {
	s := newTestStore(t)
	p := New(s, testLogger())

	if ok := p.Ensure(context.Background(), "clerk_new", "new@example.com"); !ok {
		t.Fatal("Ensure() = false, want true")
	}

	user, err := s.GetUserByClerkID(context.Background(), "clerk_new")
	if err != nil {
		t.Fatalf("GetUserByClerkID() failed: %v", err)
	}
	if user == nil {
		t.Fatal("user row not created")
	}
	if user.Email != "new@example.com" {
		t.Errorf("Email = %q, want 'new@example.com'", user.Email)
	}
}

// TestEnsure_Idempotent tests that invoking twice leaves exactly one row and
// never overwrites the first.
func TestEnsure_Idempotent(t *testing.T) {
	s := newTestStore(t)
	p := New(s, testLogger())
	ctx := context.Background()

	if ok := p.Ensure(ctx, "clerk_dup", "original@example.com"); !ok {
		t.Fatal("first Ensure() = false, want true")
	}
	if ok := p.Ensure(ctx, "clerk_dup", "changed@example.com"); !ok {
		t.Fatal("second Ensure() = false, want true")
	}

	var count int
	if err := s.RawDB().QueryRow(`SELECT COUNT(*) FROM users WHERE clerk_id = ?`, "clerk_dup").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d rows, want exactly 1", count)
	}

	user, err := s.GetUserByClerkID(ctx, "clerk_dup")
	if err != nil {
		t.Fatalf("GetUserByClerkID() failed: %v", err)
	}
	if user.Email != "original@example.com" {
		t.Errorf("Email = %q, want the original preserved", user.Email)
	}
}

// TestEnsure_EmptyIdentity tests that a missing identity is reported, not
// provisioned.
func TestEnsure_EmptyIdentity(t *testing.T) {
	p := New(newTestStore(t), testLogger())
	if ok := p.Ensure(context.Background(), "", "x@example.com"); ok {
		t.Error("Ensure() = true for empty identity, want false")
	}
}

// failingStore simulates a store whose lookup keeps failing, to verify real
// failures are surfaced (as false) rather than treated like the no-rows case.
type failingStore struct {
	lookups int
}

func (f *failingStore) GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	f.lookups++
	return nil, &store.StoreError{Op: "get user", Err: errors.New("connection reset")}
}

func (f *failingStore) CreateUser(ctx context.Context, clerkID, email string) error {
	return errors.New("should not be reached")
}

// TestEnsure_LookupFailure tests that a real query failure is retried a
// bounded number of times and then surfaced as failure.
func TestEnsure_LookupFailure(t *testing.T) {
	fs := &failingStore{}
	p := New(fs, testLogger())

	if ok := p.Ensure(context.Background(), "clerk_x", "x@example.com"); ok {
		t.Error("Ensure() = true on persistent lookup failure, want false")
	}
	if fs.lookups != 3 {
		t.Errorf("lookups = %d, want 3 bounded attempts", fs.lookups)
	}
}

// recoveringStore fails once then succeeds, to verify the bounded retry.
type recoveringStore struct {
	inner   userStore
	lookups int
}

func (r *recoveringStore) GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, &store.StoreError{Op: "get user", Err: errors.New("transient")}
	}
	return r.inner.GetUserByClerkID(ctx, clerkID)
}

func (r *recoveringStore) CreateUser(ctx context.Context, clerkID, email string) error {
	return r.inner.CreateUser(ctx, clerkID, email)
}

// TestEnsure_RetriesTransientLookup tests recovery from a transient failure.
func TestEnsure_RetriesTransientLookup(t *testing.T) {
	rs := &recoveringStore{inner: newTestStore(t)}
	p := New(rs, testLogger())

	if ok := p.Ensure(context.Background(), "clerk_flaky", "f@example.com"); !ok {
		t.Fatal("Ensure() = false after transient failure, want true")
	}
	if rs.lookups != 2 {
		t.Errorf("lookups = %d, want 2", rs.lookups)
	}
}
