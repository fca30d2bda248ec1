package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"daylist/internal/model"
)

// GetUserByClerkID looks up the provisioning row for an external identity.
//
// A missing row is the expected outcome for a first sign-in, not a failure:
// it is reported as (nil, nil) so callers can tell it apart from a real
// query error.
func (s *Store) GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	if clerkID == "" {
		return nil, &ValidationError{Field: "clerk_id", Reason: "must not be empty"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.conn.QueryRowContext(ctx,
		`SELECT id, clerk_id, email, created_at FROM users WHERE clerk_id = ?`,
		clerkID,
	)

	var (
		u         model.User
		createdAt string
	)
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get user", Err: err}
	}
	u.CreatedAt, _ = parseStoredTime(createdAt)
	return &u, nil
}

// CreateUser inserts a provisioning row for an external identity.
//
// The unique index on clerk_id is the enforcement point against concurrent
// duplicate provisioning: a row that already exists leaves the insert a
// no-op rather than an error, and the existing row is never overwritten.
func (s *Store) CreateUser(ctx context.Context, clerkID, email string) error {
	if clerkID == "" {
		return &ValidationError{Field: "clerk_id", Reason: "must not be empty"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
	INSERT INTO users (id, clerk_id, email, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(clerk_id) DO NOTHING
	`
	_, err := s.conn.ExecContext(ctx, query,
		uuid.NewString(),
		clerkID,
		email,
		now().Format(timeFormat),
	)
	if err != nil {
		return &StoreError{Op: "create user", Err: err}
	}
	return nil
}
