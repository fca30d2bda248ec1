// Package account ensures a locally-authenticated identity has a
// corresponding row in the store's user table.
package account

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/avast/retry-go/v4"

	"daylist/internal/model"
	"daylist/internal/store"
)

// userStore is the slice of the store the provisioner needs.
type userStore interface {
	GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	CreateUser(ctx context.Context, clerkID, email string) error
}

// Provisioner performs the idempotent upsert-like provisioning step on each
// session start.
type Provisioner struct {
	store  userStore
	logger *log.Logger
}

// New creates a Provisioner. If logger is nil, a default logger writing to
// stderr is used.
func New(s userStore, logger *log.Logger) *Provisioner {
	if logger == nil {
		logger = log.New(os.Stderr, "[account] ", log.LstdFlags)
	}
	return &Provisioner{store: s, logger: logger}
}

// Ensure guarantees a user row exists for externalID.
//
// Algorithm: look up the row; an absent row is the expected non-error branch
// and triggers an insert of {externalID, email}. An existing row is left
// untouched, email included. The lookup is idempotent, so transient failures
// are retried a bounded number of times with backoff; the insert relies on
// the clerk_id unique index to stay race-safe against concurrent duplicate
// invocations.
//
// Returns true on success. Failure is reported but non-fatal to the session:
// the caller may still attempt task operations, which will fail on their own
// if the account truly is not authorized.
func (p *Provisioner) Ensure(ctx context.Context, externalID, email string) bool {
	if externalID == "" {
		p.logger.Printf("Skipping provisioning: no external identity")
		return false
	}

	user, err := retry.DoWithData(
		func() (*model.User, error) {
			return p.store.GetUserByClerkID(ctx, externalID)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// Malformed input will not get better on retry.
			return !store.IsValidation(err)
		}),
	)
	if err != nil {
		p.logger.Printf("Provisioning lookup failed for %s: %v", externalID, err)
		return false
	}

	if user != nil {
		return true
	}

	if err := p.store.CreateUser(ctx, externalID, email); err != nil {
		p.logger.Printf("Provisioning insert failed for %s: %v", externalID, err)
		return false
	}

	p.logger.Printf("Provisioned user %s", externalID)
	return true
}
