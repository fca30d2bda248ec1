// Package search implements the free-text task search across all of a
// user's tasks, joined with parent list titles.
package search

import (
	"context"
	"strings"

	"daylist/internal/model"
	"daylist/internal/store"
)

// taskSearcher is the slice of the store the service queries.
type taskSearcher interface {
	SearchTasks(ctx context.Context, scope store.Scope, query string) ([]model.SearchResult, error)
}

// Service is a stateless request/response search over the store.
type Service struct {
	store taskSearcher
}

// New creates a search Service.
func New(s taskSearcher) *Service {
	return &Service{store: s}
}

// Search returns the scope's tasks whose title contains the trimmed query,
// case-insensitively, recency first, each decorated with its parent list's
// title. An empty or whitespace-only query never issues a remote call and
// returns no results.
func (s *Service) Search(ctx context.Context, scope store.Scope, query string) ([]model.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	return s.store.SearchTasks(ctx, scope, q)
}
