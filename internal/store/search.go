package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"daylist/internal/model"
)

// SearchTasks performs a case-insensitive substring match on task titles
// within the caller's scope. Each result is enriched with its parent list's
// title (absent when the task has no list). Results are ordered by creation
// descending: recency matters more than chronology for search relevance,
// which is intentionally the reverse of the listing operations.
func (s *Store) SearchTasks(ctx context.Context, scope Scope, query string) ([]model.SearchResult, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// SQLite LIKE is case-insensitive for ASCII, matching the original
	// store's ILIKE semantics.
	pattern := "%" + escapeLike(query) + "%"

	q := `
	SELECT t.id, t.list_id, t.user_id, t.title, t.completed, t.important,
	       t.due_date, t.created_at, t.updated_at, l.title
	FROM tasks t
	LEFT JOIN lists l ON l.id = t.list_id
	WHERE t.user_id = ? AND t.title LIKE ? ESCAPE '\'
	ORDER BY t.created_at DESC, t.id DESC
	`

	rows, err := s.conn.QueryContext(ctx, q, scope.UserID, pattern)
	if err != nil {
		return nil, &StoreError{Op: "search tasks", Err: err}
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var (
			r         model.SearchResult
			listID    sql.NullString
			completed int
			important int
			dueDate   sql.NullString
			createdAt string
			updatedAt string
			listTitle sql.NullString
		)
		err := rows.Scan(
			&r.ID,
			&listID,
			&r.UserID,
			&r.Title,
			&completed,
			&important,
			&dueDate,
			&createdAt,
			&updatedAt,
			&listTitle,
		)
		if err != nil {
			return nil, &StoreError{Op: "search tasks", Err: fmt.Errorf("failed to scan result: %w", err)}
		}
		if listID.Valid {
			r.ListID = &listID.String
		}
		r.Completed = completed != 0
		r.Important = important != 0
		r.DueDate = nullStringToTime(dueDate)
		if r.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, &StoreError{Op: "search tasks", Err: fmt.Errorf("failed to parse created_at: %w", err)}
		}
		if r.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
			return nil, &StoreError{Op: "search tasks", Err: fmt.Errorf("failed to parse updated_at: %w", err)}
		}
		if listTitle.Valid {
			r.ListTitle = &listTitle.String
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "search tasks", Err: err}
	}
	return results, nil
}

// escapeLike escapes the LIKE metacharacters in a user-supplied query so it
// matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
