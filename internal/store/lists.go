package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"daylist/internal/model"
)

const listColumns = "id, user_id, title, background_type, background_value, created_at, updated_at"

// ListDraft carries the caller-supplied fields for a new list. The store
// assigns id and timestamps.
type ListDraft struct {
	Title           string
	BackgroundType  model.BackgroundType
	BackgroundValue string
}

// ListPatch is a partial update for a list. Nil fields are left unchanged.
type ListPatch struct {
	Title           *string
	BackgroundType  *model.BackgroundType
	BackgroundValue *string
}

// ListLists returns the scope's lists ordered by creation ascending.
func (s *Store) ListLists(ctx context.Context, scope Scope) ([]model.List, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `SELECT ` + listColumns + ` FROM lists WHERE user_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := s.conn.QueryContext(ctx, query, scope.UserID)
	if err != nil {
		return nil, &StoreError{Op: "list lists", Err: err}
	}
	defer rows.Close()

	lists, err := scanLists(rows)
	if err != nil {
		return nil, &StoreError{Op: "list lists", Err: err}
	}
	return lists, nil
}

// CreateList inserts one list and returns the authoritative stored record
// with its assigned id and timestamps.
func (s *Store) CreateList(ctx context.Context, scope Scope, draft ListDraft) (*model.List, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if draft.BackgroundType == "" {
		draft.BackgroundType = model.BackgroundColor
	}
	if !draft.BackgroundType.Valid() {
		return nil, &ValidationError{Field: "background_type", Reason: "must be color, photo, or custom"}
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	list := &model.List{
		ID:              uuid.NewString(),
		UserID:          scope.UserID,
		Title:           draft.Title,
		BackgroundType:  draft.BackgroundType,
		BackgroundValue: draft.BackgroundValue,
		CreatedAt:       now(),
	}
	list.UpdatedAt = list.CreatedAt

	query := `
	INSERT INTO lists (id, user_id, title, background_type, background_value, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.conn.ExecContext(ctx, query,
		list.ID,
		list.UserID,
		list.Title,
		string(list.BackgroundType),
		list.BackgroundValue,
		list.CreatedAt.Format(timeFormat),
		list.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return nil, &StoreError{Op: "create list", Err: err}
	}

	return s.getList(ctx, scope, list.ID)
}

// UpdateList applies a partial update to a single list and returns the new
// full record. A list that does not exist or belongs to another account
// yields a NotFoundError either way.
func (s *Store) UpdateList(ctx context.Context, scope Scope, id string, patch ListPatch) (*model.List, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if patch.BackgroundType != nil && !patch.BackgroundType.Valid() {
		return nil, &ValidationError{Field: "background_type", Reason: "must be color, photo, or custom"}
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var (
		sets []string
		args []interface{}
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.BackgroundType != nil {
		sets = append(sets, "background_type = ?")
		args = append(args, string(*patch.BackgroundType))
	}
	if patch.BackgroundValue != nil {
		sets = append(sets, "background_value = ?")
		args = append(args, *patch.BackgroundValue)
	}
	if len(sets) == 0 {
		return s.getList(ctx, scope, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, now().Format(timeFormat), id, scope.UserID)

	query := `UPDATE lists SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND user_id = ?`
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "update list", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &StoreError{Op: "update list", Err: err}
	}
	if affected == 0 {
		return nil, &NotFoundError{Kind: "list", ID: id}
	}

	return s.getList(ctx, scope, id)
}

// DeleteList removes a single list. Tasks pointing at it have their list_id
// resolved to null in the same transaction, so they are never left dangling.
func (s *Store) DeleteList(ctx context.Context, scope Scope, id string) error {
	if !scope.Valid() {
		return &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "delete list", Err: err}
	}
	defer tx.Rollback()

	// The FK is ON DELETE SET NULL, but the orphaned tasks still need their
	// updated_at refreshed, and the null-out must hold even against a store
	// that was created before foreign keys were enabled.
	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET list_id = NULL, updated_at = ? WHERE list_id = ? AND user_id = ?`,
		now().Format(timeFormat), id, scope.UserID,
	)
	if err != nil {
		return &StoreError{Op: "delete list", Err: err}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ? AND user_id = ?`, id, scope.UserID)
	if err != nil {
		return &StoreError{Op: "delete list", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "delete list", Err: err}
	}
	if affected == 0 {
		return &NotFoundError{Kind: "list", ID: id}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "delete list", Err: err}
	}
	return nil
}

// getList fetches a single owned list by id.
func (s *Store) getList(ctx context.Context, scope Scope, id string) (*model.List, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = ? AND user_id = ?`,
		id, scope.UserID,
	)
	list, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "list", ID: id}
	}
	if err != nil {
		return nil, &StoreError{Op: "get list", Err: err}
	}
	return list, nil
}
