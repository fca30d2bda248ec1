package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"daylist/internal/model"
)

const taskColumns = "id, list_id, user_id, title, completed, important, due_date, created_at, updated_at"

// TaskDraft carries the caller-supplied fields for a new task.
//
// ID is an optional client-generated idempotency key: a duplicate submission
// with the same ID returns the already-stored row instead of inserting a
// second task. When empty, the store assigns a fresh id.
type TaskDraft struct {
	ID        string
	Title     string
	ListID    *string
	DueDate   *time.Time
	Important bool
	Completed bool
}

// TaskPatch is a partial update for a task. Nil fields are left unchanged;
// the Clear flags null out the corresponding optional column.
type TaskPatch struct {
	Title        *string
	Completed    *bool
	Important    *bool
	DueDate      *time.Time
	ClearDueDate bool
	ListID       *string
	ClearListID  bool
}

// ListTasks returns the scope's tasks ordered by creation ascending. When
// listID is non-nil, only tasks of that list are returned; otherwise all of
// the account's tasks.
func (s *Store) ListTasks(ctx context.Context, scope Scope, listID *string) ([]model.Task, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []interface{}{scope.UserID}
	if listID != nil {
		query += ` AND list_id = ?`
		args = append(args, *listID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "list tasks", Err: err}
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, &StoreError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

// ListImportantTasks returns the scope's important tasks ordered by creation
// ascending.
func (s *Store) ListImportantTasks(ctx context.Context, scope Scope) ([]model.Task, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = ? AND important = 1
		ORDER BY created_at ASC, id ASC`
	rows, err := s.conn.QueryContext(ctx, query, scope.UserID)
	if err != nil {
		return nil, &StoreError{Op: "list important tasks", Err: err}
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, &StoreError{Op: "list important tasks", Err: err}
	}
	return tasks, nil
}

// CreateTask validates the draft, defaults the optional fields, inserts one
// task, and returns the authoritative stored record.
func (s *Store) CreateTask(ctx context.Context, scope Scope, draft TaskDraft) (*model.Task, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if draft.ListID != nil && *draft.ListID == "" {
		return nil, &ValidationError{Field: "list_id", Reason: "must be null or non-empty"}
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// Cross-user task/list association is forbidden: the named list must be
	// visible under the caller's scope.
	if draft.ListID != nil {
		if _, err := s.getList(ctx, scope, *draft.ListID); err != nil {
			return nil, err
		}
	}

	id := draft.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := now()

	query := `
	INSERT INTO tasks (id, list_id, user_id, title, completed, important, due_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
	`
	var listID sql.NullString
	if draft.ListID != nil {
		listID = sql.NullString{String: *draft.ListID, Valid: true}
	}
	_, err := s.conn.ExecContext(ctx, query,
		id,
		listID,
		scope.UserID,
		draft.Title,
		boolToInt(draft.Completed),
		boolToInt(draft.Important),
		timeToNullString(draft.DueDate),
		created.Format(timeFormat),
		created.Format(timeFormat),
	)
	if err != nil {
		return nil, &StoreError{Op: "create task", Err: err}
	}

	// Read back rather than trusting the draft: on an idempotent replay the
	// stored row is the one that counts.
	return s.getTask(ctx, scope, id)
}

// UpdateTask applies a partial-field update (e.g. toggling completed or
// important independently) and returns the new full record.
func (s *Store) UpdateTask(ctx context.Context, scope Scope, id string, patch TaskPatch) (*model.Task, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if patch.ListID != nil && *patch.ListID == "" {
		return nil, &ValidationError{Field: "list_id", Reason: "must be null or non-empty"}
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if patch.ListID != nil && !patch.ClearListID {
		if _, err := s.getList(ctx, scope, *patch.ListID); err != nil {
			return nil, err
		}
	}

	var (
		sets []string
		args []interface{}
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*patch.Completed))
	}
	if patch.Important != nil {
		sets = append(sets, "important = ?")
		args = append(args, boolToInt(*patch.Important))
	}
	switch {
	case patch.ClearDueDate:
		sets = append(sets, "due_date = NULL")
	case patch.DueDate != nil:
		sets = append(sets, "due_date = ?")
		args = append(args, patch.DueDate.UTC().Format(timeFormat))
	}
	switch {
	case patch.ClearListID:
		sets = append(sets, "list_id = NULL")
	case patch.ListID != nil:
		sets = append(sets, "list_id = ?")
		args = append(args, *patch.ListID)
	}
	if len(sets) == 0 {
		return s.getTask(ctx, scope, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, now().Format(timeFormat), id, scope.UserID)

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND user_id = ?`
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "update task", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &StoreError{Op: "update task", Err: err}
	}
	if affected == 0 {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}

	return s.getTask(ctx, scope, id)
}

// DeleteTask removes a single task. No cascading side effects.
func (s *Store) DeleteTask(ctx context.Context, scope Scope, id string) error {
	if !scope.Valid() {
		return &ValidationError{Field: "user_id", Reason: "scope is required"}
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, scope.UserID)
	if err != nil {
		return &StoreError{Op: "delete task", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "delete task", Err: err}
	}
	if affected == 0 {
		return &NotFoundError{Kind: "task", ID: id}
	}
	return nil
}

// getTask fetches a single owned task by id.
func (s *Store) getTask(ctx context.Context, scope Scope, id string) (*model.Task, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id, scope.UserID,
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}
	if err != nil {
		return nil, &StoreError{Op: "get task", Err: err}
	}
	return task, nil
}
