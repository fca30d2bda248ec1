package store

import (
	"database/sql"
	"fmt"
	"time"

	"daylist/internal/model"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanList(r rowScanner) (*model.List, error) {
	var (
		l          model.List
		background string
		createdAt  string
		updatedAt  string
	)
	err := r.Scan(
		&l.ID,
		&l.UserID,
		&l.Title,
		&background,
		&l.BackgroundValue,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.BackgroundType = model.BackgroundType(background)
	if !l.BackgroundType.Valid() {
		return nil, fmt.Errorf("stored list %s has invalid background_type %q", l.ID, background)
	}
	if l.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if l.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &l, nil
}

func scanLists(rows *sql.Rows) ([]model.List, error) {
	var lists []model.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}
	return lists, nil
}

func scanTask(r rowScanner) (*model.Task, error) {
	var (
		t         model.Task
		listID    sql.NullString
		completed int
		important int
		dueDate   sql.NullString
		createdAt string
		updatedAt string
	)
	err := r.Scan(
		&t.ID,
		&listID,
		&t.UserID,
		&t.Title,
		&completed,
		&important,
		&dueDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if listID.Valid {
		t.ListID = &listID.String
	}
	t.Completed = completed != 0
	t.Important = important != 0
	t.DueDate = nullStringToTime(dueDate)
	if t.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// parseStoredTime parses a timestamp in the store's fixed-width layout.
func parseStoredTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

// timeToNullString converts a time pointer to a nullable string for SQL.
func timeToNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeFormat), Valid: true}
}

// nullStringToTime converts a nullable SQL string to a time pointer.
func nullStringToTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(timeFormat, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
