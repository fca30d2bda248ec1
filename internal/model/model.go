// Package model defines the daylist entity records: lists, tasks, and the
// provisioning row that maps an external identity to a store account.
//
// These are pure data shapes. Validation happens at the boundary (construction
// and deserialization), not at use: an entity that made it past Validate is
// assumed well-formed everywhere else.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// BackgroundType is the closed enumeration of list background kinds.
type BackgroundType string

const (
	// BackgroundColor means BackgroundValue holds a color code (e.g. "#4F6BED").
	BackgroundColor BackgroundType = "color"
	// BackgroundPhoto means BackgroundValue holds an image reference.
	BackgroundPhoto BackgroundType = "photo"
	// BackgroundCustom means BackgroundValue holds a custom payload identifier.
	BackgroundCustom BackgroundType = "custom"
)

// Valid reports whether bt is one of the known background types.
func (bt BackgroundType) Valid() bool {
	switch bt {
	case BackgroundColor, BackgroundPhoto, BackgroundCustom:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown background types at deserialization time.
func (bt *BackgroundType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := BackgroundType(s)
	if !v.Valid() {
		return fmt.Errorf("invalid background_type %q", s)
	}
	*bt = v
	return nil
}

// List is a named, user-owned collection that tasks may optionally belong to.
type List struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Title           string         `json:"title"`
	BackgroundType  BackgroundType `json:"background_type"`
	BackgroundValue string         `json:"background_value"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Validate checks the List field contracts.
func (l *List) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("id is required")
	}
	if l.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if l.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !l.BackgroundType.Valid() {
		return fmt.Errorf("invalid background_type %q", l.BackgroundType)
	}
	if l.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	if l.UpdatedAt.Before(l.CreatedAt) {
		return fmt.Errorf("updated_at precedes created_at")
	}
	return nil
}

// Task is a user-owned unit of work, optionally in a List, with completion
// and importance flags. A nil ListID means the task belongs only to the
// implicit "My Day" context.
type Task struct {
	ID        string     `json:"id"`
	ListID    *string    `json:"list_id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Important bool       `json:"important"`
	DueDate   *time.Time `json:"due_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks the Task field contracts.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if t.ListID != nil && *t.ListID == "" {
		return fmt.Errorf("list_id must be null or non-empty")
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return fmt.Errorf("updated_at precedes created_at")
	}
	return nil
}

// SetDefaults applies default values for optional fields on a new task.
func (t *Task) SetDefaults() {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
}

// Touch refreshes UpdatedAt. Called on every mutation.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// User maps an externally-authenticated identity to a store account row.
// At most one row exists per external identity; creation is idempotent.
type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"clerk_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult is a task decorated with its parent list's title.
// ListTitle is nil when the task has no list.
type SearchResult struct {
	Task
	ListTitle *string `json:"list_title"`
}
