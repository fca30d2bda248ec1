// Package view implements the synchronized-collection controller shared by
// every task-bearing view (my-day, per-list, important, search).
//
// The original client repeated near-identical fetch/create/toggle logic per
// view; here it lives once, parameterized by a fetch function and a scope.
// Views are thin consumers of Load/Create/Toggle/Reload over a local
// snapshot of the remote collection.
package view

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"

	"daylist/internal/model"
	"daylist/internal/store"
)

// State is the view's position in its load/mutate lifecycle.
type State int

const (
	// StateLoading means the initial fetch has not completed.
	StateLoading State = iota
	// StateSignedOut means no authenticated session exists; no data is
	// fetched and writes are rejected locally.
	StateSignedOut
	// StateReady means the collection reflects the last completed fetch
	// plus any confirmed local mutations.
	StateReady
	// StateMutating means at least one write is in flight on top of a
	// ready collection.
	StateMutating
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSignedOut:
		return "signedOut"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	default:
		return "unknown"
	}
}

// TaskGateway is the slice of the store the controller writes through.
type TaskGateway interface {
	CreateTask(ctx context.Context, scope store.Scope, draft store.TaskDraft) (*model.Task, error)
	UpdateTask(ctx context.Context, scope store.Scope, id string, patch store.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, scope store.Scope, id string) error
}

// FetchFunc loads the view's task collection, e.g. a closure over
// Store.ListTasks, Store.ListImportantTasks, or a search.
type FetchFunc func(ctx context.Context, scope store.Scope) ([]model.Task, error)

// Notifier receives change events for confirmed mutations. Optional.
type Notifier interface {
	TaskChanged(action string, task model.Task)
}

// Change actions passed to the Notifier.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Collection is one view's synchronized task collection.
//
// Reads degrade: a failed fetch logs and leaves an empty ready collection.
// Creation is confirm-then-render: the server-returned record is prepended
// only after the write succeeds. Toggles are optimistic with rollback: the
// patch is applied locally first, and reverted if the write fails, so the
// view always shows last-known-good state.
type Collection struct {
	gw       TaskGateway
	fetch    FetchFunc
	scope    store.Scope
	signedIn bool
	logger   *log.Logger
	notifier Notifier

	mu        sync.Mutex
	state     State
	items     []model.Task
	mutations int
	gen       int
	closed    bool
}

// Config configures a Collection.
type Config struct {
	Gateway  TaskGateway
	Fetch    FetchFunc
	Scope    store.Scope
	SignedIn bool
	// Logger for degraded reads and rolled-back toggles. Defaults to stderr.
	Logger *log.Logger
	// Notifier receives confirmed change events. May be nil.
	Notifier Notifier
}

// New creates a Collection in the loading state. Call Load to populate it.
func New(cfg Config) *Collection {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[view] ", log.LstdFlags)
	}
	return &Collection{
		gw:       cfg.Gateway,
		fetch:    cfg.Fetch,
		scope:    cfg.Scope,
		signedIn: cfg.SignedIn,
		logger:   logger,
		notifier: cfg.Notifier,
		state:    StateLoading,
	}
}

// Load performs the on-mount fetch and transitions to ready (or signedOut).
//
// A fetch failure is logged and degrades to an empty ready collection; the
// view is never blocked on a read error. A load that completes after the
// collection was closed or superseded by a newer load is discarded.
func (c *Collection) Load(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.signedIn {
		c.state = StateSignedOut
		c.items = nil
		c.mu.Unlock()
		return
	}
	c.state = StateLoading
	c.gen++
	gen := c.gen
	fetch := c.fetch
	scope := c.scope
	c.mu.Unlock()

	items, err := fetch(ctx, scope)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.gen != gen {
		// Superseded or disposed mid-request; the stale result must not
		// clobber newer state.
		return
	}
	if err != nil {
		c.logger.Printf("Fetch failed, showing empty collection: %v", err)
		items = nil
	}
	c.items = items
	c.state = StateReady
}

// Reload re-fetches the collection, restoring server ordering.
func (c *Collection) Reload(ctx context.Context) {
	c.Load(ctx)
}

// Create validates locally, writes through the gateway, and on success
// prepends the server-returned record. Local state is untouched on failure;
// the error is surfaced for the caller to present.
func (c *Collection) Create(ctx context.Context, draft store.TaskDraft) (*model.Task, error) {
	// Fail fast on obviously-invalid input: no network round-trip.
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &store.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, &store.ValidationError{Field: "view", Reason: "collection is closed"}
	}
	if !c.signedIn {
		c.mu.Unlock()
		return nil, &store.ValidationError{Field: "user", Reason: "no authenticated session"}
	}
	c.mutations++
	c.mu.Unlock()
	defer c.endMutation()

	task, err := c.gw.CreateTask(ctx, c.scope, draft)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if !c.closed {
		// Prepended regardless of created_at; server order returns on the
		// next reload.
		c.items = append([]model.Task{*task}, c.items...)
	}
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.TaskChanged(ActionCreated, *task)
	}
	return task, nil
}

// ToggleCompleted flips a task's completed flag optimistically and confirms
// it with a single-field update.
func (c *Collection) ToggleCompleted(ctx context.Context, id string) error {
	return c.toggle(ctx, id,
		func(t *model.Task) bool { return t.Completed },
		func(t *model.Task, v bool) { t.Completed = v },
		func(v bool) store.TaskPatch { return store.TaskPatch{Completed: &v} },
	)
}

// ToggleImportant flips a task's important flag optimistically and confirms
// it with a single-field update.
func (c *Collection) ToggleImportant(ctx context.Context, id string) error {
	return c.toggle(ctx, id,
		func(t *model.Task) bool { return t.Important },
		func(t *model.Task, v bool) { t.Important = v },
		func(v bool) store.TaskPatch { return store.TaskPatch{Important: &v} },
	)
}

// toggle applies an optimistic single-flag patch, retaining the pre-patch
// value so a failed write rolls the view back to last-known-good state.
func (c *Collection) toggle(
	ctx context.Context,
	id string,
	get func(*model.Task) bool,
	set func(*model.Task, bool),
	patch func(bool) store.TaskPatch,
) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return &store.ValidationError{Field: "view", Reason: "collection is closed"}
	}
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return &store.NotFoundError{Kind: "task", ID: id}
	}
	prev := get(&c.items[idx])
	next := !prev
	set(&c.items[idx], next) // optimistic
	c.mutations++
	c.mu.Unlock()
	defer c.endMutation()

	updated, err := c.gw.UpdateTask(ctx, c.scope, id, patch(next))

	c.mu.Lock()
	idx = c.indexOf(id)
	if err != nil {
		// Revert only if the optimistic value is still in place; a newer
		// confirmed write wins.
		if idx >= 0 && get(&c.items[idx]) == next {
			set(&c.items[idx], prev)
		}
		c.mu.Unlock()
		c.logger.Printf("Toggle failed for task %s, rolled back: %v", id, err)
		return err
	}
	if idx >= 0 && !c.closed {
		c.items[idx] = *updated
	}
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.TaskChanged(ActionUpdated, *updated)
	}
	return nil
}

// Delete removes a task through the gateway, then drops it locally.
func (c *Collection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return &store.ValidationError{Field: "view", Reason: "collection is closed"}
	}
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return &store.NotFoundError{Kind: "task", ID: id}
	}
	removed := c.items[idx]
	c.mutations++
	c.mu.Unlock()
	defer c.endMutation()

	if err := c.gw.DeleteTask(ctx, c.scope, id); err != nil {
		return err
	}

	c.mu.Lock()
	if idx := c.indexOf(id); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.TaskChanged(ActionDeleted, removed)
	}
	return nil
}

// Items returns a snapshot of the collection in display order: last-fetch
// order with newly created tasks at the front.
func (c *Collection) Items() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.items))
	copy(out, c.items)
	return out
}

// State returns the current lifecycle state.
func (c *Collection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReady && c.mutations > 0 {
		return StateMutating
	}
	return c.state
}

// Close marks the view disposed. Late fetch results and further mutations
// are discarded; a closed collection never updates state.
func (c *Collection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// indexOf returns the position of the task with the given id, or -1.
// Caller holds c.mu.
func (c *Collection) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) endMutation() {
	c.mu.Lock()
	c.mutations--
	c.mu.Unlock()
}
