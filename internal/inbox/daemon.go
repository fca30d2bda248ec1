// Package inbox provides a drop-directory capture daemon.
//
// The daemon:
// 1. Watches a drop directory for capture files (*.json)
// 2. Creates a task from each capture through the store gateway
// 3. Archives processed captures and quarantines invalid ones
// 4. Handles graceful shutdown
package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"daylist/internal/due"
	"daylist/internal/model"
	"daylist/internal/store"
)

// TaskCreator is the slice of the store gateway the daemon needs.
type TaskCreator interface {
	CreateTask(ctx context.Context, scope store.Scope, draft store.TaskDraft) (*model.Task, error)
}

// Capture is the on-disk format of a dropped capture file.
//
// Title is required. Due accepts either an ISO date or a natural-language
// phrase ("tomorrow 9am"). ID, when present, is used as the task's
// idempotency key so re-dropping the same capture cannot duplicate it.
type Capture struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	ListID    *string `json:"list_id,omitempty"`
	Due       string  `json:"due,omitempty"`
	Important bool    `json:"important,omitempty"`
}

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long to wait before processing file changes.
	// This lets writers finish before the file is read.
	DebounceInterval time.Duration

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 100 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[inbox] ", log.LstdFlags),
	}
}

// Daemon watches the drop directory and turns captures into tasks.
type Daemon struct {
	creator TaskCreator
	scope   store.Scope
	dropDir string
	config  *Config

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time // filepath -> timestamp
	changeQueueMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon instance.
//
// The daemon requires:
//   - creator: gateway used to create tasks
//   - scope: the signed-in user's identity, stamped on every capture
//   - dropDir: directory to watch for capture JSON files
//
// Use Start() to begin watching.
func New(creator TaskCreator, scope store.Scope, dropDir string) (*Daemon, error) {
	return NewWithConfig(creator, scope, dropDir, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(creator TaskCreator, scope store.Scope, dropDir string, config *Config) (*Daemon, error) {
	if creator == nil {
		return nil, fmt.Errorf("creator cannot be nil")
	}
	if scope.UserID == "" {
		return nil, fmt.Errorf("scope cannot be empty")
	}
	if dropDir == "" {
		return nil, fmt.Errorf("dropDir cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		creator:     creator,
		scope:       scope,
		dropDir:     dropDir,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Create the drop, processed, and rejected directories if missing
// 2. Sweep captures already sitting in the drop directory
// 3. Watch for new captures and process them with debouncing
//
// This blocks until ctx is cancelled or an error occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting inbox daemon")

	for _, dir := range []string{d.dropDir, d.processedDir(), d.rejectedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := d.Sweep(); err != nil {
		return fmt.Errorf("initial sweep failed: %w", err)
	}

	if err := d.watcher.Add(d.dropDir); err != nil {
		return fmt.Errorf("failed to watch drop directory: %w", err)
	}

	d.config.Logger.Printf("Watching: %s", d.dropDir)

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.processChangeQueue()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping inbox daemon")

	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Inbox daemon stopped")
	return nil
}

// Sweep processes every capture currently in the drop directory.
//
// It's called on startup and can be triggered manually for a one-shot run.
func (d *Daemon) Sweep() error {
	entries, err := os.ReadDir(d.dropDir)
	if err != nil {
		return fmt.Errorf("failed to read drop directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		d.processCapture(filepath.Join(d.dropDir, entry.Name()))
		count++
	}

	if count > 0 {
		d.config.Logger.Printf("Swept %d captures", count)
	}
	return nil
}

// watchFileEvents monitors filesystem events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			// Only care about Create and Write; removals are our own
			// archive moves.
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			if filepath.Ext(event.Name) != ".json" {
				continue
			}

			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange adds a file to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

// processChangeQueue processes queued captures with debouncing.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

// processPendingChanges handles captures that have been queued long enough.
func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	now := time.Now()
	var ready []string
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		ready = append(ready, path)
		delete(d.changeQueue, path)
	}
	d.changeQueueMu.Unlock()

	for _, path := range ready {
		d.processCapture(path)
	}
}

// processCapture reads one capture file, creates the task, and moves the
// file to processed/ on success or rejected/ on any failure.
func (d *Daemon) processCapture(path string) {
	// A queued file may already be gone (archived by Sweep, or removed
	// by the user).
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		d.config.Logger.Printf("Error reading capture %s: %v", path, err)
		return
	}

	var capture Capture
	if err := json.Unmarshal(data, &capture); err != nil {
		d.config.Logger.Printf("Rejecting capture %s: invalid JSON: %v", path, err)
		d.archive(path, d.rejectedDir())
		return
	}

	draft, err := d.toDraft(capture)
	if err != nil {
		d.config.Logger.Printf("Rejecting capture %s: %v", path, err)
		d.archive(path, d.rejectedDir())
		return
	}

	task, err := d.creator.CreateTask(d.ctx, d.scope, draft)
	if err != nil {
		if store.IsValidation(err) || store.IsNotFound(err) {
			d.config.Logger.Printf("Rejecting capture %s: %v", path, err)
			d.archive(path, d.rejectedDir())
			return
		}
		// Transient store failures leave the file in place for the
		// next sweep.
		d.config.Logger.Printf("Error creating task from %s: %v", path, err)
		return
	}

	d.config.Logger.Printf("Captured task %s (%s)", task.ID, task.Title)
	d.archive(path, d.processedDir())
}

// toDraft converts a capture into a task draft, resolving the due phrase.
func (d *Daemon) toDraft(capture Capture) (store.TaskDraft, error) {
	draft := store.TaskDraft{
		ID:        capture.ID,
		Title:     capture.Title,
		ListID:    capture.ListID,
		Important: capture.Important,
	}

	if capture.Due != "" {
		dueAt, err := due.Parse(capture.Due, time.Now())
		if err != nil {
			return store.TaskDraft{}, fmt.Errorf("unparseable due %q: %w", capture.Due, err)
		}
		draft.DueDate = &dueAt
	}

	return draft, nil
}

// archive moves a capture file into dir, timestamping the name so repeated
// drops of the same filename never collide.
func (d *Daemon) archive(path, dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.config.Logger.Printf("Error creating %s: %v", dir, err)
		return
	}

	name := filepath.Base(path)
	stamped := fmt.Sprintf("%s.%s", time.Now().UTC().Format("20060102T150405.000000000"), name)

	if err := os.Rename(path, filepath.Join(dir, stamped)); err != nil {
		d.config.Logger.Printf("Error archiving %s: %v", path, err)
	}
}

func (d *Daemon) processedDir() string {
	return filepath.Join(d.dropDir, "processed")
}

func (d *Daemon) rejectedDir() string {
	return filepath.Join(d.dropDir, "rejected")
}
