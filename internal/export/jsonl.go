// Package export moves a user's lists and tasks through a JSONL snapshot.
//
// The snapshot is one JSON object per line, lists before tasks, so an import
// can recreate lists first and remap task membership onto the new list IDs.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"daylist/internal/model"
	"daylist/internal/store"
)

// Gateway is the slice of the store the exporter needs.
type Gateway interface {
	ListLists(ctx context.Context, scope store.Scope) ([]model.List, error)
	ListTasks(ctx context.Context, scope store.Scope, listID *string) ([]model.Task, error)
	CreateList(ctx context.Context, scope store.Scope, draft store.ListDraft) (*model.List, error)
	CreateTask(ctx context.Context, scope store.Scope, draft store.TaskDraft) (*model.Task, error)
}

// Record is one line of the snapshot. Exactly one of List or Task is set,
// discriminated by Kind.
type Record struct {
	Kind string      `json:"kind"` // "list" or "task"
	List *model.List `json:"list,omitempty"`
	Task *model.Task `json:"task,omitempty"`
}

// ImportOptions contains configuration for an import run.
type ImportOptions struct {
	DryRun bool // Preview without writing
}

// ImportResult contains statistics about an import run.
type ImportResult struct {
	ListsImported int
	TasksImported int
	Errors        []string
}

// Export writes the scope's lists and tasks to a JSONL file at path.
//
// The file is written atomically via a temp file rename.
func Export(ctx context.Context, gw Gateway, scope store.Scope, path string) (int, error) {
	lists, err := gw.ListLists(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to read lists: %w", err)
	}
	tasks, err := gw.ListTasks(ctx, scope, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read tasks: %w", err)
	}

	tmpPath := path + ".tmp"
	// #nosec G304 - controlled path from CLI
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	count := 0
	for i := range lists {
		if err := enc.Encode(Record{Kind: "list", List: &lists[i]}); err != nil {
			f.Close()
			_ = os.Remove(tmpPath)
			return 0, fmt.Errorf("failed to encode list: %w", err)
		}
		count++
	}
	for i := range tasks {
		if err := enc.Encode(Record{Kind: "task", Task: &tasks[i]}); err != nil {
			f.Close()
			_ = os.Remove(tmpPath)
			return 0, fmt.Errorf("failed to encode task: %w", err)
		}
		count++
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return count, nil
}

// ReadSnapshot parses a JSONL snapshot file into records.
func ReadSnapshot(path string) ([]Record, error) {
	// #nosec G304 - controlled path from CLI
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	lineNum := 0
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("invalid JSON at line %d: %w", lineNum+1, err)
		}
		lineNum++

		switch rec.Kind {
		case "list":
			if rec.List == nil {
				return nil, fmt.Errorf("list record at line %d has no list", lineNum)
			}
		case "task":
			if rec.Task == nil {
				return nil, fmt.Errorf("task record at line %d has no task", lineNum)
			}
		default:
			return nil, fmt.Errorf("unknown record kind %q at line %d", rec.Kind, lineNum)
		}

		records = append(records, rec)
	}

	return records, nil
}

// Import recreates a snapshot's lists and tasks under scope.
//
// Lists get fresh IDs; task membership is remapped onto them. Tasks keep
// their snapshot IDs as idempotency keys, so importing the same snapshot
// twice into the same account cannot duplicate tasks. Lists carry no such
// key and will duplicate if the snapshot is imported twice.
func Import(ctx context.Context, gw Gateway, scope store.Scope, path string, opts ImportOptions) (*ImportResult, error) {
	records, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	listIDs := make(map[string]string) // snapshot list ID -> created list ID

	for _, rec := range records {
		switch rec.Kind {
		case "list":
			result.ListsImported++
			if opts.DryRun {
				continue
			}

			created, err := gw.CreateList(ctx, scope, store.ListDraft{
				Title:           rec.List.Title,
				BackgroundType:  rec.List.BackgroundType,
				BackgroundValue: rec.List.BackgroundValue,
			})
			if err != nil {
				result.ListsImported--
				result.Errors = append(result.Errors,
					fmt.Sprintf("failed to import list %q: %v", rec.List.Title, err))
				continue
			}
			listIDs[rec.List.ID] = created.ID

		case "task":
			draft := store.TaskDraft{
				ID:        rec.Task.ID,
				Title:     rec.Task.Title,
				DueDate:   rec.Task.DueDate,
				Important: rec.Task.Important,
				Completed: rec.Task.Completed,
			}
			if rec.Task.ListID != nil {
				if newID, ok := listIDs[*rec.Task.ListID]; ok {
					draft.ListID = &newID
				} else if !opts.DryRun {
					// The snapshot references a list that failed to
					// import; keep the task, drop the membership.
					result.Errors = append(result.Errors,
						fmt.Sprintf("task %q: list %s not in snapshot, importing without a list", rec.Task.Title, *rec.Task.ListID))
				}
			}

			result.TasksImported++
			if opts.DryRun {
				continue
			}

			if _, err := gw.CreateTask(ctx, scope, draft); err != nil {
				result.TasksImported--
				result.Errors = append(result.Errors,
					fmt.Sprintf("failed to import task %q: %v", rec.Task.Title, err))
			}
		}
	}

	return result, nil
}
