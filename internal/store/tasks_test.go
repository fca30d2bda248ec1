package store

import (
	"context"
	"testing"
	"time"
)

// TestCreateTask_Defaults tests spec'd defaulting on creation: the returned
// record matches the input after defaulting, with fresh id and timestamps.
func TestCreateTask_Defaults(t *testing.T) {
	s := newTestStore(t)

	task, err := s.CreateTask(context.Background(), testScope(), TaskDraft{Title: "Milk"})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	if task.ID == "" {
		t.Error("ID not assigned")
	}
	if task.Title != "Milk" {
		t.Errorf("Title = %q, want 'Milk'", task.Title)
	}
	if task.Completed {
		t.Error("Completed defaulted to true, want false")
	}
	if task.Important {
		t.Error("Important defaulted to true, want false")
	}
	if task.ListID != nil {
		t.Errorf("ListID = %q, want nil", *task.ListID)
	}
	if task.DueDate != nil {
		t.Errorf("DueDate = %v, want nil", *task.DueDate)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}
}

// TestCreateTask_Validation tests fail-fast rejection of invalid drafts.
func TestCreateTask_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: ""}); !IsValidation(err) {
		t.Errorf("empty title: err = %v, want ValidationError", err)
	}
	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "  \t "}); !IsValidation(err) {
		t.Errorf("whitespace title: err = %v, want ValidationError", err)
	}
	if _, err := s.CreateTask(ctx, Scope{}, TaskDraft{Title: "x"}); !IsValidation(err) {
		t.Errorf("missing user: err = %v, want ValidationError", err)
	}
}

// TestCreateTask_CrossUserList tests that associating a task with another
// account's list is forbidden, and indistinguishable from a missing list.
func TestCreateTask_CrossUserList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	theirs, err := s.CreateList(ctx, Scope{UserID: "clerk_user_2"}, ListDraft{Title: "Theirs"})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}

	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "x", ListID: &theirs.ID}); !IsNotFound(err) {
		t.Errorf("foreign list: err = %v, want NotFoundError", err)
	}
}

// TestCreateTask_IdempotencyKey tests that a duplicate submission with the
// same client-generated id yields one row and returns the stored record.
func TestCreateTask_IdempotencyKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateTask(ctx, testScope(), TaskDraft{ID: "client-key-1", Title: "Once"})
	if err != nil {
		t.Fatalf("first CreateTask() failed: %v", err)
	}
	second, err := s.CreateTask(ctx, testScope(), TaskDraft{ID: "client-key-1", Title: "Once (retry)"})
	if err != nil {
		t.Fatalf("replayed CreateTask() failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replay assigned new id %q, want %q", second.ID, first.ID)
	}
	if second.Title != "Once" {
		t.Errorf("replay returned %q, want the originally stored title", second.Title)
	}

	tasks, err := s.ListTasks(ctx, testScope(), nil)
	if err != nil {
		t.Fatalf("ListTasks() failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("got %d tasks after replay, want 1", len(tasks))
	}
}

// TestListTasks_ByList tests the list-scoped fetch.
func TestListTasks_ByList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.CreateList(ctx, testScope(), ListDraft{Title: "Groceries"})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "Milk", ListID: &list.ID}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "Unlisted"}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	tasks, err := s.ListTasks(ctx, testScope(), &list.ID)
	if err != nil {
		t.Fatalf("ListTasks(list) failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Title != "Milk" {
		t.Errorf("Title = %q, want 'Milk'", tasks[0].Title)
	}
	if tasks[0].Completed {
		t.Error("Completed = true, want false")
	}

	all, err := s.ListTasks(ctx, testScope(), nil)
	if err != nil {
		t.Fatalf("ListTasks(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d tasks for account, want 2", len(all))
	}
}

// TestListTasks_OrderedByCreation tests ascending creation order.
func TestListTasks_OrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	titles := []string{"a", "b", "c", "d"}
	for _, title := range titles {
		if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: title}); err != nil {
			t.Fatalf("CreateTask(%q) failed: %v", title, err)
		}
	}

	tasks, err := s.ListTasks(ctx, testScope(), nil)
	if err != nil {
		t.Fatalf("ListTasks() failed: %v", err)
	}
	if len(tasks) != len(titles) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(titles))
	}
	for i, title := range titles {
		if tasks[i].Title != title {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, title)
		}
	}
}

// TestListImportantTasks tests the importance filter and its ordering.
func TestListImportantTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "urgent-1", Important: true}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "mundane"}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "urgent-2", Important: true}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	important, err := s.ListImportantTasks(ctx, testScope())
	if err != nil {
		t.Fatalf("ListImportantTasks() failed: %v", err)
	}
	if len(important) != 2 {
		t.Fatalf("got %d important tasks, want 2", len(important))
	}
	if important[0].Title != "urgent-1" || important[1].Title != "urgent-2" {
		t.Errorf("order = [%q, %q], want [urgent-1, urgent-2]", important[0].Title, important[1].Title)
	}
}

// TestUpdateTask_ToggleCompleted tests that toggling one flag leaves every
// other field unchanged.
func TestUpdateTask_ToggleCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	list, err := s.CreateList(ctx, testScope(), ListDraft{Title: "Chores"})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	task, err := s.CreateTask(ctx, testScope(), TaskDraft{
		Title:     "Laundry",
		ListID:    &list.ID,
		DueDate:   &due,
		Important: true,
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	toggled := !task.Completed
	updated, err := s.UpdateTask(ctx, testScope(), task.ID, TaskPatch{Completed: &toggled})
	if err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}

	if updated.Completed != toggled {
		t.Errorf("Completed = %v, want %v", updated.Completed, toggled)
	}
	if updated.Title != task.Title {
		t.Errorf("Title changed: %q -> %q", task.Title, updated.Title)
	}
	if !updated.Important {
		t.Error("Important flag lost")
	}
	if updated.ListID == nil || *updated.ListID != list.ID {
		t.Error("ListID lost")
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Error("DueDate lost")
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Error("CreatedAt changed")
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, task.UpdatedAt)
	}

	// A fresh fetch agrees with the returned record.
	fetched, err := s.getTask(ctx, testScope(), task.ID)
	if err != nil {
		t.Fatalf("getTask() failed: %v", err)
	}
	if fetched.Completed != toggled {
		t.Errorf("fetched Completed = %v, want %v", fetched.Completed, toggled)
	}
}

// TestUpdateTask_IndependentFlags tests that completed and important toggle
// independently.
func TestUpdateTask_IndependentFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "x"})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	tru := true
	if _, err := s.UpdateTask(ctx, testScope(), task.ID, TaskPatch{Important: &tru}); err != nil {
		t.Fatalf("UpdateTask(important) failed: %v", err)
	}
	updated, err := s.UpdateTask(ctx, testScope(), task.ID, TaskPatch{Completed: &tru})
	if err != nil {
		t.Fatalf("UpdateTask(completed) failed: %v", err)
	}

	if !updated.Completed || !updated.Important {
		t.Errorf("flags = (completed=%v, important=%v), want both true", updated.Completed, updated.Important)
	}
}

// TestUpdateTask_ClearFields tests nulling out due date and list membership.
func TestUpdateTask_ClearFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	list, err := s.CreateList(ctx, testScope(), ListDraft{Title: "L"})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	task, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "x", ListID: &list.ID, DueDate: &due})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	updated, err := s.UpdateTask(ctx, testScope(), task.ID, TaskPatch{ClearDueDate: true, ClearListID: true})
	if err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}
	if updated.DueDate != nil {
		t.Errorf("DueDate = %v, want nil", *updated.DueDate)
	}
	if updated.ListID != nil {
		t.Errorf("ListID = %q, want nil", *updated.ListID)
	}
}

// TestUpdateTask_NotFound tests the no-existence-leakage rule for updates.
func TestUpdateTask_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tru := true
	if _, err := s.UpdateTask(ctx, testScope(), "no-such-id", TaskPatch{Completed: &tru}); !IsNotFound(err) {
		t.Errorf("missing id: err = %v, want NotFoundError", err)
	}

	theirs, err := s.CreateTask(ctx, Scope{UserID: "clerk_user_2"}, TaskDraft{Title: "theirs"})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	if _, err := s.UpdateTask(ctx, testScope(), theirs.ID, TaskPatch{Completed: &tru}); !IsNotFound(err) {
		t.Errorf("foreign id: err = %v, want NotFoundError", err)
	}
}

// TestDeleteTask tests removal without cascading side effects.
func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.CreateList(ctx, testScope(), ListDraft{Title: "L"})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	task, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "x", ListID: &list.ID})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	if err := s.DeleteTask(ctx, testScope(), task.ID); err != nil {
		t.Fatalf("DeleteTask() failed: %v", err)
	}

	if err := s.DeleteTask(ctx, testScope(), task.ID); !IsNotFound(err) {
		t.Errorf("second delete: err = %v, want NotFoundError", err)
	}

	// The parent list is untouched.
	lists, err := s.ListLists(ctx, testScope())
	if err != nil {
		t.Fatalf("ListLists() failed: %v", err)
	}
	if len(lists) != 1 {
		t.Errorf("got %d lists, want 1", len(lists))
	}
}

// TestScenario_GroceriesMilk runs the spec'd end-to-end scenario: create a
// list, create a task in it, fetch it back.
func TestScenario_GroceriesMilk(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.CreateList(ctx, testScope(), ListDraft{
		Title:           "Groceries",
		BackgroundType:  "color",
		BackgroundValue: "#4F6BED",
	})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	if _, err := s.CreateTask(ctx, testScope(), TaskDraft{Title: "Milk", ListID: &list.ID}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	tasks, err := s.ListTasks(ctx, testScope(), &list.ID)
	if err != nil {
		t.Fatalf("ListTasks() failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want exactly 1", len(tasks))
	}
	if tasks[0].Title != "Milk" {
		t.Errorf("Title = %q, want 'Milk'", tasks[0].Title)
	}
	if tasks[0].Completed {
		t.Error("Completed = true, want false")
	}
}
