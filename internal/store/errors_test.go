package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestStoreError_PreservesMessage tests that the remote store's message
// survives wrapping verbatim.
func TestStoreError_PreservesMessage(t *testing.T) {
	inner := errors.New("UNIQUE constraint failed: tasks.id")
	err := &StoreError{Op: "create task", Err: inner}

	if !strings.Contains(err.Error(), inner.Error()) {
		t.Errorf("Error() = %q, want it to contain %q", err.Error(), inner.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is() lost the wrapped cause")
	}
}

// TestErrorPredicates tests IsValidation and IsNotFound through wrapping.
func TestErrorPredicates(t *testing.T) {
	ve := fmt.Errorf("while creating: %w", &ValidationError{Field: "title", Reason: "must not be empty"})
	if !IsValidation(ve) {
		t.Error("IsValidation() = false for wrapped ValidationError")
	}
	if IsNotFound(ve) {
		t.Error("IsNotFound() = true for ValidationError")
	}

	nf := fmt.Errorf("while updating: %w", &NotFoundError{Kind: "task", ID: "t-1"})
	if !IsNotFound(nf) {
		t.Error("IsNotFound() = false for wrapped NotFoundError")
	}
	if IsValidation(nf) {
		t.Error("IsValidation() = true for NotFoundError")
	}
}
