package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestEntityErrorsWrapGenericErrors(t *testing.T) {
	t.Parallel()

	notFound := []error{
		ErrUserNotFound,
		ErrTopicNotFound,
		ErrSubtopicNotFound,
		ErrUserTopicNotFound,
		ErrProgressNotFound,
		ErrFeedNotFound,
	}
	for _, err := range notFound {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v should wrap ErrNotFound", err)
		}
		if !IsNotFoundError(err) {
			t.Errorf("IsNotFoundError(%v) = false, want true", err)
		}
	}

	duplicates := []error{ErrEmailExists, ErrUserTopicExists, ErrProgressExists, ErrFeedExists}
	for _, err := range duplicates {
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("%v should wrap ErrDuplicate", err)
		}
		if !IsDuplicateError(err) {
			t.Errorf("IsDuplicateError(%v) = false, want true", err)
		}
	}

	if IsNotFoundError(ErrDuplicate) {
		t.Error("duplicate error should not be classified as not found")
	}
	if IsDuplicateError(ErrNotFound) {
		t.Error("not found error should not be classified as duplicate")
	}
}

func TestStoreErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := ErrProgressNotFound
	storeErr := NewStoreError("subtopic progress", "update", "row missing", cause)

	if !errors.Is(storeErr, ErrNotFound) {
		t.Error("StoreError should unwrap to the wrapped cause")
	}

	var target *StoreError
	wrapped := fmt.Errorf("service layer: %w", storeErr)
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find the StoreError through wrapping")
	}
	if target.Operation != "update" {
		t.Errorf("Operation = %q, want update", target.Operation)
	}
}

func TestStoreErrorMessageWithoutCause(t *testing.T) {
	t.Parallel()

	storeErr := NewStoreError("daily feed", "create", "validation failed", nil)
	want := "create operation on daily feed failed: validation failed"
	if storeErr.Error() != want {
		t.Errorf("Error() = %q, want %q", storeErr.Error(), want)
	}
}
