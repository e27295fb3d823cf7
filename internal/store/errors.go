package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrTopicNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete operation fails, for example
	// because the entity does not exist or is referenced by other entities.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrVersionConflict is returned when an optimistic-concurrency update
	// finds a different version in the store than the one it was based on.
	ErrVersionConflict = errors.New("version conflict")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTopicNotFound indicates that the requested topic does not exist in the store.
	ErrTopicNotFound = fmt.Errorf("%w: topic", ErrNotFound)

	// ErrSubtopicNotFound indicates that the requested subtopic does not exist in the store.
	ErrSubtopicNotFound = fmt.Errorf("%w: subtopic", ErrNotFound)

	// ErrUserTopicNotFound indicates that the requested topic subscription does not exist.
	ErrUserTopicNotFound = fmt.Errorf("%w: user topic", ErrNotFound)

	// ErrProgressNotFound indicates that the requested subtopic progress state does not exist.
	ErrProgressNotFound = fmt.Errorf("%w: subtopic progress", ErrNotFound)

	// ErrFeedNotFound indicates that the requested daily feed entry does not exist.
	ErrFeedNotFound = fmt.Errorf("%w: daily feed", ErrNotFound)

	// ErrContentNotFound indicates that no study content has been generated
	// for the requested subtopic.
	ErrContentNotFound = fmt.Errorf("%w: study content", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	// This is returned when attempting to create a user with an email that's already in use.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrUserTopicExists indicates that the user is already subscribed to the topic.
	ErrUserTopicExists = fmt.Errorf("%w: user topic", ErrDuplicate)

	// ErrProgressExists indicates that a progress state already exists for
	// the user and subtopic combination.
	ErrProgressExists = fmt.Errorf("%w: subtopic progress", ErrDuplicate)

	// ErrFeedExists indicates that a feed entry already exists for the user
	// and date combination.
	ErrFeedExists = fmt.Errorf("%w: daily feed", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
// This includes the generic ErrDuplicate and all entity-specific duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "topic")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
