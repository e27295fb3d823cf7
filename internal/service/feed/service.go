// Package feed builds the daily study feed: one subtopic per user per day,
// chosen by the progression selector with due reviews first.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
)

// FeedService manages daily feed entries.
type FeedService interface {
	// GetDailyFeed returns the user's feed entry for the given date,
	// generating one on demand if none exists yet.
	//
	// Returns:
	//   - (*domain.DailyFeed, nil): the existing or freshly generated entry
	//   - (nil, ErrNothingToStudy): if no subtopic is eligible for the user
	//   - (nil, error): any other error, typically from the database
	GetDailyFeed(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyFeed, error)

	// CompleteFeed marks the user's feed entry for the given date as
	// completed. Completion is idempotent.
	// Returns ErrFeedNotFound if no entry exists for the date.
	CompleteFeed(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyFeed, error)

	// History returns the user's most recent feed entries, newest first.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DailyFeed, error)

	// GenerateAll creates feed entries for every user with an active
	// subscription that does not already have one for the given date.
	// It returns the number of entries created. Users with nothing to
	// study are skipped, not treated as errors.
	GenerateAll(ctx context.Context, date time.Time) (int, error)
}

// Common error types for FeedService
var (
	// ErrNothingToStudy indicates that no subtopic is eligible: everything
	// is mastered and no reviews are due.
	ErrNothingToStudy = errors.New("nothing to study")

	// ErrFeedNotFound indicates that no feed entry exists for the date.
	ErrFeedNotFound = errors.New("feed not found")
)

// ServiceError wraps errors from the feed service with additional context.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
