// Package evaluation orchestrates the submission of completed learning
// cycles: it loads the learner's current progress, runs the progression
// engine and persists the resulting state transition atomically.
package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/domain/progression"
)

// CycleResult is the outcome of a submitted evaluation cycle: the persisted
// progress state plus the score breakdown and decision that produced it.
type CycleResult struct {
	State    *domain.SubtopicProgressState `json:"state"`
	Score    domain.MasteryScore           `json:"score"`
	Decision progression.Decision          `json:"decision"`
}

// EvaluationService processes completed evaluation cycles.
type EvaluationService interface {
	// SubmitCycle evaluates the raw attempt events of one completed cycle
	// against the user's progress on the subtopic and persists the updated
	// state.
	//
	// Returns:
	//   - (*CycleResult, nil): the updated state with score and decision
	//   - (nil, ErrSubtopicNotFound): if the subtopic does not exist
	//   - (nil, ErrInvalidCycle): if the events fail validation
	//   - (nil, ErrEvaluationConflict): if a concurrent submission won
	//   - (nil, error): any other error, typically from the database
	//
	// The evaluation and the write happen in a single transaction with the
	// progress row locked, so concurrent submissions serialize.
	SubmitCycle(
		ctx context.Context,
		userID uuid.UUID,
		subtopicID uuid.UUID,
		events []domain.RawAttemptEvent,
	) (*CycleResult, error)

	// GetProgress retrieves all progress states of the user.
	GetProgress(ctx context.Context, userID uuid.UUID) ([]domain.SubtopicProgressState, error)
}

// Common error types for EvaluationService
var (
	// ErrSubtopicNotFound indicates that the subtopic does not exist.
	ErrSubtopicNotFound = errors.New("subtopic not found")

	// ErrInvalidCycle indicates the submitted events failed validation.
	ErrInvalidCycle = errors.New("invalid evaluation cycle")

	// ErrEvaluationConflict indicates a concurrent submission updated the
	// progress state first.
	ErrEvaluationConflict = errors.New("evaluation conflict")
)

// ServiceError wraps errors from the evaluation service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_cycle")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error, if any
	Err error
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
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
