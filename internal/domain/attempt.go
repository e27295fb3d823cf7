package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttemptKind classifies the interaction a sample was measured from.
type AttemptKind string

// Possible attempt kinds
const (
	AttemptKindFlashcard AttemptKind = "flashcard"
	AttemptKindQuiz      AttemptKind = "quiz"
	AttemptKindReading   AttemptKind = "reading"
)

// IsValid reports whether the kind is one of the known attempt kinds.
func (k AttemptKind) IsValid() bool {
	switch k {
	case AttemptKindFlashcard, AttemptKindQuiz, AttemptKindReading:
		return true
	default:
		return false
	}
}

// RawAttemptEvent is one interaction event as recorded by the session
// tracking layer, before normalization. QuestionID groups repeated attempts
// at the same flashcard or quiz question; AttemptIndex is 1 for the first
// try at that question within the cycle, 2 for the second, and so on.
// Reading events carry no correctness, only elapsed time.
type RawAttemptEvent struct {
	Kind           AttemptKind `json:"kind"`
	QuestionID     string      `json:"question_id,omitempty"`
	Correct        *bool       `json:"correct,omitempty"`
	ResponseTimeMs *int        `json:"response_time_ms,omitempty"`
	AttemptIndex   int         `json:"attempt_index"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

// AttemptSample is one normalized performance sample. Immutable once
// produced by the normalizer; the mastery calculator consumes these.
// ResponseTimeMs is nil for events recorded without timing information;
// such samples still count toward correctness but are excluded from the
// efficiency component.
type AttemptSample struct {
	Kind           AttemptKind
	QuestionID     string
	Correct        *bool
	ResponseTimeMs *int
	AttemptIndex   int
	ExpectedTimeMs int
}

// EvaluationCycle is one complete flashcards+quiz(+reading) pass for a
// subtopic, the unit the progression engine is invoked on.
type EvaluationCycle struct {
	UserID      uuid.UUID         `json:"user_id"`
	SubtopicID  uuid.UUID         `json:"subtopic_id"`
	Events      []RawAttemptEvent `json:"events"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Validate checks the cycle envelope. Per-event validation is the
// normalizer's job so that a single malformed event is reported with its
// position in the batch.
func (c *EvaluationCycle) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	}
	if c.SubtopicID == uuid.Nil {
		return fmt.Errorf("%w: subtopic ID cannot be empty", ErrValidation)
	}
	if len(c.Events) == 0 {
		return fmt.Errorf("%w: evaluation cycle must contain at least one event", ErrValidation)
	}
	return nil
}
