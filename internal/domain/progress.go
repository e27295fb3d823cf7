package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MasteryLevel represents how far a user has progressed on a subtopic.
type MasteryLevel string

// Possible mastery levels, in ascending order.
const (
	MasteryNotStarted MasteryLevel = "not_started"
	MasteryLearning   MasteryLevel = "learning"
	MasteryPracticed  MasteryLevel = "practiced"
	MasteryMastered   MasteryLevel = "mastered"
	MasteryExpert     MasteryLevel = "expert"
)

// masteryRank orders levels for comparison and one-step regression.
var masteryRank = map[MasteryLevel]int{
	MasteryNotStarted: 0,
	MasteryLearning:   1,
	MasteryPracticed:  2,
	MasteryMastered:   3,
	MasteryExpert:     4,
}

// IsValid reports whether the level is one of the known mastery levels.
func (l MasteryLevel) IsValid() bool {
	_, ok := masteryRank[l]
	return ok
}

// Rank returns the ordinal position of the level, 0 for not_started
// through 4 for expert.
func (l MasteryLevel) Rank() int {
	return masteryRank[l]
}

// AtLeast reports whether the level is equal to or above other.
func (l MasteryLevel) AtLeast(other MasteryLevel) bool {
	return masteryRank[l] >= masteryRank[other]
}

// Regressed returns the level one step below, bottoming out at not_started.
func (l MasteryLevel) Regressed() MasteryLevel {
	switch l {
	case MasteryExpert:
		return MasteryMastered
	case MasteryMastered:
		return MasteryPracticed
	case MasteryPracticed:
		return MasteryLearning
	default:
		return MasteryNotStarted
	}
}

// Progress validation errors
var (
	ErrProgressUserIDEmpty     = errors.New("progress user ID cannot be empty")
	ErrProgressSubtopicIDEmpty = errors.New("progress subtopic ID cannot be empty")
	ErrCorrectExceedsTotal     = errors.New("correct attempts cannot exceed total attempts")
	ErrNegativeInterval        = errors.New("spaced repetition interval cannot be negative")
	ErrConfidenceOutOfRange    = errors.New("confidence score must be within [0, 1]")
)

// SubtopicProgressState tracks one user's progress on one subtopic. It is
// owned exclusively by the progression engine: created on the first
// evaluation cycle and mutated only by the decider/scheduler pair. External
// layers read it and append raw attempts, nothing else.
//
// Invariants: CorrectAttempts <= TotalAttempts; NextReviewDate is nil until
// the subtopic first reaches a scored evaluation; IntervalDays never
// decreases while mastery stays at or above the scheduling threshold and
// resets downward only on a failed review.
type SubtopicProgressState struct {
	UserID             uuid.UUID    `json:"user_id"`
	SubtopicID         uuid.UUID    `json:"subtopic_id"`
	MasteryLevel       MasteryLevel `json:"mastery_level"`
	ConfidenceScore    float64      `json:"confidence_score"`
	TotalAttempts      int          `json:"total_attempts"`
	CorrectAttempts    int          `json:"correct_attempts"`
	ConsecutiveReviews int          `json:"consecutive_reviews"` // on-time reviews scoring at the advance threshold, toward expert
	LastAttemptAt      *time.Time   `json:"last_attempt_at,omitempty"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
	NextReviewDate     *time.Time   `json:"next_review_date,omitempty"`
	IntervalDays       int          `json:"spaced_repetition_interval"`
	Version            int          `json:"version"` // optimistic concurrency check for concurrent cycles
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// NewSubtopicProgressState creates the initial progress record for a
// (user, subtopic) pair. Mastery starts at not_started; the first completed
// evaluation cycle moves it to learning.
func NewSubtopicProgressState(userID, subtopicID uuid.UUID) (*SubtopicProgressState, error) {
	now := time.Now().UTC()
	state := &SubtopicProgressState{
		UserID:       userID,
		SubtopicID:   subtopicID,
		MasteryLevel: MasteryNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks the state's invariants.
func (s *SubtopicProgressState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrProgressUserIDEmpty
	}
	if s.SubtopicID == uuid.Nil {
		return ErrProgressSubtopicIDEmpty
	}
	if !s.MasteryLevel.IsValid() {
		return ErrInvalidMasteryLevel
	}
	if s.CorrectAttempts > s.TotalAttempts {
		return ErrCorrectExceedsTotal
	}
	if s.IntervalDays < 0 {
		return ErrNegativeInterval
	}
	if s.ConfidenceScore < 0 || s.ConfidenceScore > 1 {
		return ErrConfidenceOutOfRange
	}
	return nil
}

// Clone returns a deep copy of the state. The engine computes on copies and
// returns a new state rather than mutating the snapshot it was given, so
// concurrent-cycle races surface as version conflicts instead of silent
// overwrites.
func (s *SubtopicProgressState) Clone() *SubtopicProgressState {
	clone := *s
	if s.LastAttemptAt != nil {
		t := *s.LastAttemptAt
		clone.LastAttemptAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		clone.CompletedAt = &t
	}
	if s.NextReviewDate != nil {
		t := *s.NextReviewDate
		clone.NextReviewDate = &t
	}
	return &clone
}

// ReviewDue reports whether a spaced review is due at the given time.
func (s *SubtopicProgressState) ReviewDue(now time.Time) bool {
	return s.NextReviewDate != nil && !s.NextReviewDate.After(now)
}
