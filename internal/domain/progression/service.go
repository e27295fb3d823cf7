package progression

import (
	"time"

	"github.com/google/uuid"
	"github.com/looplearn/loop-api/internal/domain"
)

// EvaluationResult is everything one engine invocation produces: the new
// progress state snapshot, the score breakdown for user-facing feedback,
// and the decision that drove the transition.
type EvaluationResult struct {
	State    *domain.SubtopicProgressState
	Score    domain.MasteryScore
	Decision Decision
}

// Service is the progression engine facade. It is pure with respect to its
// inputs: EvaluateCycle computes on a copy of the given state and returns a
// new snapshot; persisting it is the caller's responsibility. Concurrent
// cycles for the same (user, subtopic) must be serialized by the caller,
// e.g. via the state's version field.
type Service interface {
	// EvaluateCycle runs one complete evaluation cycle: normalizes the raw
	// events, computes the mastery score, decides the level transition and
	// updates the spaced-repetition schedule.
	//
	// Returns a validation error for malformed events, and
	// ErrInvalidStateTransition when invoked on a terminal expert state
	// with no review due.
	EvaluateCycle(
		state *domain.SubtopicProgressState,
		subtopic *domain.Subtopic,
		events []domain.RawAttemptEvent,
		now time.Time,
	) (*EvaluationResult, error)

	// SelectNext picks the next subtopic to present, or nil when nothing
	// is due or eligible.
	SelectNext(input SelectionInput, now time.Time) *uuid.UUID
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a progression engine with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a progression engine with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// EvaluateCycle implements Service.
func (s *defaultService) EvaluateCycle(
	state *domain.SubtopicProgressState,
	subtopic *domain.Subtopic,
	events []domain.RawAttemptEvent,
	now time.Time,
) (*EvaluationResult, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if subtopic == nil {
		return nil, ErrNilSubtopic
	}

	facts := cycleFacts{
		firstCycle: state.TotalAttempts == 0 && state.MasteryLevel == domain.MasteryNotStarted,
		dueReview:  state.ReviewDue(now),
	}
	facts.onTime = facts.dueReview && onTimeReview(state, now, s.params)

	// A terminal expert state with no review pending has nothing to
	// evaluate; being called anyway is a bug in the caller.
	if state.MasteryLevel == domain.MasteryExpert && !facts.dueReview {
		return nil, ErrInvalidStateTransition
	}

	// Validation happens before any state is touched, so a malformed batch
	// leaves prior progress intact.
	samples, err := Normalize(events, subtopic.ExpectedTimeMs())
	if err != nil {
		return nil, err
	}

	score := ComputeMasteryScore(samples, subtopic.ExpectedTimeMs(), s.params)
	decision := decide(score.Total, state.MasteryLevel, facts, s.params)

	next := state.Clone()
	applyReviewStreak(next, &decision, score.Total, facts, s.params)

	// Scheduling: due reviews grow or shrink the existing interval; a first
	// pass at or above the advance threshold seeds it. Below the threshold
	// with no schedule in place, no review date exists yet.
	if facts.dueReview {
		outcome := ReviewFailure
		if decision.ReviewSucceeded {
			outcome = ReviewSuccess
		}
		interval, reviewAt := Schedule(next.IntervalDays, score.Total, outcome, now, s.params)
		next.IntervalDays = interval
		next.NextReviewDate = &reviewAt
	} else if decision.SeedIntervalDays > 0 && next.NextReviewDate == nil {
		interval, reviewAt := Seed(decision.SeedIntervalDays, now)
		next.IntervalDays = interval
		next.NextReviewDate = &reviewAt
	}

	next.MasteryLevel = decision.NextLevel
	next.ConfidenceScore = score.Total / 100

	total, correct := countScoredSamples(samples)
	next.TotalAttempts += total
	next.CorrectAttempts += correct

	t := now.UTC()
	next.LastAttemptAt = &t
	if next.CompletedAt == nil && decision.NextLevel.AtLeast(domain.MasteryMastered) {
		completed := now.UTC()
		next.CompletedAt = &completed
	}

	next.Version++
	next.UpdatedAt = now.UTC()

	return &EvaluationResult{
		State:    next,
		Score:    score,
		Decision: decision,
	}, nil
}

// SelectNext implements Service.
func (s *defaultService) SelectNext(input SelectionInput, now time.Time) *uuid.UUID {
	return SelectNext(input, now)
}

// countScoredSamples tallies the samples that carry a correctness verdict,
// feeding the progress accumulators.
func countScoredSamples(samples []domain.AttemptSample) (total, correct int) {
	for _, sample := range samples {
		if sample.Correct == nil {
			continue
		}
		total++
		if *sample.Correct {
			correct++
		}
	}
	return total, correct
}
