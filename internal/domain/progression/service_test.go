package progression

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/looplearn/loop-api/internal/domain"
)

// testSubtopic expects ten minutes of study time (600000 ms).
func testSubtopic() *domain.Subtopic {
	return &domain.Subtopic{
		ID:                  uuid.New(),
		TopicID:             uuid.New(),
		Name:                "goroutines",
		OrderIndex:          0,
		ExpectedTimeMinutes: 10,
		IsActive:            true,
	}
}

// perfectCycle produces a total score of 100: all correct, first attempts
// only, elapsed time exactly on expectation.
func perfectCycle(now time.Time) []domain.RawAttemptEvent {
	return []domain.RawAttemptEvent{
		{Kind: domain.AttemptKindFlashcard, QuestionID: "f1", Correct: boolPtr(true), ResponseTimeMs: intPtr(50000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindFlashcard, QuestionID: "f2", Correct: boolPtr(true), ResponseTimeMs: intPtr(50000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindQuiz, QuestionID: "q1", Correct: boolPtr(true), ResponseTimeMs: intPtr(100000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindQuiz, QuestionID: "q2", Correct: boolPtr(true), ResponseTimeMs: intPtr(100000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindReading, ResponseTimeMs: intPtr(300000), AttemptIndex: 1, OccurredAt: now},
	}
}

// weakCycle produces a total of 65: half the flashcards, half the quiz
// first attempts, on-time reading.
func weakCycle(now time.Time) []domain.RawAttemptEvent {
	return []domain.RawAttemptEvent{
		{Kind: domain.AttemptKindFlashcard, QuestionID: "f1", Correct: boolPtr(true), ResponseTimeMs: intPtr(50000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindFlashcard, QuestionID: "f2", Correct: boolPtr(false), ResponseTimeMs: intPtr(50000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindQuiz, QuestionID: "q1", Correct: boolPtr(true), ResponseTimeMs: intPtr(100000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindQuiz, QuestionID: "q2", Correct: boolPtr(false), ResponseTimeMs: intPtr(100000), AttemptIndex: 1, OccurredAt: now},
		{Kind: domain.AttemptKindReading, ResponseTimeMs: intPtr(300000), AttemptIndex: 1, OccurredAt: now},
	}
}

func TestEvaluateCycleFirstCycle(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)

	result, err := service.EvaluateCycle(state, subtopic, perfectCycle(now), now)
	require.NoError(t, err)

	// A first-ever cycle lands in learning even with a perfect score.
	require.Equal(t, domain.MasteryLearning, result.State.MasteryLevel)
	require.Equal(t, float64(100), result.Score.Total)
	require.Equal(t, ActionAdvance, result.Decision.Action)

	// The strong pass still seeds the long review interval.
	require.Equal(t, 7, result.State.IntervalDays)
	require.NotNil(t, result.State.NextReviewDate)
	require.Equal(t, time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC), *result.State.NextReviewDate)

	require.Equal(t, 1.0, result.State.ConfidenceScore)
	require.Equal(t, 4, result.State.TotalAttempts) // reading carries no verdict
	require.Equal(t, 4, result.State.CorrectAttempts)
	require.Nil(t, result.State.CompletedAt)
	require.Equal(t, 1, result.State.Version)
	require.NotNil(t, result.State.LastAttemptAt)
}

func TestEvaluateCycleDoesNotMutateSnapshot(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Now().UTC()

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)
	before := *state

	_, err = service.EvaluateCycle(state, subtopic, perfectCycle(now), now)
	require.NoError(t, err)

	require.Equal(t, before, *state, "input snapshot must not be mutated")
}

func TestEvaluateCycleValidationLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Now().UTC()

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)

	events := []domain.RawAttemptEvent{
		{Kind: "karaoke", AttemptIndex: 1, OccurredAt: now},
	}

	result, err := service.EvaluateCycle(state, subtopic, events, now)
	require.Nil(t, result)
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Equal(t, domain.MasteryNotStarted, state.MasteryLevel)
	require.Equal(t, 0, state.Version)
}

func TestEvaluateCycleExpertWithoutDueReview(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Now().UTC()

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)
	state.MasteryLevel = domain.MasteryExpert
	state.TotalAttempts = 20
	state.CorrectAttempts = 18
	future := now.AddDate(0, 0, 30)
	state.NextReviewDate = &future
	state.IntervalDays = 30

	_, err = service.EvaluateCycle(state, subtopic, perfectCycle(now), now)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestEvaluateCycleSecondCycleAdvances(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)

	first, err := service.EvaluateCycle(state, subtopic, perfectCycle(now), now)
	require.NoError(t, err)

	// Second cycle before the review is due: not a review, schedule stays.
	later := now.Add(24 * time.Hour)
	second, err := service.EvaluateCycle(first.State, subtopic, perfectCycle(later), later)
	require.NoError(t, err)

	require.Equal(t, domain.MasteryMastered, second.State.MasteryLevel)
	require.NotNil(t, second.State.CompletedAt)
	require.Equal(t, 7, second.State.IntervalDays, "non-review cycle keeps the schedule")
	require.Equal(t, 2, second.State.Version)
}

func TestEvaluateCycleDueReviewSuccessGrowsInterval(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Date(2026, 4, 20, 8, 0, 0, 0, time.UTC)

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)
	state.MasteryLevel = domain.MasteryMastered
	state.TotalAttempts = 8
	state.CorrectAttempts = 8
	due := now.Add(-2 * time.Hour)
	state.NextReviewDate = &due
	state.IntervalDays = 7
	completed := now.AddDate(0, 0, -7)
	state.CompletedAt = &completed

	result, err := service.EvaluateCycle(state, subtopic, perfectCycle(now), now)
	require.NoError(t, err)

	// 7 * 1.5 = 10.5 rounds half-up to 11.
	require.Equal(t, 11, result.State.IntervalDays)
	require.Equal(t, domain.MasteryMastered, result.State.MasteryLevel)
	require.True(t, result.Decision.ReviewSucceeded)
	require.Equal(t, 1, result.State.ConsecutiveReviews)
}

func TestEvaluateCycleDueReviewFailureShrinksInterval(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Date(2026, 4, 20, 8, 0, 0, 0, time.UTC)

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)
	state.MasteryLevel = domain.MasteryMastered
	state.TotalAttempts = 8
	state.CorrectAttempts = 8
	state.ConsecutiveReviews = 1
	due := now.AddDate(0, 0, -1)
	state.NextReviewDate = &due
	state.IntervalDays = 10

	result, err := service.EvaluateCycle(state, subtopic, weakCycle(now), now)
	require.NoError(t, err)

	require.False(t, result.Decision.ReviewSucceeded)
	require.Equal(t, 5, result.State.IntervalDays, "failed review halves the interval")
	require.Equal(t, domain.MasteryLearning, result.State.MasteryLevel,
		"score of 65 remediates back to learning")
	require.Equal(t, 0, result.State.ConsecutiveReviews)
}

func TestEvaluateCyclePromotesToExpert(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)
	state.MasteryLevel = domain.MasteryMastered
	state.TotalAttempts = 8
	state.CorrectAttempts = 8

	// Two consecutive on-time reviews at a strong score.
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	due := now
	state.NextReviewDate = &due
	state.IntervalDays = 7

	first, err := service.EvaluateCycle(state, subtopic, perfectCycle(now), now)
	require.NoError(t, err)
	require.Equal(t, domain.MasteryMastered, first.State.MasteryLevel)
	require.Equal(t, 1, first.State.ConsecutiveReviews)

	secondAt := *first.State.NextReviewDate
	second, err := service.EvaluateCycle(first.State, subtopic, perfectCycle(secondAt), secondAt)
	require.NoError(t, err)

	require.Equal(t, domain.MasteryExpert, second.State.MasteryLevel)
	require.Equal(t, 2, second.State.ConsecutiveReviews)
}

func TestEvaluateCycleDeterministic(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)

	a, err := service.EvaluateCycle(state, subtopic, weakCycle(now), now)
	require.NoError(t, err)
	b, err := service.EvaluateCycle(state, subtopic, weakCycle(now), now)
	require.NoError(t, err)

	require.Equal(t, a.Score, b.Score)
	require.Equal(t, a.Decision, b.Decision)
	require.Equal(t, a.State, b.State)
}

func TestEvaluateCycleNilInputs(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	subtopic := testSubtopic()
	now := time.Now().UTC()

	_, err := service.EvaluateCycle(nil, subtopic, nil, now)
	require.ErrorIs(t, err, ErrNilState)

	state, err := domain.NewSubtopicProgressState(uuid.New(), subtopic.ID)
	require.NoError(t, err)

	_, err = service.EvaluateCycle(state, nil, nil, now)
	require.ErrorIs(t, err, ErrNilSubtopic)
}
