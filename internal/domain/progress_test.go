package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSubtopicProgressState(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	subtopicID := uuid.New()

	state, err := NewSubtopicProgressState(userID, subtopicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.MasteryLevel != MasteryNotStarted {
		t.Errorf("initial level = %s, want not_started", state.MasteryLevel)
	}
	if state.NextReviewDate != nil {
		t.Error("a fresh state must have no review date")
	}
	if state.IntervalDays != 0 {
		t.Errorf("initial interval = %d, want 0", state.IntervalDays)
	}
}

func TestSubtopicProgressStateValidate(t *testing.T) {
	t.Parallel()

	valid := func() *SubtopicProgressState {
		return &SubtopicProgressState{
			UserID:       uuid.New(),
			SubtopicID:   uuid.New(),
			MasteryLevel: MasteryLearning,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*SubtopicProgressState)
		wantErr error
	}{
		{
			name:   "valid state",
			mutate: func(*SubtopicProgressState) {},
		},
		{
			name:    "missing user ID",
			mutate:  func(s *SubtopicProgressState) { s.UserID = uuid.Nil },
			wantErr: ErrProgressUserIDEmpty,
		},
		{
			name:    "missing subtopic ID",
			mutate:  func(s *SubtopicProgressState) { s.SubtopicID = uuid.Nil },
			wantErr: ErrProgressSubtopicIDEmpty,
		},
		{
			name:    "unknown mastery level",
			mutate:  func(s *SubtopicProgressState) { s.MasteryLevel = "legendary" },
			wantErr: ErrInvalidMasteryLevel,
		},
		{
			name: "correct exceeding total",
			mutate: func(s *SubtopicProgressState) {
				s.TotalAttempts = 3
				s.CorrectAttempts = 4
			},
			wantErr: ErrCorrectExceedsTotal,
		},
		{
			name:    "negative interval",
			mutate:  func(s *SubtopicProgressState) { s.IntervalDays = -1 },
			wantErr: ErrNegativeInterval,
		},
		{
			name:    "confidence out of range",
			mutate:  func(s *SubtopicProgressState) { s.ConfidenceScore = 1.5 },
			wantErr: ErrConfidenceOutOfRange,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := valid()
			tc.mutate(state)

			err := state.Validate()
			if err != tc.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestMasteryLevelOrdering(t *testing.T) {
	t.Parallel()

	if !MasteryExpert.AtLeast(MasteryMastered) {
		t.Error("expert should be at least mastered")
	}
	if MasteryPracticed.AtLeast(MasteryMastered) {
		t.Error("practiced should not be at least mastered")
	}

	regressions := map[MasteryLevel]MasteryLevel{
		MasteryExpert:     MasteryMastered,
		MasteryMastered:   MasteryPracticed,
		MasteryPracticed:  MasteryLearning,
		MasteryLearning:   MasteryNotStarted,
		MasteryNotStarted: MasteryNotStarted,
	}
	for from, want := range regressions {
		if got := from.Regressed(); got != want {
			t.Errorf("%s.Regressed() = %s, want %s", from, got, want)
		}
	}
}

func TestSubtopicProgressStateClone(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	state := &SubtopicProgressState{
		UserID:         uuid.New(),
		SubtopicID:     uuid.New(),
		MasteryLevel:   MasteryMastered,
		NextReviewDate: &now,
	}

	clone := state.Clone()
	future := now.AddDate(0, 0, 7)
	clone.NextReviewDate = &future
	clone.MasteryLevel = MasteryExpert

	if state.MasteryLevel != MasteryMastered {
		t.Error("clone mutation leaked into the original level")
	}
	if !state.NextReviewDate.Equal(now) {
		t.Error("clone mutation leaked into the original review date")
	}
}

func TestReviewDue(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	state := &SubtopicProgressState{}

	if state.ReviewDue(now) {
		t.Error("state without a review date is never due")
	}

	past := now.AddDate(0, 0, -1)
	state.NextReviewDate = &past
	if !state.ReviewDue(now) {
		t.Error("past review date should be due")
	}

	future := now.AddDate(0, 0, 1)
	state.NextReviewDate = &future
	if state.ReviewDue(now) {
		t.Error("future review date should not be due")
	}
}
