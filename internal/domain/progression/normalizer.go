package progression

import (
	"fmt"

	"github.com/looplearn/loop-api/internal/domain"
)

// Normalize converts the raw attempt events of one evaluation cycle into
// uniform AttemptSample values. Events missing timing information get a nil
// ResponseTimeMs and are excluded from the efficiency component, but still
// count toward correctness.
//
// Returns a validation error (wrapping domain.ErrValidation) if an event
// references an unknown kind or a non-positive attempt index. Validation
// happens before any state mutation, so a malformed batch leaves prior
// progress untouched.
func Normalize(events []domain.RawAttemptEvent, expectedTimeMs int) ([]domain.AttemptSample, error) {
	samples := make([]domain.AttemptSample, 0, len(events))

	for i, ev := range events {
		if !ev.Kind.IsValid() {
			return nil, fmt.Errorf("%w: event %d: %w %q",
				domain.ErrValidation, i, domain.ErrInvalidAttemptKind, ev.Kind)
		}
		if ev.AttemptIndex < 1 {
			return nil, fmt.Errorf("%w: event %d: attempt index must be at least 1, got %d",
				domain.ErrValidation, i, ev.AttemptIndex)
		}
		if ev.ResponseTimeMs != nil && *ev.ResponseTimeMs < 0 {
			return nil, fmt.Errorf("%w: event %d: response time cannot be negative",
				domain.ErrValidation, i)
		}

		sample := domain.AttemptSample{
			Kind:           ev.Kind,
			QuestionID:     ev.QuestionID,
			AttemptIndex:   ev.AttemptIndex,
			ExpectedTimeMs: expectedTimeMs,
		}
		if ev.Correct != nil {
			c := *ev.Correct
			sample.Correct = &c
		}
		if ev.ResponseTimeMs != nil {
			t := *ev.ResponseTimeMs
			sample.ResponseTimeMs = &t
		}

		samples = append(samples, sample)
	}

	return samples, nil
}
