package progression

import (
	"math"
	"time"
)

// ReviewOutcome classifies a due review for scheduling purposes.
type ReviewOutcome string

// Possible review outcomes
const (
	ReviewSuccess ReviewOutcome = "success"
	ReviewFailure ReviewOutcome = "failure"
)

// growthFactor is the interval multiplier for a successful review. It is
// linear in the mastery score: BaseGrowthFactor at the advance threshold,
// MaxGrowthFactor at 100. This ties growth directly to the mastery score
// instead of a separately tracked easiness factor, keeping a single source
// of truth. Scores are clamped to the [threshold, 100] range first.
func growthFactor(masteryTotal float64, params *Params) float64 {
	span := 100 - params.AdvanceThreshold
	if span <= 0 {
		return params.BaseGrowthFactor
	}

	t := clamp(masteryTotal, params.AdvanceThreshold, 100)
	return params.BaseGrowthFactor +
		(params.MaxGrowthFactor-params.BaseGrowthFactor)*(t-params.AdvanceThreshold)/span
}

// Schedule computes the next spaced-repetition interval and review date
// after a due review.
//
//   - success: interval grows by the mastery-sensitive growth factor,
//     rounded half-up and capped at MaxIntervalDays
//   - failure: interval halves, rounded down, never below one day
//
// The returned date is now plus the new interval in days. Pure function;
// the caller persists the result.
func Schedule(
	currentIntervalDays int,
	masteryTotal float64,
	outcome ReviewOutcome,
	now time.Time,
	params *Params,
) (int, time.Time) {
	var next int

	switch outcome {
	case ReviewSuccess:
		grown := float64(currentIntervalDays) * growthFactor(masteryTotal, params)
		next = roundHalfUp(grown)
		if next > params.MaxIntervalDays {
			next = params.MaxIntervalDays
		}
		if next < 1 {
			next = 1
		}
	default:
		next = int(math.Floor(float64(currentIntervalDays) * params.FailureShrinkFactor))
		if next < 1 {
			next = 1
		}
	}

	return next, nextReviewDate(now, next)
}

// Seed produces the initial interval and review date when a subtopic first
// reaches a scheduled evaluation. seedDays comes from the decider table;
// below the advance threshold no scheduling occurs and Seed is not called.
func Seed(seedDays int, now time.Time) (int, time.Time) {
	return seedDays, nextReviewDate(now, seedDays)
}

// nextReviewDate is now plus the interval, truncated to midnight UTC so
// reviews become due at the start of their day.
func nextReviewDate(now time.Time, intervalDays int) time.Time {
	return now.UTC().Truncate(24*time.Hour).AddDate(0, 0, intervalDays)
}

// roundHalfUp rounds to the nearest integer with .5 rounding up, the fixed
// rounding rule for interval growth.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
