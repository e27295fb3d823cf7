package progression

import (
	"errors"
	"time"

	"github.com/looplearn/loop-api/internal/domain"
)

// Common engine errors
var (
	// ErrInvalidStateTransition signals that the decider was invoked on a
	// subtopic already in a terminal expert state with no review due. This
	// is a programming-contract violation in the caller, not a user-facing
	// condition.
	ErrInvalidStateTransition = errors.New("invalid progression state transition")

	ErrNilState    = errors.New("progress state cannot be nil")
	ErrNilSubtopic = errors.New("subtopic cannot be nil")
)

// Action is what the user is asked to do after an evaluation cycle.
type Action string

// Possible progression actions
const (
	// ActionAdvance moves on to new material with the long review seed.
	ActionAdvance Action = "advance"

	// ActionAdvanceShortReview moves on but schedules an early review.
	ActionAdvanceShortReview Action = "advance_short_review"

	// ActionExtraQuiz keeps the level and requires one more quiz pass.
	ActionExtraQuiz Action = "extra_quiz"

	// ActionRemediate re-shows the flashcards and retries the quiz.
	ActionRemediate Action = "remediate"

	// ActionRestart requires re-reading the article from scratch.
	ActionRestart Action = "restart"
)

// Decision is the outcome of one decider evaluation.
type Decision struct {
	Action           Action
	NextLevel        domain.MasteryLevel
	SeedIntervalDays int // 0 means the cycle seeds no review schedule
	ReviewSucceeded  bool
	WasDueReview     bool
}

// cycleFacts captures the situational inputs the transition table depends
// on, separate from the score itself.
type cycleFacts struct {
	firstCycle bool
	dueReview  bool
	onTime     bool
}

// transitionRule is one row of the progression table. Rows are evaluated
// top-down against the total mastery score; the first row whose MinScore is
// reached applies.
type transitionRule struct {
	minScore  func(p *Params) float64
	action    Action
	seedDays  func(p *Params) int
	nextLevel func(current domain.MasteryLevel) domain.MasteryLevel
}

// transitionTable is the state machine over mastery levels, kept as one
// auditable table rather than scattered conditionals.
var transitionTable = []transitionRule{
	{
		// Strong pass: advance toward mastered, long review seed.
		minScore: func(p *Params) float64 { return p.MasteredThreshold },
		action:   ActionAdvance,
		seedDays: func(p *Params) int { return p.LongSeedDays },
		nextLevel: func(current domain.MasteryLevel) domain.MasteryLevel {
			if current.AtLeast(domain.MasteryMastered) {
				return current
			}
			return domain.MasteryMastered
		},
	},
	{
		// Pass: advance one step, short review seed.
		minScore: func(p *Params) float64 { return p.AdvanceThreshold },
		action:   ActionAdvanceShortReview,
		seedDays: func(p *Params) int { return p.ShortSeedDays },
		nextLevel: func(current domain.MasteryLevel) domain.MasteryLevel {
			switch current {
			case domain.MasteryNotStarted, domain.MasteryLearning:
				return domain.MasteryPracticed
			case domain.MasteryPracticed:
				return domain.MasteryMastered
			default:
				return current
			}
		},
	},
	{
		// Near miss: level unchanged, one more quiz pass required.
		minScore:  func(p *Params) float64 { return p.ExtraQuizThreshold },
		action:    ActionExtraQuiz,
		seedDays:  func(p *Params) int { return 0 },
		nextLevel: func(current domain.MasteryLevel) domain.MasteryLevel { return current },
	},
	{
		// Weak: back to learning, re-show flashcards.
		minScore: func(p *Params) float64 { return p.RemediateThreshold },
		action:   ActionRemediate,
		seedDays: func(p *Params) int { return 0 },
		nextLevel: func(current domain.MasteryLevel) domain.MasteryLevel {
			if current.AtLeast(domain.MasteryLearning) {
				return domain.MasteryLearning
			}
			return current
		},
	},
	{
		// Failed outright: restart from the article.
		minScore:  func(p *Params) float64 { return 0 },
		action:    ActionRestart,
		seedDays:  func(p *Params) int { return 0 },
		nextLevel: func(domain.MasteryLevel) domain.MasteryLevel { return domain.MasteryNotStarted },
	},
}

// decide maps a total mastery score and the current state to the action,
// next level and review seed for this cycle.
//
// Two rules sit outside the table proper:
//   - the first-ever completed cycle always lands in learning, whatever the
//     score, so a subtopic cannot skip straight to mastered
//   - a failed due review regresses the level at least one step, on top of
//     whatever the score row says
//
// Expert is never produced by the table; promotion to expert happens only
// via consecutive successful on-time reviews, handled by applyReviewStreak.
func decide(
	total float64,
	current domain.MasteryLevel,
	facts cycleFacts,
	params *Params,
) Decision {
	var rule transitionRule
	for _, r := range transitionTable {
		if total >= r.minScore(params) {
			rule = r
			break
		}
	}

	next := rule.nextLevel(current)

	if facts.firstCycle {
		// First completed evaluation always enters learning.
		next = domain.MasteryLearning
	}

	decision := Decision{
		Action:           rule.action,
		NextLevel:        next,
		SeedIntervalDays: rule.seedDays(params),
		WasDueReview:     facts.dueReview,
	}

	if facts.dueReview {
		decision.ReviewSucceeded = total >= params.ReviewPassThreshold
		if !decision.ReviewSucceeded {
			regressed := current.Regressed()
			if regressed.Rank() < decision.NextLevel.Rank() {
				decision.NextLevel = regressed
			}
		}
	}

	return decision
}

// applyReviewStreak updates the consecutive-review counter and promotes
// mastered to expert once the configured number of consecutive on-time
// reviews at the mastered threshold is reached.
func applyReviewStreak(
	state *domain.SubtopicProgressState,
	decision *Decision,
	total float64,
	facts cycleFacts,
	params *Params,
) {
	if !facts.dueReview {
		return
	}

	if decision.ReviewSucceeded && facts.onTime && total >= params.MasteredThreshold {
		state.ConsecutiveReviews++
		if decision.NextLevel == domain.MasteryMastered &&
			state.ConsecutiveReviews >= params.ExpertConsecutiveReviews {
			decision.NextLevel = domain.MasteryExpert
		}
	} else {
		state.ConsecutiveReviews = 0
	}
}

// onTimeReview reports whether a due review performed at now still counts
// as on-time for expert promotion.
func onTimeReview(state *domain.SubtopicProgressState, now time.Time, params *Params) bool {
	if state.NextReviewDate == nil {
		return false
	}
	grace := time.Duration(params.OnTimeGraceDays) * 24 * time.Hour
	return !now.After(state.NextReviewDate.Add(grace))
}
