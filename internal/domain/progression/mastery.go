package progression

import (
	"github.com/looplearn/loop-api/internal/domain"
)

// ComputeMasteryScore combines the normalized samples of one evaluation
// cycle into a single 0-100 mastery score. It is a pure function of its
// inputs: no side effects, no randomness, so identical sample sets always
// produce identical scores.
//
// The score is a weighted sum of three components:
//   - flashcard correctness ratio
//   - quiz first-attempt correctness, with a retry penalty and an
//     improvement bonus for questions answered wrong then right
//   - time efficiency of the whole cycle against the expected time
//
// A component with no samples is excluded and its weight redistributed
// proportionally across the remaining components, so the effective weights
// always sum to 1.
func ComputeMasteryScore(
	samples []domain.AttemptSample,
	expectedTimeMsTotal int,
	params *Params,
) domain.MasteryScore {
	flashcard, hasFlashcard := flashcardComponent(samples)
	quiz, hasQuiz := quizComponent(samples, params)
	efficiency, hasEfficiency := efficiencyComponent(samples, expectedTimeMsTotal, params)

	fw, qw, ew := renormalizeWeights(
		params.FlashcardWeight, hasFlashcard,
		params.QuizWeight, hasQuiz,
		params.EfficiencyWeight, hasEfficiency,
	)

	total := flashcard*fw + quiz*qw + efficiency*ew

	return domain.MasteryScore{
		FlashcardComponent:  flashcard,
		QuizComponent:       quiz,
		EfficiencyComponent: efficiency,
		FlashcardWeight:     fw,
		QuizWeight:          qw,
		EfficiencyWeight:    ew,
		Total:               clamp(total, 0, 100),
	}
}

// flashcardComponent is the plain correctness ratio over flashcard samples,
// scaled to 100. Samples without a recorded correctness are skipped.
func flashcardComponent(samples []domain.AttemptSample) (float64, bool) {
	var total, correct int
	for _, s := range samples {
		if s.Kind != domain.AttemptKindFlashcard || s.Correct == nil {
			continue
		}
		total++
		if *s.Correct {
			correct++
		}
	}

	if total == 0 {
		return 0, false
	}
	return 100 * float64(correct) / float64(total), true
}

// quizComponent scores first-attempt correctness per question, subtracts the
// retry penalty for every attempt beyond the first, and adds a flat
// improvement bonus if any question went from wrong to right within the
// cycle. The result is clamped to [0, 100].
func quizComponent(samples []domain.AttemptSample, params *Params) (float64, bool) {
	type questionOutcome struct {
		firstCorrect bool
		sawFirst     bool
		sawIncorrect bool
		improved     bool
	}

	questions := make(map[string]*questionOutcome)
	var extraAttempts int

	for _, s := range samples {
		if s.Kind != domain.AttemptKindQuiz || s.Correct == nil {
			continue
		}

		q := questions[s.QuestionID]
		if q == nil {
			q = &questionOutcome{}
			questions[s.QuestionID] = q
		}

		if s.AttemptIndex == 1 {
			q.sawFirst = true
			q.firstCorrect = *s.Correct
		} else {
			extraAttempts++
		}

		if !*s.Correct {
			q.sawIncorrect = true
		} else if q.sawIncorrect {
			q.improved = true
		}
	}

	if len(questions) == 0 {
		return 0, false
	}

	var firstCorrect int
	var anyImproved bool
	for _, q := range questions {
		if q.sawFirst && q.firstCorrect {
			firstCorrect++
		}
		if q.improved {
			anyImproved = true
		}
	}

	score := 100 * float64(firstCorrect) / float64(len(questions))
	score -= params.QuizRetryPenalty * float64(extraAttempts)
	if score < 0 {
		score = 0
	}
	if anyImproved {
		score += params.QuizImprovementBonus
	}

	return clamp(score, 0, 100), true
}

// efficiencyComponent compares total elapsed time against the expected time
// for the cycle. Full credit inside the on-time band, linear decay to zero
// at the outer ratios, zero beyond them. Samples without timing are
// excluded; if none carry timing the component is absent.
func efficiencyComponent(
	samples []domain.AttemptSample,
	expectedTimeMsTotal int,
	params *Params,
) (float64, bool) {
	if expectedTimeMsTotal <= 0 {
		return 0, false
	}

	var elapsed int
	var timed bool
	for _, s := range samples {
		if s.ResponseTimeMs == nil {
			continue
		}
		elapsed += *s.ResponseTimeMs
		timed = true
	}

	if !timed {
		return 0, false
	}

	ratio := float64(elapsed) / float64(expectedTimeMsTotal)

	switch {
	case ratio >= params.OnTimeLowRatio && ratio <= params.OnTimeHighRatio:
		return 100, true
	case ratio < params.ZeroLowRatio || ratio > params.ZeroHighRatio:
		return 0, true
	case ratio < params.OnTimeLowRatio:
		// Linear between ZeroLowRatio (0) and OnTimeLowRatio (100).
		return 100 * (ratio - params.ZeroLowRatio) / (params.OnTimeLowRatio - params.ZeroLowRatio), true
	default:
		// Linear between OnTimeHighRatio (100) and ZeroHighRatio (0).
		return 100 * (params.ZeroHighRatio - ratio) / (params.ZeroHighRatio - params.OnTimeHighRatio), true
	}
}

// renormalizeWeights zeroes the weights of absent components and scales the
// remaining ones so they sum to 1. This is an explicit branch rather than an
// emergent effect of dividing by a possibly-zero count.
func renormalizeWeights(
	fw float64, hasFlashcard bool,
	qw float64, hasQuiz bool,
	ew float64, hasEfficiency bool,
) (float64, float64, float64) {
	if !hasFlashcard {
		fw = 0
	}
	if !hasQuiz {
		qw = 0
	}
	if !hasEfficiency {
		ew = 0
	}

	sum := fw + qw + ew
	if sum == 0 {
		return 0, 0, 0
	}

	return fw / sum, qw / sum, ew / sum
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
