package progression

// Params defines all configurable parameters for the progression engine.
type Params struct {
	// Mastery score weights. Must sum to 1; weights of absent components
	// are redistributed proportionally across the present ones.
	FlashcardWeight  float64
	QuizWeight       float64
	EfficiencyWeight float64

	// Quiz scoring adjustments, in percentage points.
	QuizRetryPenalty     float64
	QuizImprovementBonus float64

	// Efficiency band, as ratios of elapsed to expected time. Full credit
	// inside [OnTimeLow, OnTimeHigh], linear decay to zero at ZeroLow/ZeroHigh.
	OnTimeLowRatio  float64
	OnTimeHighRatio float64
	ZeroLowRatio    float64
	ZeroHighRatio   float64

	// Decider thresholds on the total mastery score.
	MasteredThreshold  float64 // advance with the long review seed
	AdvanceThreshold   float64 // advance with the short review seed
	ExtraQuizThreshold float64 // remain, require one more quiz pass
	RemediateThreshold float64 // below this, restart from the article

	// Review interval seeds in days.
	LongSeedDays  int
	ShortSeedDays int

	// Spaced repetition growth. The growth factor is linear in the mastery
	// score: BaseGrowthFactor at AdvanceThreshold, MaxGrowthFactor at 100.
	BaseGrowthFactor    float64
	MaxGrowthFactor     float64
	MaxIntervalDays     int
	FailureShrinkFactor float64

	// ReviewPassThreshold is the score a due review must reach to succeed.
	ReviewPassThreshold float64

	// ExpertConsecutiveReviews is how many consecutive on-time reviews
	// scoring at MasteredThreshold promote mastered to expert. The product
	// rule is still being settled, so it is a parameter rather than a
	// constant.
	ExpertConsecutiveReviews int

	// OnTimeGraceDays is how many days past the due date a review still
	// counts as on-time for expert promotion.
	OnTimeGraceDays int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the defaults.
type ParamsConfig struct {
	FlashcardWeight  float64
	QuizWeight       float64
	EfficiencyWeight float64

	QuizRetryPenalty     float64
	QuizImprovementBonus float64

	MasteredThreshold  float64
	AdvanceThreshold   float64
	ExtraQuizThreshold float64
	RemediateThreshold float64

	LongSeedDays  int
	ShortSeedDays int

	BaseGrowthFactor    float64
	MaxGrowthFactor     float64
	MaxIntervalDays     int
	FailureShrinkFactor float64

	ReviewPassThreshold float64

	ExpertConsecutiveReviews int
	OnTimeGraceDays          int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		FlashcardWeight:  0.30,
		QuizWeight:       0.40,
		EfficiencyWeight: 0.30,

		QuizRetryPenalty:     10.0,
		QuizImprovementBonus: 5.0,

		OnTimeLowRatio:  0.8,
		OnTimeHighRatio: 1.2,
		ZeroLowRatio:    0.5,
		ZeroHighRatio:   2.0,

		MasteredThreshold:  90,
		AdvanceThreshold:   80,
		ExtraQuizThreshold: 70,
		RemediateThreshold: 50,

		LongSeedDays:  7,
		ShortSeedDays: 3,

		BaseGrowthFactor:    1.3,
		MaxGrowthFactor:     1.5,
		MaxIntervalDays:     60,
		FailureShrinkFactor: 0.5,

		ReviewPassThreshold: 80,

		ExpertConsecutiveReviews: 2,
		OnTimeGraceDays:          1,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.FlashcardWeight > 0 {
		params.FlashcardWeight = config.FlashcardWeight
	}
	if config.QuizWeight > 0 {
		params.QuizWeight = config.QuizWeight
	}
	if config.EfficiencyWeight > 0 {
		params.EfficiencyWeight = config.EfficiencyWeight
	}

	if config.QuizRetryPenalty > 0 {
		params.QuizRetryPenalty = config.QuizRetryPenalty
	}
	if config.QuizImprovementBonus > 0 {
		params.QuizImprovementBonus = config.QuizImprovementBonus
	}

	if config.MasteredThreshold > 0 {
		params.MasteredThreshold = config.MasteredThreshold
	}
	if config.AdvanceThreshold > 0 {
		params.AdvanceThreshold = config.AdvanceThreshold
	}
	if config.ExtraQuizThreshold > 0 {
		params.ExtraQuizThreshold = config.ExtraQuizThreshold
	}
	if config.RemediateThreshold > 0 {
		params.RemediateThreshold = config.RemediateThreshold
	}

	if config.LongSeedDays > 0 {
		params.LongSeedDays = config.LongSeedDays
	}
	if config.ShortSeedDays > 0 {
		params.ShortSeedDays = config.ShortSeedDays
	}

	if config.BaseGrowthFactor > 0 {
		params.BaseGrowthFactor = config.BaseGrowthFactor
	}
	if config.MaxGrowthFactor > 0 {
		params.MaxGrowthFactor = config.MaxGrowthFactor
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	if config.FailureShrinkFactor > 0 {
		params.FailureShrinkFactor = config.FailureShrinkFactor
	}

	if config.ReviewPassThreshold > 0 {
		params.ReviewPassThreshold = config.ReviewPassThreshold
	}

	if config.ExpertConsecutiveReviews > 0 {
		params.ExpertConsecutiveReviews = config.ExpertConsecutiveReviews
	}
	if config.OnTimeGraceDays > 0 {
		params.OnTimeGraceDays = config.OnTimeGraceDays
	}

	return params
}
