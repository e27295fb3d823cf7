package domain

// MasteryScore is the composite result of one evaluation cycle. It is a
// transient value object: computed fresh each cycle, returned to the API
// layer for feedback display, and only Total feeds into the persisted
// SubtopicProgressState.
type MasteryScore struct {
	FlashcardComponent  float64 `json:"flashcard_component"`
	QuizComponent       float64 `json:"quiz_component"`
	EfficiencyComponent float64 `json:"efficiency_component"`

	// Effective weights after renormalization for absent components.
	// They always sum to 1.
	FlashcardWeight  float64 `json:"flashcard_weight"`
	QuizWeight       float64 `json:"quiz_weight"`
	EfficiencyWeight float64 `json:"efficiency_weight"`

	// Total is the weighted sum, clamped to [0, 100].
	Total float64 `json:"total"`
}
