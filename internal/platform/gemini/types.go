package gemini

// promptData carries the template variables for the content prompt.
type promptData struct {
	SubtopicName        string
	SubtopicDescription string
	ExpectedTimeMinutes int
}

// flashcardSchema is one flashcard in the structured model response.
type flashcardSchema struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// quizQuestionSchema is one quiz question in the structured model response.
type quizQuestionSchema struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation,omitempty"`
}

// responseSchema is the JSON document the model is instructed to return.
type responseSchema struct {
	Article    string               `json:"article"`
	Flashcards []flashcardSchema    `json:"flashcards"`
	Quiz       []quizQuestionSchema `json:"quiz"`
}
