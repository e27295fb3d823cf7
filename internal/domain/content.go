package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Study content validation errors
var (
	ErrContentSubtopicIDEmpty = errors.New("study content subtopic ID cannot be empty")
	ErrContentArticleEmpty    = errors.New("study content article cannot be empty")
	ErrContentNoFlashcards    = errors.New("study content must contain at least one flashcard")
	ErrContentNoQuiz          = errors.New("study content must contain at least one quiz question")
)

// Flashcard is one front/back pair inside generated study content.
type Flashcard struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// QuizQuestion is one multiple-choice question inside generated study
// content. AnswerIndex points into Options.
type QuizQuestion struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation,omitempty"`
}

// StudyContent is the generated material for one subtopic: an article to
// read, flashcards to drill and a quiz to pass. One content record exists
// per subtopic; regeneration replaces it.
type StudyContent struct {
	ID            uuid.UUID      `json:"id"`
	SubtopicID    uuid.UUID      `json:"subtopic_id"`
	Article       string         `json:"article"`
	Flashcards    []Flashcard    `json:"flashcards"`
	QuizQuestions []QuizQuestion `json:"quiz_questions"`
	ModelName     string         `json:"model_name,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewStudyContent creates a validated study content record for a subtopic.
func NewStudyContent(
	subtopicID uuid.UUID,
	article string,
	flashcards []Flashcard,
	quizQuestions []QuizQuestion,
	modelName string,
) (*StudyContent, error) {
	content := &StudyContent{
		ID:            uuid.New(),
		SubtopicID:    subtopicID,
		Article:       article,
		Flashcards:    flashcards,
		QuizQuestions: quizQuestions,
		ModelName:     modelName,
		CreatedAt:     time.Now().UTC(),
	}

	if err := content.Validate(); err != nil {
		return nil, err
	}

	return content, nil
}

// Validate checks if the StudyContent has valid data.
func (c *StudyContent) Validate() error {
	if c.ID == uuid.Nil {
		return ErrInvalidID
	}
	if c.SubtopicID == uuid.Nil {
		return ErrContentSubtopicIDEmpty
	}
	if c.Article == "" {
		return ErrContentArticleEmpty
	}
	if len(c.Flashcards) == 0 {
		return ErrContentNoFlashcards
	}
	if len(c.QuizQuestions) == 0 {
		return ErrContentNoQuiz
	}
	return nil
}
