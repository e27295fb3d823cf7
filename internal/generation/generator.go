package generation

import (
	"context"

	"github.com/looplearn/loop-api/internal/domain"
)

// Generator defines the interface for producing study content for a
// subtopic. It is the port to external AI/LLM services; the application
// core depends only on this interface.
type Generator interface {
	// GenerateStudyContent creates the article, flashcards and quiz for the
	// given subtopic.
	//
	// Returns the generated content or an error if generation fails (see
	// errors.go for the specific error types).
	GenerateStudyContent(ctx context.Context, subtopic *domain.Subtopic) (*domain.StudyContent, error)
}
