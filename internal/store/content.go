package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/looplearn/loop-api/internal/domain"
)

// ContentStore defines the interface for generated study content
// persistence.
type ContentStore interface {
	// Save persists the study content for a subtopic, replacing any
	// previously generated content for it.
	Save(ctx context.Context, content *domain.StudyContent) error

	// GetBySubtopic retrieves the content generated for a subtopic.
	// Returns ErrContentNotFound if none has been generated yet.
	GetBySubtopic(ctx context.Context, subtopicID uuid.UUID) (*domain.StudyContent, error)

	// WithTx returns a new ContentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ContentStore
}
