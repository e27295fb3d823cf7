package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/looplearn/loop-api/internal/domain"
)

// ProgressStore defines the interface for subtopic progress persistence.
// Version: 1.0
type ProgressStore interface {
	// Create saves a new progress state for a user and subtopic.
	// It handles domain validation internally.
	// Returns ErrProgressExists if a state already exists for the pair.
	Create(ctx context.Context, state *domain.SubtopicProgressState) error

	// Get retrieves a progress state by the combination of user ID and subtopic ID.
	// Returns ErrProgressNotFound if the state does not exist.
	// NOTE: This method does NOT provide any row locking, so it should not be used
	// when you plan to update the row and need concurrency protection.
	Get(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.SubtopicProgressState, error)

	// GetForUpdate retrieves a progress state with a row-level lock using
	// SELECT FOR UPDATE. This should be used within a transaction when you
	// plan to update the row and need protection from concurrent modifications.
	// Returns ErrProgressNotFound if the state does not exist.
	GetForUpdate(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.SubtopicProgressState, error)

	// Update persists a modified progress state.
	// The update is guarded by the state's previous version; if the stored
	// row has moved on, ErrVersionConflict is returned and nothing is written.
	// Returns ErrProgressNotFound if the state does not exist.
	Update(ctx context.Context, state *domain.SubtopicProgressState) error

	// ListByUser retrieves all progress states of a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SubtopicProgressState, error)

	// ListDue retrieves the user's progress states whose next review date is
	// at or before the given time, ordered by next review date ascending.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.SubtopicProgressState, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ProgressStore
}
