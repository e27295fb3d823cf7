package evaluation

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/store"
)

// SubtopicRepository defines the interface for repositories that can provide
// subtopic catalog data and support transactions.
type SubtopicRepository interface {
	// GetByID retrieves a subtopic by its unique ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error)

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SubtopicRepository
}

// ProgressRepository defines the interface for repositories that can provide
// progress state data and support transactions.
type ProgressRepository interface {
	// GetForUpdate retrieves a progress state with a row-level lock.
	GetForUpdate(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.SubtopicProgressState, error)

	// ListByUser retrieves all progress states of a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SubtopicProgressState, error)

	// Create saves a new progress state.
	Create(ctx context.Context, state *domain.SubtopicProgressState) error

	// Update persists a modified progress state.
	Update(ctx context.Context, state *domain.SubtopicProgressState) error

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// NewSubtopicRepositoryAdapter creates a new adapter that allows a
// store.SubtopicStore to be used where a SubtopicRepository is expected.
func NewSubtopicRepositoryAdapter(subtopicStore store.SubtopicStore) SubtopicRepository {
	return &subtopicRepositoryAdapter{subtopicStore: subtopicStore}
}

type subtopicRepositoryAdapter struct {
	subtopicStore store.SubtopicStore
}

func (a *subtopicRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	return a.subtopicStore.GetByID(ctx, id)
}

func (a *subtopicRepositoryAdapter) WithTx(tx *sql.Tx) SubtopicRepository {
	return &subtopicRepositoryAdapter{subtopicStore: a.subtopicStore.WithTx(tx)}
}

// NewProgressRepositoryAdapter creates a new adapter that allows a
// store.ProgressStore to be used where a ProgressRepository is expected.
func NewProgressRepositoryAdapter(progressStore store.ProgressStore, db *sql.DB) ProgressRepository {
	return &progressRepositoryAdapter{
		progressStore: progressStore,
		db:            db,
	}
}

type progressRepositoryAdapter struct {
	progressStore store.ProgressStore
	db            *sql.DB
}

func (a *progressRepositoryAdapter) GetForUpdate(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.SubtopicProgressState, error) {
	return a.progressStore.GetForUpdate(ctx, userID, subtopicID)
}

func (a *progressRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SubtopicProgressState, error) {
	return a.progressStore.ListByUser(ctx, userID)
}

func (a *progressRepositoryAdapter) Create(ctx context.Context, state *domain.SubtopicProgressState) error {
	return a.progressStore.Create(ctx, state)
}

func (a *progressRepositoryAdapter) Update(ctx context.Context, state *domain.SubtopicProgressState) error {
	return a.progressStore.Update(ctx, state)
}

func (a *progressRepositoryAdapter) WithTx(tx *sql.Tx) ProgressRepository {
	return &progressRepositoryAdapter{
		progressStore: a.progressStore.WithTx(tx),
		db:            a.db,
	}
}

func (a *progressRepositoryAdapter) DB() *sql.DB {
	return a.db
}
