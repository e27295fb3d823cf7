package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/store"
)

// PostgresContentStore implements the store.ContentStore interface
// using a PostgreSQL database as the storage backend. The article,
// flashcards and quiz are stored together as one JSONB document.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentStore creates a new PostgreSQL implementation of the ContentStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure PostgresContentStore implements store.ContentStore interface
var _ store.ContentStore = (*PostgresContentStore)(nil)

// WithTx implements store.ContentStore.WithTx
func (s *PostgresContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &PostgresContentStore{
		db:     tx,
		logger: s.logger,
	}
}

// contentDocument is the JSONB shape persisted in the body column.
type contentDocument struct {
	Article       string                `json:"article"`
	Flashcards    []domain.Flashcard    `json:"flashcards"`
	QuizQuestions []domain.QuizQuestion `json:"quiz_questions"`
}

// Save implements store.ContentStore.Save. Regeneration replaces the
// previous content for the subtopic.
func (s *PostgresContentStore) Save(ctx context.Context, content *domain.StudyContent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := content.Validate(); err != nil {
		log.Warn("study content validation failed during save",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", content.SubtopicID.String()))
		return err
	}

	body, err := json.Marshal(contentDocument{
		Article:       content.Article,
		Flashcards:    content.Flashcards,
		QuizQuestions: content.QuizQuestions,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal study content: %w", err)
	}

	query := `
		INSERT INTO study_contents (id, subtopic_id, body, model_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subtopic_id) DO UPDATE
		SET id = EXCLUDED.id,
		    body = EXCLUDED.body,
		    model_name = EXCLUDED.model_name,
		    created_at = EXCLUDED.created_at
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		content.ID,
		content.SubtopicID,
		body,
		content.ModelName,
		content.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: subtopic does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to save study content",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", content.SubtopicID.String()))
		return MapError(err)
	}

	log.Info("study content saved",
		slog.String("subtopic_id", content.SubtopicID.String()),
		slog.Int("flashcard_count", len(content.Flashcards)),
		slog.Int("quiz_count", len(content.QuizQuestions)))
	return nil
}

// GetBySubtopic implements store.ContentStore.GetBySubtopic
// Returns store.ErrContentNotFound if no content has been generated yet.
func (s *PostgresContentStore) GetBySubtopic(ctx context.Context, subtopicID uuid.UUID) (*domain.StudyContent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, subtopic_id, body, model_name, created_at
		FROM study_contents
		WHERE subtopic_id = $1
	`

	var content domain.StudyContent
	var body []byte
	err := s.db.QueryRowContext(ctx, query, subtopicID).Scan(
		&content.ID,
		&content.SubtopicID,
		&body,
		&content.ModelName,
		&content.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("study content not found",
				slog.String("subtopic_id", subtopicID.String()))
			return nil, store.ErrContentNotFound
		}
		log.Error("failed to get study content",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopicID.String()))
		return nil, MapError(err)
	}

	var doc contentDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal study content body: %w", err)
	}
	content.Article = doc.Article
	content.Flashcards = doc.Flashcards
	content.QuizQuestions = doc.QuizQuestions

	return &content, nil
}
