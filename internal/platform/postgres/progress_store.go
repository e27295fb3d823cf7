package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

const progressColumns = `
	user_id, subtopic_id, mastery_level, confidence_score,
	total_attempts, correct_attempts, consecutive_reviews,
	last_attempt_at, completed_at, next_review_date, interval_days,
	version, created_at, updated_at
`

// Create implements store.ProgressStore.Create
// Returns store.ErrProgressExists if a state already exists for the user and subtopic.
func (s *PostgresProgressStore) Create(ctx context.Context, state *domain.SubtopicProgressState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("subtopic_id", state.SubtopicID.String()))
		return err
	}

	query := `
		INSERT INTO subtopic_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.SubtopicID,
		state.MasteryLevel,
		state.ConfidenceScore,
		state.TotalAttempts,
		state.CorrectAttempts,
		state.ConsecutiveReviews,
		state.LastAttemptAt,
		state.CompletedAt,
		state.NextReviewDate,
		state.IntervalDays,
		state.Version,
		state.CreatedAt,
		state.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrProgressExists
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user or subtopic does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create progress state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("subtopic_id", state.SubtopicID.String()))
		return MapError(err)
	}

	log.Info("progress state created",
		slog.String("user_id", state.UserID.String()),
		slog.String("subtopic_id", state.SubtopicID.String()))
	return nil
}

// Get implements store.ProgressStore.Get
// Returns store.ErrProgressNotFound if the state does not exist.
func (s *PostgresProgressStore) Get(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.SubtopicProgressState, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM subtopic_progress
		WHERE user_id = $1 AND subtopic_id = $2
	`
	return s.getRow(ctx, query, userID, subtopicID)
}

// GetForUpdate implements store.ProgressStore.GetForUpdate
// It locks the row with SELECT FOR UPDATE; call it inside a transaction.
// Returns store.ErrProgressNotFound if the state does not exist.
func (s *PostgresProgressStore) GetForUpdate(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.SubtopicProgressState, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM subtopic_progress
		WHERE user_id = $1 AND subtopic_id = $2
		FOR UPDATE
	`
	return s.getRow(ctx, query, userID, subtopicID)
}

func (s *PostgresProgressStore) getRow(ctx context.Context, query string, userID, subtopicID uuid.UUID) (*domain.SubtopicProgressState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	state, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, subtopicID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("progress state not found",
				slog.String("user_id", userID.String()),
				slog.String("subtopic_id", subtopicID.String()))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("subtopic_id", subtopicID.String()))
		return nil, MapError(err)
	}

	return state, nil
}

// Update implements store.ProgressStore.Update
// The write is guarded by the previous version (state.Version - 1); a row
// that has moved on yields store.ErrVersionConflict.
func (s *PostgresProgressStore) Update(ctx context.Context, state *domain.SubtopicProgressState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("subtopic_id", state.SubtopicID.String()))
		return err
	}

	query := `
		UPDATE subtopic_progress
		SET mastery_level = $1, confidence_score = $2,
		    total_attempts = $3, correct_attempts = $4, consecutive_reviews = $5,
		    last_attempt_at = $6, completed_at = $7, next_review_date = $8,
		    interval_days = $9, version = $10, updated_at = $11
		WHERE user_id = $12 AND subtopic_id = $13 AND version = $14
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		state.MasteryLevel,
		state.ConfidenceScore,
		state.TotalAttempts,
		state.CorrectAttempts,
		state.ConsecutiveReviews,
		state.LastAttemptAt,
		state.CompletedAt,
		state.NextReviewDate,
		state.IntervalDays,
		state.Version,
		state.UpdatedAt,
		state.UserID,
		state.SubtopicID,
		state.Version-1,
	)

	if err != nil {
		log.Error("failed to update progress state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("subtopic_id", state.SubtopicID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "subtopic progress"); err != nil {
		// Distinguish a missing row from a version mismatch.
		_, getErr := s.Get(ctx, state.UserID, state.SubtopicID)
		if errors.Is(getErr, store.ErrProgressNotFound) {
			return store.ErrProgressNotFound
		}
		log.Warn("progress version conflict",
			slog.String("user_id", state.UserID.String()),
			slog.String("subtopic_id", state.SubtopicID.String()),
			slog.Int("version", state.Version))
		return store.ErrVersionConflict
	}

	log.Debug("progress state updated",
		slog.String("user_id", state.UserID.String()),
		slog.String("subtopic_id", state.SubtopicID.String()),
		slog.String("mastery_level", string(state.MasteryLevel)),
		slog.Int("version", state.Version))
	return nil
}

// ListByUser implements store.ProgressStore.ListByUser
func (s *PostgresProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SubtopicProgressState, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM subtopic_progress
		WHERE user_id = $1
	`
	return s.listRows(ctx, query, userID)
}

// ListDue implements store.ProgressStore.ListDue
func (s *PostgresProgressStore) ListDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.SubtopicProgressState, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM subtopic_progress
		WHERE user_id = $1 AND next_review_date IS NOT NULL AND next_review_date <= $2
		ORDER BY next_review_date ASC
	`
	return s.listRows(ctx, query, userID, now)
}

func (s *PostgresProgressStore) listRows(ctx context.Context, query string, args ...any) ([]domain.SubtopicProgressState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list progress states", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var states []domain.SubtopicProgressState
	for rows.Next() {
		state, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to scan progress row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return states, nil
}

func scanProgress(row rowScanner) (*domain.SubtopicProgressState, error) {
	var state domain.SubtopicProgressState
	var level string

	err := row.Scan(
		&state.UserID,
		&state.SubtopicID,
		&level,
		&state.ConfidenceScore,
		&state.TotalAttempts,
		&state.CorrectAttempts,
		&state.ConsecutiveReviews,
		&state.LastAttemptAt,
		&state.CompletedAt,
		&state.NextReviewDate,
		&state.IntervalDays,
		&state.Version,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	state.MasteryLevel = domain.MasteryLevel(level)
	return &state, nil
}
