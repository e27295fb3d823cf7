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

// PostgresSubtopicStore implements the store.SubtopicStore interface
// using a PostgreSQL database as the storage backend.
//
// Prerequisite subtopic IDs are stored as a JSONB array of UUID strings.
type PostgresSubtopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubtopicStore creates a new PostgreSQL implementation of the SubtopicStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSubtopicStore(db store.DBTX, logger *slog.Logger) *PostgresSubtopicStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubtopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "subtopic_store")),
	}
}

// Ensure PostgresSubtopicStore implements store.SubtopicStore interface
var _ store.SubtopicStore = (*PostgresSubtopicStore)(nil)

// WithTx implements store.SubtopicStore.WithTx
func (s *PostgresSubtopicStore) WithTx(tx *sql.Tx) store.SubtopicStore {
	return &PostgresSubtopicStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.SubtopicStore.Create
func (s *PostgresSubtopicStore) Create(ctx context.Context, subtopic *domain.Subtopic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subtopic.Validate(); err != nil {
		log.Warn("subtopic validation failed during create",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopic.ID.String()))
		return err
	}

	prereqs, err := marshalPrerequisites(subtopic.Prerequisites)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subtopics
			(id, topic_id, name, description, order_index, expected_time_minutes,
			 prerequisites, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		subtopic.ID,
		subtopic.TopicID,
		subtopic.Name,
		subtopic.Description,
		subtopic.OrderIndex,
		subtopic.ExpectedTimeMinutes,
		prereqs,
		subtopic.IsActive,
		subtopic.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during subtopic creation",
				slog.String("subtopic_id", subtopic.ID.String()),
				slog.String("topic_id", subtopic.TopicID.String()))
			return fmt.Errorf("%w: topic with ID %s not found",
				store.ErrInvalidEntity, subtopic.TopicID)
		}
		log.Error("failed to create subtopic",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopic.ID.String()))
		return MapError(err)
	}

	log.Info("subtopic created successfully",
		slog.String("subtopic_id", subtopic.ID.String()),
		slog.String("topic_id", subtopic.TopicID.String()))
	return nil
}

// GetByID implements store.SubtopicStore.GetByID
// Returns store.ErrSubtopicNotFound if the subtopic does not exist.
func (s *PostgresSubtopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, topic_id, name, description, order_index, expected_time_minutes,
		       prerequisites, is_active, created_at
		FROM subtopics
		WHERE id = $1
	`

	subtopic, err := scanSubtopic(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subtopic not found", slog.String("subtopic_id", id.String()))
			return nil, store.ErrSubtopicNotFound
		}
		log.Error("failed to get subtopic by ID",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", id.String()))
		return nil, MapError(err)
	}

	return subtopic, nil
}

// ListByTopic implements store.SubtopicStore.ListByTopic
func (s *PostgresSubtopicStore) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]domain.Subtopic, error) {
	return s.list(ctx, `
		SELECT id, topic_id, name, description, order_index, expected_time_minutes,
		       prerequisites, is_active, created_at
		FROM subtopics
		WHERE topic_id = $1 AND is_active = TRUE
		ORDER BY order_index ASC
	`, topicID)
}

// ListByTopics implements store.SubtopicStore.ListByTopics
func (s *PostgresSubtopicStore) ListByTopics(ctx context.Context, topicIDs []uuid.UUID) ([]domain.Subtopic, error) {
	if len(topicIDs) == 0 {
		return nil, nil
	}

	// Passed as text and cast so the stdlib driver does not need a
	// uuid array codec.
	ids := make([]string, len(topicIDs))
	for i, id := range topicIDs {
		ids[i] = id.String()
	}

	return s.list(ctx, `
		SELECT id, topic_id, name, description, order_index, expected_time_minutes,
		       prerequisites, is_active, created_at
		FROM subtopics
		WHERE topic_id = ANY($1::uuid[]) AND is_active = TRUE
		ORDER BY topic_id, order_index ASC
	`, ids)
}

func (s *PostgresSubtopicStore) list(ctx context.Context, query string, args ...any) ([]domain.Subtopic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list subtopics", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subtopics []domain.Subtopic
	for rows.Next() {
		subtopic, err := scanSubtopic(rows)
		if err != nil {
			log.Error("failed to scan subtopic row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		subtopics = append(subtopics, *subtopic)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return subtopics, nil
}

// rowScanner lets scanSubtopic work over both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubtopic(row rowScanner) (*domain.Subtopic, error) {
	var subtopic domain.Subtopic
	var prereqs []byte

	err := row.Scan(
		&subtopic.ID,
		&subtopic.TopicID,
		&subtopic.Name,
		&subtopic.Description,
		&subtopic.OrderIndex,
		&subtopic.ExpectedTimeMinutes,
		&prereqs,
		&subtopic.IsActive,
		&subtopic.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	subtopic.Prerequisites, err = unmarshalPrerequisites(prereqs)
	if err != nil {
		return nil, err
	}

	return &subtopic, nil
}

// marshalPrerequisites encodes the prerequisite ID list for the JSONB column.
// An empty list is stored as an empty JSON array rather than NULL.
func marshalPrerequisites(ids []uuid.UUID) ([]byte, error) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prerequisites: %w", err)
	}
	return data, nil
}

// unmarshalPrerequisites decodes the JSONB prerequisites column. NULL and
// empty arrays both decode to a nil slice.
func unmarshalPrerequisites(data []byte) ([]uuid.UUID, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode prerequisites: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
