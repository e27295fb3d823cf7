package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/store"
)

// PostgresUserTopicStore implements the store.UserTopicStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserTopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserTopicStore creates a new PostgreSQL implementation of the UserTopicStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserTopicStore(db store.DBTX, logger *slog.Logger) *PostgresUserTopicStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserTopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_topic_store")),
	}
}

// Ensure PostgresUserTopicStore implements store.UserTopicStore interface
var _ store.UserTopicStore = (*PostgresUserTopicStore)(nil)

// WithTx implements store.UserTopicStore.WithTx
func (s *PostgresUserTopicStore) WithTx(tx *sql.Tx) store.UserTopicStore {
	return &PostgresUserTopicStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserTopicStore.Create
// Returns store.ErrUserTopicExists if the user is already subscribed to the topic.
func (s *PostgresUserTopicStore) Create(ctx context.Context, userTopic *domain.UserTopic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := userTopic.Validate(); err != nil {
		log.Warn("user topic validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_topic_id", userTopic.ID.String()))
		return err
	}

	query := `
		INSERT INTO user_topics
			(id, user_id, topic_id, priority_order, is_active, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		userTopic.ID,
		userTopic.UserID,
		userTopic.TopicID,
		userTopic.PriorityOrder,
		userTopic.IsActive,
		userTopic.StartedAt,
		userTopic.CompletedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("user already subscribed to topic",
				slog.String("user_id", userTopic.UserID.String()),
				slog.String("topic_id", userTopic.TopicID.String()))
			return store.ErrUserTopicExists
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user or topic does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create user topic",
			slog.String("error", err.Error()),
			slog.String("user_topic_id", userTopic.ID.String()))
		return MapError(err)
	}

	log.Info("user subscribed to topic",
		slog.String("user_id", userTopic.UserID.String()),
		slog.String("topic_id", userTopic.TopicID.String()),
		slog.Int("priority_order", userTopic.PriorityOrder))
	return nil
}

// ListByUser implements store.UserTopicStore.ListByUser
func (s *PostgresUserTopicStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserTopic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, topic_id, priority_order, is_active, started_at, completed_at
		FROM user_topics
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY priority_order ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list user topics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var userTopics []domain.UserTopic
	for rows.Next() {
		var ut domain.UserTopic
		if err := rows.Scan(
			&ut.ID,
			&ut.UserID,
			&ut.TopicID,
			&ut.PriorityOrder,
			&ut.IsActive,
			&ut.StartedAt,
			&ut.CompletedAt,
		); err != nil {
			log.Error("failed to scan user topic row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		userTopics = append(userTopics, ut)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return userTopics, nil
}

// ListActiveUserIDs implements store.UserTopicStore.ListActiveUserIDs
func (s *PostgresUserTopicStore) ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT user_id
		FROM user_topics
		WHERE is_active = TRUE
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list active user IDs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan user ID", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return userIDs, nil
}

// Update implements store.UserTopicStore.Update
// Returns store.ErrUserTopicNotFound if the subscription does not exist.
func (s *PostgresUserTopicStore) Update(ctx context.Context, userTopic *domain.UserTopic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := userTopic.Validate(); err != nil {
		log.Warn("user topic validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_topic_id", userTopic.ID.String()))
		return err
	}

	query := `
		UPDATE user_topics
		SET priority_order = $1, is_active = $2, completed_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		userTopic.PriorityOrder,
		userTopic.IsActive,
		userTopic.CompletedAt,
		userTopic.ID,
	)

	if err != nil {
		log.Error("failed to update user topic",
			slog.String("error", err.Error()),
			slog.String("user_topic_id", userTopic.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user topic"); err != nil {
		return store.ErrUserTopicNotFound
	}

	return nil
}

// Delete implements store.UserTopicStore.Delete
// Returns store.ErrUserTopicNotFound if the subscription does not exist.
func (s *PostgresUserTopicStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM user_topics WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete user topic",
			slog.String("error", err.Error()),
			slog.String("user_topic_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user topic"); err != nil {
		return store.ErrUserTopicNotFound
	}

	log.Info("user topic deleted", slog.String("user_topic_id", id.String()))
	return nil
}
