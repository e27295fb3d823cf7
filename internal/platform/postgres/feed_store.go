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

// PostgresFeedStore implements the store.FeedStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFeedStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFeedStore creates a new PostgreSQL implementation of the FeedStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresFeedStore(db store.DBTX, logger *slog.Logger) *PostgresFeedStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFeedStore{
		db:     db,
		logger: logger.With(slog.String("component", "feed_store")),
	}
}

// Ensure PostgresFeedStore implements store.FeedStore interface
var _ store.FeedStore = (*PostgresFeedStore)(nil)

// WithTx implements store.FeedStore.WithTx
func (s *PostgresFeedStore) WithTx(tx *sql.Tx) store.FeedStore {
	return &PostgresFeedStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.FeedStore.Create
// Returns store.ErrFeedExists if an entry already exists for the user and date.
func (s *PostgresFeedStore) Create(ctx context.Context, feed *domain.DailyFeed) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := feed.Validate(); err != nil {
		log.Warn("feed validation failed during create",
			slog.String("error", err.Error()),
			slog.String("feed_id", feed.ID.String()))
		return err
	}

	query := `
		INSERT INTO daily_feeds
			(id, user_id, subtopic_id, feed_date, is_completed, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		feed.ID,
		feed.UserID,
		feed.SubtopicID,
		feed.FeedDate,
		feed.IsCompleted,
		feed.CompletedAt,
		feed.CreatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("feed already exists for user and date",
				slog.String("user_id", feed.UserID.String()),
				slog.Time("feed_date", feed.FeedDate))
			return store.ErrFeedExists
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user or subtopic does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create feed",
			slog.String("error", err.Error()),
			slog.String("feed_id", feed.ID.String()))
		return MapError(err)
	}

	log.Info("daily feed created",
		slog.String("user_id", feed.UserID.String()),
		slog.String("subtopic_id", feed.SubtopicID.String()),
		slog.Time("feed_date", feed.FeedDate))
	return nil
}

// GetByUserAndDate implements store.FeedStore.GetByUserAndDate
// Returns store.ErrFeedNotFound if no entry exists.
func (s *PostgresFeedStore) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyFeed, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, subtopic_id, feed_date, is_completed, completed_at, created_at
		FROM daily_feeds
		WHERE user_id = $1 AND feed_date = $2
	`

	day := date.UTC().Truncate(24 * time.Hour)

	var feed domain.DailyFeed
	err := s.db.QueryRowContext(ctx, query, userID, day).Scan(
		&feed.ID,
		&feed.UserID,
		&feed.SubtopicID,
		&feed.FeedDate,
		&feed.IsCompleted,
		&feed.CompletedAt,
		&feed.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("feed not found",
				slog.String("user_id", userID.String()),
				slog.Time("feed_date", day))
			return nil, store.ErrFeedNotFound
		}
		log.Error("failed to get feed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return &feed, nil
}

// Update implements store.FeedStore.Update
// Returns store.ErrFeedNotFound if the entry does not exist.
func (s *PostgresFeedStore) Update(ctx context.Context, feed *domain.DailyFeed) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := feed.Validate(); err != nil {
		log.Warn("feed validation failed during update",
			slog.String("error", err.Error()),
			slog.String("feed_id", feed.ID.String()))
		return err
	}

	query := `
		UPDATE daily_feeds
		SET is_completed = $1, completed_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		feed.IsCompleted,
		feed.CompletedAt,
		feed.ID,
	)

	if err != nil {
		log.Error("failed to update feed",
			slog.String("error", err.Error()),
			slog.String("feed_id", feed.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "daily feed"); err != nil {
		return store.ErrFeedNotFound
	}

	return nil
}

// ListRecent implements store.FeedStore.ListRecent
func (s *PostgresFeedStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DailyFeed, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT id, user_id, subtopic_id, feed_date, is_completed, completed_at, created_at
		FROM daily_feeds
		WHERE user_id = $1
		ORDER BY feed_date DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		log.Error("failed to list feeds",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var feeds []domain.DailyFeed
	for rows.Next() {
		var feed domain.DailyFeed
		if err := rows.Scan(
			&feed.ID,
			&feed.UserID,
			&feed.SubtopicID,
			&feed.FeedDate,
			&feed.IsCompleted,
			&feed.CompletedAt,
			&feed.CreatedAt,
		); err != nil {
			log.Error("failed to scan feed row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return feeds, nil
}
