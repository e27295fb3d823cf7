package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/looplearn/loop-api/internal/domain"
)

// FeedStore defines the interface for daily feed persistence.
type FeedStore interface {
	// Create saves a new feed entry.
	// It handles domain validation internally.
	// Returns ErrFeedExists if an entry already exists for the user and date.
	Create(ctx context.Context, feed *domain.DailyFeed) error

	// GetByUserAndDate retrieves the feed entry for the user on the given
	// date (the date component only is compared).
	// Returns ErrFeedNotFound if no entry exists.
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyFeed, error)

	// Update persists changes to an existing feed entry, typically completion.
	// Returns ErrFeedNotFound if the entry does not exist.
	Update(ctx context.Context, feed *domain.DailyFeed) error

	// ListRecent retrieves the user's most recent feed entries, newest first,
	// up to the given limit.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DailyFeed, error)

	// WithTx returns a new FeedStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) FeedStore
}
