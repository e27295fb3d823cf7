package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Feed validation errors
var (
	ErrFeedUserIDEmpty     = errors.New("feed user ID cannot be empty")
	ErrFeedSubtopicIDEmpty = errors.New("feed subtopic ID cannot be empty")
	ErrFeedDateZero        = errors.New("feed date cannot be zero")
)

// DailyFeed is one day's study assignment for a user: the single subtopic
// the selector picked for that date. At most one feed exists per user per
// date.
type DailyFeed struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	SubtopicID  uuid.UUID  `json:"subtopic_id"`
	FeedDate    time.Time  `json:"feed_date"` // truncated to midnight UTC
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewDailyFeed creates a feed assignment for the given date. The date is
// truncated to midnight UTC so the per-day uniqueness constraint holds
// regardless of the caller's clock precision.
func NewDailyFeed(userID, subtopicID uuid.UUID, feedDate time.Time) (*DailyFeed, error) {
	feed := &DailyFeed{
		ID:         uuid.New(),
		UserID:     userID,
		SubtopicID: subtopicID,
		FeedDate:   feedDate.UTC().Truncate(24 * time.Hour),
		CreatedAt:  time.Now().UTC(),
	}

	if err := feed.Validate(); err != nil {
		return nil, err
	}

	return feed, nil
}

// Validate checks if the DailyFeed has valid data.
func (f *DailyFeed) Validate() error {
	if f.UserID == uuid.Nil {
		return ErrFeedUserIDEmpty
	}
	if f.SubtopicID == uuid.Nil {
		return ErrFeedSubtopicIDEmpty
	}
	if f.FeedDate.IsZero() {
		return ErrFeedDateZero
	}
	return nil
}

// MarkCompleted marks the feed as done at the given time. Idempotent.
func (f *DailyFeed) MarkCompleted(now time.Time) {
	if f.IsCompleted {
		return
	}
	f.IsCompleted = true
	t := now.UTC()
	f.CompletedAt = &t
}
