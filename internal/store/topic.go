package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/looplearn/loop-api/internal/domain"
)

// TopicStore defines the interface for topic catalog persistence.
type TopicStore interface {
	// Create saves a new topic to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Topic if data is invalid.
	Create(ctx context.Context, topic *domain.Topic) error

	// GetByID retrieves a topic by its unique ID.
	// Returns ErrTopicNotFound if the topic does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// List retrieves all active topics ordered by name.
	List(ctx context.Context) ([]domain.Topic, error)

	// Update modifies an existing topic's details.
	// Returns ErrTopicNotFound if the topic does not exist.
	Update(ctx context.Context, topic *domain.Topic) error

	// WithTx returns a new TopicStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TopicStore
}

// SubtopicStore defines the interface for subtopic catalog persistence.
type SubtopicStore interface {
	// Create saves a new subtopic to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Subtopic if data is invalid.
	Create(ctx context.Context, subtopic *domain.Subtopic) error

	// GetByID retrieves a subtopic by its unique ID.
	// Returns ErrSubtopicNotFound if the subtopic does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error)

	// ListByTopic retrieves the active subtopics of a topic ordered by
	// their order index.
	ListByTopic(ctx context.Context, topicID uuid.UUID) ([]domain.Subtopic, error)

	// ListByTopics retrieves the active subtopics of all the given topics
	// in one round trip, ordered by topic then order index.
	ListByTopics(ctx context.Context, topicIDs []uuid.UUID) ([]domain.Subtopic, error)

	// WithTx returns a new SubtopicStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SubtopicStore
}

// UserTopicStore defines the interface for topic subscription persistence.
type UserTopicStore interface {
	// Create saves a new subscription.
	// Returns ErrUserTopicExists if the user is already subscribed to the topic.
	Create(ctx context.Context, userTopic *domain.UserTopic) error

	// ListByUser retrieves the user's active subscriptions ordered by priority.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserTopic, error)

	// ListActiveUserIDs retrieves the distinct IDs of users that have at
	// least one active subscription. Used by the daily feed batch job.
	ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)

	// Update modifies an existing subscription (priority, active flag, completion).
	// Returns ErrUserTopicNotFound if the subscription does not exist.
	Update(ctx context.Context, userTopic *domain.UserTopic) error

	// Delete removes a subscription by its ID.
	// Returns ErrUserTopicNotFound if the subscription does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserTopicStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserTopicStore
}
