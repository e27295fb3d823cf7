package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Topic and subtopic validation errors
var (
	ErrTopicNameEmpty        = errors.New("topic name cannot be empty")
	ErrSubtopicNameEmpty     = errors.New("subtopic name cannot be empty")
	ErrSubtopicTopicIDEmpty  = errors.New("subtopic topic ID cannot be empty")
	ErrNegativeOrderIndex    = errors.New("subtopic order index cannot be negative")
	ErrInvalidExpectedTime   = errors.New("subtopic expected time must be positive")
	ErrUserTopicUserIDEmpty  = errors.New("user topic user ID cannot be empty")
	ErrUserTopicTopicIDEmpty = errors.New("user topic topic ID cannot be empty")
)

// Topic is a top-level learning domain a user can subscribe to,
// e.g. "Distributed Systems" or "Spanish Grammar".
type Topic struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the Topic has valid data.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrInvalidID
	}
	if t.Name == "" {
		return ErrTopicNameEmpty
	}
	return nil
}

// Subtopic is one unit of a topic's curriculum. OrderIndex defines the
// sequential position within the topic; lower-order subtopics are implicit
// prerequisites of higher-order ones, and Prerequisites lists any additional
// cross-topic subtopic IDs that must be mastered first.
type Subtopic struct {
	ID                  uuid.UUID   `json:"id"`
	TopicID             uuid.UUID   `json:"topic_id"`
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	OrderIndex          int         `json:"order_index"`
	ExpectedTimeMinutes int         `json:"expected_time_minutes"`
	Prerequisites       []uuid.UUID `json:"prerequisites,omitempty"`
	IsActive            bool        `json:"is_active"`
	CreatedAt           time.Time   `json:"created_at"`
}

// Validate checks if the Subtopic has valid data.
func (s *Subtopic) Validate() error {
	if s.ID == uuid.Nil {
		return ErrInvalidID
	}
	if s.TopicID == uuid.Nil {
		return ErrSubtopicTopicIDEmpty
	}
	if s.Name == "" {
		return ErrSubtopicNameEmpty
	}
	if s.OrderIndex < 0 {
		return ErrNegativeOrderIndex
	}
	if s.ExpectedTimeMinutes <= 0 {
		return ErrInvalidExpectedTime
	}
	return nil
}

// ExpectedTimeMs returns the expected study time in milliseconds, the unit
// the efficiency component of the mastery score is computed in.
func (s *Subtopic) ExpectedTimeMs() int {
	return s.ExpectedTimeMinutes * 60 * 1000
}

// UserTopic is a user's subscription to a topic. PriorityOrder controls the
// order topics are worked through once the active one is fully mastered.
type UserTopic struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	TopicID       uuid.UUID  `json:"topic_id"`
	PriorityOrder int        `json:"priority_order"`
	IsActive      bool       `json:"is_active"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// NewUserTopic creates a subscription of the given user to the given topic.
func NewUserTopic(userID, topicID uuid.UUID, priorityOrder int) (*UserTopic, error) {
	ut := &UserTopic{
		ID:            uuid.New(),
		UserID:        userID,
		TopicID:       topicID,
		PriorityOrder: priorityOrder,
		IsActive:      true,
		StartedAt:     time.Now().UTC(),
	}

	if err := ut.Validate(); err != nil {
		return nil, err
	}

	return ut, nil
}

// Validate checks if the UserTopic has valid data.
func (ut *UserTopic) Validate() error {
	if ut.UserID == uuid.Nil {
		return ErrUserTopicUserIDEmpty
	}
	if ut.TopicID == uuid.Nil {
		return ErrUserTopicTopicIDEmpty
	}
	return nil
}
