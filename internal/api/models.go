package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT used for API authorization
	Token string `json:"token"`
}

// SubscribeRequest defines the payload for the topic subscription endpoint.
type SubscribeRequest struct {
	TopicID       uuid.UUID `json:"topic_id"       validate:"required"`
	PriorityOrder int       `json:"priority_order" validate:"gte=0"`
}

// AttemptEventRequest is one raw interaction event inside a submitted
// evaluation cycle.
type AttemptEventRequest struct {
	Kind           string    `json:"kind"                       validate:"required,oneof=flashcard quiz reading"`
	QuestionID     string    `json:"question_id,omitempty"`
	Correct        *bool     `json:"correct,omitempty"`
	ResponseTimeMs *int      `json:"response_time_ms,omitempty"`
	AttemptIndex   int       `json:"attempt_index"              validate:"gte=0"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// SubmitCycleRequest defines the payload for the cycle submission endpoint.
type SubmitCycleRequest struct {
	Events []AttemptEventRequest `json:"events" validate:"required,min=1,dive"`
}

// toDomainEvents converts the request payload into domain events. Detailed
// per-event validation stays with the normalizer so errors carry the event
// position.
func (r *SubmitCycleRequest) toDomainEvents() []domain.RawAttemptEvent {
	events := make([]domain.RawAttemptEvent, 0, len(r.Events))
	for _, e := range r.Events {
		events = append(events, domain.RawAttemptEvent{
			Kind:           domain.AttemptKind(e.Kind),
			QuestionID:     e.QuestionID,
			Correct:        e.Correct,
			ResponseTimeMs: e.ResponseTimeMs,
			AttemptIndex:   e.AttemptIndex,
			OccurredAt:     e.OccurredAt,
		})
	}
	return events
}

// CycleResponse is the outcome of a submitted evaluation cycle: the new
// progress state plus the score breakdown and the decision for display.
type CycleResponse struct {
	State    *domain.SubtopicProgressState `json:"state"`
	Score    domain.MasteryScore           `json:"score"`
	Action   string                        `json:"action"`
	NewLevel string                        `json:"new_level"`
}

// FeedResponse represents one daily feed entry.
type FeedResponse struct {
	ID          uuid.UUID  `json:"id"`
	SubtopicID  uuid.UUID  `json:"subtopic_id"`
	FeedDate    string     `json:"feed_date"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// feedToResponse converts a domain feed entry to its API representation.
func feedToResponse(feed *domain.DailyFeed) FeedResponse {
	return FeedResponse{
		ID:          feed.ID,
		SubtopicID:  feed.SubtopicID,
		FeedDate:    feed.FeedDate.Format("2006-01-02"),
		IsCompleted: feed.IsCompleted,
		CompletedAt: feed.CompletedAt,
	}
}
