package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventContentGeneration requests study content for a subtopic. It is
// the event type the feed service emits after selecting a subtopic, and
// doubles as the persisted task type of the job it produces.
const EventContentGeneration = "content_generation"

// ContentGenerationPayload identifies the subtopic that needs content.
type ContentGenerationPayload struct {
	SubtopicID uuid.UUID `json:"subtopic_id"`
}

// TaskRequestEvent asks a background worker to do a unit of work. The
// payload stays opaque JSON so emitters need no knowledge of the task
// implementation that eventually runs.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent builds an event of the given type, serializing the
// payload to JSON.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewContentGenerationEvent builds the event requesting study content
// for the given subtopic.
func NewContentGenerationEvent(subtopicID uuid.UUID) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(EventContentGeneration, ContentGenerationPayload{SubtopicID: subtopicID})
}

// EventHandler consumes emitted events.
type EventHandler interface {
	// HandleEvent processes one event. Handlers must tolerate event
	// types they do not recognize.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to whatever handlers are registered.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
