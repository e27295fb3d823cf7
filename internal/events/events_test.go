package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures events for assertions.
type recordingHandler struct {
	events []*TaskRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestNewContentGenerationEvent(t *testing.T) {
	t.Parallel()

	subtopicID := uuid.New()
	event, err := NewContentGenerationEvent(subtopicID)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventContentGeneration, event.Type)
	assert.WithinDuration(t, time.Now().UTC(), event.CreatedAt, 2*time.Second)

	var payload ContentGenerationPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, subtopicID, payload.SubtopicID)
}

func TestNewTaskRequestEventRejectsUnserializablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewTaskRequestEvent("content_generation", make(chan int))
	require.Error(t, err)
}
