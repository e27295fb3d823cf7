package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/events"
)

// TaskFactoryEventHandler translates task request events into concrete
// tasks and submits them to the runner. It decouples event emitters
// (like the feed service) from task construction.
type TaskFactoryEventHandler struct {
	runner         *TaskRunner
	contentFactory *ContentGenerationTaskFactory
	logger         *slog.Logger
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates a new event handler that submits
// tasks built by the given factories to the runner.
func NewTaskFactoryEventHandler(
	runner *TaskRunner,
	contentFactory *ContentGenerationTaskFactory,
	logger *slog.Logger,
) (*TaskFactoryEventHandler, error) {
	if runner == nil {
		return nil, errors.New("task runner cannot be nil")
	}
	if contentFactory == nil {
		return nil, errors.New("content generation task factory cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &TaskFactoryEventHandler{
		runner:         runner,
		contentFactory: contentFactory,
		logger:         logger.With(slog.String("component", "task_factory_event_handler")),
	}, nil
}

// HandleEvent processes a task request event. Unknown event types are
// logged and ignored so new emitters cannot break existing handlers.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	log := h.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	switch event.Type {
	case TaskTypeContentGeneration:
		return h.handleContentGeneration(ctx, log, event)
	default:
		log.WarnContext(ctx, "ignoring event with unknown type")
		return nil
	}
}

func (h *TaskFactoryEventHandler) handleContentGeneration(
	ctx context.Context,
	log *slog.Logger,
	event *events.TaskRequestEvent,
) error {
	var payload events.ContentGenerationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal content generation payload: %w", err)
	}
	if payload.SubtopicID == uuid.Nil {
		return errors.New("content generation event has no subtopic ID")
	}

	newTask, err := h.contentFactory.CreateTask(payload.SubtopicID)
	if err != nil {
		return fmt.Errorf("failed to create content generation task: %w", err)
	}

	if err := h.runner.Submit(ctx, newTask); err != nil {
		return fmt.Errorf("failed to submit content generation task: %w", err)
	}

	log.InfoContext(ctx, "content generation task submitted",
		slog.String("task_id", newTask.ID().String()),
		slog.String("subtopic_id", payload.SubtopicID.String()))
	return nil
}
