package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/events"
	"github.com/looplearn/loop-api/internal/generation"
	"github.com/looplearn/loop-api/internal/store"
)

// ContentGenerationTask generates study content (article, flashcards,
// quiz) for a single subtopic and persists it.
type ContentGenerationTask struct {
	id           uuid.UUID
	subtopicID   uuid.UUID
	subtopics    store.SubtopicStore
	generator    generation.Generator
	contentStore store.ContentStore
	logger       *slog.Logger
	status       TaskStatus
}

// Ensure ContentGenerationTask implements the Task interface
var _ Task = (*ContentGenerationTask)(nil)

// NewContentGenerationTask creates a new task to generate study content
// for the given subtopic.
func NewContentGenerationTask(
	subtopicID uuid.UUID,
	subtopics store.SubtopicStore,
	generator generation.Generator,
	contentStore store.ContentStore,
	logger *slog.Logger,
) (*ContentGenerationTask, error) {
	if subtopicID == uuid.Nil {
		return nil, errors.New("subtopic ID cannot be nil")
	}
	if subtopics == nil {
		return nil, errors.New("subtopic store cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if contentStore == nil {
		return nil, errors.New("content store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &ContentGenerationTask{
		id:           uuid.New(),
		subtopicID:   subtopicID,
		subtopics:    subtopics,
		generator:    generator,
		contentStore: contentStore,
		logger:       logger.With(slog.String("component", "content_generation_task")),
		status:       TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ContentGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ContentGenerationTask) Type() string {
	return TaskTypeContentGeneration
}

// Payload returns the serialized task data
func (t *ContentGenerationTask) Payload() []byte {
	payload := events.ContentGenerationPayload{SubtopicID: t.subtopicID}
	data, err := json.Marshal(payload)
	if err != nil {
		// Marshaling a struct of UUIDs cannot fail at runtime
		t.logger.Error("failed to marshal content generation payload",
			slog.String("task_id", t.id.String()),
			slog.String("error", err.Error()))
		return []byte("{}")
	}
	return data
}

// Status returns the current task status
func (t *ContentGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute loads the subtopic, generates study content for it and saves
// the result. Regenerating content for a subtopic that already has some
// replaces it.
func (t *ContentGenerationTask) Execute(ctx context.Context) error {
	log := t.logger.With(
		slog.String("task_id", t.id.String()),
		slog.String("subtopic_id", t.subtopicID.String()))
	log.InfoContext(ctx, "starting content generation")

	subtopic, err := t.subtopics.GetByID(ctx, t.subtopicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The subtopic was removed after the task was queued.
			// Nothing to generate, treat as done.
			log.WarnContext(ctx, "subtopic no longer exists, skipping generation")
			return nil
		}
		return fmt.Errorf("failed to get subtopic: %w", err)
	}

	content, err := t.generator.GenerateStudyContent(ctx, subtopic)
	if err != nil {
		return fmt.Errorf("failed to generate study content: %w", err)
	}

	if err := t.contentStore.Save(ctx, content); err != nil {
		return fmt.Errorf("failed to save study content: %w", err)
	}

	log.InfoContext(ctx, "content generation completed",
		slog.Int("flashcard_count", len(content.Flashcards)),
		slog.Int("quiz_count", len(content.QuizQuestions)))
	return nil
}
