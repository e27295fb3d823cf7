package task

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/generation"
	"github.com/looplearn/loop-api/internal/store"
)

// ContentGenerationTaskFactory creates content generation tasks with
// their dependencies pre-wired, so event handlers only need a subtopic ID.
type ContentGenerationTaskFactory struct {
	subtopics    store.SubtopicStore
	generator    generation.Generator
	contentStore store.ContentStore
	logger       *slog.Logger
}

// NewContentGenerationTaskFactory creates a new factory for content
// generation tasks.
func NewContentGenerationTaskFactory(
	subtopics store.SubtopicStore,
	generator generation.Generator,
	contentStore store.ContentStore,
	logger *slog.Logger,
) (*ContentGenerationTaskFactory, error) {
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

	return &ContentGenerationTaskFactory{
		subtopics:    subtopics,
		generator:    generator,
		contentStore: contentStore,
		logger:       logger,
	}, nil
}

// CreateTask builds a content generation task for the given subtopic.
func (f *ContentGenerationTaskFactory) CreateTask(subtopicID uuid.UUID) (Task, error) {
	return NewContentGenerationTask(
		subtopicID,
		f.subtopics,
		f.generator,
		f.contentStore,
		f.logger,
	)
}
