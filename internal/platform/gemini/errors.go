package gemini

import "errors"

// Errors specific to the gemini package
var (
	// ErrNilSubtopic is returned when GenerateStudyContent is called
	// without a subtopic.
	ErrNilSubtopic = errors.New("subtopic cannot be nil")

	// ErrEmptyPrompt is returned when the rendered prompt is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
