package gemini

import (
	"context"
	"log/slog"
	"testing"
	"text/template"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/generation"
)

// newTestGenerator builds a generator with the default template and no API
// client, enough for exercising prompt rendering and response parsing.
func newTestGenerator(t *testing.T) *GeminiGenerator {
	t.Helper()

	promptTemplate, err := template.New("study_content").Parse(defaultPromptTemplate)
	require.NoError(t, err)

	return &GeminiGenerator{
		logger:         slog.Default(),
		promptTemplate: promptTemplate,
		model:          "gemini-2.0-flash",
	}
}

func testSubtopic() *domain.Subtopic {
	return &domain.Subtopic{
		ID:                  uuid.New(),
		TopicID:             uuid.New(),
		Name:                "Raft Consensus",
		Description:         "Leader election and log replication",
		OrderIndex:          0,
		ExpectedTimeMinutes: 30,
		IsActive:            true,
	}
}

func TestCreatePrompt(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t)

	prompt, err := g.createPrompt(context.Background(), testSubtopic())
	require.NoError(t, err)
	assert.Contains(t, prompt, "Raft Consensus")
	assert.Contains(t, prompt, "Leader election and log replication")
	assert.Contains(t, prompt, "30 minutes")
}

func TestCreatePromptEmptyName(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t)
	subtopic := testSubtopic()
	subtopic.Name = ""

	_, err := g.createPrompt(context.Background(), subtopic)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func validResponse() *responseSchema {
	return &responseSchema{
		Article: "Raft elects a single leader per term...",
		Flashcards: []flashcardSchema{
			{Front: "What triggers a leader election?", Back: "An election timeout without heartbeats"},
		},
		Quiz: []quizQuestionSchema{
			{
				Prompt:      "How many leaders can a Raft term have?",
				Options:     []string{"At most one", "Exactly two", "Unbounded"},
				AnswerIndex: 0,
			},
		},
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t)
	subtopicID := uuid.New()

	content, err := g.parseResponse(context.Background(), validResponse(), subtopicID)
	require.NoError(t, err)
	assert.Equal(t, subtopicID, content.SubtopicID)
	assert.Equal(t, "gemini-2.0-flash", content.ModelName)
	require.Len(t, content.Flashcards, 1)
	require.Len(t, content.QuizQuestions, 1)
	assert.Equal(t, 0, content.QuizQuestions[0].AnswerIndex)
}

func TestParseResponseInvalid(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t)
	subtopicID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*responseSchema)
	}{
		{name: "missing article", mutate: func(r *responseSchema) { r.Article = "" }},
		{name: "no flashcards", mutate: func(r *responseSchema) { r.Flashcards = nil }},
		{name: "no quiz", mutate: func(r *responseSchema) { r.Quiz = nil }},
		{name: "flashcard missing back", mutate: func(r *responseSchema) { r.Flashcards[0].Back = "" }},
		{name: "answer index out of range", mutate: func(r *responseSchema) { r.Quiz[0].AnswerIndex = 3 }},
		{name: "too few options", mutate: func(r *responseSchema) { r.Quiz[0].Options = []string{"only one"} }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			response := validResponse()
			tc.mutate(response)

			_, err := g.parseResponse(context.Background(), response, subtopicID)
			assert.ErrorIs(t, err, generation.ErrInvalidResponse)
		})
	}
}
