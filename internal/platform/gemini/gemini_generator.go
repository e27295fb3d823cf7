package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/looplearn/loop-api/internal/config"
	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/generation"
)

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// Ensure GeminiGenerator implements generation.Generator
var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new GeminiGenerator. The prompt template is
// the built-in one unless the configuration points at a file.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	templateContent := defaultPromptTemplate
	if cfg.PromptTemplatePath != "" {
		raw, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				generation.ErrInvalidConfig, cfg.PromptTemplatePath, err)
		}
		templateContent = string(raw)
	}

	promptTemplate, err := template.New("study_content").Parse(templateContent)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:         logger.With(slog.String("component", "gemini_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateStudyContent creates the article, flashcards and quiz for the
// given subtopic.
func (g *GeminiGenerator) GenerateStudyContent(
	ctx context.Context,
	subtopic *domain.Subtopic,
) (*domain.StudyContent, error) {
	if subtopic == nil {
		return nil, ErrNilSubtopic
	}

	prompt, err := g.createPrompt(ctx, subtopic)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response, subtopic.ID)
}

// createPrompt renders the prompt template for the subtopic.
func (g *GeminiGenerator) createPrompt(ctx context.Context, subtopic *domain.Subtopic) (string, error) {
	if subtopic.Name == "" {
		return "", fmt.Errorf("%w: subtopic name cannot be empty", generation.ErrInvalidConfig)
	}

	data := promptData{
		SubtopicName:        subtopic.Name,
		SubtopicDescription: subtopic.Description,
		ExpectedTimeMinutes: subtopic.ExpectedTimeMinutes,
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "prompt generated",
		slog.String("subtopic_id", subtopic.ID.String()),
		slog.Int("prompt_length", promptBuffer.Len()))

	return promptBuffer.String(), nil
}

// callGeminiWithRetry calls the Gemini API with exponential backoff and
// jitter for transient errors. Permanent errors (blocked content,
// malformed responses) return immediately.
func (g *GeminiGenerator) callGeminiWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	for attempt := 0; ; attempt++ {
		g.logger.InfoContext(ctx, "calling Gemini API",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1))

		response, err := g.generateOnce(ctx, prompt, genConfig)
		if err == nil {
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delaySeconds := backoffSeconds * (0.5 + rng.Float64()*0.5)
		select {
		case <-time.After(time.Duration(delaySeconds * float64(time.Second))):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// generateOnce performs a single Gemini call and maps its outcome.
func (g *GeminiGenerator) generateOnce(
	ctx context.Context,
	prompt string,
	genConfig *genai.GenerateContentConfig,
) (*responseSchema, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, classifyAPIError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	return &parsed, nil
}

// classifyAPIError wraps API errors so the retry loop can distinguish
// transient failures from permanent ones. Rate limits and server errors
// are transient, everything else is not.
func classifyAPIError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		return fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	// Network-level failures are worth retrying.
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}

// parseResponse converts the structured model response into a validated
// domain.StudyContent.
func (g *GeminiGenerator) parseResponse(
	ctx context.Context,
	response *responseSchema,
	subtopicID uuid.UUID,
) (*domain.StudyContent, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", generation.ErrInvalidResponse)
	}
	if response.Article == "" {
		return nil, fmt.Errorf("%w: missing article", generation.ErrInvalidResponse)
	}
	if len(response.Flashcards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards in response", generation.ErrInvalidResponse)
	}
	if len(response.Quiz) == 0 {
		return nil, fmt.Errorf("%w: no quiz questions in response", generation.ErrInvalidResponse)
	}

	flashcards := make([]domain.Flashcard, 0, len(response.Flashcards))
	for i, card := range response.Flashcards {
		if card.Front == "" || card.Back == "" {
			return nil, fmt.Errorf("%w: flashcard %d missing front or back", generation.ErrInvalidResponse, i)
		}
		flashcards = append(flashcards, domain.Flashcard{
			Front: card.Front,
			Back:  card.Back,
			Hint:  card.Hint,
			Tags:  card.Tags,
		})
	}

	questions := make([]domain.QuizQuestion, 0, len(response.Quiz))
	for i, q := range response.Quiz {
		if q.Prompt == "" {
			return nil, fmt.Errorf("%w: quiz question %d missing prompt", generation.ErrInvalidResponse, i)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: quiz question %d needs at least two options", generation.ErrInvalidResponse, i)
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			return nil, fmt.Errorf("%w: quiz question %d answer index out of range", generation.ErrInvalidResponse, i)
		}
		questions = append(questions, domain.QuizQuestion{
			Prompt:      q.Prompt,
			Options:     q.Options,
			AnswerIndex: q.AnswerIndex,
			Explanation: q.Explanation,
		})
	}

	content, err := domain.NewStudyContent(subtopicID, response.Article, flashcards, questions, g.model)
	if err != nil {
		return nil, fmt.Errorf("failed to create study content: %w", err)
	}

	g.logger.InfoContext(ctx, "study content parsed",
		slog.String("subtopic_id", subtopicID.String()),
		slog.Int("flashcard_count", len(flashcards)),
		slog.Int("quiz_count", len(questions)))

	return content, nil
}
