package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/looplearn/loop-api/internal/api/shared"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/service/evaluation"
)

// EvaluationHandler handles evaluation cycle submission and progress
// retrieval.
type EvaluationHandler struct {
	evaluationService evaluation.EvaluationService
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewEvaluationHandler creates a new EvaluationHandler.
func NewEvaluationHandler(
	evaluationService evaluation.EvaluationService,
	logger *slog.Logger,
) *EvaluationHandler {
	if evaluationService == nil {
		panic("evaluationService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EvaluationHandler{
		evaluationService: evaluationService,
		validator:         validator.New(),
		logger:            logger.With(slog.String("component", "evaluation_handler")),
	}
}

// SubmitCycle handles POST /subtopics/{id}/cycles requests. It evaluates
// the submitted attempt events against the user's progress on the subtopic
// and returns the new state with the score breakdown.
func (h *EvaluationHandler) SubmitCycle(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, subtopicID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitCycleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	log.Debug("submitting evaluation cycle",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()),
		slog.Int("event_count", len(req.Events)))

	result, err := h.evaluationService.SubmitCycle(r.Context(), userID, subtopicID, req.toDomainEvents())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit evaluation cycle")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CycleResponse{
		State:    result.State,
		Score:    result.Score,
		Action:   string(result.Decision.Action),
		NewLevel: string(result.State.MasteryLevel),
	})
}

// GetProgress handles GET /progress requests, returning all of the user's
// progress states.
func (h *EvaluationHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	states, err := h.evaluationService.GetProgress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, states)
}
