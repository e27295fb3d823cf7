package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/looplearn/loop-api/internal/api/shared"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/service"
)

// TopicHandler handles topic catalog and subscription HTTP requests.
type TopicHandler struct {
	topicService service.TopicService
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(topicService service.TopicService, logger *slog.Logger) *TopicHandler {
	if topicService == nil {
		panic("topicService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TopicHandler{
		topicService: topicService,
		validator:    validator.New(),
		logger:       logger.With(slog.String("component", "topic_handler")),
	}
}

// ListTopics handles GET /topics requests.
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topicService.ListTopics(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list topics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, topics)
}

// GetTopic handles GET /topics/{id} requests, returning the topic with its
// subtopics in curriculum order.
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	topicID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	topic, err := h.topicService.GetTopic(r.Context(), topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get topic")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, topic)
}

// Subscribe handles POST /subscriptions requests.
func (h *TopicHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubscribeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	userTopic, err := h.topicService.Subscribe(r.Context(), userID, req.TopicID, req.PriorityOrder)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to subscribe")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, userTopic)
}

// Unsubscribe handles DELETE /subscriptions/{id} requests.
func (h *TopicHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, subscriptionID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.topicService.Unsubscribe(r.Context(), userID, subscriptionID); err != nil {
		HandleAPIError(w, r, err, "Failed to unsubscribe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /subscriptions requests.
func (h *TopicHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	subscriptions, err := h.topicService.ListSubscriptions(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subscriptions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, subscriptions)
}
