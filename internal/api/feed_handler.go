package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/looplearn/loop-api/internal/api/shared"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/service/feed"
)

// defaultHistoryLimit bounds the feed history endpoint when the client does
// not specify a limit.
const defaultHistoryLimit = 30

// FeedHandler handles daily feed HTTP requests.
type FeedHandler struct {
	feedService feed.FeedService
	timeFunc    func() time.Time
	logger      *slog.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feedService feed.FeedService, logger *slog.Logger) *FeedHandler {
	if feedService == nil {
		panic("feedService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FeedHandler{
		feedService: feedService,
		timeFunc:    time.Now,
		logger:      logger.With(slog.String("component", "feed_handler")),
	}
}

// parseDateParam reads the optional "date" query parameter (YYYY-MM-DD),
// defaulting to today.
func (h *FeedHandler) parseDateParam(r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.timeFunc().UTC(), true
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// GetDailyFeed handles GET /feed requests. The feed entry is generated on
// demand if none exists for the date yet; 204 means there is nothing left
// to study.
func (h *FeedHandler) GetDailyFeed(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, ok := h.parseDateParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	entry, err := h.feedService.GetDailyFeed(r.Context(), userID, date)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get daily feed")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, feedToResponse(entry))
}

// CompleteFeed handles POST /feed/complete requests. Completion is
// idempotent.
func (h *FeedHandler) CompleteFeed(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, ok := h.parseDateParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	entry, err := h.feedService.CompleteFeed(r.Context(), userID, date)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete feed")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, feedToResponse(entry))
}

// History handles GET /feed/history requests, newest entries first.
func (h *FeedHandler) History(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit, expected a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.feedService.History(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get feed history")
		return
	}

	responses := make([]FeedResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, feedToResponse(&entries[i]))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
