package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/service/feed"
)

// fakeFeedService returns canned feed entries for handler tests.
type fakeFeedService struct {
	entry       *domain.DailyFeed
	getErr      error
	completeErr error
	history     []domain.DailyFeed
}

func (f *fakeFeedService) GetDailyFeed(context.Context, uuid.UUID, time.Time) (*domain.DailyFeed, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entry, nil
}

func (f *fakeFeedService) CompleteFeed(_ context.Context, _ uuid.UUID, _ time.Time) (*domain.DailyFeed, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.entry.MarkCompleted(time.Now())
	return f.entry, nil
}

func (f *fakeFeedService) History(_ context.Context, _ uuid.UUID, limit int) ([]domain.DailyFeed, error) {
	if limit < len(f.history) {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeFeedService) GenerateAll(context.Context, time.Time) (int, error) {
	return 0, nil
}

func newFeedRouter(svc feed.FeedService, userID uuid.UUID) http.Handler {
	handler := NewFeedHandler(svc, nil)
	r := chi.NewRouter()
	r.Get("/feed", handler.GetDailyFeed)
	r.Post("/feed/complete", handler.CompleteFeed)
	r.Get("/feed/history", handler.History)
	return withUser(userID, r)
}

func newFeedEntry(t *testing.T, userID uuid.UUID, date time.Time) *domain.DailyFeed {
	t.Helper()
	entry, err := domain.NewDailyFeed(userID, uuid.New(), date)
	require.NoError(t, err)
	return entry
}

func TestGetDailyFeedHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	entry := newFeedEntry(t, userID, date)
	router := newFeedRouter(&fakeFeedService{entry: entry}, userID)

	req := httptest.NewRequest(http.MethodGet, "/feed?date=2026-06-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp FeedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, entry.SubtopicID, resp.SubtopicID)
	assert.Equal(t, "2026-06-01", resp.FeedDate)
	assert.False(t, resp.IsCompleted)
}

func TestGetDailyFeedHandlerNothingToStudy(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	router := newFeedRouter(&fakeFeedService{getErr: feed.ErrNothingToStudy}, userID)

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetDailyFeedHandlerBadDate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	router := newFeedRouter(&fakeFeedService{}, userID)

	req := httptest.NewRequest(http.MethodGet, "/feed?date=June+1st", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteFeedHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	entry := newFeedEntry(t, userID, date)
	router := newFeedRouter(&fakeFeedService{entry: entry}, userID)

	req := httptest.NewRequest(http.MethodPost, "/feed/complete?date=2026-06-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp FeedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.IsCompleted)
	assert.NotNil(t, resp.CompletedAt)
}

func TestCompleteFeedHandlerNotFound(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	router := newFeedRouter(&fakeFeedService{completeErr: feed.ErrFeedNotFound}, userID)

	req := httptest.NewRequest(http.MethodPost, "/feed/complete", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedHistoryHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var history []domain.DailyFeed
	for day := 1; day <= 3; day++ {
		entry := newFeedEntry(t, userID, time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC))
		history = append(history, *entry)
	}
	router := newFeedRouter(&fakeFeedService{history: history}, userID)

	req := httptest.NewRequest(http.MethodGet, "/feed/history?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []FeedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestFeedHistoryHandlerBadLimit(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	router := newFeedRouter(&fakeFeedService{}, userID)

	for _, limit := range []string{"zero", "-1", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/feed/history?limit="+limit, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}
