package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/domain/progression"
	"github.com/looplearn/loop-api/internal/events"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/store"
)

// Verify interface compliance at compile time
var _ FeedService = (*feedServiceImpl)(nil)

// feedServiceImpl implements the FeedService interface.
type feedServiceImpl struct {
	feedStore      store.FeedStore
	userTopicStore store.UserTopicStore
	subtopicStore  store.SubtopicStore
	progressStore  store.ProgressStore
	eventEmitter   events.EventEmitter
	logger         *slog.Logger
}

// NewFeedService creates a new FeedService implementation. The event
// emitter is optional; when set, each newly generated feed entry emits
// a content generation request for its subtopic.
func NewFeedService(
	feedStore store.FeedStore,
	userTopicStore store.UserTopicStore,
	subtopicStore store.SubtopicStore,
	progressStore store.ProgressStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) FeedService {
	if feedStore == nil {
		panic("feedStore cannot be nil")
	}
	if userTopicStore == nil {
		panic("userTopicStore cannot be nil")
	}
	if subtopicStore == nil {
		panic("subtopicStore cannot be nil")
	}
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &feedServiceImpl{
		feedStore:      feedStore,
		userTopicStore: userTopicStore,
		subtopicStore:  subtopicStore,
		progressStore:  progressStore,
		eventEmitter:   eventEmitter,
		logger:         logger.With(slog.String("component", "feed_service")),
	}
}

// GetDailyFeed implements FeedService.GetDailyFeed.
func (s *feedServiceImpl) GetDailyFeed(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyFeed, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.feedStore.GetByUserAndDate(ctx, userID, date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrFeedNotFound) {
		log.Error("failed to look up daily feed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("get_daily_feed", "failed to look up feed", err)
	}

	return s.generateForUser(ctx, userID, date)
}

// generateForUser runs the selector for the user and persists the pick.
func (s *feedServiceImpl) generateForUser(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyFeed, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	input, err := s.selectionInput(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtopicID := progression.SelectNext(*input, date.UTC())
	if subtopicID == nil {
		log.Debug("no eligible subtopic for user",
			slog.String("user_id", userID.String()))
		return nil, ErrNothingToStudy
	}

	feed, err := domain.NewDailyFeed(userID, *subtopicID, date)
	if err != nil {
		return nil, NewServiceError("generate_feed", "failed to build feed entry", err)
	}

	if err := s.feedStore.Create(ctx, feed); err != nil {
		// A concurrent generation beat us to it; the stored entry wins.
		if errors.Is(err, store.ErrFeedExists) {
			return s.feedStore.GetByUserAndDate(ctx, userID, date)
		}
		log.Error("failed to persist daily feed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("generate_feed", "failed to persist feed entry", err)
	}

	log.Info("daily feed generated",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()),
		slog.Time("feed_date", feed.FeedDate))

	s.requestContentGeneration(ctx, *subtopicID)

	return feed, nil
}

// requestContentGeneration asks the background pipeline to prepare
// study content for the subtopic. Failures are logged but never fail
// feed generation; the content can be regenerated on demand.
func (s *feedServiceImpl) requestContentGeneration(ctx context.Context, subtopicID uuid.UUID) {
	if s.eventEmitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewContentGenerationEvent(subtopicID)
	if err != nil {
		log.Error("failed to build content generation event",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopicID.String()))
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit content generation event",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopicID.String()))
	}
}

// selectionInput assembles the selector's snapshot for one user.
func (s *feedServiceImpl) selectionInput(ctx context.Context, userID uuid.UUID) (*progression.SelectionInput, error) {
	userTopics, err := s.userTopicStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("generate_feed", "failed to list subscriptions", err)
	}

	topicIDs := make([]uuid.UUID, 0, len(userTopics))
	for _, ut := range userTopics {
		topicIDs = append(topicIDs, ut.TopicID)
	}

	subtopics, err := s.subtopicStore.ListByTopics(ctx, topicIDs)
	if err != nil {
		return nil, NewServiceError("generate_feed", "failed to list subtopics", err)
	}

	states, err := s.progressStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("generate_feed", "failed to list progress", err)
	}

	return &progression.SelectionInput{
		UserTopics: userTopics,
		Subtopics:  subtopics,
		States:     states,
	}, nil
}

// CompleteFeed implements FeedService.CompleteFeed.
func (s *feedServiceImpl) CompleteFeed(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyFeed, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	feed, err := s.feedStore.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, store.ErrFeedNotFound) {
			return nil, ErrFeedNotFound
		}
		return nil, NewServiceError("complete_feed", "failed to look up feed", err)
	}

	if feed.IsCompleted {
		return feed, nil
	}

	feed.MarkCompleted(time.Now().UTC())
	if err := s.feedStore.Update(ctx, feed); err != nil {
		log.Error("failed to mark feed completed",
			slog.String("error", err.Error()),
			slog.String("feed_id", feed.ID.String()))
		return nil, NewServiceError("complete_feed", "failed to update feed", err)
	}

	log.Info("daily feed completed",
		slog.String("user_id", userID.String()),
		slog.String("feed_id", feed.ID.String()))

	return feed, nil
}

// History implements FeedService.History.
func (s *feedServiceImpl) History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DailyFeed, error) {
	feeds, err := s.feedStore.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, NewServiceError("history", "failed to list feeds", err)
	}
	return feeds, nil
}

// GenerateAll implements FeedService.GenerateAll.
func (s *feedServiceImpl) GenerateAll(ctx context.Context, date time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userIDs, err := s.userTopicStore.ListActiveUserIDs(ctx)
	if err != nil {
		return 0, NewServiceError("generate_all", "failed to list active users", err)
	}

	created := 0
	var failed int
	for _, userID := range userIDs {
		if _, err := s.feedStore.GetByUserAndDate(ctx, userID, date); err == nil {
			continue
		} else if !errors.Is(err, store.ErrFeedNotFound) {
			log.Error("failed to check existing feed",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			failed++
			continue
		}

		_, err := s.generateForUser(ctx, userID, date)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrNothingToStudy):
			// Fully caught-up users simply get no entry today.
		default:
			log.Error("failed to generate feed for user",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			failed++
		}
	}

	log.Info("daily feed batch finished",
		slog.Int("users", len(userIDs)),
		slog.Int("created", created),
		slog.Int("failed", failed))

	if failed > 0 {
		return created, fmt.Errorf("feed generation failed for %d of %d users", failed, len(userIDs))
	}
	return created, nil
}
