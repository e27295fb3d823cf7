package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/looplearn/loop-api/internal/service/feed"
)

// feedScheduler runs the daily feed generation batch at a fixed UTC hour.
// On-demand generation still covers users who request their feed before
// the batch has run.
type feedScheduler struct {
	scheduler   *gocron.Scheduler
	feedService feed.FeedService
	hourUTC     int
	logger      *slog.Logger
}

func newFeedScheduler(feedService feed.FeedService, hourUTC int, logger *slog.Logger) *feedScheduler {
	return &feedScheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		feedService: feedService,
		hourUTC:     hourUTC,
		logger:      logger.With(slog.String("component", "feed_scheduler")),
	}
}

// Start schedules the batch job and runs the scheduler asynchronously.
func (s *feedScheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.hourUTC)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.generateFeeds); err != nil {
		return fmt.Errorf("failed to schedule feed generation: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("feed generation scheduled", slog.String("at_utc", at))
	return nil
}

// Stop terminates the scheduler, waiting for a running job to finish.
func (s *feedScheduler) Stop() {
	s.scheduler.Stop()
}

func (s *feedScheduler) generateFeeds() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	today := time.Now().UTC()
	created, err := s.feedService.GenerateAll(ctx, today)
	if err != nil {
		s.logger.Error("daily feed batch finished with errors",
			slog.Int("created", created),
			slog.String("error", err.Error()))
		return
	}

	s.logger.Info("daily feed batch finished", slog.Int("created", created))
}
