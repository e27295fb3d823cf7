// Package main implements a small catalog seeding tool. It reads a JSON
// file describing topics and their subtopics and inserts them into the
// database, so new environments can be bootstrapped without hand-written
// SQL.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/looplearn/loop-api/internal/config"
	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/platform/postgres"
)

// seedFile is the JSON shape the tool consumes.
type seedFile struct {
	Topics []seedTopic `json:"topics"`
}

type seedTopic struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Subtopics   []seedSubtopic `json:"subtopics"`
}

type seedSubtopic struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	ExpectedTimeMinutes int    `json:"expected_time_minutes"`
}

func main() {
	path := flag.String("file", "catalog.json", "path to the catalog JSON file")
	flag.Parse()

	if err := run(*path); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog seedFile
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(catalog.Topics) == 0 {
		return fmt.Errorf("catalog file %s contains no topics", path)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	ctx := context.Background()
	topicStore := postgres.NewPostgresTopicStore(db, appLogger)
	subtopicStore := postgres.NewPostgresSubtopicStore(db, appLogger)

	for _, entry := range catalog.Topics {
		now := time.Now().UTC()
		topic := &domain.Topic{
			ID:          uuid.New(),
			Name:        entry.Name,
			Description: entry.Description,
			Category:    entry.Category,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := topicStore.Create(ctx, topic); err != nil {
			return fmt.Errorf("failed to create topic %q: %w", entry.Name, err)
		}

		for i, sub := range entry.Subtopics {
			subtopic := &domain.Subtopic{
				ID:                  uuid.New(),
				TopicID:             topic.ID,
				Name:                sub.Name,
				Description:         sub.Description,
				OrderIndex:          i,
				ExpectedTimeMinutes: sub.ExpectedTimeMinutes,
				IsActive:            true,
				CreatedAt:           time.Now().UTC(),
			}
			if err := subtopicStore.Create(ctx, subtopic); err != nil {
				return fmt.Errorf("failed to create subtopic %q of topic %q: %w",
					sub.Name, entry.Name, err)
			}
		}

		appLogger.Info("topic seeded",
			slog.String("topic", entry.Name),
			slog.Int("subtopics", len(entry.Subtopics)))
	}

	return nil
}
