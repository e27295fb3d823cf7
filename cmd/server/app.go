package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/looplearn/loop-api/internal/config"
	"github.com/looplearn/loop-api/internal/domain/progression"
	"github.com/looplearn/loop-api/internal/events"
	"github.com/looplearn/loop-api/internal/generation"
	"github.com/looplearn/loop-api/internal/platform/gemini"
	"github.com/looplearn/loop-api/internal/platform/postgres"
	"github.com/looplearn/loop-api/internal/service"
	"github.com/looplearn/loop-api/internal/service/auth"
	"github.com/looplearn/loop-api/internal/service/evaluation"
	"github.com/looplearn/loop-api/internal/service/feed"
	"github.com/looplearn/loop-api/internal/store"
	"github.com/looplearn/loop-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore      store.UserStore
	topicStore     store.TopicStore
	subtopicStore  store.SubtopicStore
	userTopicStore store.UserTopicStore
	progressStore  store.ProgressStore
	feedStore      store.FeedStore
	contentStore   store.ContentStore
	taskStore      task.TaskStore

	// Services
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	engine            progression.Service
	generator         generation.Generator
	userService       service.UserService
	topicService      service.TopicService
	evaluationService evaluation.EvaluationService
	feedService       feed.FeedService

	// Event system and background processing
	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
	feedJob      *feedScheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established
// before application wiring: configuration, logger and database.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	bcryptCost := cfg.Auth.BcryptCost
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	app.userStore = postgres.NewPostgresUserStore(db, bcryptCost)
	app.topicStore = postgres.NewPostgresTopicStore(db, logger)
	app.subtopicStore = postgres.NewPostgresSubtopicStore(db, logger)
	app.userTopicStore = postgres.NewPostgresUserTopicStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.feedStore = postgres.NewPostgresFeedStore(db, logger)
	app.contentStore = postgres.NewPostgresContentStore(db, logger)

	app.engine = progression.NewServiceWithParams(progression.NewParams(progression.ParamsConfig{
		ExpertConsecutiveReviews: cfg.Progression.ExpertConsecutiveReviews,
		MaxIntervalDays:          cfg.Progression.MaxIntervalDays,
	}))

	app.generator, err = gemini.NewGeminiGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content generator: %w", err)
	}

	contentFactory, err := task.NewContentGenerationTaskFactory(
		app.subtopicStore,
		app.generator,
		app.contentStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create content generation task factory: %w", err)
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, rehydrator(contentFactory), logger)
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)

	app.eventEmitter, err = setupEventSystem(app.taskRunner, contentFactory, logger)
	if err != nil {
		return nil, err
	}

	app.userService = service.NewUserService(app.userStore, app.passwordVerifier, db, logger)
	app.topicService = service.NewTopicService(app.topicStore, app.subtopicStore, app.userTopicStore, logger)
	app.evaluationService = evaluation.NewEvaluationService(
		evaluation.NewSubtopicRepositoryAdapter(app.subtopicStore),
		evaluation.NewProgressRepositoryAdapter(app.progressStore, db),
		app.engine,
		logger,
	)
	app.feedService = feed.NewFeedService(
		app.feedStore,
		app.userTopicStore,
		app.subtopicStore,
		app.progressStore,
		app.eventEmitter,
		logger,
	)

	app.feedJob = newFeedScheduler(app.feedService, cfg.Progression.FeedGenerationHourUTC, logger)

	logger.Info("application initialized")
	return app, nil
}

// setupEventSystem wires the in-memory event emitter to the task
// pipeline, so emitted task requests become submitted tasks.
func setupEventSystem(
	runner *task.TaskRunner,
	contentFactory *task.ContentGenerationTaskFactory,
	logger *slog.Logger,
) (events.EventEmitter, error) {
	emitter := events.NewInMemoryEventEmitter(logger)

	handler, err := task.NewTaskFactoryEventHandler(runner, contentFactory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task event handler: %w", err)
	}
	emitter.RegisterHandler(handler)

	return emitter, nil
}

// rehydrator rebuilds executable tasks from persisted rows during
// crash recovery.
func rehydrator(contentFactory *task.ContentGenerationTaskFactory) postgres.TaskRehydrator {
	return func(taskType string, payload []byte) (task.Task, error) {
		switch taskType {
		case task.TaskTypeContentGeneration:
			var data events.ContentGenerationPayload
			if err := json.Unmarshal(payload, &data); err != nil {
				return nil, fmt.Errorf("invalid content generation payload: %w", err)
			}
			return contentFactory.CreateTask(data.SubtopicID)
		default:
			return nil, fmt.Errorf("unknown task type %q", taskType)
		}
	}
}

// Run starts background processing and the HTTP server, blocking until
// shutdown completes.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	if err := app.feedJob.Start(); err != nil {
		return fmt.Errorf("failed to start feed scheduler: %w", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.feedJob != nil {
		app.feedJob.Stop()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection",
				slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
