package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/domain/progression"
	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/store"
)

// Verify interface compliance at compile time
var _ EvaluationService = (*evaluationServiceImpl)(nil)

// evaluationServiceImpl implements the EvaluationService interface.
type evaluationServiceImpl struct {
	subtopicRepo SubtopicRepository
	progressRepo ProgressRepository
	engine       progression.Service
	logger       *slog.Logger
}

// NewEvaluationService creates a new EvaluationService implementation.
func NewEvaluationService(
	subtopicRepo SubtopicRepository,
	progressRepo ProgressRepository,
	engine progression.Service,
	logger *slog.Logger,
) EvaluationService {
	if subtopicRepo == nil {
		panic("subtopicRepo cannot be nil")
	}
	if progressRepo == nil {
		panic("progressRepo cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &evaluationServiceImpl{
		subtopicRepo: subtopicRepo,
		progressRepo: progressRepo,
		engine:       engine,
		logger:       logger.With(slog.String("component", "evaluation_service")),
	}
}

// SubmitCycle implements EvaluationService.SubmitCycle.
func (s *evaluationServiceImpl) SubmitCycle(
	ctx context.Context,
	userID uuid.UUID,
	subtopicID uuid.UUID,
	events []domain.RawAttemptEvent,
) (*CycleResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing evaluation cycle",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()),
		slog.Int("event_count", len(events)))

	if len(events) == 0 {
		return nil, fmt.Errorf("%w: cycle contains no attempt events", ErrInvalidCycle)
	}

	now := time.Now().UTC()

	var result *CycleResult
	err := s.runInTransaction(ctx, func(ctx context.Context, subtopicRepo SubtopicRepository, progressRepo ProgressRepository) error {
		subtopic, err := subtopicRepo.GetByID(ctx, subtopicID)
		if err != nil {
			if errors.Is(err, store.ErrSubtopicNotFound) {
				log.Warn("subtopic not found for cycle submission",
					slog.String("subtopic_id", subtopicID.String()))
				return ErrSubtopicNotFound
			}
			return fmt.Errorf("failed to get subtopic: %w", err)
		}

		// Load the current state under a row lock; a first cycle has none.
		fresh := false
		state, err := progressRepo.GetForUpdate(ctx, userID, subtopicID)
		if err != nil {
			if !errors.Is(err, store.ErrProgressNotFound) {
				return fmt.Errorf("failed to get progress state: %w", err)
			}
			state, err = domain.NewSubtopicProgressState(userID, subtopicID)
			if err != nil {
				return fmt.Errorf("failed to create progress state: %w", err)
			}
			fresh = true
		}

		evaluated, err := s.engine.EvaluateCycle(state, subtopic, events, now)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return fmt.Errorf("%w: %v", ErrInvalidCycle, err)
			}
			if errors.Is(err, progression.ErrInvalidStateTransition) {
				return fmt.Errorf("%w: %v", ErrInvalidCycle, err)
			}
			return fmt.Errorf("failed to evaluate cycle: %w", err)
		}

		if fresh {
			err = progressRepo.Create(ctx, evaluated.State)
		} else {
			err = progressRepo.Update(ctx, evaluated.State)
		}
		if err != nil {
			if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrProgressExists) {
				return ErrEvaluationConflict
			}
			return fmt.Errorf("failed to persist progress state: %w", err)
		}

		result = &CycleResult{
			State:    evaluated.State,
			Score:    evaluated.Score,
			Decision: evaluated.Decision,
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSubtopicNotFound) ||
			errors.Is(err, ErrInvalidCycle) ||
			errors.Is(err, ErrEvaluationConflict) {
			return nil, err
		}

		log.Error("failed to submit cycle",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("subtopic_id", subtopicID.String()))
		return nil, NewServiceError("submit_cycle", "failed to process evaluation cycle", err)
	}

	log.Info("evaluation cycle processed",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()),
		slog.Float64("total_score", result.Score.Total),
		slog.String("action", string(result.Decision.Action)),
		slog.String("mastery_level", string(result.State.MasteryLevel)))

	return result, nil
}

// GetProgress implements EvaluationService.GetProgress.
func (s *evaluationServiceImpl) GetProgress(ctx context.Context, userID uuid.UUID) ([]domain.SubtopicProgressState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	states, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list progress states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("get_progress", "failed to list progress states", err)
	}

	return states, nil
}

// runInTransaction runs the given function in a transaction with
// transactional repository instances.
func (s *evaluationServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, SubtopicRepository, ProgressRepository) error,
) error {
	db := s.progressRepo.DB()
	if db == nil {
		// In-memory repositories have no database connection; run the
		// function directly against them.
		return fn(ctx, s.subtopicRepo, s.progressRepo)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	subtopicRepo := s.subtopicRepo.WithTx(tx)
	progressRepo := s.progressRepo.WithTx(tx)

	err = fn(ctx, subtopicRepo, progressRepo)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
