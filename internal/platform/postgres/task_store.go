package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/platform/logger"
	"github.com/looplearn/loop-api/internal/store"
	"github.com/looplearn/loop-api/internal/task"
)

// TaskRehydrator rebuilds an executable task from its persisted type and
// payload. It is used when recovering tasks after a restart.
type TaskRehydrator func(taskType string, payload []byte) (task.Task, error)

// PostgresTaskStore implements the task.TaskStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db        store.DBTX
	logger    *slog.Logger
	rehydrate TaskRehydrator
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// The rehydrator turns recovered rows back into executable tasks; it may
// be nil, in which case recovered tasks fail on execution.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, rehydrate TaskRehydrator, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:        db,
		logger:    logger.With(slog.String("component", "task_store")),
		rehydrate: rehydrate,
	}
}

// Ensure PostgresTaskStore implements task.TaskStore interface
var _ task.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements task.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{
		db:        tx,
		logger:    s.logger,
		rehydrate: s.rehydrate,
	}
}

// SaveTask implements task.TaskStore.SaveTask
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		t.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task: %w", MapError(err))
	}

	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus. Updating
// a task that no longer exists is a no-op.
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn("no task found to update status",
			slog.String("task_id", taskID.String()))
	}

	return nil
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks
func (s *PostgresTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

// getTasksByStatus retrieves tasks by status, optionally filtered to
// those not updated within the given duration.
func (s *PostgresTaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status
		FROM tasks
		WHERE status = $1
	`
	args := []interface{}{status}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks by status: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		var (
			id         uuid.UUID
			taskType   string
			payload    []byte
			taskStatus task.TaskStatus
		)
		if err := rows.Scan(&id, &taskType, &payload, &taskStatus); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		tasks = append(tasks, s.toExecutableTask(log, id, taskType, payload, taskStatus))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// toExecutableTask rehydrates a stored row into a runnable task. If
// rehydration fails the row is returned as an inert task whose Execute
// reports the failure, so the runner marks it failed instead of
// dropping it silently.
func (s *PostgresTaskStore) toExecutableTask(
	log *slog.Logger,
	id uuid.UUID,
	taskType string,
	payload []byte,
	status task.TaskStatus,
) task.Task {
	recovered := &recoveredTask{
		id:       id,
		taskType: taskType,
		payload:  payload,
		status:   status,
	}

	if s.rehydrate == nil {
		return recovered
	}

	executable, err := s.rehydrate(taskType, payload)
	if err != nil {
		log.Error("failed to rehydrate task",
			slog.String("task_id", id.String()),
			slog.String("task_type", taskType),
			slog.String("error", err.Error()))
		recovered.rehydrateErr = err
		return recovered
	}

	// Keep the stored identity so status updates target the original row.
	recovered.executeFn = executable.Execute
	return recovered
}

// recoveredTask implements task.Task for rows loaded from the database.
type recoveredTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	executeFn    func(ctx context.Context) error
	rehydrateErr error
}

func (t *recoveredTask) ID() uuid.UUID { return t.id }

func (t *recoveredTask) Type() string { return t.taskType }

func (t *recoveredTask) Payload() []byte { return t.payload }

func (t *recoveredTask) Status() task.TaskStatus { return t.status }

func (t *recoveredTask) Execute(ctx context.Context) error {
	if t.executeFn != nil {
		return t.executeFn(ctx)
	}
	if t.rehydrateErr != nil {
		return fmt.Errorf("task could not be rehydrated: %w", t.rehydrateErr)
	}
	return fmt.Errorf("no execution function for recovered task of type %q", t.taskType)
}
