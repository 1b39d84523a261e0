package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
	"github.com/momentumhq/backend/usecase"
)

// DefaultTaskPoints is awarded when a task completes unless the task carries
// its own value.
const DefaultTaskPoints = 10

type UseCase struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger

	// Now is replaceable in tests.
	Now func() time.Time
}

func New(tasks repository.TaskRepository, users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		users:  users,
		buffer: buffer,
		logger: logger,
		Now:    time.Now,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if task.KanbanStatus == "" {
		task.KanbanStatus = domain.KanbanTodo
	}
	if task.Priority == 0 {
		task.Priority = 2
	}
	if task.Points == 0 {
		task.Points = DefaultTaskPoints
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, err
	}
	return created, nil
}

// UpdateTask applies field changes and manages the completion transition: the
// pending-to-completed edge stamps CompletedAt exactly once and awards the
// task's points; the reverse edge clears the stamp.
func (uc *UseCase) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	existing, err := uc.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != task.UserID {
		return nil, domain.ErrUnauthorized
	}

	completing := task.Status == domain.TaskStatusCompleted && !existing.IsCompleted()
	reverting := task.Status == domain.TaskStatusPending && existing.IsCompleted()

	switch {
	case completing:
		now := uc.Now()
		task.CompletedAt = &now
	case reverting:
		task.CompletedAt = nil
	default:
		task.CompletedAt = existing.CompletedAt
	}
	task.Position = existing.Position
	task.CreatedDate = existing.CreatedDate

	if err := uc.tasks.Update(ctx, task); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationUpdate, task) {
			return task, nil
		}
		return nil, err
	}

	if completing {
		uc.awardPoints(ctx, task.UserID, task.Points)
	}
	return task, nil
}

// MoveTask handles kanban drag-and-drop. Moving into the done column
// completes the task; moving out of it reverts the task to pending.
func (uc *UseCase) MoveTask(ctx context.Context, userID, taskID, kanbanStatus string, position *int) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	if kanbanStatus != "" {
		task.KanbanStatus = kanbanStatus
	}
	if position != nil {
		task.Position = *position
	}

	completing := task.KanbanStatus == domain.KanbanDone && !task.IsCompleted()
	reverting := task.KanbanStatus != domain.KanbanDone && task.IsCompleted()

	switch {
	case completing:
		now := uc.Now()
		task.Status = domain.TaskStatusCompleted
		task.CompletedAt = &now
	case reverting:
		task.Status = domain.TaskStatusPending
		task.CompletedAt = nil
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationUpdate, task) {
			return task, nil
		}
		return nil, err
	}

	if completing {
		uc.awardPoints(ctx, userID, task.Points)
	}
	return task, nil
}

func (uc *UseCase) ReorderTasks(ctx context.Context, userID string, positions []repository.TaskPosition) error {
	if len(positions) == 0 {
		return domain.ErrInvalidPayload
	}
	return uc.tasks.Reorder(ctx, userID, positions)
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return domain.ErrUnauthorized
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		if err == domain.ErrTaskNotFound {
			return err
		}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, task) {
			return nil
		}
		return err
	}
	return nil
}

// awardPoints is best-effort; a failed increment never rolls back the
// completion itself.
func (uc *UseCase) awardPoints(ctx context.Context, userID string, points int) {
	if points <= 0 {
		return
	}
	if err := uc.users.AddPoints(ctx, userID, points); err != nil {
		uc.logger.Warn("failed to award task points",
			zap.String("user_id", userID), zap.Int("points", points), zap.Error(err))
	}
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation))
	return true
}
