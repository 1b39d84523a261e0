package repository

import (
	"context"
	"time"

	"github.com/momentumhq/backend/domain"
)

type TaskFilter struct {
	UserID       string
	Status       string
	KanbanStatus string
	Limit        int
	Offset       int
}

// DayBucket groups a user's tasks by the calendar date they were created on.
type DayBucket struct {
	Date      string
	Total     int
	Completed int
}

// TaskPosition pins a task to a board position during bulk reorder.
type TaskPosition struct {
	TaskID   string
	Position int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, userID string, positions []TaskPosition) error

	// Aggregation reads used by the momentum engine. The engine never writes
	// through this interface.
	DailyBuckets(ctx context.Context, userID string) ([]DayBucket, error)
	CountByStatus(ctx context.Context, userID, status string) (int, error)
	CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
	CompletedPerDay(ctx context.Context, userID string, since time.Time) ([]domain.HeatmapPoint, error)

	// Notification sweep support.
	ListDueUnnotified(ctx context.Context, from, to time.Time) ([]domain.Task, error)
	MarkNotified(ctx context.Context, id string) error
}
