package repository

import (
	"context"

	"github.com/momentumhq/backend/domain"
)

type DailyStatRepository interface {
	// IncrementCompleted bumps the (user, day) row by one completed task,
	// creating the row when absent. The increment is a single atomic upsert so
	// concurrent completions never lose updates.
	IncrementCompleted(ctx context.Context, userID string, day domain.Day, hard bool) error

	Get(ctx context.Context, userID string, day domain.Day) (*domain.DailyStat, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.DailyStat, error)
}
