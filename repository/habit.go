package repository

import (
	"context"

	"github.com/momentumhq/backend/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	List(ctx context.Context, userID string) ([]domain.Habit, error)
	Create(ctx context.Context, habit *domain.Habit) (*domain.Habit, error)
	Delete(ctx context.Context, id string) error

	// ToggleMark flips the completion mark for (habit, day) and reports
	// whether the mark exists afterwards.
	ToggleMark(ctx context.Context, habitID string, day domain.Day) (bool, error)
}
