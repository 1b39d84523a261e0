package repository

import (
	"context"

	"github.com/momentumhq/backend/domain"
)

type GoalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	List(ctx context.Context, userID string) ([]domain.Goal, error)
	Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error)
	Update(ctx context.Context, goal *domain.Goal) error
	Delete(ctx context.Context, id string) error
}
