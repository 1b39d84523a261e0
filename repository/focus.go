package repository

import (
	"context"
	"time"

	"github.com/momentumhq/backend/domain"
)

type FocusRepository interface {
	Create(ctx context.Context, session *domain.FocusSession) (*domain.FocusSession, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]domain.FocusSession, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}
