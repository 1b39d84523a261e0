package repository

import (
	"context"

	"github.com/momentumhq/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error

	// ApplyMomentum persists streak, consistency score, level and last-active
	// guarded by the aggregate version. Returns domain.ErrVersionConflict when
	// a concurrent update won the race; callers reload and retry.
	ApplyMomentum(ctx context.Context, user *domain.User) error

	// Counter updates that bypass the version check; they are single-statement
	// atomic increments.
	AddPoints(ctx context.Context, id string, points int) error
	AddFocus(ctx context.Context, id string, seconds, points int) error
	ResetFocus(ctx context.Context, id string) error
}
