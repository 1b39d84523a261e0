package repository

import (
	"context"

	"github.com/momentumhq/backend/domain"
)

// IdentityCache caches the binding from an external auth-provider subject to
// an internal user ID so the middleware avoids a user lookup per request.
type IdentityCache interface {
	Get(ctx context.Context, subject string) (*domain.Identity, error)
	Save(ctx context.Context, identity *domain.Identity) error
	Delete(ctx context.Context, subject string) error
}
