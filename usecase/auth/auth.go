package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

// New users start mid-ladder so early activity moves the needle both ways.
const initialConsistencyScore = 50

type UseCase struct {
	users      repository.UserRepository
	identities repository.IdentityCache
	logger     *zap.Logger
}

func New(users repository.UserRepository, identities repository.IdentityCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:      users,
		identities: identities,
		logger:     logger,
	}
}

// SyncUser upserts the local aggregate for an externally authenticated
// subject. First contact seeds the momentum defaults; later calls refresh the
// mutable profile fields.
func (uc *UseCase) SyncUser(ctx context.Context, subject, username, email string) (*domain.User, error) {
	if subject == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.users.GetByExternalID(ctx, subject)
	switch {
	case err == nil:
		if username != "" {
			user.Username = username
		}
		if email != "" {
			user.Email = email
		}
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		if username == "" {
			username = "user_" + shortSubject(subject)
		}
		user = &domain.User{
			ID:               uuid.NewString(),
			ExternalID:       subject,
			Username:         username,
			Email:            email,
			ConsistencyScore: initialConsistencyScore,
			Level:            domain.LevelForScore(initialConsistencyScore),
		}
	default:
		return nil, err
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	uc.cacheIdentity(ctx, subject, user.ID)
	return user, nil
}

// Resolve maps an external subject onto an internal user ID, preferring the
// cache. An unknown subject resolves to the empty ID, not an error; callers
// decide whether that is Unauthorized.
func (uc *UseCase) Resolve(ctx context.Context, subject string) (string, error) {
	if subject == "" {
		return "", nil
	}

	if uc.identities != nil {
		identity, err := uc.identities.Get(ctx, subject)
		if err == nil {
			return identity.UserID, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Warn("identity cache read failed", zap.Error(err))
		}
	}

	user, err := uc.users.GetByExternalID(ctx, subject)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return "", nil
		}
		return "", err
	}

	uc.cacheIdentity(ctx, subject, user.ID)
	return user.ID, nil
}

func (uc *UseCase) cacheIdentity(ctx context.Context, subject, userID string) {
	if uc.identities == nil {
		return
	}
	identity := &domain.Identity{
		Subject:    subject,
		UserID:     userID,
		ResolvedAt: time.Now(),
	}
	if err := uc.identities.Save(ctx, identity); err != nil {
		uc.logger.Warn("identity cache write failed", zap.Error(err))
	}
}

func shortSubject(subject string) string {
	if len(subject) > 6 {
		return subject[:6]
	}
	return subject
}
