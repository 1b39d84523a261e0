package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

const recentStatsLimit = 30

// Snapshot is the dashboard view of a user: the aggregate plus the recent
// per-day momentum history.
type Snapshot struct {
	User       *domain.User      `json:"user"`
	DailyStats []domain.DailyStat `json:"daily_stats"`
}

type UseCase struct {
	users  repository.UserRepository
	stats  repository.DailyStatRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, stats repository.DailyStatRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		stats:  stats,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*Snapshot, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := uc.stats.ListRecent(ctx, userID, recentStatsLimit)
	if err != nil {
		// The aggregate alone is still useful when history is unavailable.
		uc.logger.Warn("daily stat history unavailable", zap.String("user_id", userID), zap.Error(err))
		stats = []domain.DailyStat{}
	}
	if stats == nil {
		stats = []domain.DailyStat{}
	}

	return &Snapshot{User: user, DailyStats: stats}, nil
}

// UpdatePreferences overwrites the user-configurable fields only; momentum
// state is owned by the engine and never set through this path.
func (uc *UseCase) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if prefs.Username != nil {
		user.Username = *prefs.Username
	}
	if prefs.Email != nil {
		user.Email = *prefs.Email
	}
	if prefs.WeeklyGoal != nil {
		user.WeeklyGoal = *prefs.WeeklyGoal
	}
	if prefs.EmergencyMode != nil {
		user.EmergencyMode = *prefs.EmergencyMode
	}
	if prefs.Theme != nil {
		user.Theme = *prefs.Theme
	}
	if prefs.NotificationChannels != nil {
		user.NotificationChannels = prefs.NotificationChannels
	}
	if prefs.MobileNumber != nil {
		user.MobileNumber = *prefs.MobileNumber
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Preferences carries optional profile updates; nil means "leave unchanged".
type Preferences struct {
	Username             *string
	Email                *string
	WeeklyGoal           *int
	EmergencyMode        *bool
	Theme                *string
	NotificationChannels []string
	MobileNumber         *string
}
