package goal

import (
	"context"

	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

type UseCase struct {
	goals  repository.GoalRepository
	users  repository.UserRepository
	logger *zap.Logger
}

func New(goals repository.GoalRepository, users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		goals:  goals,
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	return uc.goals.List(ctx, userID)
}

func (uc *UseCase) CreateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if goal == nil || goal.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	goal.Progress = domain.ClampScore(goal.Progress)
	return uc.goals.Create(ctx, goal)
}

// UpdateGoal applies field changes; the first transition to completed awards
// the goal completion bonus.
func (uc *UseCase) UpdateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if goal == nil || goal.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	existing, err := uc.goals.GetByID(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != goal.UserID {
		return nil, domain.ErrUnauthorized
	}

	completing := goal.Completed && !existing.Completed
	goal.Progress = domain.ClampScore(goal.Progress)
	goal.CreatedAt = existing.CreatedAt

	if err := uc.goals.Update(ctx, goal); err != nil {
		return nil, err
	}

	if completing {
		if err := uc.users.AddPoints(ctx, goal.UserID, domain.GoalCompletionPoints); err != nil {
			uc.logger.Warn("failed to award goal points",
				zap.String("user_id", goal.UserID), zap.Error(err))
		}
	}
	return goal, nil
}

func (uc *UseCase) DeleteGoal(ctx context.Context, userID, id string) error {
	goal, err := uc.goals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if goal.UserID != userID {
		return domain.ErrUnauthorized
	}
	return uc.goals.Delete(ctx, id)
}
