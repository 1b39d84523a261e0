package habit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

const chartDays = 7

type UseCase struct {
	habits repository.HabitRepository
	logger *zap.Logger

	// Now is replaceable in tests.
	Now func() time.Time
}

func New(habits repository.HabitRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		habits: habits,
		logger: logger,
		Now:    time.Now,
	}
}

func (uc *UseCase) ListHabits(ctx context.Context, userID string) ([]domain.Habit, error) {
	return uc.habits.List(ctx, userID)
}

func (uc *UseCase) CreateHabit(ctx context.Context, habit *domain.Habit) (*domain.Habit, error) {
	if habit == nil || habit.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	return uc.habits.Create(ctx, habit)
}

func (uc *UseCase) DeleteHabit(ctx context.Context, userID, id string) error {
	habit, err := uc.habits.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if habit.UserID != userID {
		return domain.ErrUnauthorized
	}
	return uc.habits.Delete(ctx, id)
}

// ToggleCompletion flips the habit's mark for the given day (today when the
// zero day is passed) and returns the refreshed habit.
func (uc *UseCase) ToggleCompletion(ctx context.Context, userID, id string, day domain.Day) (*domain.Habit, error) {
	habit, err := uc.habits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	if day.IsZero() {
		day = domain.DayOf(uc.Now())
	}
	if _, err := uc.habits.ToggleMark(ctx, id, day); err != nil {
		return nil, err
	}
	return uc.habits.GetByID(ctx, id)
}

// Stats builds the trailing 7-day completion series for the area chart: for
// each day, how many habits were checked off.
func (uc *UseCase) Stats(ctx context.Context, userID string) ([]domain.HabitDayCount, error) {
	habits, err := uc.habits.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.DayOf(uc.Now())
	result := make([]domain.HabitDayCount, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		count := 0
		for idx := range habits {
			if habits[idx].CompletedOn(day) {
				count++
			}
		}
		result = append(result, domain.HabitDayCount{
			Name:      day.Time(time.UTC).Format("Jan 2"),
			Completed: count,
		})
	}
	return result, nil
}
