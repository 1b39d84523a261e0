package momentum

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
	"github.com/momentumhq/backend/usecase"
)

const (
	// heatmapWindow is the trailing period covered by the completion heatmap.
	heatmapWindow = 365 * 24 * time.Hour

	taskGain     = 1
	hardTaskGain = 2

	// performanceLabel is a fixed display string, not a ratio.
	performanceLabel = "Avg. Score"

	maxApplyAttempts = 3
)

// Engine derives the four dashboard health metrics from task-completion
// history and keeps the per-user momentum aggregate up to date.
type Engine struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	stats  repository.DailyStatRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger

	// Now is replaceable in tests.
	Now func() time.Time
}

func NewEngine(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	stats repository.DailyStatRepository,
	buffer usecase.OperationBuffer,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		users:  users,
		tasks:  tasks,
		stats:  stats,
		buffer: buffer,
		logger: logger,
		Now:    time.Now,
	}
}

// GetGraphMetrics computes the discipline, consistency, performance and
// task-volume scores plus the yearly heatmap. Read-only: it never touches the
// user aggregate.
func (e *Engine) GetGraphMetrics(ctx context.Context, userID string) (*domain.GraphMetrics, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Discipline: share of active days on which every task created that day
	// was completed.
	buckets, err := e.tasks.DailyBuckets(ctx, userID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "daily bucket aggregation failed", err)
	}
	totalActiveDays := len(buckets)
	perfectDays := 0
	for _, b := range buckets {
		if b.Completed == b.Total {
			perfectDays++
		}
	}
	discipline := percent(perfectDays, totalActiveDays)

	// Consistency: lifetime completion ratio.
	totalCreated, err := e.tasks.CountByStatus(ctx, userID, "")
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "task count failed", err)
	}
	totalCompleted, err := e.tasks.CountByStatus(ctx, userID, domain.TaskStatusCompleted)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "completed count failed", err)
	}
	consistency := percent(totalCompleted, totalCreated)

	// Task volume: today's completions against the derived daily target.
	now := e.Now()
	dayStart := domain.DayOf(now).Time(now.Location())
	tasksToday, err := e.tasks.CountCompletedBetween(ctx, userID, dayStart, now)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "today count failed", err)
	}
	dailyTarget := user.DailyTarget()
	taskScore := percent(tasksToday, dailyTarget)
	if taskScore > 100 {
		taskScore = 100
	}

	// Performance averages the three already-rounded scores. The rounding
	// order (round each, then average) is part of the contract.
	performance := int(math.Round(float64(discipline+consistency+taskScore) / 3))

	heatmap, err := e.tasks.CompletedPerDay(ctx, userID, now.Add(-heatmapWindow))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "heatmap aggregation failed", err)
	}
	if heatmap == nil {
		heatmap = []domain.HeatmapPoint{}
	}

	return &domain.GraphMetrics{
		Metrics: domain.MetricSet{
			Discipline:  discipline,
			Consistency: consistency,
			Performance: performance,
			Task:        taskScore,
		},
		Counts: domain.MetricCounts{
			Discipline:  fmt.Sprintf("%d/%d", perfectDays, totalActiveDays),
			Consistency: fmt.Sprintf("%d/%d", totalCompleted, totalCreated),
			Performance: performanceLabel,
			Task:        fmt.Sprintf("%d/%d", tasksToday, dailyTarget),
		},
		Heatmap: heatmap,
	}, nil
}

// UpdateMomentum records a single pending-to-completed transition: it bumps
// today's daily stat atomically, then applies streak and consistency changes
// to the user aggregate under an optimistic version check. Callers must gate
// the call on the actual status transition; re-invoking for an
// already-completed task double-counts.
//
// When the aggregate write keeps failing the update is handed to the offline
// buffer and a nil state is returned; the daily stat increment has already
// landed at that point and is not replayed.
func (e *Engine) UpdateMomentum(ctx context.Context, userID string, task *domain.Task) (*domain.User, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	now := e.Now()
	today := domain.DayOf(now)

	// The daily stat row references the user; check existence first so a
	// stale identity surfaces as not-found instead of a constraint error.
	if _, err := e.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := e.stats.IncrementCompleted(ctx, userID, today, task.NonNegotiable); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "daily stat update failed", err)
	}

	user, err := e.applyAggregate(ctx, userID, task, now)
	if err == nil {
		return user, nil
	}
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	if e.buffer != nil {
		if bufErr := e.buffer.BufferMomentum(ctx, userID, task); bufErr == nil {
			e.logger.Warn("momentum aggregate update buffered",
				zap.String("user_id", userID), zap.Error(err))
			return nil, nil
		}
		e.logger.Error("failed to buffer momentum update", zap.String("user_id", userID))
	}
	return nil, domain.WrapError(domain.ErrCodeInternal, "momentum update failed", err)
}

// ReplayAggregate re-applies the aggregate-state half of a buffered update.
// The daily stat increment already happened in the original request.
func (e *Engine) ReplayAggregate(ctx context.Context, userID string, task *domain.Task) error {
	_, err := e.applyAggregate(ctx, userID, task, e.Now())
	return err
}

func (e *Engine) applyAggregate(ctx context.Context, userID string, task *domain.Task, now time.Time) (*domain.User, error) {
	var user *domain.User
	var err error
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		user, err = e.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}

		applyCompletion(user, task, now)

		err = e.users.ApplyMomentum(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		e.logger.Debug("momentum version conflict, retrying",
			zap.String("user_id", userID), zap.Int("attempt", attempt+1))
	}
	return nil, err
}

// applyCompletion mutates the in-memory aggregate for one completed task.
func applyCompletion(user *domain.User, task *domain.Task, now time.Time) {
	today := domain.DayOf(now)

	if user.LastActive.IsZero() {
		user.Streak = 1
	} else {
		switch diff := today.DaysSince(domain.DayOf(user.LastActive)); {
		case diff == 1:
			user.Streak++
		case diff > 1:
			user.Streak = 1
		}
		// diff == 0: today already counted. diff < 0: clock skew or an
		// out-of-order completion; the streak is left alone.
	}

	// Full instant, not a day: truncation happens on the next comparison.
	user.LastActive = now

	gain := taskGain
	if task.NonNegotiable {
		gain = hardTaskGain
	}
	user.ConsistencyScore = domain.ClampScore(user.ConsistencyScore + gain)
	user.Level = domain.LevelForScore(user.ConsistencyScore)
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
