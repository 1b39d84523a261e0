package focus

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

const chartDays = 7

// Result summarizes a recorded session for the response payload.
type Result struct {
	Session           *domain.FocusSession `json:"session"`
	PointsEarned      int                  `json:"points_earned"`
	TotalPoints       int                  `json:"total_points"`
	TotalFocusSeconds int                  `json:"total_focus_seconds"`
}

type UseCase struct {
	sessions repository.FocusRepository
	users    repository.UserRepository
	logger   *zap.Logger

	// Now is replaceable in tests.
	Now func() time.Time
}

func New(sessions repository.FocusRepository, users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		users:    users,
		logger:   logger,
		Now:      time.Now,
	}
}

// RecordSession stores a finished focus run and applies the derived point and
// focus-time increments to the user in one atomic statement.
func (uc *UseCase) RecordSession(ctx context.Context, userID string, durationSeconds int, action string) (*Result, error) {
	if durationSeconds < 0 {
		return nil, domain.ErrInvalidPayload
	}
	if action == "" {
		action = domain.FocusActionComplete
	}

	points := durationSeconds / domain.FocusPointsInterval

	session := &domain.FocusSession{
		UserID:          userID,
		DurationSeconds: durationSeconds,
		Action:          action,
		OccurredAt:      uc.Now(),
	}
	session, err := uc.sessions.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	if err := uc.users.AddFocus(ctx, userID, durationSeconds, points); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Result{
		Session:           session,
		PointsEarned:      points,
		TotalPoints:       user.Points,
		TotalFocusSeconds: user.FocusSeconds,
	}, nil
}

// Stats aggregates the trailing 7 days of sessions into a per-day chart plus
// lifetime totals.
func (uc *UseCase) Stats(ctx context.Context, userID string) (*domain.FocusStats, error) {
	now := uc.Now()
	since := now.AddDate(0, 0, -chartDays)

	sessions, err := uc.sessions.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	perDay := make(map[domain.Day]int, chartDays)
	today := domain.DayOf(now)
	for i := 0; i < chartDays; i++ {
		perDay[today.AddDays(-i)] = 0
	}
	for _, s := range sessions {
		day := domain.DayOf(s.OccurredAt)
		if _, ok := perDay[day]; ok {
			perDay[day] += s.DurationSeconds
		}
	}

	chart := make([]domain.FocusDayStat, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		seconds := perDay[day]
		chart = append(chart, domain.FocusDayStat{
			Name:    day.Time(time.UTC).Format("Jan 2"),
			Minutes: math.Round(float64(seconds)/60*10) / 10,
			Seconds: seconds,
		})
	}

	total, err := uc.sessions.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.FocusStats{
		Chart:         chart,
		TotalSessions: total,
		TotalSeconds:  user.FocusSeconds,
		TotalMinutes:  user.FocusSeconds / 60,
	}, nil
}

// ClearHistory removes all recorded sessions and resets the user's focus
// counters. Points already earned stay.
func (uc *UseCase) ClearHistory(ctx context.Context, userID string) (int, error) {
	deleted, err := uc.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := uc.users.ResetFocus(ctx, userID); err != nil {
		return deleted, err
	}
	uc.logger.Info("focus history cleared", zap.String("user_id", userID), zap.Int("sessions", deleted))
	return deleted, nil
}
