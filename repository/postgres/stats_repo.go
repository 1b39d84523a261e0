package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

type dailyStatRepository struct {
	pool *pgxpool.Pool
}

// NewDailyStatRepository returns a Postgres-backed daily stat repository.
func NewDailyStatRepository(pool *pgxpool.Pool) repository.DailyStatRepository {
	return &dailyStatRepository{pool: pool}
}

func (r *dailyStatRepository) IncrementCompleted(ctx context.Context, userID string, day domain.Day, hard bool) error {
	hardInc := 0
	if hard {
		hardInc = 1
	}

	// Single-statement upsert keeps concurrent same-day completions from
	// losing increments.
	const query = `
	INSERT INTO daily_stats (user_id, day, tasks_completed, hard_tasks_completed)
	VALUES ($1, $2, 1, $3)
	ON CONFLICT (user_id, day) DO UPDATE
	SET tasks_completed = daily_stats.tasks_completed + 1,
		hard_tasks_completed = daily_stats.hard_tasks_completed + $3
	`
	_, err := r.pool.Exec(ctx, query, userID, day.Time(time.UTC), hardInc)
	return err
}

func (r *dailyStatRepository) Get(ctx context.Context, userID string, day domain.Day) (*domain.DailyStat, error) {
	const query = `
	SELECT user_id, day, tasks_completed, total_tasks, hard_tasks_completed, consistency_change
	FROM daily_stats
	WHERE user_id = $1 AND day = $2
	`
	return scanDailyStat(r.pool.QueryRow(ctx, query, userID, day.Time(time.UTC)))
}

func (r *dailyStatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.DailyStat, error) {
	if limit <= 0 {
		limit = 30
	}
	const query = `
	SELECT user_id, day, tasks_completed, total_tasks, hard_tasks_completed, consistency_change
	FROM daily_stats
	WHERE user_id = $1
	ORDER BY day DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.DailyStat
	for rows.Next() {
		stat, err := scanDailyStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *stat)
	}
	return stats, rows.Err()
}

func scanDailyStat(row pgx.Row) (*domain.DailyStat, error) {
	var stat domain.DailyStat
	var day time.Time

	if err := row.Scan(
		&stat.UserID,
		&day,
		&stat.TasksCompleted,
		&stat.TotalTasks,
		&stat.HardTasksCompleted,
		&stat.ConsistencyChange,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.ErrCodeNotFound, "daily stat not found")
		}
		return nil, err
	}

	stat.Date = domain.DayOf(day)
	return &stat, nil
}
