package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

type habitRepository struct {
	pool *pgxpool.Pool
}

// NewHabitRepository returns a Postgres-backed habit repository. Completion
// marks live in habit_marks with a unique (habit_id, day) constraint.
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{pool: pool}
}

func (r *habitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	const query = `SELECT id, user_id, title, description, created_at FROM habits WHERE id = $1`

	var habit domain.Habit
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&habit.ID, &habit.UserID, &habit.Title, &habit.Description, &habit.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, err
	}

	days, err := r.marks(ctx, habit.ID)
	if err != nil {
		return nil, err
	}
	habit.CompletedDays = days
	return &habit, nil
}

func (r *habitRepository) List(ctx context.Context, userID string) ([]domain.Habit, error) {
	const query = `
	SELECT h.id, h.user_id, h.title, h.description, h.created_at,
		COALESCE(array_agg(m.day ORDER BY m.day) FILTER (WHERE m.day IS NOT NULL), '{}') AS days
	FROM habits h
	LEFT JOIN habit_marks m ON m.habit_id = h.id
	WHERE h.user_id = $1
	GROUP BY h.id
	ORDER BY h.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []domain.Habit
	for rows.Next() {
		var habit domain.Habit
		var days []time.Time
		if err := rows.Scan(&habit.ID, &habit.UserID, &habit.Title, &habit.Description, &habit.CreatedAt, &days); err != nil {
			return nil, err
		}
		habit.CompletedDays = toDomainDays(days)
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (r *habitRepository) Create(ctx context.Context, habit *domain.Habit) (*domain.Habit, error) {
	if habit == nil {
		return nil, domain.ErrInvalidPayload
	}
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO habits (id, user_id, title, description)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		habit.ID, habit.UserID, habit.Title, habit.Description,
	).Scan(&habit.CreatedAt); err != nil {
		return nil, err
	}

	habit.CompletedDays = []domain.Day{}
	return habit, nil
}

func (r *habitRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM habits WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *habitRepository) ToggleMark(ctx context.Context, habitID string, day domain.Day) (bool, error) {
	const del = `DELETE FROM habit_marks WHERE habit_id = $1 AND day = $2`
	tag, err := r.pool.Exec(ctx, del, habitID, day.Time(time.UTC))
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	const ins = `
	INSERT INTO habit_marks (habit_id, day)
	VALUES ($1, $2)
	ON CONFLICT (habit_id, day) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, ins, habitID, day.Time(time.UTC)); err != nil {
		return false, err
	}
	return true, nil
}

func (r *habitRepository) marks(ctx context.Context, habitID string) ([]domain.Day, error) {
	const query = `SELECT day FROM habit_marks WHERE habit_id = $1 ORDER BY day ASC`
	rows, err := r.pool.Query(ctx, query, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []domain.Day{}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, domain.DayOf(day))
	}
	return days, rows.Err()
}

func toDomainDays(days []time.Time) []domain.Day {
	out := make([]domain.Day, 0, len(days))
	for _, d := range days {
		out = append(out, domain.DayOf(d))
	}
	return out
}
