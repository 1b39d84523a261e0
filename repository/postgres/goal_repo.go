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

type goalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository returns a Postgres-backed goal repository.
func NewGoalRepository(pool *pgxpool.Pool) repository.GoalRepository {
	return &goalRepository{pool: pool}
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	const query = `
	SELECT id, user_id, title, description, deadline, completed, progress, created_at, updated_at
	FROM goals WHERE id = $1
	`
	return scanGoal(r.pool.QueryRow(ctx, query, id))
}

func (r *goalRepository) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	const query = `
	SELECT id, user_id, title, description, deadline, completed, progress, created_at, updated_at
	FROM goals
	WHERE user_id = $1
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if goal == nil {
		return nil, domain.ErrInvalidPayload
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO goals (id, user_id, title, description, deadline)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		goal.ID, goal.UserID, goal.Title, goal.Description, nullTimePtr(goal.Deadline),
	).Scan(&goal.CreatedAt, &goal.UpdatedAt); err != nil {
		return nil, err
	}
	return goal, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	if goal == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE goals
	SET title = $2,
		description = $3,
		deadline = $4,
		completed = $5,
		progress = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		goal.ID, goal.Title, goal.Description, nullTimePtr(goal.Deadline), goal.Completed, goal.Progress,
	).Scan(&goal.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrGoalNotFound
		}
		return err
	}
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM goals WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var goal domain.Goal
	var deadline *time.Time

	if err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&deadline,
		&goal.Completed,
		&goal.Progress,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}

	goal.Deadline = deadline
	return &goal, nil
}
