package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

type focusRepository struct {
	pool *pgxpool.Pool
}

// NewFocusRepository returns a Postgres-backed focus session repository.
func NewFocusRepository(pool *pgxpool.Pool) repository.FocusRepository {
	return &focusRepository{pool: pool}
}

func (r *focusRepository) Create(ctx context.Context, session *domain.FocusSession) (*domain.FocusSession, error) {
	if session == nil {
		return nil, domain.ErrInvalidPayload
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.OccurredAt.IsZero() {
		session.OccurredAt = time.Now()
	}

	const query = `
	INSERT INTO focus_sessions (id, user_id, duration_seconds, action, occurred_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query,
		session.ID, session.UserID, session.DurationSeconds, session.Action, session.OccurredAt,
	); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *focusRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.FocusSession, error) {
	const query = `
	SELECT id, user_id, duration_seconds, action, occurred_at
	FROM focus_sessions
	WHERE user_id = $1 AND occurred_at >= $2
	ORDER BY occurred_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.FocusSession
	for rows.Next() {
		var s domain.FocusSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.DurationSeconds, &s.Action, &s.OccurredAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *focusRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM focus_sessions WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *focusRepository) DeleteByUser(ctx context.Context, userID string) (int, error) {
	const query = `DELETE FROM focus_sessions WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
