package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

const userColumns = `id, external_id, username, email, points, streak, last_active,
	focus_seconds, consistency_score, level, weekly_goal, emergency_mode,
	theme, notification_channels, mobile_number, version, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, externalID))
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (id, external_id, username, email, streak, consistency_score, level,
		weekly_goal, emergency_mode, theme, notification_channels, mobile_number)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (external_id) DO UPDATE
	SET username = EXCLUDED.username,
		email = EXCLUDED.email,
		weekly_goal = EXCLUDED.weekly_goal,
		emergency_mode = EXCLUDED.emergency_mode,
		theme = EXCLUDED.theme,
		notification_channels = EXCLUDED.notification_channels,
		mobile_number = EXCLUDED.mobile_number,
		updated_at = NOW()
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.ExternalID,
		user.Username,
		user.Email,
		user.Streak,
		user.ConsistencyScore,
		user.Level,
		user.WeeklyGoal,
		user.EmergencyMode,
		user.Theme,
		marshalChannels(user.NotificationChannels),
		user.MobileNumber,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *userRepository) ApplyMomentum(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE users
	SET streak = $3,
		consistency_score = $4,
		level = $5,
		last_active = $6,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Version,
		user.Streak,
		user.ConsistencyScore,
		user.Level,
		user.LastActive,
	).Scan(&user.Version, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the row vanished or another writer bumped the version.
			if _, getErr := r.GetByID(ctx, user.ID); getErr != nil {
				return getErr
			}
			return domain.ErrVersionConflict
		}
		return err
	}
	return nil
}

func (r *userRepository) AddPoints(ctx context.Context, id string, points int) error {
	const query = `UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1`
	return r.execOnUser(ctx, query, id, points)
}

func (r *userRepository) AddFocus(ctx context.Context, id string, seconds, points int) error {
	const query = `
	UPDATE users
	SET focus_seconds = focus_seconds + $2,
		points = points + $3,
		updated_at = NOW()
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, seconds, points)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ResetFocus(ctx context.Context, id string) error {
	const query = `UPDATE users SET focus_seconds = 0, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) execOnUser(ctx context.Context, query, id string, arg interface{}) error {
	tag, err := r.pool.Exec(ctx, query, id, arg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var (
		lastActive *time.Time
		channels   []byte
	)

	if err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Username,
		&user.Email,
		&user.Points,
		&user.Streak,
		&lastActive,
		&user.FocusSeconds,
		&user.ConsistencyScore,
		&user.Level,
		&user.WeeklyGoal,
		&user.EmergencyMode,
		&user.Theme,
		&channels,
		&user.MobileNumber,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if lastActive != nil {
		user.LastActive = *lastActive
	}
	if len(channels) > 0 {
		_ = json.Unmarshal(channels, &user.NotificationChannels)
	}

	return &user, nil
}
