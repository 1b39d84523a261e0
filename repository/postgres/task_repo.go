package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

const taskColumns = `id, user_id, title, description, type, status, priority, points,
	kanban_status, position, labels, due_date, non_negotiable, notification_sent,
	created_date, completed_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR kanban_status = $3)
	ORDER BY position ASC, created_date DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.Status, filter.KanbanStatus, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	// New tasks land at the end of their owner's board.
	const query = `
	INSERT INTO tasks (id, user_id, title, description, type, status, priority, points,
		kanban_status, position, labels, due_date, non_negotiable)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
		(SELECT COUNT(*) FROM tasks WHERE user_id = $2), $10, $11, $12)
	RETURNING position, created_date, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.Priority,
		task.Points,
		task.KanbanStatus,
		marshalLabels(task.Labels),
		nullTimePtr(task.DueDate),
		task.NonNegotiable,
	).Scan(&task.Position, &task.CreatedDate, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		type = $4,
		status = $5,
		priority = $6,
		points = $7,
		kanban_status = $8,
		position = $9,
		labels = $10,
		due_date = $11,
		non_negotiable = $12,
		completed_at = $13,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.Priority,
		task.Points,
		task.KanbanStatus,
		task.Position,
		marshalLabels(task.Labels),
		nullTimePtr(task.DueDate),
		task.NonNegotiable,
		nullTimePtr(task.CompletedAt),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Reorder(ctx context.Context, userID string, positions []repository.TaskPosition) error {
	if len(positions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `UPDATE tasks SET position = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`
	for _, p := range positions {
		batch.Queue(query, p.TaskID, userID, p.Position)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range positions {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *taskRepository) DailyBuckets(ctx context.Context, userID string) ([]repository.DayBucket, error) {
	const query = `
	SELECT to_char(created_date, 'YYYY-MM-DD') AS day,
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed
	FROM tasks
	WHERE user_id = $1
	GROUP BY day
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []repository.DayBucket
	for rows.Next() {
		var b repository.DayBucket
		if err := rows.Scan(&b.Date, &b.Total, &b.Completed); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *taskRepository) CountByStatus(ctx context.Context, userID, status string) (int, error) {
	const query = `SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND ($2 = '' OR status = $2)`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FROM tasks
	WHERE user_id = $1 AND status = 'completed'
	  AND completed_at >= $2 AND completed_at < $3
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) CompletedPerDay(ctx context.Context, userID string, since time.Time) ([]domain.HeatmapPoint, error) {
	const query = `
	SELECT to_char(completed_at, 'YYYY-MM-DD') AS day, COUNT(*)
	FROM tasks
	WHERE user_id = $1 AND status = 'completed' AND completed_at >= $2
	GROUP BY day
	ORDER BY day ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.HeatmapPoint
	for rows.Next() {
		var p domain.HeatmapPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *taskRepository) ListDueUnnotified(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE due_date >= $1 AND due_date <= $2
	  AND notification_sent = FALSE
	  AND status <> 'completed'
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) MarkNotified(ctx context.Context, id string) error {
	const query = `UPDATE tasks SET notification_sent = TRUE, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		due       *time.Time
		completed *time.Time
		labels    []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Status,
		&task.Priority,
		&task.Points,
		&task.KanbanStatus,
		&task.Position,
		&labels,
		&due,
		&task.NonNegotiable,
		&task.Notified,
		&task.CreatedDate,
		&completed,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = due
	task.CompletedAt = completed
	if len(labels) > 0 {
		_ = json.Unmarshal(labels, &task.Labels)
	}

	return &task, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 200
	}
	return limit
}
