package domain

import "time"

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"

	KanbanTodo       = "todo"
	KanbanInProgress = "in_progress"
	KanbanDone       = "done"
)

// Task represents a user-owned activity item on the board.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Type          string     `json:"type,omitempty"`
	Status        string     `json:"status"`
	Priority      int        `json:"priority"`
	Points        int        `json:"points"`
	KanbanStatus  string     `json:"kanban_status"`
	Position      int        `json:"position"`
	Labels        []string   `json:"labels,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	NonNegotiable bool       `json:"non_negotiable"`
	Notified      bool       `json:"notification_sent"`
	CreatedDate   time.Time  `json:"created_date"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusCompleted
}
