package transport

// SyncUserRequest carries the profile fields mirrored from the identity
// provider on login.
type SyncUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileUpdateRequest carries optional preference changes; absent fields are
// left untouched.
type ProfileUpdateRequest struct {
	Username             *string  `json:"username"`
	Email                *string  `json:"email"`
	WeeklyGoal           *int     `json:"weekly_goal"`
	EmergencyMode        *bool    `json:"emergency_mode"`
	Theme                *string  `json:"theme"`
	NotificationChannels []string `json:"notification_channels"`
	MobileNumber         *string  `json:"mobile_number"`
}

type TaskRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	Priority      int      `json:"priority"`
	Points        int      `json:"points"`
	KanbanStatus  string   `json:"kanban_status"`
	Labels        []string `json:"labels"`
	DueDate       string   `json:"due_date"`
	NonNegotiable bool     `json:"non_negotiable"`
}

// TaskMoveRequest repositions a task on the kanban board.
type TaskMoveRequest struct {
	KanbanStatus string `json:"kanban_status"`
	Position     *int   `json:"position"`
}

// TaskReorderRequest persists the board order after a drag-and-drop.
type TaskReorderRequest struct {
	Tasks []TaskOrderEntry `json:"tasks"`
}

type TaskOrderEntry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// MomentumUpdateRequest reports a task completion to the momentum engine.
type MomentumUpdateRequest struct {
	TaskID string `json:"task_id"`
}

type HabitRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HabitToggleRequest flips a habit mark; Date defaults to today when empty.
type HabitToggleRequest struct {
	Date string `json:"date"`
}

type FocusSessionRequest struct {
	DurationSeconds int    `json:"duration_seconds"`
	Action          string `json:"action"`
}

type GoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Completed   *bool  `json:"completed"`
	Progress    *int   `json:"progress"`
}
