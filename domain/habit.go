package domain

import "time"

// Habit is a recurring activity the user checks off per calendar day.
type Habit struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	CompletedDays []Day     `json:"completed_days"`
	CreatedAt     time.Time `json:"created_at"`
}

// CompletedOn reports whether the habit was checked off on the given day.
func (h *Habit) CompletedOn(day Day) bool {
	if h == nil {
		return false
	}
	for _, d := range h.CompletedDays {
		if d == day {
			return true
		}
	}
	return false
}

// HabitDayCount is one point in the trailing completion chart.
type HabitDayCount struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
}
