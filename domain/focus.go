package domain

import "time"

const (
	FocusActionStart    = "start"
	FocusActionPause    = "pause"
	FocusActionResume   = "resume"
	FocusActionReset    = "reset"
	FocusActionComplete = "complete"

	// FocusPointsInterval is the number of focused seconds per awarded point.
	FocusPointsInterval = 30
)

// FocusSession is one recorded focus-timer run.
type FocusSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	DurationSeconds int       `json:"duration_seconds"`
	Action          string    `json:"action"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// FocusDayStat is one day in the trailing focus chart. Minutes are derived
// from seconds for display; seconds stay authoritative.
type FocusDayStat struct {
	Name    string  `json:"name"`
	Minutes float64 `json:"minutes"`
	Seconds int     `json:"seconds"`
}

// FocusStats aggregates chart data and lifetime totals.
type FocusStats struct {
	Chart         []FocusDayStat `json:"chart_data"`
	TotalSessions int            `json:"total_sessions"`
	TotalSeconds  int            `json:"total_seconds"`
	TotalMinutes  int            `json:"total_minutes"`
}
