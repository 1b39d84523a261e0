package domain

import "time"

// DefaultDailyTarget is used when a user has not configured a weekly goal.
const DefaultDailyTarget = 5

// User represents an authenticated identity plus its momentum aggregate
// state. Momentum fields are mutated through an optimistic version check.
type User struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`

	Points       int       `json:"points"`
	Streak       int       `json:"streak"`
	LastActive   time.Time `json:"last_active"`
	FocusSeconds int       `json:"focus_seconds"`

	ConsistencyScore int  `json:"consistency_score"`
	Level            int  `json:"level"`
	WeeklyGoal       int  `json:"weekly_goal"`
	EmergencyMode    bool `json:"emergency_mode"`

	Theme                string   `json:"theme,omitempty"`
	NotificationChannels []string `json:"notification_channels,omitempty"`
	MobileNumber         string   `json:"mobile_number,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DailyTarget derives today's task target from the weekly goal.
func (u *User) DailyTarget() int {
	if u == nil || u.WeeklyGoal <= 0 {
		return DefaultDailyTarget
	}
	target := u.WeeklyGoal / 7
	if u.WeeklyGoal%7 != 0 {
		target++
	}
	return target
}
