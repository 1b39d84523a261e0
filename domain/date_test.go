package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDayOfTruncates(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want Day
	}{
		{
			name: "mid-day instant",
			in:   time.Date(2025, time.March, 10, 15, 4, 5, 0, time.UTC),
			want: Day{Year: 2025, Month: time.March, Day: 10},
		},
		{
			name: "just before midnight",
			in:   time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
			want: Day{Year: 2025, Month: time.December, Day: 31},
		},
		{
			name: "uses the instant's own location",
			in:   time.Date(2025, time.March, 10, 23, 30, 0, 0, time.FixedZone("UTC+5", 5*3600)),
			want: Day{Year: 2025, Month: time.March, Day: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayOf(tt.in); got != tt.want {
				t.Errorf("DayOf(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		name  string
		day   Day
		other Day
		want  int
	}{
		{
			name:  "same day",
			day:   Day{2025, time.March, 10},
			other: Day{2025, time.March, 10},
			want:  0,
		},
		{
			name:  "next day",
			day:   Day{2025, time.March, 10},
			other: Day{2025, time.March, 9},
			want:  1,
		},
		{
			name:  "across month boundary",
			day:   Day{2025, time.March, 1},
			other: Day{2025, time.February, 28},
			want:  1,
		},
		{
			name:  "across year boundary",
			day:   Day{2025, time.January, 1},
			other: Day{2024, time.December, 31},
			want:  1,
		},
		{
			name:  "leap day",
			day:   Day{2024, time.March, 1},
			other: Day{2024, time.February, 28},
			want:  2,
		},
		{
			name:  "negative when other is later",
			day:   Day{2025, time.March, 8},
			other: Day{2025, time.March, 10},
			want:  -2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.day.DaysSince(tt.other); got != tt.want {
				t.Errorf("%v.DaysSince(%v) = %d, want %d", tt.day, tt.other, got, tt.want)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	start := Day{2025, time.February, 27}
	if got := start.AddDays(2); got != (Day{2025, time.March, 1}) {
		t.Errorf("AddDays(2) = %v", got)
	}
	if got := start.AddDays(-27); got != (Day{2025, time.January, 31}) {
		t.Errorf("AddDays(-27) = %v", got)
	}
}

func TestParseDayRoundTrip(t *testing.T) {
	day, err := ParseDay("2025-03-09")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if day.String() != "2025-03-09" {
		t.Errorf("String() = %q", day.String())
	}

	if _, err := ParseDay("03/09/2025"); err == nil {
		t.Error("want error for a non-ISO date")
	}
}

func TestDayJSON(t *testing.T) {
	day := Day{2025, time.March, 9}

	out, err := json.Marshal(day)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2025-03-09"` {
		t.Errorf("marshal = %s", out)
	}

	var back Day
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != day {
		t.Errorf("round trip = %v, want %v", back, day)
	}

	if err := json.Unmarshal([]byte(`"not-a-date"`), &back); err == nil {
		t.Error("want error for a malformed day")
	}
}

func TestDailyTarget(t *testing.T) {
	tests := []struct {
		weeklyGoal int
		want       int
	}{
		{0, DefaultDailyTarget},
		{-3, DefaultDailyTarget},
		{7, 1},
		{10, 2},
		{14, 2},
		{15, 3},
	}

	for _, tt := range tests {
		u := &User{WeeklyGoal: tt.weeklyGoal}
		if got := u.DailyTarget(); got != tt.want {
			t.Errorf("DailyTarget(weekly=%d) = %d, want %d", tt.weeklyGoal, got, tt.want)
		}
	}
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, 1}, {19, 1}, {20, 2}, {39, 2}, {40, 3}, {59, 3}, {60, 4}, {79, 4}, {80, 5}, {100, 5},
	}

	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}
