package domain

// DailyStat is one per-day snapshot in a user's momentum history. There is at
// most one row per (user, day); increments are applied atomically in storage.
type DailyStat struct {
	UserID             string `json:"user_id,omitempty"`
	Date               Day    `json:"date"`
	TasksCompleted     int    `json:"tasks_completed"`
	TotalTasks         int    `json:"total_tasks"`
	HardTasksCompleted int    `json:"hard_tasks_completed"`
	ConsistencyChange  int    `json:"consistency_change"`
}

// HeatmapPoint is a single day in the yearly completion heatmap. Days without
// completions are omitted; the UI fills the gaps.
type HeatmapPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type MetricSet struct {
	Discipline  int `json:"discipline"`
	Consistency int `json:"consistency"`
	Performance int `json:"performance"`
	Task        int `json:"task"`
}

type MetricCounts struct {
	Discipline  string `json:"discipline"`
	Consistency string `json:"consistency"`
	Performance string `json:"performance"`
	Task        string `json:"task"`
}

// GraphMetrics is the derived dashboard snapshot. It is computed on read and
// never persisted.
type GraphMetrics struct {
	Metrics MetricSet      `json:"metrics"`
	Counts  MetricCounts   `json:"counts"`
	Heatmap []HeatmapPoint `json:"heatmap"`
}

// LevelForScore maps a consistency score onto the 1-5 level ladder. The level
// is always derived from the score, never set independently.
func LevelForScore(score int) int {
	switch {
	case score >= 80:
		return 5
	case score >= 60:
		return 4
	case score >= 40:
		return 3
	case score >= 20:
		return 2
	default:
		return 1
	}
}

// ClampScore bounds a consistency score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
