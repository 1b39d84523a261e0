package momentum

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
	"github.com/momentumhq/backend/usecase"
)

type fakeUsers struct {
	user *domain.User

	conflicts    int
	applyCalls   int
	appliedUsers []domain.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, domain.ErrUserNotFound
	}
	clone := *f.user
	return &clone, nil
}

func (f *fakeUsers) GetByExternalID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (f *fakeUsers) Upsert(context.Context, *domain.User) error { return nil }

func (f *fakeUsers) ApplyMomentum(_ context.Context, user *domain.User) error {
	f.applyCalls++
	if f.conflicts > 0 {
		f.conflicts--
		return domain.ErrVersionConflict
	}
	f.appliedUsers = append(f.appliedUsers, *user)
	stored := *user
	stored.Version++
	f.user = &stored
	return nil
}

func (f *fakeUsers) AddPoints(context.Context, string, int) error { return nil }
func (f *fakeUsers) AddFocus(context.Context, string, int, int) error {
	return nil
}
func (f *fakeUsers) ResetFocus(context.Context, string) error { return nil }

type fakeTasks struct {
	buckets        []repository.DayBucket
	statusCounts   map[string]int
	completedToday int
	heatmap        []domain.HeatmapPoint
}

func (f *fakeTasks) GetByID(context.Context, string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}
func (f *fakeTasks) List(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	return nil, nil
}
func (f *fakeTasks) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	return task, nil
}
func (f *fakeTasks) Update(context.Context, *domain.Task) error { return nil }
func (f *fakeTasks) Delete(context.Context, string) error       { return nil }
func (f *fakeTasks) Reorder(context.Context, string, []repository.TaskPosition) error {
	return nil
}

func (f *fakeTasks) DailyBuckets(context.Context, string) ([]repository.DayBucket, error) {
	return f.buckets, nil
}

func (f *fakeTasks) CountByStatus(_ context.Context, _ string, status string) (int, error) {
	return f.statusCounts[status], nil
}

func (f *fakeTasks) CountCompletedBetween(context.Context, string, time.Time, time.Time) (int, error) {
	return f.completedToday, nil
}

func (f *fakeTasks) CompletedPerDay(context.Context, string, time.Time) ([]domain.HeatmapPoint, error) {
	return f.heatmap, nil
}

func (f *fakeTasks) ListDueUnnotified(context.Context, time.Time, time.Time) ([]domain.Task, error) {
	return nil, nil
}
func (f *fakeTasks) MarkNotified(context.Context, string) error { return nil }

type fakeStats struct {
	err        error
	increments []statIncrement
}

type statIncrement struct {
	userID string
	day    domain.Day
	hard   bool
}

func (f *fakeStats) IncrementCompleted(_ context.Context, userID string, day domain.Day, hard bool) error {
	if f.err != nil {
		return f.err
	}
	f.increments = append(f.increments, statIncrement{userID: userID, day: day, hard: hard})
	return nil
}

func (f *fakeStats) Get(context.Context, string, domain.Day) (*domain.DailyStat, error) {
	return nil, domain.NewError(domain.ErrCodeNotFound, "daily stat not found")
}

func (f *fakeStats) ListRecent(context.Context, string, int) ([]domain.DailyStat, error) {
	return nil, nil
}

type fakeBuffer struct {
	momentumCalls int
	err           error
}

func (f *fakeBuffer) BufferTask(context.Context, string, *domain.Task) error { return nil }

func (f *fakeBuffer) BufferMomentum(context.Context, string, *domain.Task) error {
	f.momentumCalls++
	return f.err
}

func newTestEngine(users *fakeUsers, tasks *fakeTasks, stats *fakeStats, buffer *fakeBuffer, now time.Time) *Engine {
	var port usecase.OperationBuffer
	if buffer != nil {
		port = buffer
	}
	e := NewEngine(users, tasks, stats, port, nil)
	e.Now = func() time.Time { return now }
	return e
}

func baseUser() *domain.User {
	return &domain.User{
		ID:               "u1",
		Username:         "sam",
		ConsistencyScore: 50,
		Level:            3,
	}
}

func TestGetGraphMetricsScores(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		user         *domain.User
		tasks        *fakeTasks
		wantMetrics  domain.MetricSet
		wantCounts   domain.MetricCounts
	}{
		{
			name: "mixed history",
			user: baseUser(),
			tasks: &fakeTasks{
				buckets: []repository.DayBucket{
					{Date: "2025-03-08", Total: 3, Completed: 3},
					{Date: "2025-03-09", Total: 2, Completed: 1},
					{Date: "2025-03-10", Total: 1, Completed: 1},
				},
				statusCounts:   map[string]int{"": 6, domain.TaskStatusCompleted: 5},
				completedToday: 1,
			},
			// discipline 2/3 -> 67, consistency 5/6 -> 83, task 1/5 -> 20,
			// performance round((67+83+20)/3) = 57.
			wantMetrics: domain.MetricSet{Discipline: 67, Consistency: 83, Performance: 57, Task: 20},
			wantCounts: domain.MetricCounts{
				Discipline:  "2/3",
				Consistency: "5/6",
				Performance: "Avg. Score",
				Task:        "1/5",
			},
		},
		{
			name:  "no history",
			user:  baseUser(),
			tasks: &fakeTasks{statusCounts: map[string]int{}},
			wantMetrics: domain.MetricSet{},
			wantCounts: domain.MetricCounts{
				Discipline:  "0/0",
				Consistency: "0/0",
				Performance: "Avg. Score",
				Task:        "0/5",
			},
		},
		{
			name: "task score capped at 100",
			user: func() *domain.User {
				u := baseUser()
				u.WeeklyGoal = 7 // daily target 1
				return u
			}(),
			tasks: &fakeTasks{
				buckets: []repository.DayBucket{
					{Date: "2025-03-10", Total: 4, Completed: 4},
				},
				statusCounts:   map[string]int{"": 4, domain.TaskStatusCompleted: 4},
				completedToday: 4,
			},
			// discipline 100, consistency 100, task min(400, 100) = 100.
			wantMetrics: domain.MetricSet{Discipline: 100, Consistency: 100, Performance: 100, Task: 100},
			wantCounts: domain.MetricCounts{
				Discipline:  "1/1",
				Consistency: "4/4",
				Performance: "Avg. Score",
				Task:        "4/1",
			},
		},
		{
			// Each sub-score is rounded before the average is taken; rounding
			// the raw mean instead would land on 33 here, not 34.
			name: "performance rounds each score first",
			user: func() *domain.User {
				u := baseUser()
				u.WeeklyGoal = 15 // ceil(15/7) = 3
				return u
			}(),
			tasks: &fakeTasks{
				buckets: []repository.DayBucket{
					{Date: "2025-03-04", Total: 2, Completed: 2},
					{Date: "2025-03-05", Total: 2, Completed: 0},
					{Date: "2025-03-06", Total: 2, Completed: 0},
					{Date: "2025-03-07", Total: 2, Completed: 0},
					{Date: "2025-03-08", Total: 2, Completed: 0},
					{Date: "2025-03-09", Total: 2, Completed: 0},
				},
				statusCounts:   map[string]int{"": 12, domain.TaskStatusCompleted: 2},
				completedToday: 2,
			},
			// discipline 1/6 -> 17, consistency 2/12 -> 17, task 2/3 -> 67,
			// performance round((17+17+67)/3) = 34.
			wantMetrics: domain.MetricSet{Discipline: 17, Consistency: 17, Performance: 34, Task: 67},
			wantCounts: domain.MetricCounts{
				Discipline:  "1/6",
				Consistency: "2/12",
				Performance: "Avg. Score",
				Task:        "2/3",
			},
		},
		{
			name: "weekly goal rounds target up",
			user: func() *domain.User {
				u := baseUser()
				u.WeeklyGoal = 10 // ceil(10/7) = 2
				return u
			}(),
			tasks: &fakeTasks{
				statusCounts:   map[string]int{"": 2, domain.TaskStatusCompleted: 1},
				completedToday: 1,
			},
			// discipline 0/0 -> 0, consistency 1/2 -> 50, task 1/2 -> 50,
			// performance round(100/3) = 33.
			wantMetrics: domain.MetricSet{Discipline: 0, Consistency: 50, Performance: 33, Task: 50},
			wantCounts: domain.MetricCounts{
				Discipline:  "0/0",
				Consistency: "1/2",
				Performance: "Avg. Score",
				Task:        "1/2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{user: tt.user}
			engine := newTestEngine(users, tt.tasks, &fakeStats{}, nil, now)

			got, err := engine.GetGraphMetrics(context.Background(), "u1")
			if err != nil {
				t.Fatalf("GetGraphMetrics: %v", err)
			}
			if got.Metrics != tt.wantMetrics {
				t.Errorf("metrics = %+v, want %+v", got.Metrics, tt.wantMetrics)
			}
			if got.Counts != tt.wantCounts {
				t.Errorf("counts = %+v, want %+v", got.Counts, tt.wantCounts)
			}
			if got.Heatmap == nil {
				t.Error("heatmap should never be nil")
			}
			if users.applyCalls != 0 {
				t.Errorf("read path wrote the aggregate %d times", users.applyCalls)
			}
		})
	}
}

func TestGetGraphMetricsIsRepeatable(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	tasks := &fakeTasks{
		buckets:        []repository.DayBucket{{Date: "2025-03-10", Total: 2, Completed: 1}},
		statusCounts:   map[string]int{"": 2, domain.TaskStatusCompleted: 1},
		completedToday: 1,
		heatmap:        []domain.HeatmapPoint{{Date: "2025-03-10", Count: 1}},
	}
	engine := newTestEngine(&fakeUsers{user: baseUser()}, tasks, &fakeStats{}, nil, now)

	first, err := engine.GetGraphMetrics(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := engine.GetGraphMetrics(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if first.Metrics != second.Metrics {
		t.Errorf("repeated reads diverged: %+v vs %+v", first.Metrics, second.Metrics)
	}
}

func TestGetGraphMetricsHeatmapStaysSparse(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	// Days with zero completions are absent from the repository rows and must
	// stay absent from the response; the engine never fills the gaps.
	sparse := []domain.HeatmapPoint{
		{Date: "2024-06-10", Count: 3},
		{Date: "2025-03-01", Count: 2},
		{Date: "2025-03-05", Count: 1},
	}
	tasks := &fakeTasks{
		statusCounts: map[string]int{"": 6, domain.TaskStatusCompleted: 6},
		heatmap:      sparse,
	}
	engine := newTestEngine(&fakeUsers{user: baseUser()}, tasks, &fakeStats{}, nil, now)

	got, err := engine.GetGraphMetrics(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetGraphMetrics: %v", err)
	}
	if !reflect.DeepEqual(got.Heatmap, sparse) {
		t.Errorf("heatmap = %+v, want the sparse rows unchanged %+v", got.Heatmap, sparse)
	}
}

func TestGetGraphMetricsUnknownUser(t *testing.T) {
	engine := newTestEngine(&fakeUsers{}, &fakeTasks{}, &fakeStats{}, nil, time.Now())

	_, err := engine.GetGraphMetrics(context.Background(), "missing")
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("want not-found, got %v", err)
	}
}

func TestUpdateMomentumStreak(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastActive time.Time
		streak     int
		wantStreak int
	}{
		{
			name:       "first completion ever",
			lastActive: time.Time{},
			streak:     0,
			wantStreak: 1,
		},
		{
			name:       "consecutive day extends",
			lastActive: now.AddDate(0, 0, -1),
			streak:     4,
			wantStreak: 5,
		},
		{
			name:       "gap resets to one",
			lastActive: now.AddDate(0, 0, -3),
			streak:     9,
			wantStreak: 1,
		},
		{
			name:       "same day leaves streak alone",
			lastActive: now.Add(-2 * time.Hour),
			streak:     4,
			wantStreak: 4,
		},
		{
			name:       "late evening to early morning still counts",
			lastActive: time.Date(2025, time.March, 9, 23, 59, 0, 0, time.UTC),
			streak:     2,
			wantStreak: 3,
		},
		{
			name:       "future last-active is ignored",
			lastActive: now.AddDate(0, 0, 2),
			streak:     6,
			wantStreak: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := baseUser()
			user.LastActive = tt.lastActive
			user.Streak = tt.streak
			users := &fakeUsers{user: user}
			engine := newTestEngine(users, &fakeTasks{}, &fakeStats{}, nil, now)

			updated, err := engine.UpdateMomentum(context.Background(), "u1", &domain.Task{ID: "t1", UserID: "u1"})
			if err != nil {
				t.Fatalf("UpdateMomentum: %v", err)
			}
			if updated.Streak != tt.wantStreak {
				t.Errorf("streak = %d, want %d", updated.Streak, tt.wantStreak)
			}
			if !updated.LastActive.Equal(now) {
				t.Errorf("last active = %v, want the full completion instant %v", updated.LastActive, now)
			}
		})
	}
}

func TestUpdateMomentumScoreAndLevel(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		score     int
		hard      bool
		wantScore int
		wantLevel int
	}{
		{name: "regular task gains one", score: 50, wantScore: 51, wantLevel: 3},
		{name: "hard task gains two", score: 50, hard: true, wantScore: 52, wantLevel: 3},
		{name: "crossing level threshold", score: 79, wantScore: 80, wantLevel: 5},
		{name: "just below threshold", score: 78, wantScore: 79, wantLevel: 4},
		{name: "clamped at hundred", score: 99, hard: true, wantScore: 100, wantLevel: 5},
		{name: "floor of ladder", score: 0, wantScore: 1, wantLevel: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := baseUser()
			user.ConsistencyScore = tt.score
			user.Level = domain.LevelForScore(tt.score)
			users := &fakeUsers{user: user}
			stats := &fakeStats{}
			engine := newTestEngine(users, &fakeTasks{}, stats, nil, now)

			task := &domain.Task{ID: "t1", UserID: "u1", NonNegotiable: tt.hard}
			updated, err := engine.UpdateMomentum(context.Background(), "u1", task)
			if err != nil {
				t.Fatalf("UpdateMomentum: %v", err)
			}
			if updated.ConsistencyScore != tt.wantScore {
				t.Errorf("score = %d, want %d", updated.ConsistencyScore, tt.wantScore)
			}
			if updated.Level != tt.wantLevel {
				t.Errorf("level = %d, want %d", updated.Level, tt.wantLevel)
			}

			if len(stats.increments) != 1 {
				t.Fatalf("stat increments = %d, want 1", len(stats.increments))
			}
			inc := stats.increments[0]
			if inc.day != domain.DayOf(now) || inc.hard != tt.hard {
				t.Errorf("increment = %+v", inc)
			}
		})
	}
}

func TestUpdateMomentumStatFailureAbortsAggregate(t *testing.T) {
	users := &fakeUsers{user: baseUser()}
	stats := &fakeStats{err: errors.New("connection refused")}
	engine := newTestEngine(users, &fakeTasks{}, stats, nil, time.Now())

	_, err := engine.UpdateMomentum(context.Background(), "u1", &domain.Task{ID: "t1"})
	if err == nil {
		t.Fatal("want error when the stat increment fails")
	}
	if users.applyCalls != 0 {
		t.Errorf("aggregate was touched %d times after stat failure", users.applyCalls)
	}
}

func TestUpdateMomentumRetriesVersionConflict(t *testing.T) {
	users := &fakeUsers{user: baseUser(), conflicts: 2}
	engine := newTestEngine(users, &fakeTasks{}, &fakeStats{}, nil, time.Now())

	updated, err := engine.UpdateMomentum(context.Background(), "u1", &domain.Task{ID: "t1"})
	if err != nil {
		t.Fatalf("UpdateMomentum: %v", err)
	}
	if updated == nil {
		t.Fatal("want updated state after retries")
	}
	if users.applyCalls != 3 {
		t.Errorf("apply attempts = %d, want 3", users.applyCalls)
	}
	// Each retry must recompute from freshly loaded state; a single
	// completion only ever raises the score by its own gain.
	if updated.ConsistencyScore != 51 {
		t.Errorf("score = %d, want 51", updated.ConsistencyScore)
	}
}

func TestUpdateMomentumBuffersOnPersistentConflict(t *testing.T) {
	users := &fakeUsers{user: baseUser(), conflicts: 10}
	buffer := &fakeBuffer{}
	stats := &fakeStats{}
	engine := newTestEngine(users, &fakeTasks{}, stats, buffer, time.Now())

	updated, err := engine.UpdateMomentum(context.Background(), "u1", &domain.Task{ID: "t1"})
	if err != nil {
		t.Fatalf("buffered path should not error, got %v", err)
	}
	if updated != nil {
		t.Errorf("buffered path should return nil state, got %+v", updated)
	}
	if buffer.momentumCalls != 1 {
		t.Errorf("buffer calls = %d, want 1", buffer.momentumCalls)
	}
	// The increment landed before buffering and must not be replayed.
	if len(stats.increments) != 1 {
		t.Errorf("stat increments = %d, want 1", len(stats.increments))
	}
}

func TestUpdateMomentumUnknownUser(t *testing.T) {
	buffer := &fakeBuffer{}
	stats := &fakeStats{}
	engine := newTestEngine(&fakeUsers{}, &fakeTasks{}, stats, buffer, time.Now())

	_, err := engine.UpdateMomentum(context.Background(), "ghost", &domain.Task{ID: "t1"})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("want not-found, got %v", err)
	}
	if buffer.momentumCalls != 0 {
		t.Error("unknown users must not be buffered")
	}
	// Existence is checked before the increment; an unknown user must leave
	// no daily stat row behind.
	if len(stats.increments) != 0 {
		t.Errorf("stat increments = %d, want 0", len(stats.increments))
	}
}

func TestReplayAggregateSkipsStatIncrement(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	user := baseUser()
	user.LastActive = now.AddDate(0, 0, -1)
	user.Streak = 2
	users := &fakeUsers{user: user}
	stats := &fakeStats{}
	engine := newTestEngine(users, &fakeTasks{}, stats, nil, now)

	if err := engine.ReplayAggregate(context.Background(), "u1", &domain.Task{ID: "t1"}); err != nil {
		t.Fatalf("ReplayAggregate: %v", err)
	}
	if len(stats.increments) != 0 {
		t.Errorf("replay incremented daily stats %d times", len(stats.increments))
	}
	if users.user.Streak != 3 {
		t.Errorf("streak = %d, want 3", users.user.Streak)
	}
}
