package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

type fakeTaskRepo struct {
	tasks     map[string]*domain.Task
	updateErr error
	createErr error
	deleteErr error
	reordered []repository.TaskPosition
}

func newFakeTaskRepo(tasks ...*domain.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}
	return repo
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (f *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range f.tasks {
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return &clone, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) Reorder(_ context.Context, _ string, positions []repository.TaskPosition) error {
	f.reordered = positions
	return nil
}

func (f *fakeTaskRepo) DailyBuckets(context.Context, string) ([]repository.DayBucket, error) {
	return nil, nil
}
func (f *fakeTaskRepo) CountByStatus(context.Context, string, string) (int, error) {
	return 0, nil
}
func (f *fakeTaskRepo) CountCompletedBetween(context.Context, string, time.Time, time.Time) (int, error) {
	return 0, nil
}
func (f *fakeTaskRepo) CompletedPerDay(context.Context, string, time.Time) ([]domain.HeatmapPoint, error) {
	return nil, nil
}
func (f *fakeTaskRepo) ListDueUnnotified(context.Context, time.Time, time.Time) ([]domain.Task, error) {
	return nil, nil
}
func (f *fakeTaskRepo) MarkNotified(context.Context, string) error { return nil }

type fakeUserRepo struct {
	points map[string]int
}

func (f *fakeUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}
func (f *fakeUserRepo) GetByExternalID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}
func (f *fakeUserRepo) Upsert(context.Context, *domain.User) error        { return nil }
func (f *fakeUserRepo) ApplyMomentum(context.Context, *domain.User) error { return nil }

func (f *fakeUserRepo) AddPoints(_ context.Context, id string, points int) error {
	if f.points == nil {
		f.points = make(map[string]int)
	}
	f.points[id] += points
	return nil
}

func (f *fakeUserRepo) AddFocus(context.Context, string, int, int) error { return nil }
func (f *fakeUserRepo) ResetFocus(context.Context, string) error         { return nil }

func fixedNow() time.Time {
	return time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
}

func newTestUseCase(tasks *fakeTaskRepo, users *fakeUserRepo) *UseCase {
	uc := New(tasks, users, nil, nil)
	uc.Now = fixedNow
	return uc
}

func TestCreateTaskDefaults(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := newTestUseCase(repo, &fakeUserRepo{})

	created, err := uc.CreateTask(context.Background(), &domain.Task{
		ID:     "t1",
		UserID: "u1",
		Title:  "write report",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if created.Status != domain.TaskStatusPending {
		t.Errorf("status = %q", created.Status)
	}
	if created.KanbanStatus != domain.KanbanTodo {
		t.Errorf("kanban status = %q", created.KanbanStatus)
	}
	if created.Priority != 2 {
		t.Errorf("priority = %d", created.Priority)
	}
	if created.Points != DefaultTaskPoints {
		t.Errorf("points = %d", created.Points)
	}
}

func TestUpdateTaskCompletionTransition(t *testing.T) {
	existing := &domain.Task{
		ID:          "t1",
		UserID:      "u1",
		Title:       "write report",
		Status:      domain.TaskStatusPending,
		Points:      10,
		Position:    7,
		CreatedDate: fixedNow().AddDate(0, 0, -2),
	}
	repo := newFakeTaskRepo(existing)
	users := &fakeUserRepo{}
	uc := newTestUseCase(repo, users)

	update := *existing
	update.Status = domain.TaskStatusCompleted
	update.Position = 0 // clients do not control position through update
	update.CreatedDate = time.Time{}

	updated, err := uc.UpdateTask(context.Background(), &update)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(fixedNow()) {
		t.Errorf("completed at = %v, want %v", updated.CompletedAt, fixedNow())
	}
	if updated.Position != 7 {
		t.Errorf("position = %d, want preserved 7", updated.Position)
	}
	if !updated.CreatedDate.Equal(existing.CreatedDate) {
		t.Errorf("created date = %v, want preserved", updated.CreatedDate)
	}
	if users.points["u1"] != 10 {
		t.Errorf("awarded points = %d, want 10", users.points["u1"])
	}
}

func TestUpdateTaskRevertClearsCompletion(t *testing.T) {
	completedAt := fixedNow().Add(-time.Hour)
	existing := &domain.Task{
		ID:          "t1",
		UserID:      "u1",
		Status:      domain.TaskStatusCompleted,
		Points:      10,
		CompletedAt: &completedAt,
	}
	repo := newFakeTaskRepo(existing)
	users := &fakeUserRepo{}
	uc := newTestUseCase(repo, users)

	update := *existing
	update.Status = domain.TaskStatusPending

	updated, err := uc.UpdateTask(context.Background(), &update)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.CompletedAt != nil {
		t.Errorf("completed at = %v, want cleared", updated.CompletedAt)
	}
	if users.points["u1"] != 0 {
		t.Errorf("revert must not award points, got %d", users.points["u1"])
	}
}

func TestUpdateTaskAlreadyCompletedAwardsNothing(t *testing.T) {
	completedAt := fixedNow().Add(-time.Hour)
	existing := &domain.Task{
		ID:          "t1",
		UserID:      "u1",
		Status:      domain.TaskStatusCompleted,
		Points:      10,
		CompletedAt: &completedAt,
	}
	repo := newFakeTaskRepo(existing)
	users := &fakeUserRepo{}
	uc := newTestUseCase(repo, users)

	update := *existing
	updated, err := uc.UpdateTask(context.Background(), &update)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(completedAt) {
		t.Errorf("completed at = %v, want original stamp preserved", updated.CompletedAt)
	}
	if users.points["u1"] != 0 {
		t.Errorf("repeated completion awarded %d points", users.points["u1"])
	}
}

func TestUpdateTaskOwnership(t *testing.T) {
	repo := newFakeTaskRepo(&domain.Task{ID: "t1", UserID: "owner"})
	uc := newTestUseCase(repo, &fakeUserRepo{})

	_, err := uc.UpdateTask(context.Background(), &domain.Task{ID: "t1", UserID: "intruder"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestMoveTask(t *testing.T) {
	tests := []struct {
		name         string
		start        *domain.Task
		kanbanStatus string
		wantStatus   string
		wantStamp    bool
		wantPoints   int
	}{
		{
			name:         "into done completes",
			start:        &domain.Task{ID: "t1", UserID: "u1", Status: domain.TaskStatusPending, KanbanStatus: domain.KanbanInProgress, Points: 10},
			kanbanStatus: domain.KanbanDone,
			wantStatus:   domain.TaskStatusCompleted,
			wantStamp:    true,
			wantPoints:   10,
		},
		{
			name: "out of done reverts",
			start: func() *domain.Task {
				at := fixedNow().Add(-time.Hour)
				return &domain.Task{ID: "t1", UserID: "u1", Status: domain.TaskStatusCompleted, KanbanStatus: domain.KanbanDone, Points: 10, CompletedAt: &at}
			}(),
			kanbanStatus: domain.KanbanTodo,
			wantStatus:   domain.TaskStatusPending,
		},
		{
			name:         "within columns leaves status alone",
			start:        &domain.Task{ID: "t1", UserID: "u1", Status: domain.TaskStatusPending, KanbanStatus: domain.KanbanTodo, Points: 10},
			kanbanStatus: domain.KanbanInProgress,
			wantStatus:   domain.TaskStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTaskRepo(tt.start)
			users := &fakeUserRepo{}
			uc := newTestUseCase(repo, users)

			pos := 3
			moved, err := uc.MoveTask(context.Background(), "u1", "t1", tt.kanbanStatus, &pos)
			if err != nil {
				t.Fatalf("MoveTask: %v", err)
			}
			if moved.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", moved.Status, tt.wantStatus)
			}
			if moved.KanbanStatus != tt.kanbanStatus {
				t.Errorf("kanban = %q, want %q", moved.KanbanStatus, tt.kanbanStatus)
			}
			if moved.Position != 3 {
				t.Errorf("position = %d, want 3", moved.Position)
			}
			if tt.wantStamp != (moved.CompletedAt != nil) {
				t.Errorf("completed at = %v, want stamped=%v", moved.CompletedAt, tt.wantStamp)
			}
			if users.points["u1"] != tt.wantPoints {
				t.Errorf("points = %d, want %d", users.points["u1"], tt.wantPoints)
			}
		})
	}
}

func TestDeleteTaskOwnership(t *testing.T) {
	repo := newFakeTaskRepo(&domain.Task{ID: "t1", UserID: "owner"})
	uc := newTestUseCase(repo, &fakeUserRepo{})

	if err := uc.DeleteTask(context.Background(), "intruder", "t1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if err := uc.DeleteTask(context.Background(), "owner", "t1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := uc.DeleteTask(context.Background(), "owner", "t1"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("want not found after delete, got %v", err)
	}
}

func TestReorderTasksRejectsEmpty(t *testing.T) {
	uc := newTestUseCase(newFakeTaskRepo(), &fakeUserRepo{})
	if err := uc.ReorderTasks(context.Background(), "u1", nil); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("want invalid payload, got %v", err)
	}
}
