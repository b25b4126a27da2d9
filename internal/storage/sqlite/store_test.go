package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore(filepath.Join(t.TempDir(), "habits.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testHabit() models.Habit {
	return models.Habit{
		Name:         "Stretch",
		Category:     "Fitness",
		Description:  "Ten minutes of stretching",
		Created:      time.Now(),
		StartDate:    "2024-01-01",
		EndDate:      "2024-06-30",
		Importance:   models.ImportanceHigh,
		Recurrence:   models.RecurrenceDaily,
		TaskCount:    2,
		TaskTemplate: "Stretch for ten minutes",
	}
}

func seriesFor(habitID int64, dueDate string, count int) []models.Task {
	var tasks []models.Task
	for n := 1; n <= count; n++ {
		tasks = append(tasks, models.Task{
			HabitID:     habitID,
			Number:      n,
			Description: "Stretch for ten minutes",
			Created:     time.Now(),
			DueDate:     dueDate,
			Status:      models.TaskPending,
		})
	}
	return tasks
}

func TestHabitRoundTrip(t *testing.T) {
	store := newTestStore(t)

	id, err := store.InsertHabit(testHabit())
	if err != nil {
		t.Fatalf("InsertHabit failed: %v", err)
	}

	habit, err := store.GetHabit(id)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if habit.Name != "Stretch" || habit.EndDate != "2024-06-30" || habit.TaskCount != 2 {
		t.Errorf("round trip mangled habit: %+v", habit)
	}

	habit.Streak = 5
	habit.LongestStreak = 5
	if err := store.UpdateHabit(habit); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	habit, _ = store.GetHabit(id)
	if habit.Streak != 5 {
		t.Errorf("streak update lost: %d", habit.Streak)
	}
}

func TestOpenEndedHabitRoundTrip(t *testing.T) {
	store := newTestStore(t)

	h := testHabit()
	h.EndDate = ""
	id, err := store.InsertHabit(h)
	if err != nil {
		t.Fatalf("InsertHabit failed: %v", err)
	}

	habit, err := store.GetHabit(id)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if habit.EndDate != "" {
		t.Errorf("open-ended habit came back with end date %q", habit.EndDate)
	}
}

func TestInsertHabitRejectsDuplicate(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.InsertHabit(testHabit()); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := store.InsertHabit(testHabit()); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate insert got %v, want ErrDuplicate", err)
	}
}

func TestGetHabitNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetHabit(42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if err := store.UpdateHabit(models.Habit{ID: 42}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update got %v, want ErrNotFound", err)
	}
	if err := store.DeleteHabit(42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("delete got %v, want ErrNotFound", err)
	}
}

func TestInsertTaskSeriesIsAtomic(t *testing.T) {
	store := newTestStore(t)

	id, err := store.InsertHabit(testHabit())
	if err != nil {
		t.Fatalf("InsertHabit failed: %v", err)
	}

	if err := store.InsertTaskSeries(seriesFor(id, "2024-01-01", 2)); err != nil {
		t.Fatalf("InsertTaskSeries failed: %v", err)
	}

	// A second series on the same slot collides on the unique index and
	// must leave nothing behind.
	dup := seriesFor(id, "2024-01-02", 2)
	dup[1].DueDate = "2024-01-01"
	if err := store.InsertTaskSeries(dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("colliding series got %v, want ErrDuplicate", err)
	}

	orphans, err := store.TasksForSeries(id, "2024-01-02")
	if err != nil {
		t.Fatalf("TasksForSeries failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("failed series left %d orphan task(s) behind", len(orphans))
	}
}

func TestDeleteHabitCascadesTasks(t *testing.T) {
	store := newTestStore(t)

	id, err := store.InsertHabit(testHabit())
	if err != nil {
		t.Fatalf("InsertHabit failed: %v", err)
	}
	if err := store.InsertTaskSeries(seriesFor(id, "2024-01-01", 2)); err != nil {
		t.Fatalf("InsertTaskSeries failed: %v", err)
	}

	if err := store.DeleteHabit(id); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	tasks, err := store.TasksForHabit(id)
	if err != nil {
		t.Fatalf("TasksForHabit failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("%d tasks survived cascade delete", len(tasks))
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	store := newTestStore(t)

	id, err := store.InsertHabit(testHabit())
	if err != nil {
		t.Fatalf("InsertHabit failed: %v", err)
	}
	if err := store.InsertTaskSeries(seriesFor(id, "2024-01-01", 2)); err != nil {
		t.Fatalf("InsertTaskSeries failed: %v", err)
	}

	tasks, err := store.TasksForSeries(id, "2024-01-01")
	if err != nil {
		t.Fatalf("TasksForSeries failed: %v", err)
	}

	if err := store.UpdateTaskStatus(tasks[0].ID, models.TaskDone); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	task, err := store.GetTask(tasks[0].ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task.Status != models.TaskDone {
		t.Errorf("status = %s, want done", task.Status)
	}

	if err := store.UpdateTaskStatus(9999, models.TaskDone); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown task got %v, want ErrNotFound", err)
	}
}
