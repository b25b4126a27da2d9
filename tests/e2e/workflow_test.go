package e2e

import (
	"path/filepath"
	"testing"

	"github.com/kmcewan/habits/internal/analytics"
	"github.com/kmcewan/habits/internal/backup"
	"github.com/kmcewan/habits/internal/engine"
	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage/sqlite"
)

// TestEndToEndWorkflow drives the whole lifecycle against a real SQLite
// database: init, habit creation, daily resolutions with streak feedback,
// stats, backup, and natural termination at the end date.
func TestEndToEndWorkflow(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "habits", "habits.db")
	t.Logf("Running test against: %s", dbPath)

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer store.Close()

	today := "2024-01-01"
	svc := engine.NewServiceAt(store, func() string { return today })
	agg := analytics.NewAggregator(store)

	// 1. Create a three-day daily habit.
	t.Log("Creating habit...")
	id, err := svc.CreateHabit(engine.NewHabitInput{
		Name:         "Morning pages",
		Category:     "Writing",
		Description:  "Three pages before breakfast",
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-03",
		Importance:   models.ImportanceHigh,
		Recurrence:   models.RecurrenceDaily,
		TaskCount:    1,
		TaskTemplate: "Write three pages",
	})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	// 2. Day one resolves done: streak 1, next series appears.
	t.Log("Resolving day one...")
	resolveDay(t, svc, id, "2024-01-01", models.TaskDone)
	assertStreak(t, svc, id, 1, 0)

	// 3. Day two resolves ignore: streak broken.
	today = "2024-01-02"
	t.Log("Resolving day two...")
	resolveDay(t, svc, id, "2024-01-02", models.TaskIgnored)
	assertStreak(t, svc, id, 0, 1)

	// 4. Day three resolves done; the habit window closes afterwards.
	today = "2024-01-03"
	t.Log("Resolving day three...")
	resolveDay(t, svc, id, "2024-01-03", models.TaskDone)
	assertStreak(t, svc, id, 1, 1)

	views, err := agg.PendingTasks("2024-01-04")
	if err != nil {
		t.Fatalf("PendingTasks failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("habit ended but %d tasks still pending", len(views))
	}

	// 5. Stats reflect the run: two of three periods fully done.
	rows, err := agg.Rows("2024-01-03")
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d stats rows, want 1", len(rows))
	}
	if got := rows[0]["success_rate"]; got != "67%" {
		t.Errorf("success_rate = %q, want 67%%", got)
	}

	// 6. Backup round-trip.
	t.Log("Creating backup...")
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	mgr := backup.NewManager(dbPath)
	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}
	if backups[0].ID == "" {
		t.Errorf("backup has no snapshot id")
	}

	// 7. Restore and confirm the data survived.
	t.Log("Restoring backup...")
	if err := mgr.RestoreBackup(backups[0].Path); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	restored := sqlite.NewStore(dbPath)
	if err := restored.Load(); err != nil {
		t.Fatalf("load after restore failed: %v", err)
	}
	defer restored.Close()

	habit, err := restored.GetHabit(id)
	if err != nil {
		t.Fatalf("GetHabit after restore failed: %v", err)
	}
	if habit.Streak != 1 || habit.ResetCount != 1 {
		t.Errorf("restored habit state wrong: streak %d, resets %d", habit.Streak, habit.ResetCount)
	}
}

func resolveDay(t *testing.T, svc *engine.Service, habitID int64, dueDate string, status models.TaskStatus) {
	t.Helper()

	tasks, err := svc.Store().TasksForSeries(habitID, dueDate)
	if err != nil {
		t.Fatalf("failed to fetch series due %s: %v", dueDate, err)
	}
	if len(tasks) != 1 {
		t.Fatalf("series due %s has %d tasks, want 1", dueDate, len(tasks))
	}
	if err := svc.ResolveTask(tasks[0].ID, status); err != nil {
		t.Fatalf("failed to resolve task due %s: %v", dueDate, err)
	}
}

func assertStreak(t *testing.T, svc *engine.Service, habitID int64, streak, resets int) {
	t.Helper()

	habit, err := svc.GetHabit(habitID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if habit.Streak != streak {
		t.Errorf("streak = %d, want %d", habit.Streak, streak)
	}
	if habit.ResetCount != resets {
		t.Errorf("reset count = %d, want %d", habit.ResetCount, resets)
	}
}
