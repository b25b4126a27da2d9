package analytics

import (
	"path/filepath"
	"testing"

	"github.com/kmcewan/habits/internal/engine"
	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage/sqlite"
)

func newTestSetup(t *testing.T, today string) (*engine.Service, *Aggregator) {
	t.Helper()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habits.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return engine.NewServiceAt(store, func() string { return today }), NewAggregator(store)
}

func createHabit(t *testing.T, svc *engine.Service, name string, rec models.Recurrence, taskCount int) int64 {
	t.Helper()

	id, err := svc.CreateHabit(engine.NewHabitInput{
		Name:         name,
		Category:     "Fitness",
		Description:  "Test habit " + name,
		StartDate:    "2024-01-01",
		EndDate:      "2024-12-31",
		Importance:   models.ImportanceHigh,
		Recurrence:   rec,
		TaskCount:    taskCount,
		TaskTemplate: "Do the thing",
	})
	if err != nil {
		t.Fatalf("CreateHabit(%s) failed: %v", name, err)
	}
	return id
}

func resolveSeries(t *testing.T, svc *engine.Service, habitID int64, dueDate string, statuses ...models.TaskStatus) {
	t.Helper()

	tasks, err := svc.Store().TasksForSeries(habitID, dueDate)
	if err != nil {
		t.Fatalf("failed to fetch series: %v", err)
	}
	if len(tasks) != len(statuses) {
		t.Fatalf("series due %s has %d tasks, want %d", dueDate, len(tasks), len(statuses))
	}
	for i, task := range tasks {
		if err := svc.ResolveTask(task.ID, statuses[i]); err != nil {
			t.Fatalf("failed to resolve task: %v", err)
		}
	}
}

func TestPendingTasks(t *testing.T) {
	svc, agg := newTestSetup(t, "2024-01-02")

	active := createHabit(t, svc, "Running", models.RecurrenceDaily, 2)
	paused := createHabit(t, svc, "Reading", models.RecurrenceDaily, 1)
	if err := svc.PauseHabit(paused); err != nil {
		t.Fatalf("PauseHabit failed: %v", err)
	}

	views, err := agg.PendingTasks("2024-01-02")
	if err != nil {
		t.Fatalf("PendingTasks failed: %v", err)
	}

	if len(views) != 2 {
		t.Fatalf("got %d pending views, want 2 (paused habit excluded)", len(views))
	}
	for _, v := range views {
		if v.HabitID != active {
			t.Errorf("pending view references habit %d, want %d", v.HabitID, active)
		}
		if v.HabitName != "Running" {
			t.Errorf("view habit name = %q", v.HabitName)
		}
	}
}

func TestPendingTasksSeriesProgress(t *testing.T) {
	svc, agg := newTestSetup(t, "2024-01-01")

	id := createHabit(t, svc, "Running", models.RecurrenceDaily, 3)

	tasks, err := svc.Store().TasksForSeries(id, "2024-01-01")
	if err != nil {
		t.Fatalf("failed to fetch series: %v", err)
	}
	if err := svc.ResolveTask(tasks[0].ID, models.TaskDone); err != nil {
		t.Fatalf("ResolveTask failed: %v", err)
	}

	views, err := agg.PendingTasks("2024-01-01")
	if err != nil {
		t.Fatalf("PendingTasks failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	for _, v := range views {
		if v.SeriesDone != 1 || v.SeriesTotal != 3 {
			t.Errorf("series progress = %d/%d, want 1/3", v.SeriesDone, v.SeriesTotal)
		}
		if v.Progress() != "1/3" {
			t.Errorf("Progress() = %q, want 1/3", v.Progress())
		}
	}

	// Single-task series carry no progress fraction.
	single := TaskView{SeriesDone: 0, SeriesTotal: 1}
	if single.Progress() != "" {
		t.Errorf("single-task Progress() = %q, want empty", single.Progress())
	}
}

func TestPendingTasksExcludesFutureDueDates(t *testing.T) {
	svc, agg := newTestSetup(t, "2024-01-01")

	id := createHabit(t, svc, "Running", models.RecurrenceDaily, 1)
	resolveSeries(t, svc, id, "2024-01-01", models.TaskDone)

	// Rollover created a series due 2024-01-02, a day ahead of reference.
	views, err := agg.PendingTasks("2024-01-01")
	if err != nil {
		t.Fatalf("PendingTasks failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("got %d views, future due dates should not surface", len(views))
	}

	views, err = agg.PendingTasks("2024-01-02")
	if err != nil {
		t.Fatalf("PendingTasks failed: %v", err)
	}
	if len(views) != 1 {
		t.Errorf("got %d views at the due date, want 1", len(views))
	}
}

func TestSuccessRateDaily(t *testing.T) {
	svc, _ := newTestSetup(t, "2024-01-01")

	id := createHabit(t, svc, "Running", models.RecurrenceDaily, 1)

	habit, _ := svc.GetHabit(id)
	tasks, _ := svc.TasksForHabit(id)
	if got := SuccessRate(habit, tasks); got != "N/A" {
		t.Errorf("brand-new habit rate = %q, want N/A", got)
	}

	resolveSeries(t, svc, id, "2024-01-01", models.TaskDone)
	resolveSeries(t, svc, id, "2024-01-02", models.TaskIgnored)
	resolveSeries(t, svc, id, "2024-01-03", models.TaskDone)

	// Three observed periods, two fully done; the open 2024-01-04 series
	// is not observed.
	tasks, _ = svc.TasksForHabit(id)
	if got := SuccessRate(habit, tasks); got != "67%" {
		t.Errorf("rate = %q, want 67%%", got)
	}
}

func TestSuccessRateWeeklyGroupsByMonday(t *testing.T) {
	svc, _ := newTestSetup(t, "2024-01-01")

	// 2024-01-01 is a Monday; the next weekly occurrence falls in the
	// following week.
	id := createHabit(t, svc, "Review", models.RecurrenceWeekly, 1)

	resolveSeries(t, svc, id, "2024-01-01", models.TaskDone)
	resolveSeries(t, svc, id, "2024-01-08", models.TaskIgnored)

	habit, _ := svc.GetHabit(id)
	tasks, _ := svc.TasksForHabit(id)
	if got := SuccessRate(habit, tasks); got != "50%" {
		t.Errorf("rate = %q, want 50%%", got)
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name  string
		tasks []models.Task
		want  string
	}{
		{"no tasks", nil, "N/A"},
		{"all pending", []models.Task{{Status: models.TaskPending}}, "N/A"},
		{"three of four done", []models.Task{
			{Status: models.TaskDone}, {Status: models.TaskDone},
			{Status: models.TaskDone}, {Status: models.TaskIgnored},
		}, "75%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionRate(tt.tasks); got != tt.want {
				t.Errorf("CompletionRate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaysElapsedStopsAtEndDate(t *testing.T) {
	habit := models.Habit{StartDate: "2024-01-01", EndDate: "2024-01-10"}

	got, err := DaysElapsed(habit, "2024-01-05")
	if err != nil || got != 4 {
		t.Errorf("mid-window: got %d, %v; want 4", got, err)
	}

	got, err = DaysElapsed(habit, "2024-02-01")
	if err != nil || got != 9 {
		t.Errorf("past end: got %d, %v; want 9", got, err)
	}

	openEnded := models.Habit{StartDate: "2024-01-01"}
	got, err = DaysElapsed(openEnded, "2024-02-01")
	if err != nil || got != 31 {
		t.Errorf("open-ended: got %d, %v; want 31", got, err)
	}
}

func TestSortRows(t *testing.T) {
	rows := []Row{
		{"name": "Yoga", "success_rate": "N/A", "streak": "3"},
		{"name": "running", "success_rate": "80%", "streak": ""},
		{"name": "Meditate", "success_rate": "100%", "streak": "12"},
	}

	byRate := SortRows(rows, "success_rate", true)
	if byRate[0]["name"] != "Yoga" || byRate[2]["name"] != "Meditate" {
		t.Errorf("ascending rate order wrong: %v, %v, %v",
			byRate[0]["name"], byRate[1]["name"], byRate[2]["name"])
	}

	byStreak := SortRows(rows, "streak", true)
	if byStreak[0]["name"] != "running" {
		t.Errorf("absent numeric should sort first, got %v", byStreak[0]["name"])
	}

	byName := SortRows(rows, "name", true)
	if byName[0]["name"] != "Meditate" || byName[1]["name"] != "running" {
		t.Errorf("case-insensitive name order wrong: %v, %v, %v",
			byName[0]["name"], byName[1]["name"], byName[2]["name"])
	}

	desc := SortRows(rows, "success_rate", false)
	if desc[0]["name"] != "Meditate" {
		t.Errorf("descending rate order wrong: %v first", desc[0]["name"])
	}

	// Input order is untouched.
	if rows[0]["name"] != "Yoga" {
		t.Errorf("SortRows mutated its input")
	}
}

func TestFilterRows(t *testing.T) {
	rows := []Row{
		{"name": "Morning run", "category": "Fitness"},
		{"name": "Read book", "category": "Learning"},
	}

	got := FilterRows(rows, "category", "fit")
	if len(got) != 1 || got[0]["name"] != "Morning run" {
		t.Errorf("substring filter wrong: %v", got)
	}

	got = FilterRows(rows, "category", "nope")
	if len(got) != 0 {
		t.Errorf("unmatched substring should yield nothing, got %v", got)
	}

	// Unknown field names are not an error path.
	got = FilterRows(rows, "bogus", "x")
	if len(got) != 2 {
		t.Errorf("unknown field should return input unchanged, got %v", got)
	}
}

func TestRows(t *testing.T) {
	svc, agg := newTestSetup(t, "2024-01-03")

	id := createHabit(t, svc, "Running", models.RecurrenceDaily, 1)
	resolveSeries(t, svc, id, "2024-01-01", models.TaskDone)
	resolveSeries(t, svc, id, "2024-01-02", models.TaskDone)

	rows, err := agg.Rows("2024-01-03")
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	row := rows[0]
	if row["name"] != "Running" {
		t.Errorf("name = %q", row["name"])
	}
	if row["streak"] != "2" {
		t.Errorf("streak = %q, want 2", row["streak"])
	}
	if row["success_rate"] != "100%" {
		t.Errorf("success_rate = %q, want 100%%", row["success_rate"])
	}
	if row["days_elapsed"] != "2" {
		t.Errorf("days_elapsed = %q, want 2", row["days_elapsed"])
	}
	if row["status"] != "Active" {
		t.Errorf("status = %q, want Active", row["status"])
	}
	for _, col := range Columns {
		if _, ok := row[col]; !ok {
			t.Errorf("row missing column %q", col)
		}
	}
}
