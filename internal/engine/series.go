package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/kmcewan/habits/internal/dateutil"
	"github.com/kmcewan/habits/internal/logger"
	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage"
)

// SeriesState classifies a series by its member task statuses. It is always
// derived from a fresh read, never cached.
type SeriesState string

const (
	// SeriesOpen means at least one task is still pending.
	SeriesOpen SeriesState = "Open"
	// SeriesSuccess means every task resolved done.
	SeriesSuccess SeriesState = "Resolved-Success"
	// SeriesMixed means every task resolved, at least one as ignore.
	SeriesMixed SeriesState = "Resolved-Mixed"
)

// EvaluateSeries derives the state of a set of tasks sharing one
// (habit, due date) key. An empty series is treated as open.
func EvaluateSeries(tasks []models.Task) SeriesState {
	if len(tasks) == 0 {
		return SeriesOpen
	}

	ignored := false
	for _, t := range tasks {
		switch t.Status {
		case models.TaskPending:
			return SeriesOpen
		case models.TaskIgnored:
			ignored = true
		}
	}
	if ignored {
		return SeriesMixed
	}
	return SeriesSuccess
}

// buildSeries constructs the tasks of one series from the habit's current
// task count and template.
func buildSeries(habit models.Habit, dueDate string) []models.Task {
	tasks := make([]models.Task, 0, habit.TaskCount)
	for n := 1; n <= habit.TaskCount; n++ {
		tasks = append(tasks, models.Task{
			HabitID:     habit.ID,
			Number:      n,
			Description: habit.TaskTemplate,
			Created:     time.Now(),
			DueDate:     dueDate,
			Status:      models.TaskPending,
		})
	}
	return tasks
}

// createSeries inserts a full series for the habit at dueDate. The insert is
// all-or-nothing at the storage layer.
func (s *Service) createSeries(habit models.Habit, dueDate string) error {
	if err := s.store.InsertTaskSeries(buildSeries(habit, dueDate)); err != nil {
		return fmt.Errorf("series for habit %d due %s: %w", habit.ID, dueDate, err)
	}
	logger.Debug("Created task series", "habit_id", habit.ID, "due_date", dueDate, "count", habit.TaskCount)
	return nil
}

// ResolveTask moves a pending task to done or ignore, then runs rollover on
// its series. Resolution is one-way: a task that already left pending is
// rejected with ErrInvalidStatus.
func (s *Service) ResolveTask(taskID int64, status models.TaskStatus) error {
	if status != models.TaskDone && status != models.TaskIgnored {
		return fmt.Errorf("%w: %q (use done or ignore)", ErrInvalidStatus, status)
	}

	task, err := s.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	if !task.IsPending() {
		return fmt.Errorf("%w: task %d already resolved as %s", ErrInvalidStatus, taskID, task.Status)
	}

	if err := s.store.UpdateTaskStatus(taskID, status); err != nil {
		return err
	}
	logger.Info("Resolved task", "task_id", taskID, "status", status)

	return s.rollover(task.HabitID, task.DueDate)
}

// rollover evaluates the series at (habitID, dueDate) after a resolution.
// An open series is left alone. A resolved series first feeds back into the
// habit's streak state, then spawns the next series at the next due date,
// unless that date lies strictly past the habit's end date. Streak update and
// series creation commit separately; Reconcile repairs the window between
// them.
func (s *Service) rollover(habitID int64, dueDate string) error {
	tasks, err := s.store.TasksForSeries(habitID, dueDate)
	if err != nil {
		return err
	}

	state := EvaluateSeries(tasks)
	if state == SeriesOpen {
		return nil
	}

	habit, err := s.getHabit(habitID)
	if err != nil {
		return err
	}

	switch state {
	case SeriesSuccess:
		if err := s.incrementStreak(habitID); err != nil {
			return err
		}
	case SeriesMixed:
		if err := s.resetStreak(habitID); err != nil {
			return err
		}
	}

	nextDue, err := dateutil.NextDueDate(dueDate, habit.Recurrence)
	if err != nil {
		return err
	}

	if habit.EndDate != "" {
		past, err := dateutil.IsPast(nextDue, habit.EndDate)
		if err != nil {
			return err
		}
		if past {
			// Natural end of the habit's window, not an error.
			logger.Info("Habit reached end date, no further series", "habit_id", habitID, "end_date", habit.EndDate)
			return nil
		}
	}

	if err := s.createSeries(habit, nextDue); err != nil {
		return fmt.Errorf("%w: %v", ErrSeriesCreation, err)
	}
	return nil
}

// GetTask fetches one task.
func (s *Service) GetTask(taskID int64) (models.Task, error) {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// TasksForHabit returns every task of a habit. A nonexistent habit yields an
// empty result, not an error.
func (s *Service) TasksForHabit(habitID int64) ([]models.Task, error) {
	return s.store.TasksForHabit(habitID)
}
