package engine

import (
	"github.com/kmcewan/habits/internal/dateutil"
	"github.com/kmcewan/habits/internal/logger"
	"github.com/kmcewan/habits/internal/models"
)

// RepairReport summarizes what a reconciliation pass found and fixed.
type RepairReport struct {
	HabitsChecked  int
	SeriesCreated  int
	HabitsRepaired []int64
}

// Reconcile detects habits whose latest series fully resolved without the
// next series being created. Rollover commits the streak update before the
// series insert, so an interruption between the two leaves the habit with no
// open series even though its window has not ended. When repair is true the
// missing series is regenerated from the habit's current task template;
// otherwise the pass only reports.
func (s *Service) Reconcile(repair bool) (RepairReport, error) {
	var report RepairReport

	habits, err := s.store.GetAllHabits()
	if err != nil {
		return report, err
	}

	for _, habit := range habits {
		report.HabitsChecked++

		tasks, err := s.store.TasksForHabit(habit.ID)
		if err != nil {
			return report, err
		}
		if len(tasks) == 0 {
			// A habit with no tasks at all lost its initial series.
			if err := s.repairSeries(&report, habit, habit.StartDate, repair); err != nil {
				return report, err
			}
			continue
		}

		// Tasks come back ordered by due date; the last series is the
		// latest occurrence.
		latestDue := tasks[len(tasks)-1].DueDate
		var latest []models.Task
		for _, t := range tasks {
			if t.DueDate == latestDue {
				latest = append(latest, t)
			}
		}

		if EvaluateSeries(latest) == SeriesOpen {
			continue
		}

		nextDue, err := dateutil.NextDueDate(latestDue, habit.Recurrence)
		if err != nil {
			return report, err
		}
		if habit.EndDate != "" {
			past, err := dateutil.IsPast(nextDue, habit.EndDate)
			if err != nil {
				return report, err
			}
			if past {
				// Habit ran its course; nothing to repair.
				continue
			}
		}

		if err := s.repairSeries(&report, habit, nextDue, repair); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *Service) repairSeries(report *RepairReport, habit models.Habit, dueDate string, repair bool) error {
	report.HabitsRepaired = append(report.HabitsRepaired, habit.ID)
	if !repair {
		return nil
	}
	if err := s.createSeries(habit, dueDate); err != nil {
		return err
	}
	report.SeriesCreated++
	logger.Info("Regenerated missing series", "habit_id", habit.ID, "due_date", dueDate)
	return nil
}
