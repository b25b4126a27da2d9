package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kmcewan/habits/internal/logger"
	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage"
	"github.com/kmcewan/habits/internal/validation"
)

// NewHabitInput carries the validated-on-entry fields for habit creation.
type NewHabitInput struct {
	Name         string
	Category     string
	Description  string
	StartDate    string
	EndDate      string // empty = open-ended
	Importance   models.Importance
	Recurrence   models.Recurrence
	TaskCount    int
	TaskTemplate string
}

// CreateHabit validates the input, persists the habit with zeroed streak
// counters, and generates the initial task series for the start date. If the
// series cannot be created the habit is deleted again and ErrSeriesCreation
// is returned.
func (s *Service) CreateHabit(input NewHabitInput) (int64, error) {
	habit := models.Habit{
		Name:         strings.TrimSpace(input.Name),
		Category:     strings.TrimSpace(input.Category),
		Description:  strings.TrimSpace(input.Description),
		Created:      time.Now(),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Importance:   input.Importance,
		Recurrence:   input.Recurrence,
		TaskCount:    input.TaskCount,
		TaskTemplate: strings.TrimSpace(input.TaskTemplate),
	}

	if err := validation.ValidateHabit(habit, "", s.now()); err != nil {
		return 0, err
	}

	id, err := s.store.InsertHabit(habit)
	if err != nil {
		return 0, err
	}
	habit.ID = id

	if err := s.createSeries(habit, habit.StartDate); err != nil {
		// Roll back: a habit without its initial series must not exist.
		if delErr := s.store.DeleteHabit(id); delErr != nil {
			logger.Error("Failed to roll back habit after series failure", "habit_id", id, "error", delErr)
		}
		return 0, fmt.Errorf("%w: %v", ErrSeriesCreation, err)
	}

	logger.Info("Created habit", "habit_id", id, "name", habit.Name)
	return id, nil
}

// UpdatableHabitFields lists the field names UpdateHabitField accepts, in
// display order. Task count is deliberately absent: changing it would break
// the contiguous numbering of any open series.
var UpdatableHabitFields = []string{
	"name", "category", "description", "start", "end",
	"importance", "recurrence", "task-template",
}

// UpdateHabitField replaces one field and revalidates the whole record so
// cross-field rules still hold. Setting importance to Paused goes through
// PauseHabit, the only update path that touches streak state.
func (s *Service) UpdateHabitField(habitID int64, field, value string) error {
	habit, err := s.getHabit(habitID)
	if err != nil {
		return err
	}

	if field == "importance" && models.Importance(value) == models.ImportancePaused {
		return s.PauseHabit(habitID)
	}

	switch field {
	case "name":
		habit.Name = strings.TrimSpace(value)
	case "category":
		habit.Category = strings.TrimSpace(value)
	case "description":
		habit.Description = strings.TrimSpace(value)
	case "start":
		habit.StartDate = value
	case "end":
		habit.EndDate = value
	case "importance":
		habit.Importance = models.Importance(value)
	case "recurrence":
		habit.Recurrence = models.Recurrence(value)
	case "task-template":
		habit.TaskTemplate = strings.TrimSpace(value)
	default:
		return &validation.Error{Field: field, Message: "unknown field"}
	}

	if err := validation.ValidateHabit(habit, field, s.now()); err != nil {
		return err
	}

	return s.store.UpdateHabit(habit)
}

// PauseHabit sets importance to Paused, zeroes the streak and counts the
// break. Paused habits stop surfacing in pending listings but any open
// series remains resolvable.
func (s *Service) PauseHabit(habitID int64) error {
	habit, err := s.getHabit(habitID)
	if err != nil {
		return err
	}

	habit.Importance = models.ImportancePaused
	habit.Streak = 0
	habit.ResetCount++

	if err := s.store.UpdateHabit(habit); err != nil {
		return err
	}
	logger.Info("Paused habit", "habit_id", habitID)
	return nil
}

// DeleteHabit removes the habit and all of its tasks.
func (s *Service) DeleteHabit(habitID int64) error {
	if err := s.store.DeleteHabit(habitID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrHabitNotFound
		}
		return err
	}
	logger.Info("Deleted habit", "habit_id", habitID)
	return nil
}

// GetHabit fetches one habit.
func (s *Service) GetHabit(habitID int64) (models.Habit, error) {
	return s.getHabit(habitID)
}

// ListHabits returns every habit.
func (s *Service) ListHabits() ([]models.Habit, error) {
	return s.store.GetAllHabits()
}

func (s *Service) getHabit(habitID int64) (models.Habit, error) {
	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, ErrHabitNotFound
		}
		return models.Habit{}, err
	}
	return habit, nil
}

// incrementStreak bumps the streak and raises the longest-streak high-water
// mark in the same write.
func (s *Service) incrementStreak(habitID int64) error {
	habit, err := s.getHabit(habitID)
	if err != nil {
		return err
	}

	habit.Streak++
	if habit.Streak > habit.LongestStreak {
		habit.LongestStreak = habit.Streak
	}
	return s.store.UpdateHabit(habit)
}

// resetStreak zeroes the streak and counts the break.
func (s *Service) resetStreak(habitID int64) error {
	habit, err := s.getHabit(habitID)
	if err != nil {
		return err
	}

	habit.Streak = 0
	habit.ResetCount++
	return s.store.UpdateHabit(habit)
}
