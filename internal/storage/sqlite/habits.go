package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage"
)

const habitColumns = `id, name, category, description, created, start_date, end_date,
	importance, recurrence, task_count, task_template, streak, longest_streak, reset_count`

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	var created string
	var endDate sql.NullString
	var importance, recurrence string

	err := row.Scan(
		&h.ID, &h.Name, &h.Category, &h.Description, &created, &h.StartDate, &endDate,
		&importance, &recurrence, &h.TaskCount, &h.TaskTemplate,
		&h.Streak, &h.LongestStreak, &h.ResetCount,
	)
	if err != nil {
		return models.Habit{}, err
	}

	h.Created, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created for habit %d: %w", h.ID, err)
	}
	if endDate.Valid {
		h.EndDate = endDate.String
	}
	h.Importance = models.Importance(importance)
	h.Recurrence = models.Recurrence(recurrence)

	return h, nil
}

func (s *Store) InsertHabit(habit models.Habit) (int64, error) {
	var exists int
	err := s.db.QueryRow(
		"SELECT count(*) FROM habits WHERE name = ? AND description = ?",
		habit.Name, habit.Description,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check for duplicate habit: %w", err)
	}
	if exists > 0 {
		return 0, storage.ErrDuplicate
	}

	var endDate sql.NullString
	if habit.EndDate != "" {
		endDate = sql.NullString{String: habit.EndDate, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO habits (
			name, category, description, created, start_date, end_date,
			importance, recurrence, task_count, task_template,
			streak, longest_streak, reset_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.Name, habit.Category, habit.Description,
		habit.Created.Format(time.RFC3339), habit.StartDate, endDate,
		string(habit.Importance), string(habit.Recurrence), habit.TaskCount, habit.TaskTemplate,
		habit.Streak, habit.LongestStreak, habit.ResetCount,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetHabit(id int64) (models.Habit, error) {
	row := s.db.QueryRow(
		"SELECT "+habitColumns+" FROM habits WHERE id = ?", id)

	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, storage.ErrNotFound
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(
		"SELECT " + habitColumns + " FROM habits ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	var endDate sql.NullString
	if habit.EndDate != "" {
		endDate = sql.NullString{String: habit.EndDate, Valid: true}
	}

	result, err := s.db.Exec(`
		UPDATE habits SET
			name = ?, category = ?, description = ?, start_date = ?, end_date = ?,
			importance = ?, recurrence = ?, task_count = ?, task_template = ?,
			streak = ?, longest_streak = ?, reset_count = ?
		WHERE id = ?`,
		habit.Name, habit.Category, habit.Description, habit.StartDate, endDate,
		string(habit.Importance), string(habit.Recurrence), habit.TaskCount, habit.TaskTemplate,
		habit.Streak, habit.LongestStreak, habit.ResetCount,
		habit.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteHabit removes a habit and every task that references it in a single
// transaction.
func (s *Store) DeleteHabit(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM tasks WHERE habit_id = ?", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete tasks for habit %d: %w", id, err)
	}

	result, err := tx.Exec("DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete habit %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if rows == 0 {
		_ = tx.Rollback()
		return storage.ErrNotFound
	}

	return tx.Commit()
}
