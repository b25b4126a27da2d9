package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	pq "github.com/lib/pq"

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

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *Store) InsertHabit(habit models.Habit) (int64, error) {
	var endDate sql.NullString
	if habit.EndDate != "" {
		endDate = sql.NullString{String: habit.EndDate, Valid: true}
	}

	var id int64
	err := s.db.QueryRow(`
		INSERT INTO habits (
			name, category, description, created, start_date, end_date,
			importance, recurrence, task_count, task_template,
			streak, longest_streak, reset_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		habit.Name, habit.Category, habit.Description,
		habit.Created.Format(time.RFC3339), habit.StartDate, endDate,
		string(habit.Importance), string(habit.Recurrence), habit.TaskCount, habit.TaskTemplate,
		habit.Streak, habit.LongestStreak, habit.ResetCount,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) GetHabit(id int64) (models.Habit, error) {
	row := s.db.QueryRow(
		"SELECT "+habitColumns+" FROM habits WHERE id = $1", id)

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
			name = $1, category = $2, description = $3, start_date = $4, end_date = $5,
			importance = $6, recurrence = $7, task_count = $8, task_template = $9,
			streak = $10, longest_streak = $11, reset_count = $12
		WHERE id = $13`,
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

func (s *Store) DeleteHabit(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM tasks WHERE habit_id = $1", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete tasks for habit %d: %w", id, err)
	}

	result, err := tx.Exec("DELETE FROM habits WHERE id = $1", id)
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
