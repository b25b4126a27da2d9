package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage"
)

const taskColumns = `id, habit_id, task_number, description, created, due_date, status`

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	var created, status string

	err := row.Scan(&t.ID, &t.HabitID, &t.Number, &t.Description, &created, &t.DueDate, &status)
	if err != nil {
		return models.Task{}, err
	}

	t.Created, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to parse created for task %d: %w", t.ID, err)
	}
	t.Status = models.TaskStatus(status)

	return t, nil
}

func (s *Store) InsertTaskSeries(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin series transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tasks (habit_id, task_number, description, created, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare series insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.Exec(
			t.HabitID, t.Number, t.Description,
			t.Created.Format(time.RFC3339), t.DueDate, string(t.Status),
		); err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return storage.ErrDuplicate
			}
			return fmt.Errorf("failed to insert task %d of series: %w", t.Number, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetTask(id int64) (models.Task, error) {
	row := s.db.QueryRow(
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, storage.ErrNotFound
		}
		return models.Task{}, err
	}
	return t, nil
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	rows, err := s.db.Query(
		"SELECT " + taskColumns + " FROM tasks ORDER BY habit_id, due_date, task_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (s *Store) TasksForSeries(habitID int64, dueDate string) ([]models.Task, error) {
	rows, err := s.db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE habit_id = $1 AND due_date = $2 ORDER BY task_number",
		habitID, dueDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (s *Store) TasksForHabit(habitID int64) ([]models.Task, error) {
	rows, err := s.db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE habit_id = $1 ORDER BY due_date, task_number",
		habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (s *Store) UpdateTaskStatus(id int64, status models.TaskStatus) error {
	result, err := s.db.Exec(
		"UPDATE tasks SET status = $1 WHERE id = $2", string(status), id)
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

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
