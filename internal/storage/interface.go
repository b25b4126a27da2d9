package storage

import (
	"errors"

	"github.com/kmcewan/habits/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert would violate a uniqueness
	// guard (habit name+description, or a task's series slot).
	ErrDuplicate = errors.New("record already exists")
)

// Provider is the keyed record store the engine writes habits and tasks
// through. Backends must keep InsertTaskSeries and DeleteHabit atomic: a
// series is all-or-nothing, and deleting a habit removes its tasks in the
// same transaction.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Habits
	InsertHabit(models.Habit) (int64, error)
	GetHabit(id int64) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id int64) error

	// Tasks
	InsertTaskSeries([]models.Task) error
	GetTask(id int64) (models.Task, error)
	GetAllTasks() ([]models.Task, error)
	TasksForSeries(habitID int64, dueDate string) ([]models.Task, error)
	TasksForHabit(habitID int64) ([]models.Task, error)
	UpdateTaskStatus(id int64, status models.TaskStatus) error
}
