package models

import "time"

type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
	TaskIgnored TaskStatus = "ignore"
)

// Task is one occurrence-instance of a habit, due on a specific date. All
// tasks sharing a (habit id, due date) pair form a series and are created and
// evaluated as a unit.
type Task struct {
	ID          int64      `json:"id"`
	HabitID     int64      `json:"habit_id"`
	Number      int        `json:"number"` // 1..Habit.TaskCount within a series
	Description string     `json:"description"`
	Created     time.Time  `json:"created"`
	DueDate     string     `json:"due_date"` // YYYY-MM-DD
	Status      TaskStatus `json:"status"`
}

func (t Task) IsPending() bool {
	return t.Status == TaskPending
}

// IsResolved reports whether the task has left the pending state.
func (t Task) IsResolved() bool {
	return t.Status == TaskDone || t.Status == TaskIgnored
}
