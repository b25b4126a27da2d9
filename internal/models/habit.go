package models

import "time"

type Importance string

const (
	ImportanceHigh   Importance = "High"
	ImportanceLow    Importance = "Low"
	ImportancePaused Importance = "Paused"
)

type Recurrence string

const (
	RecurrenceDaily  Recurrence = "Daily"
	RecurrenceWeekly Recurrence = "Weekly"
)

// HabitStatus is derived, never stored.
type HabitStatus string

const (
	StatusActive    HabitStatus = "Active"
	StatusPaused    HabitStatus = "Paused"
	StatusCompleted HabitStatus = "Completed"
)

// Habit is a recurring activity definition. Streak, LongestStreak and
// ResetCount are mutated only by the engine; everything else comes from
// validated user input.
type Habit struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Created      time.Time  `json:"created"`
	StartDate    string     `json:"start_date"`         // YYYY-MM-DD
	EndDate      string     `json:"end_date,omitempty"` // YYYY-MM-DD, empty = open-ended
	Importance   Importance `json:"importance"`
	Recurrence   Recurrence `json:"recurrence"`
	TaskCount    int        `json:"task_count"`
	TaskTemplate string     `json:"task_template"`

	Streak        int `json:"streak"`
	LongestStreak int `json:"longest_streak"`
	ResetCount    int `json:"reset_count"`
}

// Status derives the habit's status for the given reference date (YYYY-MM-DD).
// Paused wins over everything; a habit whose end date lies before the
// reference date is Completed; otherwise it is Active.
func (h Habit) Status(reference string) HabitStatus {
	if h.Importance == ImportancePaused {
		return StatusPaused
	}
	if h.EndDate != "" && h.EndDate < reference {
		return StatusCompleted
	}
	return StatusActive
}

// IsActive reports whether the habit should surface in pending listings.
func (h Habit) IsActive(reference string) bool {
	return h.Status(reference) == StatusActive
}
