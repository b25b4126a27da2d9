// Package validation checks habit and task input before any mutation. The
// whole record is always validated, not just a changed field, so cross-field
// invariants (start before end) hold after every update.
package validation

import (
	"fmt"
	"strings"

	"github.com/kmcewan/habits/internal/constants"
	"github.com/kmcewan/habits/internal/dateutil"
	"github.com/kmcewan/habits/internal/models"
)

// Error describes a rejected field. It is returned before anything is
// persisted.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...interface{}) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateHabit validates a complete habit record. updatedField names the
// field being changed on an update ("" for creation); the start date may not
// be moved into the past, but an untouched historical start date stays legal.
// reference is today's date (YYYY-MM-DD).
func ValidateHabit(h models.Habit, updatedField, reference string) error {
	if strings.TrimSpace(h.Name) == "" {
		return fieldErr("name", "cannot be empty")
	}
	if len(h.Name) > constants.MaxNameLen {
		return fieldErr("name", "exceeds maximum length of %d", constants.MaxNameLen)
	}
	if strings.TrimSpace(h.Category) == "" {
		return fieldErr("category", "cannot be empty")
	}
	if len(h.Category) > constants.MaxCategoryLen {
		return fieldErr("category", "exceeds maximum length of %d", constants.MaxCategoryLen)
	}
	if strings.TrimSpace(h.Description) == "" {
		return fieldErr("description", "cannot be empty")
	}
	if len(h.Description) > constants.MaxDescriptionLen {
		return fieldErr("description", "exceeds maximum length of %d", constants.MaxDescriptionLen)
	}
	if strings.TrimSpace(h.TaskTemplate) == "" {
		return fieldErr("task-template", "cannot be empty")
	}
	if len(h.TaskTemplate) > constants.MaxTaskTemplateLen {
		return fieldErr("task-template", "exceeds maximum length of %d", constants.MaxTaskTemplateLen)
	}

	if h.TaskCount < 1 {
		return fieldErr("task-count", "must be a positive integer")
	}
	if h.TaskCount > constants.MaxTasksPerSeries {
		return fieldErr("task-count", "maximum %d tasks allowed per habit", constants.MaxTasksPerSeries)
	}

	if !dateutil.ValidDate(h.StartDate) {
		return fieldErr("start", "invalid date format, use YYYY-MM-DD")
	}
	if h.EndDate != "" {
		if !dateutil.ValidDate(h.EndDate) {
			return fieldErr("end", "invalid date format, use YYYY-MM-DD")
		}
		if h.StartDate >= h.EndDate {
			return fieldErr("start", "start date must be before end date")
		}
	}
	if updatedField == "start" && h.StartDate < reference {
		return fieldErr("start", "start date cannot be in the past")
	}

	switch h.Importance {
	case models.ImportanceHigh, models.ImportanceLow, models.ImportancePaused:
	default:
		return fieldErr("importance", "use High, Low or Paused")
	}

	switch h.Recurrence {
	case models.RecurrenceDaily, models.RecurrenceWeekly:
	default:
		return fieldErr("recurrence", "use Daily or Weekly")
	}

	return nil
}

// ValidateTask validates a task record before insertion.
func ValidateTask(t models.Task) error {
	if t.HabitID <= 0 {
		return fieldErr("habit-id", "must reference an existing habit")
	}
	if t.Number < 1 {
		return fieldErr("task-number", "must be a positive integer")
	}
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return fieldErr("description", "cannot be empty")
	}
	if len(desc) > constants.MaxTaskTemplateLen {
		return fieldErr("description", "exceeds maximum length of %d", constants.MaxTaskTemplateLen)
	}
	if !dateutil.ValidDate(t.DueDate) {
		return fieldErr("due-date", "invalid date format, use YYYY-MM-DD")
	}
	switch t.Status {
	case models.TaskPending, models.TaskDone, models.TaskIgnored:
	default:
		return fieldErr("status", "use pending, done or ignore")
	}
	return nil
}
