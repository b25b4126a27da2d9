// Package dateutil holds the pure calendar-date rules the engine is built on.
// Dates are YYYY-MM-DD strings throughout; there is no time-of-day component.
package dateutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/kmcewan/habits/internal/constants"
	"github.com/kmcewan/habits/internal/models"
)

// ErrInvalidRecurrence is returned when a recurrence value is neither Daily
// nor Weekly.
var ErrInvalidRecurrence = errors.New("invalid recurrence")

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// Today returns the current calendar date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(constants.DateFormat)
}

// NextDueDate advances a due date by one recurrence step: one day for Daily,
// seven for Weekly. Month and year boundaries are handled by the calendar
// arithmetic, including leap days.
func NextDueDate(current string, rec models.Recurrence) (string, error) {
	t, err := ParseDate(current)
	if err != nil {
		return "", err
	}
	switch rec {
	case models.RecurrenceDaily:
		return t.AddDate(0, 0, 1).Format(constants.DateFormat), nil
	case models.RecurrenceWeekly:
		return t.AddDate(0, 0, 7).Format(constants.DateFormat), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRecurrence, rec)
	}
}

// ElapsedDays counts whole days from start to reference, clamped at zero when
// start lies after reference.
func ElapsedDays(start, reference string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	r, err := ParseDate(reference)
	if err != nil {
		return 0, err
	}
	days := int(r.Sub(s).Hours() / 24)
	if days < 0 {
		return 0, nil
	}
	return days, nil
}

// IsPast reports whether date lies strictly after boundary. A date equal to
// the boundary is not past it; the boundary itself is still allowed.
func IsPast(date, boundary string) (bool, error) {
	d, err := ParseDate(date)
	if err != nil {
		return false, err
	}
	b, err := ParseDate(boundary)
	if err != nil {
		return false, err
	}
	return d.After(b), nil
}

// WeekAnchor returns the Monday of the week containing date, used to group
// weekly habit occurrences into periods.
func WeekAnchor(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	// time.Weekday numbers Sunday as 0; shift so Monday is the anchor.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(constants.DateFormat), nil
}

// MinDate returns the earlier of two dates. String comparison is safe because
// the format is fixed-width ISO.
func MinDate(a, b string) string {
	if b != "" && b < a {
		return b
	}
	return a
}
