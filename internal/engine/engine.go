// Package engine owns the habit/task lifecycle: habit creation and updates,
// task series generation, resolution, streak feedback and rollover. It is the
// sole writer of habit and task records; the CLI and TUI go through it.
package engine

import (
	"errors"

	"github.com/kmcewan/habits/internal/dateutil"
	"github.com/kmcewan/habits/internal/storage"
)

var (
	// ErrHabitNotFound is returned when a referenced habit id does not exist.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrTaskNotFound is returned when a referenced task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidStatus is returned when a task resolution targets a status
	// outside done/ignore, or re-resolves a task that already left pending.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrSeriesCreation is returned when a task series could not be created
	// as a unit.
	ErrSeriesCreation = errors.New("failed to create task series")
)

// Service runs all lifecycle operations against a storage provider. The
// clock is injected so tests can pin the reference date.
type Service struct {
	store storage.Provider
	now   func() string
}

func NewService(store storage.Provider) *Service {
	return &Service{
		store: store,
		now:   dateutil.Today,
	}
}

// NewServiceAt returns a Service whose notion of "today" is supplied by now.
func NewServiceAt(store storage.Provider, now func() string) *Service {
	return &Service{store: store, now: now}
}

// Store exposes the underlying provider for read-only consumers.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Today returns the service's reference date (YYYY-MM-DD).
func (s *Service) Today() string {
	return s.now()
}
