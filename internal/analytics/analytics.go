// Package analytics derives read-only views from habit and task records:
// pending-task listings, success and completion rates, elapsed-day counts,
// and generic sort/filter over the resulting rows.
package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kmcewan/habits/internal/dateutil"
	"github.com/kmcewan/habits/internal/models"
	"github.com/kmcewan/habits/internal/storage"
)

// TaskView joins a pending task with its habit's name, current streak and the
// progress of its series for display.
type TaskView struct {
	TaskID      int64
	HabitID     int64
	HabitName   string
	Number      int
	Description string
	DueDate     string
	Streak      int
	SeriesDone  int // resolved tasks in this task's series
	SeriesTotal int
}

// Progress renders the series progress as "done/total", empty for a
// single-task series where the fraction carries no information.
func (v TaskView) Progress() string {
	if v.SeriesTotal <= 1 {
		return ""
	}
	return fmt.Sprintf("%d/%d", v.SeriesDone, v.SeriesTotal)
}

// Aggregator reads through a storage provider. It never writes.
type Aggregator struct {
	store storage.Provider
}

func NewAggregator(store storage.Provider) *Aggregator {
	return &Aggregator{store: store}
}

// PendingTasks lists every pending task due on or before the reference date
// whose habit is not paused, in scan order.
func (a *Aggregator) PendingTasks(reference string) ([]TaskView, error) {
	habits, err := a.store.GetAllHabits()
	if err != nil {
		return nil, err
	}
	habitByID := make(map[int64]models.Habit, len(habits))
	for _, h := range habits {
		habitByID[h.ID] = h
	}

	tasks, err := a.store.GetAllTasks()
	if err != nil {
		return nil, err
	}

	type seriesKey struct {
		habitID int64
		dueDate string
	}
	done := map[seriesKey]int{}
	total := map[seriesKey]int{}
	for _, t := range tasks {
		key := seriesKey{t.HabitID, t.DueDate}
		total[key]++
		if t.IsResolved() {
			done[key]++
		}
	}

	var views []TaskView
	for _, t := range tasks {
		if !t.IsPending() || t.DueDate > reference {
			continue
		}
		habit, ok := habitByID[t.HabitID]
		if !ok || habit.Importance == models.ImportancePaused {
			continue
		}
		key := seriesKey{t.HabitID, t.DueDate}
		views = append(views, TaskView{
			TaskID:      t.ID,
			HabitID:     t.HabitID,
			HabitName:   habit.Name,
			Number:      t.Number,
			Description: t.Description,
			DueDate:     t.DueDate,
			Streak:      habit.Streak,
			SeriesDone:  done[key],
			SeriesTotal: total[key],
		})
	}
	return views, nil
}

// SuccessRate groups a habit's tasks into periods (daily habits get one
// period per due date, weekly habits one per Monday-anchored week), counts
// the fully resolved periods where every task is done, and returns the share
// as an integer percentage. A habit with no fully resolved period yet yields
// "N/A".
func SuccessRate(habit models.Habit, tasks []models.Task) string {
	type period struct {
		resolved bool
		allDone  bool
	}

	periods := map[string]*period{}
	byKey := map[string][]models.Task{}
	for _, t := range tasks {
		key := t.DueDate
		if habit.Recurrence == models.RecurrenceWeekly {
			anchor, err := dateutil.WeekAnchor(t.DueDate)
			if err != nil {
				continue
			}
			key = anchor
		}
		byKey[key] = append(byKey[key], t)
	}

	for key, group := range byKey {
		p := &period{resolved: true, allDone: true}
		for _, t := range group {
			if t.IsPending() {
				p.resolved = false
			}
			if t.Status != models.TaskDone {
				p.allDone = false
			}
		}
		periods[key] = p
	}

	observed, succeeded := 0, 0
	for _, p := range periods {
		if !p.resolved {
			continue
		}
		observed++
		if p.allDone {
			succeeded++
		}
	}

	if observed == 0 {
		return "N/A"
	}

	rate := int(float64(succeeded)/float64(observed)*100 + 0.5)
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	return fmt.Sprintf("%d%%", rate)
}

// CompletionRate reports the share of resolved tasks that were done, across
// all of a habit's tasks regardless of period grouping. "N/A" until at least
// one task resolved.
func CompletionRate(tasks []models.Task) string {
	resolved, done := 0, 0
	for _, t := range tasks {
		if !t.IsResolved() {
			continue
		}
		resolved++
		if t.Status == models.TaskDone {
			done++
		}
	}
	if resolved == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d%%", int(float64(done)/float64(resolved)*100+0.5))
}

// DaysElapsed counts whole days the habit has been running at the reference
// date. Once the habit's end date passes, the count stops advancing.
func DaysElapsed(habit models.Habit, reference string) (int, error) {
	return dateutil.ElapsedDays(habit.StartDate, dateutil.MinDate(reference, habit.EndDate))
}

// Row is one stats-table line, keyed by column name. Values are display
// strings; sort and filter interpret them per field.
type Row map[string]string

// Columns is the stats-table column order.
var Columns = []string{
	"id", "name", "category", "description", "recurrence", "status",
	"streak", "longest_streak", "reset_count",
	"success_rate", "completion_rate", "days_elapsed",
}

// maxDescriptionCell caps the description column so one wordy habit does not
// blow up the table.
const maxDescriptionCell = 30

func truncateCell(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// Rows builds one stats row per habit for the given reference date.
func (a *Aggregator) Rows(reference string) ([]Row, error) {
	habits, err := a.store.GetAllHabits()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(habits))
	for _, h := range habits {
		tasks, err := a.store.TasksForHabit(h.ID)
		if err != nil {
			return nil, err
		}

		elapsed, err := DaysElapsed(h, reference)
		if err != nil {
			return nil, err
		}

		rows = append(rows, Row{
			"id":              strconv.FormatInt(h.ID, 10),
			"name":            h.Name,
			"category":        h.Category,
			"description":     truncateCell(h.Description, maxDescriptionCell),
			"recurrence":      string(h.Recurrence),
			"status":          string(h.Status(reference)),
			"streak":          strconv.Itoa(h.Streak),
			"longest_streak":  strconv.Itoa(h.LongestStreak),
			"reset_count":     strconv.Itoa(h.ResetCount),
			"success_rate":    SuccessRate(h, tasks),
			"completion_rate": CompletionRate(tasks),
			"days_elapsed":    strconv.Itoa(elapsed),
		})
	}
	return rows, nil
}

// sortKey maps a cell value to a numeric key when possible. Percentages are
// compared by their number with "N/A" counting as 0; absent values sort as
// -1, before any real value.
func sortKey(value string) (float64, bool) {
	if value == "" {
		return -1, true
	}
	if value == "N/A" {
		return 0, true
	}
	v := strings.TrimSuffix(value, "%")
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortRows sorts rows by one field, numerically where the values allow it
// and case-insensitively otherwise. The sort is stable and returns a new
// slice.
func SortRows(rows []Row, field string, ascending bool) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i][field], sorted[j][field]
		if !ascending {
			a, b = b, a
		}
		an, aok := sortKey(a)
		bn, bok := sortKey(b)
		if aok && bok {
			return an < bn
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	return sorted
}

// FilterRows keeps the rows whose field contains the substring,
// case-insensitively. An unknown field name filters nothing and returns the
// input unchanged.
func FilterRows(rows []Row, field, substring string) []Row {
	known := false
	for _, row := range rows {
		if _, ok := row[field]; ok {
			known = true
			break
		}
	}
	if !known {
		return rows
	}

	needle := strings.ToLower(substring)
	var filtered []Row
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row[field]), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
