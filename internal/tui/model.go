// Package tui is an interactive board over the pending-task listing. Tasks
// are resolved in place; rollover happens through the engine exactly as it
// does on the command line.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kmcewan/habits/internal/analytics"
	"github.com/kmcewan/habits/internal/engine"
	"github.com/kmcewan/habits/internal/models"
)

type Model struct {
	engine     *engine.Service
	aggregator *analytics.Aggregator
	tasks      []analytics.TaskView
	cursor     int
	keys       KeyMap
	help       help.Model
	status     string
	err        error
	quitting   bool
	width      int
	height     int
}

func NewModel(eng *engine.Service, agg *analytics.Aggregator) Model {
	m := Model{
		engine:     eng,
		aggregator: agg,
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
	m.reload()
	return m
}

func (m *Model) reload() {
	tasks, err := m.aggregator.PendingTasks(m.engine.Today())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.tasks = tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			m.status = "Refreshed"
			return m, nil

		case key.Matches(msg, m.keys.Done):
			return m.resolve(models.TaskDone), nil

		case key.Matches(msg, m.keys.Ignore):
			return m.resolve(models.TaskIgnored), nil
		}
	}

	return m, nil
}

func (m Model) resolve(status models.TaskStatus) Model {
	if len(m.tasks) == 0 {
		return m
	}

	task := m.tasks[m.cursor]
	if err := m.engine.ResolveTask(task.TaskID, status); err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return m
	}

	m.status = fmt.Sprintf("Resolved %q as %s", task.Description, status)
	m.reload()
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle.Render(fmt.Sprintf("Pending tasks for %s", m.engine.Today()))

	var body string
	switch {
	case m.err != nil:
		body = statusStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case len(m.tasks) == 0:
		body = statusStyle.Render("Nothing pending. Nice.")
	default:
		var rows []string
		for i, t := range m.tasks {
			line := fmt.Sprintf("%-25s #%d %-30s due %s %s",
				truncate(t.HabitName, 25), t.Number, truncate(t.Description, 30),
				t.DueDate, streakStyle.Render(fmt.Sprintf("streak %d", t.Streak)))
			if p := t.Progress(); p != "" {
				line += " " + statusStyle.Render("["+p+"]")
			}
			if i == m.cursor {
				line = selectedStyle.Render("> " + line)
			} else {
				line = rowStyle.Render("  " + line)
			}
			rows = append(rows, line)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	sections := []string{title, "", body}
	if m.status != "" {
		sections = append(sections, "", statusStyle.Render(m.status))
	}
	sections = append(sections, "", m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
