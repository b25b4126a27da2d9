package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kmcewan/habits/internal/analytics"
)

var (
	statsHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Padding(0, 1)

	statsCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

type StatsCmd struct {
	Sort   string `help:"Column to sort by." default:"id"`
	Desc   bool   `help:"Sort descending."`
	Filter string `help:"Filter as column=substring (case-insensitive)."`
	Date   string `help:"Reference date (YYYY-MM-DD, default: today)."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	reference := c.Date
	if reference == "" {
		reference = ctx.Engine.Today()
	}
	if err := validDateFlag(reference); err != nil {
		return err
	}

	rows, err := ctx.Aggregator.Rows(reference)
	if err != nil {
		return err
	}

	if c.Filter != "" {
		field, substring, ok := strings.Cut(c.Filter, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q (expected column=substring)", c.Filter)
		}
		rows = analytics.FilterRows(rows, field, substring)
	}
	rows = analytics.SortRows(rows, c.Sort, !c.Desc)

	if len(rows) == 0 {
		fmt.Println("No habits to report on.")
		return nil
	}

	renderStatsTable(rows)
	return nil
}

func renderStatsTable(rows []analytics.Row) {
	widths := make([]int, len(analytics.Columns))
	for i, col := range analytics.Columns {
		widths[i] = len(col)
		for _, row := range rows {
			if len(row[col]) > widths[i] {
				widths[i] = len(row[col])
			}
		}
	}

	var header strings.Builder
	for i, col := range analytics.Columns {
		header.WriteString(statsHeaderStyle.Width(widths[i] + 2).Render(col))
	}
	fmt.Println(header.String())

	for _, row := range rows {
		var line strings.Builder
		for i, col := range analytics.Columns {
			line.WriteString(statsCellStyle.Width(widths[i] + 2).Render(row[col]))
		}
		fmt.Println(line.String())
	}
}
