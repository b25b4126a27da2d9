package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/kmcewan/habits/internal/dateutil"
	"github.com/kmcewan/habits/internal/engine"
	"github.com/kmcewan/habits/internal/models"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Update HabitUpdateCmd `cmd:"" help:"Update one field of a habit."`
	Pause  HabitPauseCmd  `cmd:"" help:"Pause a habit (resets its streak)."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and all of its tasks."`
}

type HabitAddCmd struct {
	Name         string `arg:"" optional:"" help:"Habit name."`
	Category     string `short:"c" help:"Habit category."`
	Description  string `short:"d" help:"What this habit is about."`
	Start        string `short:"s" help:"Start date (YYYY-MM-DD, default: today)."`
	End          string `short:"e" help:"End date (YYYY-MM-DD, empty = open-ended)."`
	Importance   string `short:"i" help:"Importance (High|Low)." default:"High"`
	Recurrence   string `short:"r" help:"Recurrence (Daily|Weekly)." default:"Daily"`
	TaskCount    int    `short:"n" help:"Tasks per occurrence (1-10)." default:"1"`
	TaskTemplate string `short:"t" help:"Description template for generated tasks."`
	Interactive  bool   `short:"I" help:"Fill in the habit via an interactive form."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if c.Interactive {
		if err := c.runForm(); err != nil {
			return err
		}
	}
	if c.Start == "" {
		c.Start = ctx.Engine.Today()
	}
	if c.TaskTemplate == "" {
		c.TaskTemplate = c.Name
	}

	id, err := ctx.Engine.CreateHabit(engine.NewHabitInput{
		Name:         c.Name,
		Category:     c.Category,
		Description:  c.Description,
		StartDate:    c.Start,
		EndDate:      c.End,
		Importance:   models.Importance(c.Importance),
		Recurrence:   models.Recurrence(c.Recurrence),
		TaskCount:    c.TaskCount,
		TaskTemplate: c.TaskTemplate,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit %d: %s (%s, %d task(s) per occurrence)\n", id, c.Name, c.Recurrence, c.TaskCount)
	return nil
}

func (c *HabitAddCmd) runForm() error {
	taskCount := strconv.Itoa(c.TaskCount)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&c.Name),
			huh.NewInput().Title("Category").Value(&c.Category),
			huh.NewInput().Title("Description").Value(&c.Description),
			huh.NewInput().Title("Start date (YYYY-MM-DD, empty = today)").Value(&c.Start),
			huh.NewInput().Title("End date (YYYY-MM-DD, empty = open-ended)").Value(&c.End),
			huh.NewSelect[string]().
				Title("Importance").
				Options(
					huh.NewOption("High", "High"),
					huh.NewOption("Low", "Low"),
				).
				Value(&c.Importance),
			huh.NewSelect[string]().
				Title("Recurrence").
				Options(
					huh.NewOption("Daily", "Daily"),
					huh.NewOption("Weekly", "Weekly"),
				).
				Value(&c.Recurrence),
			huh.NewInput().Title("Tasks per occurrence (1-10)").Value(&taskCount),
			huh.NewInput().Title("Task template").Value(&c.TaskTemplate),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(taskCount))
	if err != nil {
		return fmt.Errorf("task count must be a number: %q", taskCount)
	}
	c.TaskCount = n
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	habits, err := ctx.Engine.ListHabits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Engine.Today()
	for _, h := range habits {
		end := h.EndDate
		if end == "" {
			end = "open-ended"
		}
		fmt.Printf("%3d  %-30s %-10s %-9s %s  streak %d (best %d)\n",
			h.ID, h.Name, string(h.Recurrence), string(h.Status(today)),
			h.StartDate+" → "+end, h.Streak, h.LongestStreak)
	}
	return nil
}

type HabitUpdateCmd struct {
	ID    int64  `arg:"" help:"Habit id."`
	Field string `arg:"" help:"Field to change (name|category|description|start|end|importance|recurrence|task-template)."`
	Value string `arg:"" help:"New value."`
}

func (c *HabitUpdateCmd) Run(ctx *Context) error {
	if err := ctx.Engine.UpdateHabitField(c.ID, c.Field, c.Value); err != nil {
		return err
	}
	fmt.Printf("Updated habit %d: %s = %q\n", c.ID, c.Field, c.Value)
	return nil
}

type HabitPauseCmd struct {
	ID int64 `arg:"" help:"Habit id to pause."`
}

func (c *HabitPauseCmd) Run(ctx *Context) error {
	if err := ctx.Engine.PauseHabit(c.ID); err != nil {
		return err
	}
	fmt.Printf("Paused habit %d. Its streak was reset; resume by setting importance to High or Low.\n", c.ID)
	return nil
}

type HabitDeleteCmd struct {
	ID  int64 `arg:"" help:"Habit id to delete."`
	Yes bool  `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	habit, err := ctx.Engine.GetHabit(c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		var confirmed bool
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("Delete habit %q and all of its tasks?", habit.Name)).
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Engine.DeleteHabit(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit %d: %s\n", c.ID, habit.Name)
	return nil
}

// validDateFlag rejects malformed date flags before they reach the engine,
// so kong reports the error against the flag.
func validDateFlag(value string) error {
	if value == "" {
		return nil
	}
	if !dateutil.ValidDate(value) {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return nil
}

func (c *HabitAddCmd) Validate() error {
	if !c.Interactive && strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("habit name is required (or use --interactive)")
	}
	if err := validDateFlag(c.Start); err != nil {
		return err
	}
	return validDateFlag(c.End)
}
