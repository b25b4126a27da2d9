package cli

import (
	"fmt"

	"github.com/kmcewan/habits/internal/models"
)

type TaskCmd struct {
	List    TaskListCmd    `cmd:"" help:"List pending tasks."`
	Resolve TaskResolveCmd `cmd:"" help:"Resolve a pending task as done or ignore."`
}

type TaskListCmd struct {
	Date string `help:"Reference date (YYYY-MM-DD, default: today)."`
}

func (c *TaskListCmd) Run(ctx *Context) error {
	reference := c.Date
	if reference == "" {
		reference = ctx.Engine.Today()
	}
	if err := validDateFlag(reference); err != nil {
		return err
	}

	views, err := ctx.Aggregator.PendingTasks(reference)
	if err != nil {
		return err
	}

	if len(views) == 0 {
		fmt.Println("No pending tasks. Nice.")
		return nil
	}

	fmt.Printf("Pending tasks as of %s:\n\n", reference)
	for _, v := range views {
		progress := v.Progress()
		if progress != "" {
			progress = "  [" + progress + "]"
		}
		fmt.Printf("%4d  %-30s #%d %-30s due %s  streak %d%s\n",
			v.TaskID, v.HabitName, v.Number, v.Description, v.DueDate, v.Streak, progress)
	}
	return nil
}

type TaskResolveCmd struct {
	ID     int64  `arg:"" help:"Task id."`
	Status string `arg:"" help:"Resolution (done|ignore)."`
}

func (c *TaskResolveCmd) Run(ctx *Context) error {
	if err := ctx.Engine.ResolveTask(c.ID, models.TaskStatus(c.Status)); err != nil {
		return err
	}

	fmt.Printf("Resolved task %d as %s\n", c.ID, c.Status)

	task, err := ctx.Engine.GetTask(c.ID)
	if err != nil {
		return nil
	}
	habit, err := ctx.Engine.GetHabit(task.HabitID)
	if err != nil {
		return nil
	}
	fmt.Printf("%s: streak %d (best %d), %d reset(s)\n",
		habit.Name, habit.Streak, habit.LongestStreak, habit.ResetCount)
	return nil
}
