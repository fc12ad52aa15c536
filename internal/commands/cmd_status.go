package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/taskly"
)

// StatusCmd implements the taskly done, start, and todo commands.
type StatusCmd struct {
	flags *Flags
	app   *taskly.App
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags, app *taskly.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status commands to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "done",
			Usage:     "Mark a task done",
			UsageText: "taskly done <id|title>",
			Description: `Moves a task to the done column. Completing a task earns XP and
can level you up.

Examples:
  taskly done 4f2c`,
			Action: cmd.runner(task.StatusDone),
		},
		&cli.Command{
			Name:      "start",
			Usage:     "Mark a task in progress",
			UsageText: "taskly start <id|title>",
			Action:    cmd.runner(task.StatusInProgress),
		},
		&cli.Command{
			Name:      "todo",
			Usage:     "Move a task back to the todo column",
			UsageText: "taskly todo <id|title>",
			Action:    cmd.runner(task.StatusTodo),
		},
	)

	return app
}

func (cmd *StatusCmd) runner(status task.Status) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: taskly %s <id|title>", c.Name)
		}

		t, err := resolveTask(cmd.app, c.Args().Get(0))
		if err != nil {
			return err
		}

		updated, ok := cmd.app.Tasks.SetTaskStatus(ctx, t.ID, status)
		if !ok {
			return fmt.Errorf("task %s: %w", shortID(t.ID), task.ErrNotFound)
		}

		_, _ = fmt.Fprintf(c.Root().Writer, "%s %q is now %s\n", shortID(updated.ID), updated.Title, updated.Status)
		return nil
	}
}
