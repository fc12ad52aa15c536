package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/taskly"
)

// RmCmd implements the taskly rm and undo commands.
type RmCmd struct {
	flags *Flags
	app   *taskly.App
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags, app *taskly.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm and undo commands to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "rm",
			Aliases:   []string{"delete"},
			Usage:     "Delete a task",
			UsageText: "taskly rm <id|title>",
			Description: `Deletes a task and any alarm it owns. The most recent deletion can
be restored with taskly undo.

Examples:
  taskly rm 4f2c
  taskly undo`,
			Action: cmd.runDelete,
		},
		&cli.Command{
			Name:      "undo",
			Usage:     "Restore the last deleted task",
			UsageText: "taskly undo",
			Description: `Restores the most recently deleted task. Only one deletion is
remembered; a second undo without a deletion in between does nothing.`,
			Action: cmd.runUndo,
		},
	)

	return app
}

func (cmd *RmCmd) runDelete(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskly rm <id|title>")
	}

	t, err := resolveTask(cmd.app, c.Args().Get(0))
	if err != nil {
		return err
	}

	if !cmd.app.Tasks.DeleteTask(ctx, t.ID) {
		return fmt.Errorf("task %s: %w", shortID(t.ID), task.ErrNotFound)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "deleted %q (taskly undo to restore)\n", t.Title)
	return nil
}

func (cmd *RmCmd) runUndo(ctx context.Context, c *cli.Command) error {
	restored, ok := cmd.app.Tasks.UndoDelete(ctx)
	if !ok {
		return fmt.Errorf("nothing to undo")
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "restored %s %q\n", shortID(restored.ID), restored.Title)
	return nil
}
