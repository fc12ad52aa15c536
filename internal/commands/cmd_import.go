package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/taskly"
	"github.com/colonyops/taskly/pkg/iojson"
)

// ImportCmd implements the taskly import command.
type ImportCmd struct {
	flags *Flags
	app   *taskly.App

	reader iojson.FileReader[[]task.Task]
}

// NewImportCmd creates a new import command.
func NewImportCmd(flags *Flags, app *taskly.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application.
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Import tasks from JSON",
		UsageText: "taskly import [-f <file>]",
		Description: `Reads a JSON array of tasks from a file or stdin and adds each one
as a new task. IDs and creation times are reassigned; XP is earned
per imported task as if created by hand.

Examples:
  taskly ls --json | jq -s . | taskly import
  taskly import -f backup.json`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	imported, skipped := 0, 0
	for _, t := range tasks {
		t.ID = ""
		if _, err := cmd.app.Tasks.CreateTask(ctx, t); err != nil {
			if errors.Is(err, task.ErrEmptyTitle) {
				skipped++
				continue
			}
			return fmt.Errorf("import task %q: %w", t.Title, err)
		}
		imported++
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "imported %d tasks", imported)
	if skipped > 0 {
		_, _ = fmt.Fprintf(c.Root().Writer, " (%d skipped, blank title)", skipped)
	}
	_, _ = fmt.Fprintln(c.Root().Writer)
	return nil
}
