package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/taskly"
)

// ExportCmd implements the taskly export command.
type ExportCmd struct {
	flags *Flags
	app   *taskly.App

	output string
}

// NewExportCmd creates a new export command.
func NewExportCmd(flags *Flags, app *taskly.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application.
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export tasks as CSV",
		UsageText: "taskly export [--output <file>]",
		Description: `Writes the task list as CSV to stdout or a file. Rows follow the
active filter and sort.

Examples:
  taskly export > tasks.csv
  taskly export --output tasks.csv`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to a file instead of stdout",
				Destination: &cmd.output,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer
	if cmd.output != "" {
		f, err := os.Create(cmd.output)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := cmd.app.Tasks.ExportCSV(w); err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}

	if cmd.output != "" {
		_, _ = fmt.Fprintf(c.Root().Writer, "exported to %s\n", cmd.output)
	}
	return nil
}
