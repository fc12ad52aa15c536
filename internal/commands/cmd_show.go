package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/styles"
	"github.com/colonyops/taskly/internal/taskly"
	"github.com/colonyops/taskly/pkg/iojson"
)

// ShowCmd implements the taskly show command.
type ShowCmd struct {
	flags *Flags
	app   *taskly.App

	asJSON bool
}

// NewShowCmd creates a new show command.
func NewShowCmd(flags *Flags, app *taskly.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application.
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show one task in full",
		UsageText: "taskly show <id|title>",
		Description: `Shows a task's full detail, rendering the description as markdown.

Examples:
  taskly show 4f2c
  taskly show "Write release notes"`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the task as JSON",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskly show <id|title>")
	}

	t, err := resolveTask(cmd.app, c.Args().Get(0))
	if err != nil {
		return err
	}

	if cmd.asJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, t)
	}

	w := c.Root().Writer
	_, _ = fmt.Fprintln(w, styles.Header.Render(t.Title))
	_, _ = fmt.Fprintln(w, styles.Muted.Render(t.ID))
	_, _ = fmt.Fprintf(w, "status:   %s\n", t.Status)
	_, _ = fmt.Fprintf(w, "priority: %s\n", styles.Priority(t.Priority).Render(string(t.Priority)))
	if t.Project != "" {
		_, _ = fmt.Fprintf(w, "project:  %s\n", styles.Project(t.Project))
	}
	if t.DueDate != nil {
		label := t.DueDate.Format("Mon Jan 2, 2006")
		if t.Overdue(time.Now()) {
			label = styles.Overdue.Render(label + " (overdue)")
		}
		_, _ = fmt.Fprintf(w, "due:      %s\n", label)
	}
	if a, ok := cmd.app.Alarms.ForTask(t.ID); ok {
		state := "armed"
		if !a.Enabled {
			state = "disabled"
		}
		_, _ = fmt.Fprintf(w, "alarm:    %s (%s, %s)\n", a.Time.Format("Jan 2, 3:04 PM"), a.Sound, state)
	}

	if len(t.Subtasks) > 0 {
		_, _ = fmt.Fprintln(w)
		for _, st := range t.Subtasks {
			box := "[ ]"
			if st.Done {
				box = "[x]"
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", box, st.Text)
		}
	}

	if strings.TrimSpace(t.Description) != "" {
		_, _ = fmt.Fprint(w, renderMarkdown(t.Description))
	}

	return nil
}

// renderMarkdown renders a task description for the terminal, falling back to
// the raw markdown rather than failing the command.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "\n" + md + "\n"
	}

	out, err := r.Render(md)
	if err != nil {
		return "\n" + md + "\n"
	}
	return out
}
