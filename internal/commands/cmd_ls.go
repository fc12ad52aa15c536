package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/config"
	"github.com/colonyops/taskly/internal/core/styles"
	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/taskly"
	"github.com/colonyops/taskly/pkg/iojson"
)

// LsCmd implements the taskly ls command.
type LsCmd struct {
	flags *Flags
	app   *taskly.App

	filter string
	sortBy string
	search string
	view   string
	asJSON bool
}

// NewLsCmd creates a new ls command.
func NewLsCmd(flags *Flags, app *taskly.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application.
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "Show the task board",
		UsageText: "taskly ls [options]",
		Description: `Shows tasks as a three-column board or a flat list.

Examples:
  taskly ls
  taskly ls --filter today
  taskly ls --filter project:Work --sort priority
  taskly ls --search report --view list
  taskly ls --json | jq .title`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "filter",
				Aliases:     []string{"f"},
				Usage:       "filter (all, today, project:<name>)",
				Value:       string(task.FilterAll),
				Destination: &cmd.filter,
			},
			&cli.StringFlag{
				Name:        "sort",
				Aliases:     []string{"s"},
				Usage:       "sort order (newest, priority, dueDate)",
				Value:       string(task.SortNewest),
				Destination: &cmd.sortBy,
			},
			&cli.StringFlag{
				Name:        "search",
				Usage:       "match task titles, case-insensitive",
				Destination: &cmd.search,
			},
			&cli.StringFlag{
				Name:        "view",
				Usage:       "rendering mode (board, list)",
				Destination: &cmd.view,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print tasks as JSON lines",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	switch task.SortBy(cmd.sortBy) {
	case task.SortNewest, task.SortPriority, task.SortDueDate:
	default:
		return fmt.Errorf("invalid sort %q: must be one of newest, priority, dueDate", cmd.sortBy)
	}

	cmd.app.Tasks.SetFilter(task.Filter(cmd.filter))
	cmd.app.Tasks.SetSort(task.SortBy(cmd.sortBy))

	view := cmd.app.Tasks.GetView(cmd.search)

	if cmd.asJSON {
		for _, t := range view.Tasks {
			if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
				return err
			}
		}
		return nil
	}

	mode := cmd.view
	if mode == "" {
		mode = cmd.app.Tasks.ViewMode()
	}

	var out string
	switch mode {
	case config.ViewList:
		out = renderList(view)
	case config.ViewBoard:
		out = renderBoard(view)
	default:
		return fmt.Errorf("invalid view %q: must be one of board, list", mode)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, out)
	return nil
}

// renderBoard lays out todo / in-progress / done columns side by side.
func renderBoard(view taskly.View) string {
	byStatus := map[task.Status][]task.Task{}
	for _, t := range view.Tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	columns := []struct {
		title  string
		status task.Status
		count  int
	}{
		{"To Do", task.StatusTodo, view.Counts.Todo},
		{"In Progress", task.StatusInProgress, view.Counts.InProgress},
		{"Done", task.StatusDone, view.Counts.Done},
	}

	now := time.Now()
	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		var b strings.Builder
		b.WriteString(styles.Header.Render(col.title))
		b.WriteString(styles.Muted.Render(fmt.Sprintf(" (%d)", col.count)))
		for _, t := range byStatus[col.status] {
			b.WriteString("\n\n")
			b.WriteString(renderCard(t, now))
		}
		rendered = append(rendered, styles.Column.Width(30).Render(b.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderCard renders one task inside a board column.
func renderCard(t task.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString(styles.Priority(t.Priority).Render("• "))
	b.WriteString(t.Title)
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render(shortID(t.ID)))

	if t.Project != "" {
		b.WriteString(" ")
		b.WriteString(styles.Project(t.Project))
	}
	if t.DueDate != nil {
		label := t.DueDate.Format("Jan 2")
		if t.Overdue(now) {
			b.WriteString(" " + styles.Overdue.Render("due "+label))
		} else {
			b.WriteString(" " + styles.Muted.Render("due "+label))
		}
	}
	if done, total := t.SubtaskProgress(); total > 0 {
		b.WriteString(" " + styles.Muted.Render(fmt.Sprintf("[%d/%d]", done, total)))
	}
	if t.Alarm != nil {
		b.WriteString(" " + styles.Muted.Render("⏰"))
	}

	return b.String()
}

// renderList renders tasks as flat rows with a counts footer.
func renderList(view taskly.View) string {
	if len(view.Tasks) == 0 {
		return styles.Muted.Render("no tasks")
	}

	now := time.Now()
	var b strings.Builder
	for _, t := range view.Tasks {
		line := fmt.Sprintf("%s  %-11s %s", shortID(t.ID), t.Status, t.Title)
		if t.Status == task.StatusDone {
			line = styles.Done.Render(line)
		}
		b.WriteString(line)
		if t.Project != "" {
			b.WriteString("  " + styles.Project(t.Project))
		}
		if t.DueDate != nil && t.Overdue(now) {
			b.WriteString("  " + styles.Overdue.Render("overdue"))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.Muted.Render(fmt.Sprintf(
		"%d tasks · %d todo · %d in progress · %d done",
		view.Counts.Total, view.Counts.Todo, view.Counts.InProgress, view.Counts.Done,
	)))

	return b.String()
}
