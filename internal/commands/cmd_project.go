package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/styles"
	"github.com/colonyops/taskly/internal/taskly"
)

// ProjectCmd implements the taskly project command group.
type ProjectCmd struct {
	flags *Flags
	app   *taskly.App
}

// NewProjectCmd creates a new project command.
func NewProjectCmd(flags *Flags, app *taskly.App) *ProjectCmd {
	return &ProjectCmd{flags: flags, app: app}
}

// Register adds the project command to the application.
func (cmd *ProjectCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "project",
		Usage: "Manage the project set",
		Description: `Projects are labels tasks can belong to. Deleting a project does not
touch its tasks; they keep the name until edited.

Examples:
  taskly project ls
  taskly project add "Side Quests"
  taskly project rm Work`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List projects with task counts",
				UsageText: "taskly project ls",
				Action:    cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Add a project",
				UsageText: "taskly project add <name>",
				Action:    cmd.runAdd,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a project",
				UsageText: "taskly project rm <name>",
				Action:    cmd.runDelete,
			},
		},
	})

	return app
}

func (cmd *ProjectCmd) runList(ctx context.Context, c *cli.Command) error {
	counts := map[string]int{}
	for _, t := range cmd.app.Tasks.All() {
		if t.Project != "" {
			counts[t.Project]++
		}
	}

	known := map[string]bool{}
	for _, name := range cmd.app.Tasks.Projects() {
		known[name] = true
		_, _ = fmt.Fprintf(c.Root().Writer, "%s %s\n",
			styles.Project(name),
			styles.Muted.Render(fmt.Sprintf("(%d tasks)", counts[name])),
		)
	}

	// Dangling names: tasks referencing projects that were deleted.
	for _, t := range cmd.app.Tasks.All() {
		if t.Project != "" && !known[t.Project] {
			known[t.Project] = true
			_, _ = fmt.Fprintf(c.Root().Writer, "%s %s\n",
				styles.Project(t.Project),
				styles.Muted.Render(fmt.Sprintf("(%d tasks, not in project set)", counts[t.Project])),
			)
		}
	}

	return nil
}

func (cmd *ProjectCmd) runAdd(ctx context.Context, c *cli.Command) error {
	name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if name == "" {
		return fmt.Errorf("usage: taskly project add <name>")
	}

	if !cmd.app.Tasks.AddProject(ctx, name) {
		return fmt.Errorf("project %q already exists", name)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "added project %s\n", styles.Project(name))
	return nil
}

func (cmd *ProjectCmd) runDelete(ctx context.Context, c *cli.Command) error {
	name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if name == "" {
		return fmt.Errorf("usage: taskly project rm <name>")
	}

	if !cmd.app.Tasks.DeleteProject(ctx, name) {
		return fmt.Errorf("no project named %q", name)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "deleted project %q (tasks keep the label)\n", name)
	return nil
}
