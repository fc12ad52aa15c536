package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/styles"
	"github.com/colonyops/taskly/internal/taskly"
	"github.com/colonyops/taskly/pkg/iojson"
)

// StatsCmd implements the taskly stats command.
type StatsCmd struct {
	flags *Flags
	app   *taskly.App

	asJSON bool
}

// NewStatsCmd creates a new stats command.
func NewStatsCmd(flags *Flags, app *taskly.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application.
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show level, XP, and streak",
		UsageText: "taskly stats",
		Action:    cmd.run,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print stats as JSON",
				Destination: &cmd.asJSON,
			},
		},
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	p := cmd.app.Progress.Profile()
	counts := cmd.app.Tasks.GetView("").Counts
	overdue := cmd.app.Tasks.Stale(time.Now())

	if cmd.asJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, map[string]any{
			"level":      p.Level,
			"xp":         p.XP,
			"next_level": p.NextLevelXP(),
			"streak":     p.Streak,
			"tasks":      counts,
			"overdue":    overdue,
		})
	}

	w := c.Root().Writer
	_, _ = fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("Level %d", p.Level)))
	_, _ = fmt.Fprintf(w, "xp:      %d / %d\n", p.XP, p.NextLevelXP())
	_, _ = fmt.Fprintf(w, "streak:  %d days\n", p.Streak)
	_, _ = fmt.Fprintf(w, "tasks:   %d (%d todo, %d in progress, %d done)\n",
		counts.Total, counts.Todo, counts.InProgress, counts.Done)
	if overdue > 0 {
		_, _ = fmt.Fprintf(w, "overdue: %s\n", styles.Overdue.Render(fmt.Sprintf("%d", overdue)))
	}

	return nil
}
