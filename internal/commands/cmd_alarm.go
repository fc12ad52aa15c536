package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/styles"
	"github.com/colonyops/taskly/internal/taskly"
	"github.com/colonyops/taskly/pkg/iojson"
)

// AlarmCmd implements the taskly alarm command group.
type AlarmCmd struct {
	flags *Flags
	app   *taskly.App

	asJSON bool
}

// NewAlarmCmd creates a new alarm command.
func NewAlarmCmd(flags *Flags, app *taskly.App) *AlarmCmd {
	return &AlarmCmd{flags: flags, app: app}
}

// Register adds the alarm command to the application.
func (cmd *AlarmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "alarm",
		Usage: "Inspect and wait on task alarms",
		Description: `Alarms belong to tasks: set them with taskly add --alarm or
taskly edit --alarm. Each alarm fires once, then disables itself.

Examples:
  taskly alarm ls
  taskly alarm watch`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List alarm records",
				UsageText: "taskly alarm ls",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "print alarms as JSON lines",
						Destination: &cmd.asJSON,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "watch",
				Usage:     "Stay in the foreground and fire alarms as they come due",
				UsageText: "taskly alarm watch",
				Description: `Keeps the process alive so armed timers can fire, raising desktop
notifications and playing tones. Stop with ctrl-c.`,
				Action: cmd.runWatch,
			},
		},
	})

	return app
}

func (cmd *AlarmCmd) runList(ctx context.Context, c *cli.Command) error {
	alarms := cmd.app.Alarms.List()

	if cmd.asJSON {
		for _, a := range alarms {
			if err := iojson.WriteLine(c.Root().Writer, a); err != nil {
				return err
			}
		}
		return nil
	}

	if len(alarms) == 0 {
		_, _ = fmt.Fprintln(c.Root().Writer, styles.Muted.Render("no alarms"))
		return nil
	}

	now := time.Now()
	for _, a := range alarms {
		title, _ := cmd.app.Tasks.TaskTitle(a.TaskID)
		state := "armed"
		switch {
		case !a.Enabled:
			state = "disabled"
		case !a.Time.After(now):
			state = "past due"
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "%s  %s  %s %s\n",
			a.Time.Format("Jan 2, 3:04 PM"),
			title,
			styles.Muted.Render(a.Sound),
			styles.Muted.Render("("+state+")"),
		)
	}

	return nil
}

func (cmd *AlarmCmd) runWatch(ctx context.Context, c *cli.Command) error {
	armed := 0
	now := time.Now()
	for _, a := range cmd.app.Alarms.List() {
		if a.Enabled && a.Time.After(now) {
			armed++
		}
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "watching %d alarms (ctrl-c to stop)\n", armed)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	_, _ = fmt.Fprintln(c.Root().Writer, "stopped")
	return nil
}
