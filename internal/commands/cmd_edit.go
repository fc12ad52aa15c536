package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/taskly"
)

// EditCmd implements the taskly edit command.
type EditCmd struct {
	flags *Flags
	app   *taskly.App

	title       string
	description string
	priority    string
	project     string
	due         string
	clearDue    bool
	alarmAt     string
	alarmSound  string
	clearAlarm  bool
	checkIdx    int
	uncheckIdx  int
	addSubtasks []string
}

// NewEditCmd creates a new edit command.
func NewEditCmd(flags *Flags, app *taskly.App) *EditCmd {
	return &EditCmd{flags: flags, app: app, checkIdx: -1, uncheckIdx: -1}
}

// Register adds the edit command to the application.
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Edit fields of a task",
		UsageText: "taskly edit <id|title> [options]",
		Description: `Edits a task in place. Only the given flags change; everything else
is left as is.

Examples:
  taskly edit 4f2c --title "Write v2 release notes"
  taskly edit 4f2c --due 2026-09-01
  taskly edit 4f2c --clear-due --clear-alarm
  taskly edit 4f2c --alarm "2026-09-01 09:00" --sound bell
  taskly edit 4f2c --check 0 --add-subtask "publish blog post"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "new title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "new description (markdown)",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (low, medium, high)",
				Destination: &cmd.priority,
			},
			&cli.StringFlag{
				Name:        "project",
				Usage:       "project name (empty string clears it)",
				Destination: &cmd.project,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (2006-01-02 or 2006-01-02 15:04)",
				Destination: &cmd.due,
			},
			&cli.BoolFlag{
				Name:        "clear-due",
				Usage:       "remove the due date",
				Destination: &cmd.clearDue,
			},
			&cli.StringFlag{
				Name:        "alarm",
				Usage:       "reminder time (2006-01-02 15:04, or 15:04 for today)",
				Destination: &cmd.alarmAt,
			},
			&cli.StringFlag{
				Name:        "sound",
				Usage:       "alarm sound (beep, chime, bell)",
				Destination: &cmd.alarmSound,
			},
			&cli.BoolFlag{
				Name:        "clear-alarm",
				Usage:       "remove the alarm",
				Destination: &cmd.clearAlarm,
			},
			&cli.IntFlag{
				Name:        "check",
				Usage:       "mark subtask at index done (zero-based)",
				Value:       -1,
				Destination: &cmd.checkIdx,
			},
			&cli.IntFlag{
				Name:        "uncheck",
				Usage:       "mark subtask at index not done (zero-based)",
				Value:       -1,
				Destination: &cmd.uncheckIdx,
			},
			&cli.StringSliceFlag{
				Name:        "add-subtask",
				Usage:       "append a checklist entry (repeatable)",
				Destination: &cmd.addSubtasks,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskly edit <id|title> [options]")
	}

	t, err := resolveTask(cmd.app, c.Args().Get(0))
	if err != nil {
		return err
	}

	patch, err := cmd.buildPatch(c, t)
	if err != nil {
		return err
	}

	updated, ok, err := cmd.app.Tasks.UpdateTask(ctx, t.ID, patch)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if !ok {
		return fmt.Errorf("task %s: %w", shortID(t.ID), task.ErrNotFound)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "updated %s %q\n", shortID(updated.ID), updated.Title)
	return nil
}

func (cmd *EditCmd) buildPatch(c *cli.Command, t task.Task) (task.Patch, error) {
	var patch task.Patch

	if c.IsSet("title") {
		title := strings.TrimSpace(cmd.title)
		if title == "" {
			return patch, fmt.Errorf("--title: %w", task.ErrEmptyTitle)
		}
		patch.Title = &title
	}
	if c.IsSet("description") {
		patch.Description = &cmd.description
	}
	if c.IsSet("priority") {
		p, err := parsePriority(cmd.priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if c.IsSet("project") {
		patch.Project = &cmd.project
	}

	switch {
	case cmd.clearDue && cmd.due != "":
		return patch, fmt.Errorf("--due and --clear-due are mutually exclusive")
	case cmd.clearDue:
		var none *time.Time
		patch.DueDate = &none
	case cmd.due != "":
		due, err := parseWhen(cmd.due)
		if err != nil {
			return patch, fmt.Errorf("--due: %w", err)
		}
		p := &due
		patch.DueDate = &p
	}

	switch {
	case cmd.clearAlarm && cmd.alarmAt != "":
		return patch, fmt.Errorf("--alarm and --clear-alarm are mutually exclusive")
	case cmd.clearAlarm:
		var none *task.AlarmSpec
		patch.Alarm = &none
	case cmd.alarmAt != "":
		at, err := parseWhen(cmd.alarmAt)
		if err != nil {
			return patch, fmt.Errorf("--alarm: %w", err)
		}
		sound := cmd.alarmSound
		if sound == "" {
			sound = cmd.flags.Config.Alarms.DefaultSound
		}
		spec := &task.AlarmSpec{Time: at, Sound: sound}
		patch.Alarm = &spec
	case cmd.alarmSound != "":
		return patch, fmt.Errorf("--sound requires --alarm")
	}

	if cmd.checkIdx >= 0 || cmd.uncheckIdx >= 0 || len(cmd.addSubtasks) > 0 {
		subtasks := append([]task.Subtask(nil), t.Subtasks...)
		if cmd.checkIdx >= 0 {
			if cmd.checkIdx >= len(subtasks) {
				return patch, fmt.Errorf("--check %d: task has %d subtasks", cmd.checkIdx, len(subtasks))
			}
			subtasks[cmd.checkIdx].Done = true
		}
		if cmd.uncheckIdx >= 0 {
			if cmd.uncheckIdx >= len(subtasks) {
				return patch, fmt.Errorf("--uncheck %d: task has %d subtasks", cmd.uncheckIdx, len(subtasks))
			}
			subtasks[cmd.uncheckIdx].Done = false
		}
		for _, text := range cmd.addSubtasks {
			subtasks = append(subtasks, task.Subtask{Text: text})
		}
		patch.Subtasks = &subtasks
	}

	return patch, nil
}
