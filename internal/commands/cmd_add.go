package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/taskly"
)

// AddCmd implements the taskly add command.
type AddCmd struct {
	flags *Flags
	app   *taskly.App

	description string
	priority    string
	project     string
	due         string
	alarmAt     string
	alarmSound  string
	subtasks    []string
}

// NewAddCmd creates a new add command.
func NewAddCmd(flags *Flags, app *taskly.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application.
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a new task",
		UsageText: "taskly add <title> [options]",
		Description: `Adds a task to the board. Creating a task earns XP.

Examples:
  taskly add "Write release notes"
  taskly add "Ship v2" --project Work --priority high --due 2026-09-01
  taskly add "Standup" --alarm "09:25" --sound chime
  taskly add "Plan trip" --subtask "book hotel" --subtask "rent car"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description (markdown)",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (low, medium, high)",
				Value:       string(task.PriorityMedium),
				Destination: &cmd.priority,
			},
			&cli.StringFlag{
				Name:        "project",
				Usage:       "project name",
				Destination: &cmd.project,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (2006-01-02 or 2006-01-02 15:04)",
				Destination: &cmd.due,
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
			&cli.StringSliceFlag{
				Name:        "subtask",
				Usage:       "checklist entry (repeatable)",
				Destination: &cmd.subtasks,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	title := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if title == "" {
		return fmt.Errorf("usage: taskly add <title>")
	}

	priority, err := parsePriority(cmd.priority)
	if err != nil {
		return err
	}

	t := task.Task{
		Title:       title,
		Description: cmd.description,
		Priority:    priority,
		Project:     cmd.project,
	}

	if cmd.due != "" {
		due, err := parseWhen(cmd.due)
		if err != nil {
			return fmt.Errorf("--due: %w", err)
		}
		t.DueDate = &due
	}

	if cmd.alarmAt != "" {
		at, err := parseWhen(cmd.alarmAt)
		if err != nil {
			return fmt.Errorf("--alarm: %w", err)
		}
		sound := cmd.alarmSound
		if sound == "" {
			sound = cmd.flags.Config.Alarms.DefaultSound
		}
		t.Alarm = &task.AlarmSpec{Time: at, Sound: sound}
	} else if cmd.alarmSound != "" {
		return fmt.Errorf("--sound requires --alarm")
	}

	for _, text := range cmd.subtasks {
		t.Subtasks = append(t.Subtasks, task.Subtask{Text: text})
	}

	created, err := cmd.app.Tasks.CreateTask(ctx, t)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "created %s %q\n", shortID(created.ID), created.Title)
	return nil
}
