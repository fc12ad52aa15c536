package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/taskly"
)

// whenFormats are the layouts accepted by date/time flags, tried in order.
var whenFormats = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"15:04",
}

// parseWhen parses a user-supplied date or time. A bare clock time means
// today at that time.
func parseWhen(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range whenFormats {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err != nil {
			continue
		}
		if layout == "15:04" {
			now := time.Now()
			t = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or time (try 2006-01-02 or 2006-01-02 15:04)", value)
}

// resolveTask finds a task by full ID, unique ID prefix, or exact title.
// Ambiguous prefixes are an error rather than a guess.
func resolveTask(app *taskly.App, ref string) (task.Task, error) {
	if t, ok := app.Tasks.Task(ref); ok {
		return t, nil
	}

	var matches []task.Task
	for _, t := range app.Tasks.All() {
		if strings.HasPrefix(t.ID, ref) || strings.EqualFold(t.Title, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("no task matches %q: %w", ref, task.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, t := range matches {
			ids[i] = shortID(t.ID)
		}
		return task.Task{}, fmt.Errorf("%q is ambiguous, matches %s", ref, strings.Join(ids, ", "))
	}
}

// shortID truncates a task ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// parsePriority validates a priority flag value.
func parsePriority(value string) (task.Priority, error) {
	switch p := task.Priority(strings.ToLower(value)); p {
	case task.PriorityLow, task.PriorityMedium, task.PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("invalid priority %q: must be one of low, medium, high", value)
	}
}

// parseStatus validates a status flag value.
func parseStatus(value string) (task.Status, error) {
	switch s := task.Status(strings.ToLower(value)); s {
	case task.StatusTodo, task.StatusInProgress, task.StatusDone:
		return s, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be one of todo, in-progress, done", value)
	}
}
