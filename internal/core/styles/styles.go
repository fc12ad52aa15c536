// Package styles provides shared lipgloss styles for the CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/taskly/internal/core/task"
)

var (
	// Header renders column titles on the board.
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c0caf5"))

	// Muted renders secondary metadata (dates, counts).
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))

	// Overdue highlights past-due dates.
	Overdue = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f7768e"))

	// Done strikes through completed list entries.
	Done = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#565f89"))

	// Column frames a board column.
	Column = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3b4261")).
		Padding(0, 1)

	// Toast styles keyed by notification level name.
	ToastSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	ToastWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	ToastError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
)

// priority maps task priorities to badge styles.
var priority = map[task.Priority]lipgloss.Style{
	task.PriorityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f7768e")),
	task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
	task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
}

// Priority returns the badge style for a priority level.
func Priority(p task.Priority) lipgloss.Style {
	if s, ok := priority[p]; ok {
		return s
	}
	return Muted
}

// projectPalette holds the colors project names hash into.
var projectPalette = []lipgloss.Color{
	"#f7768e", "#ff9e64", "#e0af68", "#9ece6a", "#73daca",
	"#7dcfff", "#7aa2f7", "#bb9af7", "#c0caf5", "#2ac3de",
}

// ProjectColor deterministically maps a project name to a palette color, so a
// project keeps its color across runs without any stored assignment.
func ProjectColor(name string) lipgloss.Color {
	if name == "" {
		return "#565f89"
	}
	// Unsigned so overflow wraps instead of going negative; negating
	// math.MinInt would leave a negative index.
	var hash uint
	for _, r := range name {
		hash = uint(r) + ((hash << 5) - hash)
	}
	return projectPalette[hash%uint(len(projectPalette))]
}

// Project renders a project label in its hashed color.
func Project(name string) string {
	return lipgloss.NewStyle().Foreground(ProjectColor(name)).Render(name)
}
