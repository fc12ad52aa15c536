package taskly

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// exportDateFormat is how due dates appear in exported rows.
const exportDateFormat = "2006-01-02"

// ExportCSV writes the current task list as CSV. Rows follow the active
// filter and sort so the export matches what the user sees.
func (s *TaskService) ExportCSV(w io.Writer) error {
	view := s.GetView("")

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Status", "Priority", "Project", "Due Date", "Description"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, t := range view.Tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format(exportDateFormat)
		}
		row := []string{t.Title, string(t.Status), string(t.Priority), t.Project, due, t.Description}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Stale reports tasks still open past their due date as of now, for the
// stats summary.
func (s *TaskService) Stale(now time.Time) int {
	count := 0
	for _, t := range s.All() {
		if t.Overdue(now) {
			count++
		}
	}
	return count
}
