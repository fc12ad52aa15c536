package task

import (
	"sort"
	"strings"
	"time"
)

// Filter selects which tasks survive the view pipeline.
// Valid values: FilterAll, FilterToday, or a project filter built with
// ProjectFilter.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterToday Filter = "today"

	projectFilterPrefix = "project:"
)

// ProjectFilter builds a filter that matches tasks of a single project.
func ProjectFilter(name string) Filter {
	return Filter(projectFilterPrefix + name)
}

// Project returns the project name a project filter refers to, or false when
// the filter is not a project filter.
func (f Filter) Project() (string, bool) {
	if !strings.HasPrefix(string(f), projectFilterPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(f), projectFilterPrefix), true
}

// SortBy selects the view ordering.
type SortBy string

const (
	SortNewest   SortBy = "newest"
	SortPriority SortBy = "priority"
	SortDueDate  SortBy = "dueDate"
)

// Options parameterizes Query. Now anchors the "today" filter to a calendar
// day; the zero value falls back to the wall clock.
type Options struct {
	Search string
	Filter Filter
	SortBy SortBy
	Now    time.Time
}

// Query derives a filtered, sorted view from a task collection. It is a pure
// function: the input slice is never mutated and the result is freshly
// allocated. Sorting is stable, so tasks with equal keys keep their original
// relative order.
func Query(tasks []Task, opts Options) []Task {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	out := make([]Task, 0, len(tasks))
	term := strings.ToLower(opts.Search)
	for _, t := range tasks {
		if term != "" && !strings.Contains(strings.ToLower(t.Title), term) {
			continue
		}
		if !matchesFilter(t, opts.Filter, now) {
			continue
		}
		out = append(out, t)
	}

	switch opts.SortBy {
	case SortNewest:
		// Full-resolution comparison: creation times can sit within the
		// same millisecond. A zero CreatedAt never wins, so it sorts last.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.rank() > out[j].Priority.rank()
		})
	case SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			return dueMillis(out[i]) < dueMillis(out[j])
		})
	}

	return out
}

func matchesFilter(t Task, f Filter, now time.Time) bool {
	switch {
	case f == "" || f == FilterAll:
		return true
	case f == FilterToday:
		if t.DueDate == nil {
			return false
		}
		y1, m1, d1 := t.DueDate.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	default:
		if name, ok := f.Project(); ok {
			return t.Project == name
		}
		return true
	}
}

// dueMillis treats a missing due date as +inf so undated tasks sort last.
func dueMillis(t Task) int64 {
	if t.DueDate == nil {
		return int64(1<<63 - 1)
	}
	return t.DueDate.UnixMilli()
}
