package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTask(t *testing.T, id string, mut func(*Task)) Task {
	t.Helper()

	tk := Task{
		ID:        id,
		Title:     "task " + id,
		Status:    StatusTodo,
		Priority:  PriorityMedium,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if mut != nil {
		mut(&tk)
	}
	return tk
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestQuery_Filters(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	tasks := []Task{
		mkTask(t, "a", func(tk *Task) { tk.Project = "Work"; tk.DueDate = &today }),
		mkTask(t, "b", func(tk *Task) { tk.Project = "Personal"; tk.DueDate = &tomorrow }),
		mkTask(t, "c", nil),
	}

	t.Run("all is the default", func(t *testing.T) {
		got := Query(tasks, Options{Now: now})
		assert.Equal(t, []string{"a", "b", "c"}, ids(got))

		got = Query(tasks, Options{Filter: FilterAll, Now: now})
		assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	})

	t.Run("today matches calendar day, undated excluded", func(t *testing.T) {
		got := Query(tasks, Options{Filter: FilterToday, Now: now})
		assert.Equal(t, []string{"a"}, ids(got))
	})

	t.Run("project filter matches exactly", func(t *testing.T) {
		got := Query(tasks, Options{Filter: ProjectFilter("Work"), Now: now})
		assert.Equal(t, []string{"a"}, ids(got))
	})

	t.Run("project filter for deleted project yields empty", func(t *testing.T) {
		got := Query(tasks, Options{Filter: ProjectFilter("Gone"), Now: now})
		assert.Empty(t, got)
	})

	t.Run("search is case-insensitive substring on title", func(t *testing.T) {
		got := Query(tasks, Options{Search: "TASK B", Now: now})
		assert.Equal(t, []string{"b"}, ids(got))
	})
}

func TestQuery_Sorting(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	due1 := base.AddDate(0, 0, 3)
	due2 := base.AddDate(0, 0, 9)

	tasks := []Task{
		mkTask(t, "old", func(tk *Task) { tk.CreatedAt = base; tk.Priority = PriorityLow; tk.DueDate = &due2 }),
		mkTask(t, "new", func(tk *Task) { tk.CreatedAt = base.Add(48 * time.Hour); tk.Priority = PriorityHigh }),
		mkTask(t, "mid", func(tk *Task) { tk.CreatedAt = base.Add(24 * time.Hour); tk.Priority = PriorityMedium; tk.DueDate = &due1 }),
	}

	t.Run("newest puts most recent first", func(t *testing.T) {
		got := Query(tasks, Options{SortBy: SortNewest})
		assert.Equal(t, []string{"new", "mid", "old"}, ids(got))
	})

	t.Run("newest resolves gaps below a millisecond", func(t *testing.T) {
		pair := []Task{
			mkTask(t, "earlier", func(tk *Task) { tk.CreatedAt = base }),
			mkTask(t, "later", func(tk *Task) { tk.CreatedAt = base.Add(time.Nanosecond) }),
		}
		got := Query(pair, Options{SortBy: SortNewest})
		assert.Equal(t, []string{"later", "earlier"}, ids(got))
	})

	t.Run("missing creation time sorts last under newest", func(t *testing.T) {
		withZero := append([]Task{mkTask(t, "zero", func(tk *Task) { tk.CreatedAt = time.Time{} })}, tasks...)
		got := Query(withZero, Options{SortBy: SortNewest})
		assert.Equal(t, "zero", got[len(got)-1].ID)
	})

	t.Run("priority ranks high over medium over low", func(t *testing.T) {
		got := Query(tasks, Options{SortBy: SortPriority})
		assert.Equal(t, []string{"new", "mid", "old"}, ids(got))
	})

	t.Run("unknown priority ranks below low", func(t *testing.T) {
		withOdd := append([]Task{mkTask(t, "odd", func(tk *Task) { tk.Priority = "urgent" })}, tasks...)
		got := Query(withOdd, Options{SortBy: SortPriority})
		assert.Equal(t, "odd", got[len(got)-1].ID)
	})

	t.Run("dueDate is ascending with undated last", func(t *testing.T) {
		got := Query(tasks, Options{SortBy: SortDueDate})
		assert.Equal(t, []string{"mid", "old", "new"}, ids(got))
	})

	t.Run("sorts are stable for equal keys", func(t *testing.T) {
		same := []Task{
			mkTask(t, "first", func(tk *Task) { tk.Priority = PriorityHigh }),
			mkTask(t, "second", func(tk *Task) { tk.Priority = PriorityHigh }),
			mkTask(t, "third", func(tk *Task) { tk.Priority = PriorityHigh }),
		}
		got := Query(same, Options{SortBy: SortPriority})
		assert.Equal(t, []string{"first", "second", "third"}, ids(got))
	})
}

func TestQuery_Purity(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		mkTask(t, "a", func(tk *Task) { tk.CreatedAt = early }),
		mkTask(t, "b", nil),
	}
	snapshot := append([]Task(nil), tasks...)

	got := Query(tasks, Options{SortBy: SortNewest})
	require.Equal(t, []string{"b", "a"}, ids(got))

	// Input order untouched, result independently allocated.
	assert.Equal(t, snapshot, tasks)
	got[0].Title = "mutated"
	assert.Equal(t, "task b", tasks[1].Title)
}

func TestFilter_Project(t *testing.T) {
	name, ok := ProjectFilter("Work").Project()
	require.True(t, ok)
	assert.Equal(t, "Work", name)

	_, ok = FilterAll.Project()
	assert.False(t, ok)
	_, ok = FilterToday.Project()
	assert.False(t, ok)
}
