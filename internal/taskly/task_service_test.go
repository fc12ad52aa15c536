package taskly

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskly/internal/core/config"
	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/eventbus/testbus"
	"github.com/colonyops/taskly/internal/core/kv"
	"github.com/colonyops/taskly/internal/core/notify"
	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/store/jsonfile"
)

// newTestApp builds the full service graph on a throwaway JSON store.
func newTestApp(t *testing.T) (*App, *testbus.Bus) {
	t.Helper()

	store := jsonfile.New(filepath.Join(t.TempDir(), "taskly.json"))
	return newTestAppWithStore(t, store)
}

func newTestAppWithStore(t *testing.T, store kv.KV) (*App, *testbus.Bus) {
	t.Helper()

	tb := testbus.New(t)
	cfg := config.DefaultConfig()
	app := NewApp(store, tb.EventBus, &cfg, notify.Noop{}, zerolog.Nop())
	t.Cleanup(app.Close)
	return app, tb
}

// failingKV returns errors on writes so best-effort persistence can be observed.
type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string, dest any) error {
	return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
}
func (failingKV) Set(ctx context.Context, key string, value any) error {
	return errors.New("disk full")
}
func (failingKV) Delete(ctx context.Context, key string) error { return errors.New("disk full") }

func (failingKV) Has(ctx context.Context, key string) (bool, error) { return false, nil }

func (failingKV) ListKeys(ctx context.Context) ([]string, error) { return nil, nil }

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id, defaults, and creation time", func(t *testing.T) {
		app, tb := newTestApp(t)

		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "  write docs  "})
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, task.StatusTodo, created.Status)
		assert.Equal(t, task.PriorityMedium, created.Priority)
		assert.False(t, created.CreatedAt.IsZero())

		tb.AssertPublished(t, eventbus.EventTaskCreated)
		assert.Equal(t, 5, app.Progress.Profile().XP)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		app, _ := newTestApp(t)

		_, err := app.Tasks.CreateTask(ctx, task.Task{Title: "   "})
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
		assert.Empty(t, app.Tasks.All())
	})

	t.Run("ids are unique across rapid creation", func(t *testing.T) {
		app, _ := newTestApp(t)

		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "t"})
			require.NoError(t, err)
			require.False(t, seen[created.ID], "duplicate id %s", created.ID)
			seen[created.ID] = true
		}
	})

	t.Run("creation times never decrease even if the clock does", func(t *testing.T) {
		app, _ := newTestApp(t)

		base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
		times := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
		i := 0
		app.Tasks.now = func() time.Time { t := times[i%len(times)]; i++; return t }

		var prev time.Time
		for range times {
			created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "t"})
			require.NoError(t, err)
			assert.False(t, created.CreatedAt.Before(prev))
			prev = created.CreatedAt
		}
	})
}

func TestTaskService_StatusAndXP(t *testing.T) {
	ctx := context.Background()
	app, tb := newTestApp(t)

	created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "finish report"})
	require.NoError(t, err)
	require.Equal(t, 5, app.Progress.Profile().XP)

	t.Run("completing awards xp and publishes", func(t *testing.T) {
		updated, ok := app.Tasks.SetTaskStatus(ctx, created.ID, task.StatusDone)
		require.True(t, ok)
		assert.Equal(t, task.StatusDone, updated.Status)
		assert.Equal(t, 15, app.Progress.Profile().XP)
		tb.AssertPublished(t, eventbus.EventTaskCompleted)
	})

	t.Run("re-completing a done task earns nothing", func(t *testing.T) {
		_, ok := app.Tasks.SetTaskStatus(ctx, created.ID, task.StatusDone)
		require.True(t, ok)
		assert.Equal(t, 15, app.Progress.Profile().XP)
	})

	t.Run("reopening then completing earns again", func(t *testing.T) {
		_, ok := app.Tasks.SetTaskStatus(ctx, created.ID, task.StatusTodo)
		require.True(t, ok)
		_, ok = app.Tasks.SetTaskStatus(ctx, created.ID, task.StatusDone)
		require.True(t, ok)
		assert.Equal(t, 25, app.Progress.Profile().XP)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		_, ok := app.Tasks.SetTaskStatus(ctx, "nope", task.StatusDone)
		assert.False(t, ok)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)

	created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "original"})
	require.NoError(t, err)

	t.Run("patch preserves id and creation time", func(t *testing.T) {
		title := "renamed"
		updated, ok, err := app.Tasks.UpdateTask(ctx, created.ID, task.Patch{Title: &title})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "renamed", updated.Title)
	})

	t.Run("title patches are trimmed", func(t *testing.T) {
		title := "  padded  "
		updated, ok, err := app.Tasks.UpdateTask(ctx, created.ID, task.Patch{Title: &title})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "padded", updated.Title)
	})

	t.Run("blank title is rejected and the task keeps its name", func(t *testing.T) {
		blank := "   "
		_, ok, err := app.Tasks.UpdateTask(ctx, created.ID, task.Patch{Title: &blank})
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
		assert.False(t, ok)

		stored, found := app.Tasks.Task(created.ID)
		require.True(t, found)
		assert.Equal(t, "padded", stored.Title)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		title := "ghost"
		_, ok, err := app.Tasks.UpdateTask(ctx, "missing", task.Patch{Title: &title})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("alarm patch flows into the scheduler", func(t *testing.T) {
		spec := &task.AlarmSpec{Time: time.Now().Add(time.Hour), Sound: "chime"}
		_, ok, err := app.Tasks.UpdateTask(ctx, created.ID, task.Patch{Alarm: &spec})
		require.NoError(t, err)
		require.True(t, ok)

		a, found := app.Alarms.ForTask(created.ID)
		require.True(t, found)
		assert.True(t, a.Enabled)
		assert.Equal(t, "chime", a.Sound)

		var cleared *task.AlarmSpec
		_, ok, err = app.Tasks.UpdateTask(ctx, created.ID, task.Patch{Alarm: &cleared})
		require.NoError(t, err)
		require.True(t, ok)
		_, found = app.Alarms.ForTask(created.ID)
		assert.False(t, found)
	})
}

func TestTaskService_DeleteAndUndo(t *testing.T) {
	ctx := context.Background()
	app, tb := newTestApp(t)

	created, err := app.Tasks.CreateTask(ctx, task.Task{
		Title:   "doomed",
		Alarm:   &task.AlarmSpec{Time: time.Now().Add(time.Hour)},
		Project: "Work",
	})
	require.NoError(t, err)

	t.Run("delete caches the task and drops its alarm", func(t *testing.T) {
		require.True(t, app.Tasks.DeleteTask(ctx, created.ID))
		assert.Empty(t, app.Tasks.All())

		_, found := app.Alarms.ForTask(created.ID)
		assert.False(t, found)
		tb.AssertPublished(t, eventbus.EventTaskDeleted)
	})

	t.Run("undo restores the exact task", func(t *testing.T) {
		restored, ok := app.Tasks.UndoDelete(ctx)
		require.True(t, ok)

		stored, found := app.Tasks.Task(created.ID)
		require.True(t, found)
		assert.Equal(t, created.ID, restored.ID)
		assert.Equal(t, created.Title, stored.Title)
		assert.Equal(t, created.CreatedAt, stored.CreatedAt)

		// the alarm comes back armed
		a, found := app.Alarms.ForTask(created.ID)
		require.True(t, found)
		assert.True(t, a.Enabled)
	})

	t.Run("second undo is a no-op", func(t *testing.T) {
		_, ok := app.Tasks.UndoDelete(ctx)
		assert.False(t, ok)
		assert.Len(t, app.Tasks.All(), 1)
	})

	t.Run("a new delete overwrites the slot", func(t *testing.T) {
		other, err := app.Tasks.CreateTask(ctx, task.Task{Title: "other"})
		require.NoError(t, err)

		require.True(t, app.Tasks.DeleteTask(ctx, created.ID))
		require.True(t, app.Tasks.DeleteTask(ctx, other.ID))

		restored, ok := app.Tasks.UndoDelete(ctx)
		require.True(t, ok)
		assert.Equal(t, other.ID, restored.ID)
	})
}

func TestTaskService_Projects(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)
	app.Load(ctx)

	t.Run("defaults are seeded on first run", func(t *testing.T) {
		assert.Equal(t, []string{"Work", "Personal", "Growth"}, app.Tasks.Projects())
	})

	t.Run("add trims and rejects duplicates", func(t *testing.T) {
		assert.True(t, app.Tasks.AddProject(ctx, "  Side Quests "))
		assert.False(t, app.Tasks.AddProject(ctx, "Side Quests"))
		assert.False(t, app.Tasks.AddProject(ctx, "   "))
		assert.Contains(t, app.Tasks.Projects(), "Side Quests")
	})

	t.Run("delete leaves task references dangling", func(t *testing.T) {
		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "t", Project: "Work"})
		require.NoError(t, err)

		require.True(t, app.Tasks.DeleteProject(ctx, "Work"))
		assert.NotContains(t, app.Tasks.Projects(), "Work")

		stored, _ := app.Tasks.Task(created.ID)
		assert.Equal(t, "Work", stored.Project)
	})

	t.Run("deleting the filtered project resets the filter", func(t *testing.T) {
		app.Tasks.SetFilter(task.ProjectFilter("Personal"))
		require.True(t, app.Tasks.DeleteProject(ctx, "Personal"))
		assert.Equal(t, task.FilterAll, app.Tasks.Filter())
	})

	t.Run("deleting an unrelated project keeps the filter", func(t *testing.T) {
		app.Tasks.SetFilter(task.ProjectFilter("Growth"))
		require.True(t, app.Tasks.AddProject(ctx, "Scratch"))
		require.True(t, app.Tasks.DeleteProject(ctx, "Scratch"))
		assert.Equal(t, task.ProjectFilter("Growth"), app.Tasks.Filter())
	})

	t.Run("unknown project delete returns false", func(t *testing.T) {
		assert.False(t, app.Tasks.DeleteProject(ctx, "Nope"))
	})
}

func TestTaskService_LoadSeedsWelcomeTask(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)
	app.Load(ctx)

	tasks := app.Tasks.All()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Welcome to Taskly", tasks[0].Title)
	assert.Equal(t, task.PriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
}

func TestTaskService_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := jsonfile.New(filepath.Join(t.TempDir(), "taskly.json"))

	app1, _ := newTestAppWithStore(t, store)
	app1.Load(ctx)
	created, err := app1.Tasks.CreateTask(ctx, task.Task{Title: "survives restart", Project: "Growth"})
	require.NoError(t, err)
	_, ok := app1.Tasks.SetTaskStatus(ctx, created.ID, task.StatusDone)
	require.True(t, ok)
	app1.Close()

	app2, _ := newTestAppWithStore(t, store)
	app2.Load(ctx)

	stored, found := app2.Tasks.Task(created.ID)
	require.True(t, found)
	assert.Equal(t, "survives restart", stored.Title)
	assert.Equal(t, task.StatusDone, stored.Status)
	assert.Equal(t, 15, app2.Progress.Profile().XP)
	assert.Contains(t, app2.Tasks.Projects(), "Growth")
}

func TestTaskService_SaveFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	app, tb := newTestAppWithStore(t, failingKV{})

	created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "kept in memory"})
	require.NoError(t, err)

	// in-memory state is authoritative despite the failing backend
	_, found := app.Tasks.Task(created.ID)
	assert.True(t, found)
	tb.AssertPublished(t, eventbus.EventSaveFailed)
}

func TestTaskService_GetView(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)

	_, err := app.Tasks.CreateTask(ctx, task.Task{Title: "alpha", Project: "Work"})
	require.NoError(t, err)
	beta, err := app.Tasks.CreateTask(ctx, task.Task{Title: "beta", Project: "Work"})
	require.NoError(t, err)
	_, err = app.Tasks.CreateTask(ctx, task.Task{Title: "gamma", Project: "Home"})
	require.NoError(t, err)
	_, ok := app.Tasks.SetTaskStatus(ctx, beta.ID, task.StatusDone)
	require.True(t, ok)

	t.Run("counts cover the filtered set only", func(t *testing.T) {
		app.Tasks.SetFilter(task.ProjectFilter("Work"))
		view := app.Tasks.GetView("")
		assert.Len(t, view.Tasks, 2)
		assert.Equal(t, task.Counts{Todo: 1, Done: 1, Total: 2}, view.Counts)
	})

	t.Run("search composes with the filter", func(t *testing.T) {
		app.Tasks.SetFilter(task.ProjectFilter("Work"))
		view := app.Tasks.GetView("ALPHA")
		require.Len(t, view.Tasks, 1)
		assert.Equal(t, "alpha", view.Tasks[0].Title)
	})

	t.Run("newest sort puts the latest first", func(t *testing.T) {
		app.Tasks.SetFilter(task.FilterAll)
		app.Tasks.SetSort(task.SortNewest)
		view := app.Tasks.GetView("")
		require.Len(t, view.Tasks, 3)
		assert.Equal(t, "gamma", view.Tasks[0].Title)
	})

	t.Run("newest sort holds even when the clock is frozen", func(t *testing.T) {
		frozen, _ := newTestApp(t)
		at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
		frozen.Tasks.now = func() time.Time { return at }

		for _, title := range []string{"one", "two", "three"} {
			_, err := frozen.Tasks.CreateTask(ctx, task.Task{Title: title})
			require.NoError(t, err)
		}

		frozen.Tasks.SetSort(task.SortNewest)
		view := frozen.Tasks.GetView("")
		require.Len(t, view.Tasks, 3)
		assert.Equal(t, "three", view.Tasks[0].Title)
		assert.Equal(t, "one", view.Tasks[2].Title)
	})
}
