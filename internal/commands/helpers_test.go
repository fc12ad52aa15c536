package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskly/internal/core/config"
	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/notify"
	"github.com/colonyops/taskly/internal/core/task"
	"github.com/colonyops/taskly/internal/store/jsonfile"
	"github.com/colonyops/taskly/internal/taskly"
)

func newTestApp(t *testing.T) *taskly.App {
	t.Helper()

	store := jsonfile.New(filepath.Join(t.TempDir(), "taskly.json"))
	bus := eventbus.New(64)
	ctx, cancel := context.WithCancel(context.Background())
	go bus.Start(ctx)
	t.Cleanup(cancel)

	cfg := config.DefaultConfig()
	app := taskly.NewApp(store, bus, &cfg, notify.Noop{}, zerolog.Nop())
	t.Cleanup(app.Close)
	return app
}

func TestParseWhen(t *testing.T) {
	t.Run("full date", func(t *testing.T) {
		got, err := parseWhen("2026-09-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local), got)
	})

	t.Run("date with time", func(t *testing.T) {
		got, err := parseWhen("2026-09-01 14:30")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 1, 14, 30, 0, 0, time.Local), got)
	})

	t.Run("bare clock time means today", func(t *testing.T) {
		got, err := parseWhen("23:59")
		require.NoError(t, err)

		now := time.Now()
		assert.Equal(t, now.Year(), got.Year())
		assert.Equal(t, now.YearDay(), got.YearDay())
		assert.Equal(t, 23, got.Hour())
		assert.Equal(t, 59, got.Minute())
	})

	t.Run("garbage is an error", func(t *testing.T) {
		_, err := parseWhen("next tuesday-ish")
		assert.Error(t, err)
	})
}

func TestParsePriorityAndStatus(t *testing.T) {
	p, err := parsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityHigh, p)

	_, err = parsePriority("urgent")
	assert.Error(t, err)

	s, err := parseStatus("In-Progress")
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, s)

	_, err = parseStatus("paused")
	assert.Error(t, err)
}

func TestResolveTask(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	a, err := app.Tasks.CreateTask(ctx, task.Task{Title: "alpha"})
	require.NoError(t, err)
	b, err := app.Tasks.CreateTask(ctx, task.Task{Title: "beta"})
	require.NoError(t, err)

	t.Run("full id", func(t *testing.T) {
		got, err := resolveTask(app, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("unique prefix", func(t *testing.T) {
		got, err := resolveTask(app, b.ID[:8])
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	})

	t.Run("exact title, case-insensitive", func(t *testing.T) {
		got, err := resolveTask(app, "ALPHA")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("no match wraps ErrNotFound", func(t *testing.T) {
		_, err := resolveTask(app, "zzzz")
		assert.ErrorIs(t, err, task.ErrNotFound)
	})
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abcd1234", shortID("abcd1234-ffff"))
	assert.Equal(t, "ab", shortID("ab"))
}
