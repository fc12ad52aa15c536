package taskly

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskly/internal/core/alarm"
	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/task"
)

// recordingNotifier captures notifications and tones for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	tones  []string
}

func (n *recordingNotifier) Notify(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
	return nil
}

func (n *recordingNotifier) PlayTone(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tones = append(n.tones, name)
	return nil
}

func (n *recordingNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.titles...)
}

func (s *AlarmService) timerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func TestAlarmService_UpdateAlarmForTask(t *testing.T) {
	ctx := context.Background()

	t.Run("future alarm is recorded enabled and armed", func(t *testing.T) {
		app, _ := newTestApp(t)

		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "call mom"})
		require.NoError(t, err)

		app.Alarms.UpdateAlarmForTask(ctx, created.ID, &task.AlarmSpec{Time: time.Now().Add(time.Hour), Sound: "bell"})

		a, ok := app.Alarms.ForTask(created.ID)
		require.True(t, ok)
		assert.True(t, a.Enabled)
		assert.Equal(t, "bell", a.Sound)
		assert.Equal(t, 1, app.Alarms.timerCount())
	})

	t.Run("replaces rather than appends", func(t *testing.T) {
		app, _ := newTestApp(t)

		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "t"})
		require.NoError(t, err)

		first := time.Now().Add(time.Hour)
		second := time.Now().Add(2 * time.Hour)
		app.Alarms.UpdateAlarmForTask(ctx, created.ID, &task.AlarmSpec{Time: first})
		app.Alarms.UpdateAlarmForTask(ctx, created.ID, &task.AlarmSpec{Time: second})

		require.Len(t, app.Alarms.List(), 1)
		a, _ := app.Alarms.ForTask(created.ID)
		assert.True(t, a.Time.Equal(second))
		assert.Equal(t, 1, app.Alarms.timerCount())
	})

	t.Run("nil spec clears record and timer", func(t *testing.T) {
		app, _ := newTestApp(t)

		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "t"})
		require.NoError(t, err)

		app.Alarms.UpdateAlarmForTask(ctx, created.ID, &task.AlarmSpec{Time: time.Now().Add(time.Hour)})
		app.Alarms.UpdateAlarmForTask(ctx, created.ID, nil)

		assert.Empty(t, app.Alarms.List())
		assert.Zero(t, app.Alarms.timerCount())
	})

	t.Run("zero time is dropped", func(t *testing.T) {
		app, _ := newTestApp(t)
		app.Alarms.UpdateAlarmForTask(ctx, "task-1", &task.AlarmSpec{})
		assert.Empty(t, app.Alarms.List())
	})

	t.Run("past time is recorded disabled and never fires", func(t *testing.T) {
		app, tb := newTestApp(t)

		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "t"})
		require.NoError(t, err)

		app.Alarms.UpdateAlarmForTask(ctx, created.ID, &task.AlarmSpec{Time: time.Now().Add(-time.Minute)})

		a, ok := app.Alarms.ForTask(created.ID)
		require.True(t, ok)
		assert.False(t, a.Enabled)
		assert.Zero(t, app.Alarms.timerCount())
		tb.AssertNotPublished(t, eventbus.EventAlarmFired, 50*time.Millisecond)
	})
}

func TestAlarmService_Trigger(t *testing.T) {
	ctx := context.Background()

	t.Run("fires once, disables, and notifies", func(t *testing.T) {
		app, tb := newTestApp(t)
		sender := &recordingNotifier{}
		app.Alarms.sender = sender

		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "standup"})
		require.NoError(t, err)
		app.Alarms.UpdateAlarmForTask(ctx, created.ID, &task.AlarmSpec{Time: time.Now().Add(time.Hour), Sound: "chime"})

		a, _ := app.Alarms.ForTask(created.ID)
		app.Alarms.Trigger(ctx, a.ID)

		fired, _ := app.Alarms.ForTask(created.ID)
		assert.False(t, fired.Enabled)
		assert.Zero(t, app.Alarms.timerCount())
		assert.Equal(t, []string{"standup"}, sender.notified())
		assert.Equal(t, []string{"chime"}, sender.tones)
		tb.AssertPublished(t, eventbus.EventAlarmFired)

		// second trigger is a no-op
		app.Alarms.Trigger(ctx, a.ID)
		assert.Len(t, sender.notified(), 1)
	})

	t.Run("label outranks task title, falls back to Alarm", func(t *testing.T) {
		app, _ := newTestApp(t)
		sender := &recordingNotifier{}
		app.Alarms.sender = sender

		// no owning task, no label
		app.Alarms.mu.Lock()
		app.Alarms.alarms = append(app.Alarms.alarms, testAlarm("a1", "", "ghost-task"))
		app.Alarms.mu.Unlock()
		app.Alarms.Trigger(ctx, "a1")

		// label wins even with an owning task
		created, err := app.Tasks.CreateTask(ctx, task.Task{Title: "real task"})
		require.NoError(t, err)
		app.Alarms.mu.Lock()
		app.Alarms.alarms = append(app.Alarms.alarms, testAlarm("a2", "custom label", created.ID))
		app.Alarms.mu.Unlock()
		app.Alarms.Trigger(ctx, "a2")

		assert.Equal(t, []string{"Alarm", "custom label"}, sender.notified())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		app, tb := newTestApp(t)
		app.Alarms.Trigger(ctx, "missing")
		tb.AssertNotPublished(t, eventbus.EventAlarmFired, 50*time.Millisecond)
	})
}

func TestAlarmService_ScheduleAll(t *testing.T) {
	ctx := context.Background()
	app, tb := newTestApp(t)

	future, err := app.Tasks.CreateTask(ctx, task.Task{Title: "future", Alarm: &task.AlarmSpec{Time: time.Now().Add(time.Hour)}})
	require.NoError(t, err)

	// Simulate a record that came due while the app was not running:
	// enabled, but in the past.
	app.Alarms.mu.Lock()
	stale := testAlarm("stale", "", "some-task")
	stale.Time = time.Now().Add(-time.Hour)
	app.Alarms.alarms = append(app.Alarms.alarms, stale)
	app.Alarms.mu.Unlock()

	app.Alarms.ScheduleAll()

	t.Run("future enabled alarms are armed", func(t *testing.T) {
		assert.Equal(t, 1, app.Alarms.timerCount())
		a, _ := app.Alarms.ForTask(future.ID)
		assert.True(t, a.Enabled)
	})

	t.Run("past-due alarms are skipped without firing", func(t *testing.T) {
		tb.AssertNotPublished(t, eventbus.EventAlarmFired, 50*time.Millisecond)

		// the record itself is left untouched
		var found bool
		for _, a := range app.Alarms.List() {
			if a.ID == "stale" {
				found = true
				assert.True(t, a.Enabled)
			}
		}
		assert.True(t, found)
	})
}

func TestAlarmService_Reconcile(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)

	kept, err := app.Tasks.CreateTask(ctx, task.Task{Title: "kept", Alarm: &task.AlarmSpec{Time: time.Now().Add(time.Hour)}})
	require.NoError(t, err)

	// orphan: record for a task that no longer exists
	app.Alarms.mu.Lock()
	app.Alarms.alarms = append(app.Alarms.alarms, testAlarm("orphan", "", "vanished"))
	app.Alarms.mu.Unlock()

	// drift: task says one time, record says another
	drifted, err := app.Tasks.CreateTask(ctx, task.Task{Title: "drifted"})
	require.NoError(t, err)
	driftTime := time.Now().Add(3 * time.Hour)
	app.Tasks.mu.Lock()
	idx := app.Tasks.indexLocked(drifted.ID)
	app.Tasks.tasks[idx].Alarm = &task.AlarmSpec{Time: driftTime, Sound: "beep"}
	app.Tasks.mu.Unlock()

	app.Alarms.Reconcile(ctx, app.Tasks.All())

	t.Run("orphaned records are dropped", func(t *testing.T) {
		for _, a := range app.Alarms.List() {
			assert.NotEqual(t, "vanished", a.TaskID)
		}
	})

	t.Run("drifted records are rebuilt from the task", func(t *testing.T) {
		a, ok := app.Alarms.ForTask(drifted.ID)
		require.True(t, ok)
		assert.True(t, a.Time.Equal(driftTime))
		assert.True(t, a.Enabled)
	})

	t.Run("matching records are untouched", func(t *testing.T) {
		a, ok := app.Alarms.ForTask(kept.ID)
		require.True(t, ok)
		assert.True(t, a.Enabled)
	})
}

func TestAlarmService_Close(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)

	_, err := app.Tasks.CreateTask(ctx, task.Task{Title: "t", Alarm: &task.AlarmSpec{Time: time.Now().Add(time.Hour)}})
	require.NoError(t, err)
	require.Equal(t, 1, app.Alarms.timerCount())

	app.Alarms.Close()
	assert.Zero(t, app.Alarms.timerCount())

	// idempotent, and no re-arming after close
	app.Alarms.Close()
	app.Alarms.UpdateAlarmForTask(ctx, "late", &task.AlarmSpec{Time: time.Now().Add(time.Hour)})
	assert.Zero(t, app.Alarms.timerCount())
}

// testAlarm builds an enabled alarm record one hour out.
func testAlarm(id, label, taskID string) alarm.Alarm {
	return alarm.Alarm{
		ID:      id,
		Time:    time.Now().Add(time.Hour),
		Label:   label,
		Sound:   alarm.SoundBeep,
		Enabled: true,
		TaskID:  taskID,
	}
}
