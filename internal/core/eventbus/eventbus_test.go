package eventbus_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/eventbus/testbus"
	"github.com/colonyops/taskly/internal/core/notify"
	"github.com/colonyops/taskly/internal/core/task"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	tb := testbus.New(t)

	tb.PublishLevelUp(eventbus.LevelUpPayload{Level: 2})
	tb.AssertPublished(t, eventbus.EventLevelUp)

	events := tb.Events()
	require.NotEmpty(t, events)
	payload, ok := events[0].Payload.(eventbus.LevelUpPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.Level)
}

func TestEventBus_PanicIsolation(t *testing.T) {
	tb := testbus.New(t)

	var panicked atomic.Bool
	tb.OnPanic(func(event eventbus.Event, payload any, recovered any) {
		panicked.Store(true)
	})

	tb.SubscribeStreakChanged(func(p eventbus.StreakChangedPayload) {
		panic("bad subscriber")
	})

	tb.PublishStreakChanged(eventbus.StreakChangedPayload{Streak: 3})

	// The recording subscriber still runs and the loop survives.
	tb.AssertPublished(t, eventbus.EventStreakChanged)
	require.Eventually(t, panicked.Load, time.Second, 5*time.Millisecond)

	tb.Reset()
	tb.PublishLevelUp(eventbus.LevelUpPayload{Level: 4})
	tb.AssertPublished(t, eventbus.EventLevelUp)
}

func TestEventBus_DrainsQueueOnShutdown(t *testing.T) {
	t.Run("buffered events are delivered after cancel", func(t *testing.T) {
		bus := eventbus.New(8)
		var delivered atomic.Int32
		bus.SubscribeTaskDeleted(func(p eventbus.TaskDeletedPayload) {
			delivered.Add(1)
		})

		ctx, cancel := context.WithCancel(context.Background())
		go bus.Start(ctx)

		for i := 0; i < 5; i++ {
			bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "t", Title: "t"})
		}
		cancel()
		bus.Wait()

		assert.Equal(t, int32(5), delivered.Load())
	})

	t.Run("toasts cascaded during the drain are delivered too", func(t *testing.T) {
		bus := eventbus.New(8)
		eventbus.NewToastRouter(bus).Register()

		var toasts atomic.Int32
		bus.SubscribeToastPublished(func(p eventbus.ToastPublishedPayload) {
			toasts.Add(1)
		})

		ctx, cancel := context.WithCancel(context.Background())
		// Publish before the loop even starts, mirroring a command that
		// finishes its work and exits immediately.
		bus.PublishLevelUp(eventbus.LevelUpPayload{Level: 2})

		go bus.Start(ctx)
		cancel()
		bus.Wait()

		assert.Equal(t, int32(1), toasts.Load())
	})
}

func TestToastRouter(t *testing.T) {
	newRouterBus := func(t *testing.T) *testbus.Bus {
		t.Helper()
		tb := testbus.New(t)
		eventbus.NewToastRouter(tb.EventBus).Register()
		return tb
	}

	lastToast := func(tb *testbus.Bus) eventbus.ToastPublishedPayload {
		for _, e := range tb.Events() {
			if p, ok := e.Payload.(eventbus.ToastPublishedPayload); ok {
				return p
			}
		}
		return eventbus.ToastPublishedPayload{}
	}

	t.Run("completion toasts success with the title", func(t *testing.T) {
		tb := newRouterBus(t)
		tb.PublishTaskCompleted(eventbus.TaskCompletedPayload{Task: &task.Task{Title: "ship it"}})
		tb.AssertPublished(t, eventbus.EventToastPublished)

		toast := lastToast(tb)
		assert.Equal(t, notify.LevelSuccess, toast.Level)
		assert.Contains(t, toast.Message, `"ship it"`)
	})

	t.Run("level up names the new level", func(t *testing.T) {
		tb := newRouterBus(t)
		tb.PublishLevelUp(eventbus.LevelUpPayload{Level: 7})
		tb.AssertPublished(t, eventbus.EventToastPublished)
		assert.Equal(t, "Level Up! You are now Level 7", lastToast(tb).Message)
	})

	t.Run("save failure warns without details", func(t *testing.T) {
		tb := newRouterBus(t)
		tb.PublishSaveFailed(eventbus.SaveFailedPayload{Key: "tasks"})
		tb.AssertPublished(t, eventbus.EventToastPublished)
		assert.Equal(t, notify.LevelWarning, lastToast(tb).Level)
	})

	t.Run("nil task payload is ignored", func(t *testing.T) {
		tb := newRouterBus(t)
		tb.PublishTaskCompleted(eventbus.TaskCompletedPayload{})
		tb.AssertNotPublished(t, eventbus.EventToastPublished, 50*time.Millisecond)
	})
}
