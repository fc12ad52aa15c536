package eventbus

import (
	"github.com/colonyops/taskly/internal/core/notify"
	"github.com/colonyops/taskly/internal/core/task"
)

// TaskCreatedPayload is emitted when a new task is created.
type TaskCreatedPayload struct {
	Task *task.Task
}

// TaskCompletedPayload is emitted when a task transitions to done.
type TaskCompletedPayload struct {
	Task *task.Task
}

// TaskDeletedPayload is emitted when a task is deleted. Title is carried
// denormalized so subscribers never reach back into the store.
type TaskDeletedPayload struct {
	TaskID string
	Title  string
}

// LevelUpPayload is emitted once per level gained from an XP grant.
type LevelUpPayload struct {
	Level int
}

// StreakChangedPayload is emitted when the daily streak changes.
type StreakChangedPayload struct {
	Streak int
}

// AlarmFiredPayload is emitted when a scheduled alarm triggers.
type AlarmFiredPayload struct {
	AlarmID string
	Title   string
	Body    string
}

// SaveFailedPayload is emitted when a best-effort persistence write fails.
type SaveFailedPayload struct {
	Key string
	Err error
}

// ToastPublishedPayload is emitted for in-app toast notifications consumed
// by the CLI layer.
type ToastPublishedPayload struct {
	Level   notify.Level
	Message string
}

// PublishTaskCreated publishes a task.created event.
func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) { bus.send(EventTaskCreated, p) }

// SubscribeTaskCreated registers a subscriber for task.created events.
func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	bus.addSub(EventTaskCreated, func(v any) {
		if p, ok := v.(TaskCreatedPayload); ok {
			fn(p)
		}
	})
}

// PublishTaskCompleted publishes a task.completed event.
func (bus *EventBus) PublishTaskCompleted(p TaskCompletedPayload) { bus.send(EventTaskCompleted, p) }

// SubscribeTaskCompleted registers a subscriber for task.completed events.
func (bus *EventBus) SubscribeTaskCompleted(fn func(TaskCompletedPayload)) {
	bus.addSub(EventTaskCompleted, func(v any) {
		if p, ok := v.(TaskCompletedPayload); ok {
			fn(p)
		}
	})
}

// PublishTaskDeleted publishes a task.deleted event.
func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) { bus.send(EventTaskDeleted, p) }

// SubscribeTaskDeleted registers a subscriber for task.deleted events.
func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) {
	bus.addSub(EventTaskDeleted, func(v any) {
		if p, ok := v.(TaskDeletedPayload); ok {
			fn(p)
		}
	})
}

// PublishLevelUp publishes a level.up event.
func (bus *EventBus) PublishLevelUp(p LevelUpPayload) { bus.send(EventLevelUp, p) }

// SubscribeLevelUp registers a subscriber for level.up events.
func (bus *EventBus) SubscribeLevelUp(fn func(LevelUpPayload)) {
	bus.addSub(EventLevelUp, func(v any) {
		if p, ok := v.(LevelUpPayload); ok {
			fn(p)
		}
	})
}

// PublishStreakChanged publishes a streak.changed event.
func (bus *EventBus) PublishStreakChanged(p StreakChangedPayload) { bus.send(EventStreakChanged, p) }

// SubscribeStreakChanged registers a subscriber for streak.changed events.
func (bus *EventBus) SubscribeStreakChanged(fn func(StreakChangedPayload)) {
	bus.addSub(EventStreakChanged, func(v any) {
		if p, ok := v.(StreakChangedPayload); ok {
			fn(p)
		}
	})
}

// PublishAlarmFired publishes an alarm.fired event.
func (bus *EventBus) PublishAlarmFired(p AlarmFiredPayload) { bus.send(EventAlarmFired, p) }

// SubscribeAlarmFired registers a subscriber for alarm.fired events.
func (bus *EventBus) SubscribeAlarmFired(fn func(AlarmFiredPayload)) {
	bus.addSub(EventAlarmFired, func(v any) {
		if p, ok := v.(AlarmFiredPayload); ok {
			fn(p)
		}
	})
}

// PublishSaveFailed publishes a save.failed event.
func (bus *EventBus) PublishSaveFailed(p SaveFailedPayload) { bus.send(EventSaveFailed, p) }

// SubscribeSaveFailed registers a subscriber for save.failed events.
func (bus *EventBus) SubscribeSaveFailed(fn func(SaveFailedPayload)) {
	bus.addSub(EventSaveFailed, func(v any) {
		if p, ok := v.(SaveFailedPayload); ok {
			fn(p)
		}
	})
}

// PublishToastPublished publishes a toast.published event.
func (bus *EventBus) PublishToastPublished(p ToastPublishedPayload) { bus.send(EventToastPublished, p) }

// SubscribeToastPublished registers a subscriber for toast.published events.
func (bus *EventBus) SubscribeToastPublished(fn func(ToastPublishedPayload)) {
	bus.addSub(EventToastPublished, func(v any) {
		if p, ok := v.(ToastPublishedPayload); ok {
			fn(p)
		}
	})
}
