package eventbus

import (
	"fmt"

	"github.com/colonyops/taskly/internal/core/notify"
)

// ToastRouter maps domain events to in-app toast notifications.
type ToastRouter struct {
	bus *EventBus
}

// NewToastRouter constructs a router for event-to-toast mappings.
func NewToastRouter(bus *EventBus) *ToastRouter {
	return &ToastRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *ToastRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeTaskCompleted(func(p TaskCompletedPayload) {
		if p.Task == nil {
			return
		}
		r.toastf(notify.LevelSuccess, "task %q completed", p.Task.Title)
	})

	r.bus.SubscribeTaskDeleted(func(p TaskDeletedPayload) {
		r.toastf(notify.LevelInfo, "task deleted")
	})

	r.bus.SubscribeLevelUp(func(p LevelUpPayload) {
		r.toastf(notify.LevelSuccess, "Level Up! You are now Level %d", p.Level)
	})

	r.bus.SubscribeAlarmFired(func(p AlarmFiredPayload) {
		r.toastf(notify.LevelSuccess, "%s", p.Title)
	})

	r.bus.SubscribeSaveFailed(func(p SaveFailedPayload) {
		r.toastf(notify.LevelWarning, "saving failed, changes kept in memory only")
	})
}

func (r *ToastRouter) toastf(level notify.Level, format string, args ...any) {
	r.bus.PublishToastPublished(ToastPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
