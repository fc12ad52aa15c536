// Package taskly wires the application services: the task store, the
// progress engine, and the alarm scheduler, all sharing one key-value
// backend and one event bus.
package taskly

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskly/internal/core/config"
	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/kv"
	"github.com/colonyops/taskly/internal/core/notify"
)

// App bundles the services a command needs to do its work.
type App struct {
	Config   *config.Config
	Bus      *eventbus.EventBus
	Tasks    *TaskService
	Progress *ProgressService
	Alarms   *AlarmService
}

// NewApp constructs the service graph on top of a key-value store. The task
// store and alarm scheduler reference each other narrowly: alarms read task
// titles, task mutations push alarm updates.
func NewApp(store kv.KV, bus *eventbus.EventBus, cfg *config.Config, sender notify.Notifier, log zerolog.Logger) *App {
	prog := NewProgressService(store, bus, log)
	tasks := NewTaskService(store, prog, bus, cfg, log)
	alarms := NewAlarmService(store, tasks, bus, cfg, sender, log)
	tasks.SetAlarms(alarms)

	return &App{
		Config:   cfg,
		Bus:      bus,
		Tasks:    tasks,
		Progress: prog,
		Alarms:   alarms,
	}
}

// Load restores persisted state and brings the scheduler up to date: armed
// timers for future alarms, reconciled records for anything that drifted
// while the app was not running, and the daily streak check.
func (a *App) Load(ctx context.Context) {
	a.Progress.Load(ctx)
	a.Tasks.Load(ctx)
	a.Alarms.Load(ctx)
	a.Alarms.ScheduleAll()
	a.Alarms.Reconcile(ctx, a.Tasks.All())
	a.Progress.CheckStreak(ctx)
}

// Close releases the scheduler's timers.
func (a *App) Close() {
	a.Alarms.Close()
}
