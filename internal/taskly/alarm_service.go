package taskly

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskly/internal/core/alarm"
	"github.com/colonyops/taskly/internal/core/config"
	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/kv"
	"github.com/colonyops/taskly/internal/core/logging"
	"github.com/colonyops/taskly/internal/core/notify"
	"github.com/colonyops/taskly/internal/core/task"
)

// keyAlarms is the scoped storage key for the alarm records.
const keyAlarms = "alarms"

// triggerTimeFormat is how an alarm's time appears in notification bodies.
const triggerTimeFormat = "Jan 2, 3:04 PM"

// TitleSource resolves a task ID to its title. The alarm scheduler only ever
// reads titles from the task store, so the dependency is kept this narrow.
type TitleSource interface {
	TaskTitle(id string) (string, bool)
}

// AlarmService owns alarm records and their armed timers. Each task holds at
// most one alarm; setting a new one replaces any existing record. Alarms are
// one-shot: firing disables the record until the task's alarm is set again.
type AlarmService struct {
	store  *kv.TypedKV[[]alarm.Alarm]
	titles TitleSource
	bus    *eventbus.EventBus
	cfg    *config.Config
	sender notify.Notifier
	log    zerolog.Logger
	now    func() time.Time
	newID  func() string

	mu     sync.Mutex
	alarms []alarm.Alarm
	timers map[string]*time.Timer
	closed bool
}

// NewAlarmService creates a new AlarmService.
func NewAlarmService(store kv.KV, titles TitleSource, bus *eventbus.EventBus, cfg *config.Config, sender notify.Notifier, log zerolog.Logger) *AlarmService {
	return &AlarmService{
		store:  kv.Scoped[[]alarm.Alarm](store, "state"),
		titles: titles,
		bus:    bus,
		cfg:    cfg,
		sender: sender,
		log:    log.With().Str("component", "alarm-service").Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
		timers: map[string]*time.Timer{},
	}
}

// Load reads persisted alarm records. Nothing is armed here; ScheduleAll
// does that once the whole app is wired.
func (s *AlarmService) Load(ctx context.Context) {
	alarms, err := s.store.Get(ctx, keyAlarms)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.Warn().Err(err).Msg("could not load alarms, starting empty")
		}
		return
	}

	s.mu.Lock()
	s.alarms = alarms
	s.mu.Unlock()
}

// UpdateAlarmForTask replaces the task's alarm record with one derived from
// spec. A nil spec or a zero time clears it. Alarms already in the past are
// recorded disabled and never fire retroactively.
func (s *AlarmService) UpdateAlarmForTask(ctx context.Context, taskID string, spec *task.AlarmSpec) {
	s.mu.Lock()
	s.removeForTaskLocked(taskID)

	if spec == nil || spec.Time.IsZero() {
		s.mu.Unlock()
		s.persist(ctx)
		return
	}

	a := alarm.Alarm{
		ID:      s.newID(),
		Time:    spec.Time,
		Sound:   alarm.NormalizeSound(spec.Sound),
		Enabled: true,
		TaskID:  taskID,
	}
	if spec.Time.After(s.now()) {
		s.armLocked(a)
	} else {
		a.Enabled = false
		s.log.Debug().
			Str("alarm_id", a.ID).
			Time("at", a.Time).
			Msg("alarm time already passed, recording disabled")
	}
	s.alarms = append(s.alarms, a)
	s.mu.Unlock()

	s.persist(ctx)
}

// DeleteAlarmsForTask cancels and removes every alarm owned by the task.
func (s *AlarmService) DeleteAlarmsForTask(ctx context.Context, taskID string) {
	s.mu.Lock()
	removed := s.removeForTaskLocked(taskID)
	s.mu.Unlock()

	if removed {
		s.persist(ctx)
	}
}

// removeForTaskLocked drops the task's alarm records and stops their timers.
func (s *AlarmService) removeForTaskLocked(taskID string) bool {
	removed := false
	kept := s.alarms[:0]
	for _, a := range s.alarms {
		if a.TaskID == taskID {
			s.cancelLocked(a.ID)
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	s.alarms = kept
	return removed
}

// Trigger fires an alarm: plays its tone, raises a desktop notification,
// disables the record, and publishes alarm.fired. Unknown or already
// disabled alarms are silent no-ops, so a stale timer can never double-fire.
func (s *AlarmService) Trigger(ctx context.Context, alarmID string) {
	ctx = logging.WithAlarmID(ctx, alarmID)

	s.mu.Lock()
	idx := -1
	for i, a := range s.alarms {
		if a.ID == alarmID {
			idx = i
			break
		}
	}
	if idx < 0 || !s.alarms[idx].Enabled {
		s.mu.Unlock()
		return
	}

	s.alarms[idx].Enabled = false
	fired := s.alarms[idx]
	s.cancelLocked(alarmID)
	s.mu.Unlock()

	title := fired.Label
	taskTitle, hasTask := s.titles.TaskTitle(fired.TaskID)
	if title == "" {
		title = taskTitle
	}
	if title == "" {
		title = "Alarm"
	}
	body := fired.Time.Format(triggerTimeFormat)
	if hasTask && taskTitle != "" {
		body = taskTitle + " at " + body
	}

	// Sound and notification are best-effort; a missing audio device or
	// notification daemon must not break the alarm lifecycle.
	if err := s.sender.PlayTone(fired.Sound); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Str("sound", fired.Sound).Msg("could not play alarm tone")
	}
	if s.cfg.Alarms.DesktopEnabled() {
		if err := s.sender.Notify(title, body); err != nil {
			s.log.Warn().Ctx(ctx).Err(err).Msg("could not raise desktop notification")
		}
	}

	s.log.Info().Ctx(ctx).Str("task_id", fired.TaskID).Msg("alarm fired")
	s.persist(ctx)
	s.bus.PublishAlarmFired(eventbus.AlarmFiredPayload{
		AlarmID: fired.ID,
		Title:   title,
		Body:    body,
	})
}

// ScheduleAll arms a timer for every enabled future alarm, cancelling any
// timers armed earlier. Enabled alarms whose time already passed are skipped
// without firing and left untouched for the reconcile pass to sort out.
func (s *AlarmService) ScheduleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.timers {
		s.cancelLocked(id)
	}

	now := s.now()
	armed := 0
	for _, a := range s.alarms {
		if !a.Enabled {
			continue
		}
		if !a.Time.After(now) {
			s.log.Debug().Str("alarm_id", a.ID).Time("at", a.Time).Msg("skipping past-due alarm")
			continue
		}
		s.armLocked(a)
		armed++
	}

	s.log.Debug().Int("armed", armed).Int("total", len(s.alarms)).Msg("alarm timers scheduled")
}

// Reconcile repairs drift between alarm records and the task list after a
// restart: records whose task vanished are dropped, and tasks whose alarm
// field disagrees with the stored record get the record rebuilt.
func (s *AlarmService) Reconcile(ctx context.Context, tasks []task.Task) {
	byTask := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		byTask[t.ID] = t
	}

	s.mu.Lock()
	var orphans []string
	drifted := map[string]*task.AlarmSpec{}
	seen := map[string]bool{}
	for _, a := range s.alarms {
		t, ok := byTask[a.TaskID]
		if !ok {
			orphans = append(orphans, a.TaskID)
			continue
		}
		seen[a.TaskID] = true
		if t.Alarm == nil || !t.Alarm.Time.Equal(a.Time) || alarm.NormalizeSound(t.Alarm.Sound) != a.Sound {
			drifted[a.TaskID] = t.Alarm
		}
	}
	s.mu.Unlock()

	// Tasks carrying an alarm spec with no record at all are also drift.
	for _, t := range tasks {
		if t.Alarm != nil && !seen[t.ID] {
			drifted[t.ID] = t.Alarm
		}
	}

	for _, taskID := range orphans {
		s.log.Debug().Str("task_id", taskID).Msg("dropping alarm for deleted task")
		s.DeleteAlarmsForTask(ctx, taskID)
	}
	for taskID, spec := range drifted {
		s.log.Debug().Str("task_id", taskID).Msg("rebuilding drifted alarm record")
		s.UpdateAlarmForTask(ctx, taskID, spec)
	}
}

// List returns a copy of every alarm record.
func (s *AlarmService) List() []alarm.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]alarm.Alarm(nil), s.alarms...)
}

// ForTask returns the task's alarm record, if any.
func (s *AlarmService) ForTask(taskID string) (alarm.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alarms {
		if a.TaskID == taskID {
			return a, true
		}
	}
	return alarm.Alarm{}, false
}

// Close stops every armed timer. Safe to call more than once.
func (s *AlarmService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id := range s.timers {
		s.cancelLocked(id)
	}
}

// armLocked starts the one-shot timer for an alarm. Callers hold s.mu.
func (s *AlarmService) armLocked(a alarm.Alarm) {
	if s.closed {
		return
	}
	id := a.ID
	s.timers[id] = time.AfterFunc(time.Until(a.Time), func() {
		s.Trigger(context.Background(), id)
	})
}

// cancelLocked stops and forgets an alarm's timer. Callers hold s.mu.
func (s *AlarmService) cancelLocked(alarmID string) {
	if t, ok := s.timers[alarmID]; ok {
		t.Stop()
		delete(s.timers, alarmID)
	}
}

// persist writes alarm records best-effort: failures are logged and surfaced
// as save.failed events.
func (s *AlarmService) persist(ctx context.Context) {
	s.mu.Lock()
	alarms := append([]alarm.Alarm(nil), s.alarms...)
	s.mu.Unlock()

	if err := s.store.Set(ctx, keyAlarms, alarms); err != nil {
		s.log.Warn().Err(err).Msg("could not persist alarms")
		s.bus.PublishSaveFailed(eventbus.SaveFailedPayload{Key: keyAlarms, Err: err})
	}
}
