package taskly

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskly/internal/core/alarm"
	"github.com/colonyops/taskly/internal/core/config"
	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/kv"
	"github.com/colonyops/taskly/internal/core/logging"
	"github.com/colonyops/taskly/internal/core/progress"
	"github.com/colonyops/taskly/internal/core/task"
)

// Scoped storage keys for the task store's records. Tasks, projects, and the
// profile are persisted independently, matching the original storage layout.
const (
	keyTasks    = "tasks"
	keyProjects = "projects"
)

// AlarmSink is the slice of the alarm scheduler the task store drives.
// Alarm records are replaced when a task's alarm field changes and dropped
// when the owning task is deleted.
type AlarmSink interface {
	UpdateAlarmForTask(ctx context.Context, taskID string, spec *task.AlarmSpec)
	DeleteAlarmsForTask(ctx context.Context, taskID string)
}

// View is the read-only snapshot handed to the rendering layer.
type View struct {
	Tasks  []task.Task
	Counts task.Counts
}

// TaskService owns the canonical task and project collections. All mutations
// run through it: it validates, persists best-effort, feeds the gamification
// engine, keeps the alarm scheduler reconciled, and publishes domain events.
type TaskService struct {
	tasksStore    *kv.TypedKV[[]task.Task]
	projectsStore *kv.TypedKV[[]string]
	progress      *ProgressService
	alarms        AlarmSink
	bus           *eventbus.EventBus
	cfg           *config.Config
	log           zerolog.Logger
	now           func() time.Time
	newID         func() string

	mu          sync.Mutex
	tasks       []task.Task
	projects    []string
	lastDeleted *task.Task
	lastCreated time.Time
	filter      task.Filter
	sortBy      task.SortBy
	view        string
}

// NewTaskService creates a new TaskService. Call SetAlarms before use so
// task mutations keep the alarm scheduler in sync.
func NewTaskService(store kv.KV, prog *ProgressService, bus *eventbus.EventBus, cfg *config.Config, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasksStore:    kv.Scoped[[]task.Task](store, "state"),
		projectsStore: kv.Scoped[[]string](store, "state"),
		progress:      prog,
		bus:           bus,
		cfg:           cfg,
		log:           log.With().Str("component", "task-service").Logger(),
		now:           time.Now,
		newID:         uuid.NewString,
		filter:        task.FilterAll,
		sortBy:        task.SortNewest,
		view:          cfg.View.Default,
	}
}

// SetAlarms wires the alarm scheduler. The two services are constructed
// separately to keep the dependency explicit rather than ambient.
func (s *TaskService) SetAlarms(sink AlarmSink) {
	s.alarms = sink
}

// Load reads persisted tasks and projects. First run seeds the default
// project set and a welcome task; read failures degrade to the same seeds.
func (s *TaskService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.tasksStore.Get(ctx, keyTasks)
	switch {
	case err == nil:
		s.tasks = tasks
	case kv.IsNotFound(err):
		s.tasks = []task.Task{s.welcomeTask()}
	default:
		s.log.Warn().Err(err).Msg("could not load tasks, starting empty")
		s.tasks = []task.Task{s.welcomeTask()}
	}

	projects, err := s.projectsStore.Get(ctx, keyProjects)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.Warn().Err(err).Msg("could not load projects, using defaults")
		}
		projects = append([]string(nil), s.cfg.Projects.Defaults...)
	}
	s.projects = projects
}

// welcomeTask is the seed shown on a fresh store.
func (s *TaskService) welcomeTask() task.Task {
	due := s.now().Add(time.Hour)
	return task.Task{
		ID:          s.newID(),
		Title:       "Welcome to Taskly",
		Description: "This is a **safe** and optimized task manager.",
		Status:      task.StatusTodo,
		Priority:    task.PriorityHigh,
		Project:     "Personal",
		DueDate:     &due,
		Subtasks:    []task.Subtask{{Text: "Try adding a task"}},
		CreatedAt:   s.now(),
	}
}

// CreateTask validates and stores a new task, awards the creation XP bonus,
// and arms its alarm if one is set. The returned task carries the assigned
// ID and creation time.
func (s *TaskService) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return task.Task{}, task.ErrEmptyTitle
	}

	s.mu.Lock()
	t.ID = s.newID()
	t.CreatedAt = s.monotonicNowLocked()
	if t.Status == "" {
		t.Status = task.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if t.Alarm != nil {
		t.Alarm.Sound = alarm.NormalizeSound(t.Alarm.Sound)
	}
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	ctx = logging.WithTaskID(ctx, t.ID)
	s.log.Debug().Ctx(ctx).Str("title", t.Title).Msg("task created")

	s.progress.AddXP(ctx, progress.XPTaskCreated)
	s.persist(ctx)
	if s.alarms != nil {
		s.alarms.UpdateAlarmForTask(ctx, t.ID, t.Alarm)
	}
	s.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: &t})

	return t, nil
}

// monotonicNowLocked returns the current time, bumped so creation times
// strictly increase across rapid inserts even if the wall clock stalls or
// steps back. The newest ordering compares creation times directly and needs
// them distinct.
func (s *TaskService) monotonicNowLocked() time.Time {
	now := s.now()
	if !now.After(s.lastCreated) {
		now = s.lastCreated.Add(time.Nanosecond)
	}
	s.lastCreated = now
	return now
}

// UpdateTask merges a partial update into a task. Titles get the same
// validation as CreateTask; a missing ID is a silent no-op, so stale
// references from the UI never crash a session. ID and CreatedAt are
// preserved.
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch task.Patch) (task.Task, bool, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return task.Task{}, false, task.ErrEmptyTitle
		}
		patch.Title = &title
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return task.Task{}, false, nil
	}

	patch.Apply(&s.tasks[idx])
	if a := s.tasks[idx].Alarm; a != nil {
		a.Sound = alarm.NormalizeSound(a.Sound)
	}
	updated := s.tasks[idx]
	s.mu.Unlock()

	s.persist(ctx)
	if patch.Alarm != nil && s.alarms != nil {
		s.alarms.UpdateAlarmForTask(ctx, id, updated.Alarm)
	}

	return updated, true, nil
}

// SetTaskStatus moves a task between board columns. Completing a task awards
// the completion XP bonus and publishes task.completed for the celebratory
// side effects owned by the UI layer.
func (s *TaskService) SetTaskStatus(ctx context.Context, id string, status task.Status) (task.Task, bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return task.Task{}, false
	}

	prev := s.tasks[idx].Status
	s.tasks[idx].Status = status
	updated := s.tasks[idx]
	s.mu.Unlock()

	if status == task.StatusDone && prev != task.StatusDone {
		s.progress.AddXP(ctx, progress.XPTaskCompleted)
		s.bus.PublishTaskCompleted(eventbus.TaskCompletedPayload{Task: &updated})
	}
	s.persist(ctx)

	return updated, true
}

// DeleteTask removes a task, caching it in the single undo slot, and drops
// any alarms it owns. Returns false when the ID is unknown.
func (s *TaskService) DeleteTask(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	deleted := s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.lastDeleted = &deleted
	s.mu.Unlock()

	ctx = logging.WithTaskID(ctx, id)
	s.log.Debug().Ctx(ctx).Msg("task deleted")

	if s.alarms != nil {
		s.alarms.DeleteAlarmsForTask(ctx, id)
	}
	s.persist(ctx)
	s.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: deleted.ID, Title: deleted.Title})

	return true
}

// UndoDelete restores the last deleted task. The slot holds a single task
// and is cleared on restore; a second call is a no-op.
func (s *TaskService) UndoDelete(ctx context.Context) (task.Task, bool) {
	s.mu.Lock()
	if s.lastDeleted == nil {
		s.mu.Unlock()
		return task.Task{}, false
	}
	restored := *s.lastDeleted
	s.tasks = append(s.tasks, restored)
	s.lastDeleted = nil
	s.mu.Unlock()

	s.persist(ctx)
	if s.alarms != nil {
		s.alarms.UpdateAlarmForTask(ctx, restored.ID, restored.Alarm)
	}

	return restored, true
}

// AddProject adds a project name. Blank names and duplicates are no-ops.
func (s *TaskService) AddProject(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	for _, p := range s.projects {
		if p == name {
			s.mu.Unlock()
			return false
		}
	}
	s.projects = append(s.projects, name)
	s.mu.Unlock()

	s.persist(ctx)
	return true
}

// DeleteProject removes a project from the set. Tasks referencing it keep
// their dangling project name; there is deliberately no cascade. If the
// active filter pointed at the deleted project it resets to all.
func (s *TaskService) DeleteProject(ctx context.Context, name string) bool {
	s.mu.Lock()
	found := false
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	s.projects = kept

	if active, ok := s.filter.Project(); ok && active == name {
		s.filter = task.FilterAll
	}
	s.mu.Unlock()

	if !found {
		return false
	}

	s.persist(ctx)
	return true
}

// Projects returns a copy of the project names in insertion order.
func (s *TaskService) Projects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.projects...)
}

// All returns a copy of every task in insertion order.
func (s *TaskService) All() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.Task(nil), s.tasks...)
}

// Task returns a task by ID.
func (s *TaskService) Task(id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.tasks[idx], true
	}
	return task.Task{}, false
}

// TaskTitle is the read-only accessor the alarm scheduler uses to decorate
// notifications without reaching into the store's internals.
func (s *TaskService) TaskTitle(id string) (string, bool) {
	t, ok := s.Task(id)
	return t.Title, ok
}

// SetFilter sets the active view filter.
func (s *TaskService) SetFilter(f task.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Filter returns the active view filter.
func (s *TaskService) Filter() task.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetSort sets the active view ordering.
func (s *TaskService) SetSort(by task.SortBy) {
	s.mu.Lock()
	s.sortBy = by
	s.mu.Unlock()
}

// SetView sets the rendering mode (board or list).
func (s *TaskService) SetView(view string) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
}

// ViewMode returns the rendering mode.
func (s *TaskService) ViewMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// GetView derives the filtered, sorted, searched snapshot the rendering
// layer consumes. Counts are computed over the filtered set.
func (s *TaskService) GetView(searchTerm string) View {
	s.mu.Lock()
	tasks := append([]task.Task(nil), s.tasks...)
	opts := task.Options{
		Search: searchTerm,
		Filter: s.filter,
		SortBy: s.sortBy,
		Now:    s.now(),
	}
	s.mu.Unlock()

	filtered := task.Query(tasks, opts)
	return View{
		Tasks:  filtered,
		Counts: task.CountByStatus(filtered),
	}
}

// indexLocked returns the position of a task by ID, or -1.
func (s *TaskService) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist writes tasks and projects best-effort: failures are logged and
// surfaced as save.failed events, leaving in-memory state authoritative.
func (s *TaskService) persist(ctx context.Context) {
	s.mu.Lock()
	tasks := append([]task.Task(nil), s.tasks...)
	projects := append([]string(nil), s.projects...)
	s.mu.Unlock()

	if err := s.tasksStore.Set(ctx, keyTasks, tasks); err != nil {
		s.log.Warn().Err(err).Msg("could not persist tasks")
		s.bus.PublishSaveFailed(eventbus.SaveFailedPayload{Key: keyTasks, Err: err})
	}
	if err := s.projectsStore.Set(ctx, keyProjects, projects); err != nil {
		s.log.Warn().Err(err).Msg("could not persist projects")
		s.bus.PublishSaveFailed(eventbus.SaveFailedPayload{Key: keyProjects, Err: err})
	}
}
