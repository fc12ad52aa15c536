// Package task defines the task domain model and the query pipeline that
// derives board and list views from the canonical task collection.
package task

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyTitle is returned when a task is created or renamed with a blank title.
	ErrEmptyTitle = errors.New("task title must not be empty")
)

// Status represents the lifecycle column of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority represents task urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// rank maps priorities to sortable weight. Unknown values rank below low.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Subtask is a checklist entry within a task. Subtasks carry no IDs and are
// identified by position; order is insertion order.
type Subtask struct {
	Text string `json:"text"`
	Done bool   `json:"completed"`
}

// AlarmSpec is the task-side description of a reminder. A task holds at most
// one; setting a new spec always replaces the previous one.
type AlarmSpec struct {
	Time  time.Time `json:"time"`
	Sound string    `json:"sound"`
}

// Task is a single tracked item.
//
// Project is a soft reference into the project set: deleting a project leaves
// the name dangling on its tasks, which is tolerated by design.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Project     string     `json:"project,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Alarm       *AlarmSpec `json:"alarm,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Patch describes a partial update. Nil fields are left unchanged.
// ID and CreatedAt are not patchable.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Project     *string
	DueDate     **time.Time
	Subtasks    *[]Subtask
	Alarm       **AlarmSpec
}

// Apply merges the patch into the task.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Project != nil {
		t.Project = *p.Project
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Subtasks != nil {
		t.Subtasks = *p.Subtasks
	}
	if p.Alarm != nil {
		t.Alarm = *p.Alarm
	}
}

// Overdue reports whether the task has a due date in the past and is not done.
func (t Task) Overdue(now time.Time) bool {
	return t.Status != StatusDone && t.DueDate != nil && t.DueDate.Before(now)
}

// SubtaskProgress returns completed and total subtask counts.
func (t Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Done {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// Counts summarizes a task collection per status column.
type Counts struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}

// CountByStatus tallies tasks into status columns.
func CountByStatus(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusTodo:
			c.Todo++
		case StatusInProgress:
			c.InProgress++
		case StatusDone:
			c.Done++
		}
	}
	return c
}
