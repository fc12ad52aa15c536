// Package alarm defines the alarm domain model owned by the alarm scheduler.
package alarm

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an alarm record does not exist.
var ErrNotFound = errors.New("alarm not found")

// Named tones the notifier can synthesize.
const (
	SoundBeep  = "beep"
	SoundChime = "chime"
	SoundBell  = "bell"
)

// NormalizeSound maps unknown or empty sound names to the default beep.
func NormalizeSound(name string) string {
	switch name {
	case SoundChime, SoundBell:
		return name
	default:
		return SoundBeep
	}
}

// Alarm is a one-shot reminder tied to a task.
//
// At most one enabled, scheduled alarm exists per TaskID; replacing a task's
// alarm removes the prior record rather than appending. Enabled flips to
// false exactly once, when the alarm fires or is found already in the past
// when a new record is created.
type Alarm struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Label   string    `json:"label,omitempty"`
	Sound   string    `json:"sound"`
	Enabled bool      `json:"enabled"`
	TaskID  string    `json:"task_id"`
}
