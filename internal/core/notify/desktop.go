package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/colonyops/taskly/internal/core/alarm"
)

// note is a single step of a synthesized tone envelope.
type note struct {
	freq float64
	ms   int
}

// tones approximates the original synthesized envelopes with short beep
// sequences: a falling beep, a two-step chime, and a long decaying bell.
var tones = map[string][]note{
	alarm.SoundBeep: {
		{freq: 880, ms: 400},
		{freq: 660, ms: 300},
		{freq: 440, ms: 500},
	},
	alarm.SoundChime: {
		{freq: 880, ms: 250},
		{freq: 1320, ms: 250},
		{freq: 660, ms: 400},
	},
	alarm.SoundBell: {
		{freq: 1200, ms: 300},
		{freq: 600, ms: 400},
		{freq: 220, ms: 700},
	},
}

// Desktop raises system notifications and plays tones through the OS.
type Desktop struct {
	// AppName labels system notifications.
	AppName string
}

var _ Notifier = (*Desktop)(nil)

// NewDesktop creates a desktop notifier.
func NewDesktop(appName string) *Desktop {
	return &Desktop{AppName: appName}
}

// Notify raises a system notification.
func (d *Desktop) Notify(title, body string) error {
	if title == "" {
		title = d.AppName
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("system notification: %w", err)
	}
	return nil
}

// PlayTone plays a named tone. Unknown names fall back to the default beep.
func (d *Desktop) PlayTone(name string) error {
	for _, n := range tones[alarm.NormalizeSound(name)] {
		if err := beeep.Beep(n.freq, n.ms); err != nil {
			return fmt.Errorf("play tone %q: %w", name, err)
		}
	}
	return nil
}
