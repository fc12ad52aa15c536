// Package notify defines the outbound notification and sound contract, plus
// the desktop implementation used by the alarm scheduler.
package notify

// Level represents the severity of a toast notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier raises system notifications and plays named tones.
// Implementations must be best-effort: failures are returned for logging but
// callers never treat them as fatal.
type Notifier interface {
	Notify(title, body string) error
	PlayTone(name string) error
}

// Noop is a Notifier that does nothing. Used in tests and headless runs.
type Noop struct{}

var _ Notifier = Noop{}

// Notify implements Notifier.
func (Noop) Notify(title, body string) error { return nil }

// PlayTone implements Notifier.
func (Noop) PlayTone(name string) error { return nil }
