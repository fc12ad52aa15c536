// Package progress implements the gamification rules: XP accrual with
// linear level thresholds, and a daily login streak.
package progress

import "time"

// XP bonuses granted by the task store.
const (
	XPTaskCreated   = 5
	XPTaskCompleted = 10
)

// dayFormat is the canonical day-granularity format for LastLogin.
const dayFormat = "2006-01-02"

// Profile is the singleton user-progress record.
type Profile struct {
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	Streak    int    `json:"streak"`
	LastLogin string `json:"last_login,omitempty"`
}

// NewProfile returns a fresh profile at level 1.
func NewProfile() Profile {
	return Profile{Level: 1}
}

// NextLevelXP returns the XP required to reach the next level.
// The threshold grows linearly with level.
func (p Profile) NextLevelXP() int {
	return p.Level * 100
}

// ApplyXP adds XP to the profile and consumes level thresholds while the
// balance allows, so a single large grant can produce several level-ups.
// It returns the updated profile and the number of levels gained.
func ApplyXP(p Profile, amount int) (Profile, int) {
	if p.Level < 1 {
		p.Level = 1
	}
	p.XP += amount

	levels := 0
	for p.XP >= p.NextLevelXP() {
		p.XP -= p.NextLevelXP()
		p.Level++
		levels++
	}

	return p, levels
}

// CheckStreak applies the once-per-session streak rule for the calendar day
// of now. Same-day repeat calls are a no-op. A login the day after the last
// one extends the streak; any longer gap, or a first run, resets it to 1.
// Returns the updated profile and whether anything changed.
func CheckStreak(p Profile, now time.Time) (Profile, bool) {
	today := now.Format(dayFormat)
	if p.LastLogin == today {
		return p, false
	}

	yesterday := now.AddDate(0, 0, -1).Format(dayFormat)
	if p.LastLogin == yesterday {
		p.Streak++
	} else {
		p.Streak = 1
	}

	p.LastLogin = today
	return p, true
}
