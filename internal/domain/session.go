package domain

import "time"

// Preset is a named timer configuration. Durations are in minutes, the
// unit users configure them in; callers convert to seconds when arming
// the countdown.
type Preset struct {
	Mode              Mode   `yaml:"mode" json:"mode"`
	Name              string `yaml:"name" json:"name"`
	WorkMinutes       int    `yaml:"work_minutes" json:"workMinutes"`
	BreakMinutes      int    `yaml:"break_minutes" json:"breakMinutes"`
	LongBreakMinutes  int    `yaml:"long_break_minutes,omitempty" json:"longBreakMinutes,omitempty"`
}

// WorkDuration returns the focus span as a duration.
func (p Preset) WorkDuration() time.Duration {
	return time.Duration(p.WorkMinutes) * time.Minute
}

// BreakDuration returns the break span as a duration.
func (p Preset) BreakDuration() time.Duration {
	return time.Duration(p.BreakMinutes) * time.Minute
}

// DefaultPresets mirrors the shipped preset table: a classic 25/5 short
// focus block, a 50/10 long focus block, and a tweakable custom slot.
func DefaultPresets() []Preset {
	return []Preset{
		{Mode: ModeShortFocus, Name: "Short Focus", WorkMinutes: 25, BreakMinutes: 5, LongBreakMinutes: 15},
		{Mode: ModeLongFocus, Name: "Long Focus", WorkMinutes: 50, BreakMinutes: 10},
		{Mode: ModeCustom, Name: "Custom", WorkMinutes: 30, BreakMinutes: 5},
	}
}

// Session is a focus session in flight. It exists only between start
// and finalization; once finished it is converted to an Entry and the
// Session is discarded from live state.
type Session struct {
	ID              string
	Mode            Mode
	StartTime       time.Time
	PlannedDuration time.Duration
	ActualDuration  time.Duration
	Completed       bool
	Paused          bool
	PausedAt        time.Time // zero unless paused
}

// Entry is a finalized session in the ledger. Immutable apart from
// explicit updates through the ledger's own operations.
type Entry struct {
	ID              string        `json:"id"`
	Date            string        `json:"date"` // YYYY-MM-DD, local calendar day
	StartTime       time.Time     `json:"startTime"`
	EndTime         time.Time     `json:"endTime"`
	Duration        time.Duration `json:"duration"`        // actual
	PlannedDuration time.Duration `json:"plannedDuration"` // from the preset
	Mode            Mode          `json:"mode"`
	Completed       bool          `json:"completed"`
	Quality         Quality       `json:"quality,omitempty"`
}

// DateOf formats t as the ledger's calendar-day key.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
