package domain

// Mode identifies a timer preset family.
type Mode string

const (
	ModeShortFocus Mode = "short-focus"
	ModeLongFocus  Mode = "long-focus"
	ModeCustom     Mode = "custom"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeShortFocus, ModeLongFocus, ModeCustom:
		return true
	}
	return false
}

// Quality is an optional self-assessment attached to a finished session.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

func (q Quality) Valid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// RepeatMode controls what happens when a track or playlist runs out.
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatOne  RepeatMode = "one"
	RepeatAll  RepeatMode = "all"
)

func (r RepeatMode) Valid() bool {
	switch r {
	case RepeatNone, RepeatOne, RepeatAll:
		return true
	}
	return false
}

// EQPreset selects the simulated equalizer curve.
type EQPreset string

const (
	EQNeutral EQPreset = "neutral"
	EQLight   EQPreset = "light"
	EQBoost   EQPreset = "boost"
)

// Gain returns the output-gain multiplier for the preset. The playback
// engine has no real equalizer, so presets are approximated by scaling
// the output gain; the combined gain is clamped to 1.0 by the caller.
func (p EQPreset) Gain() float64 {
	switch p {
	case EQLight:
		return 1.1
	case EQBoost:
		return 1.2
	default:
		return 1.0
	}
}
