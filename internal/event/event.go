// Package event defines the envelope and the append-only log every
// slice of the application communicates through. Events are immutable
// once created; ordering is the append sequence, not the timestamp.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/evrenbey/grove/internal/domain"
)

// Kind tags an event with its payload shape.
type Kind string

const (
	TimerStarted   Kind = "timer_started"
	TimerTick      Kind = "timer_tick"
	TimerCompleted Kind = "timer_completed"
	BreakStarted   Kind = "break_started"

	AudioPlay            Kind = "audio_play"
	AudioPause           Kind = "audio_pause"
	AudioStop            Kind = "audio_stop"
	AudioTrackChanged    Kind = "audio_track_changed"
	AudioPlaylistChanged Kind = "audio_playlist_changed"

	SessionAdded   Kind = "session_added"
	SessionUpdated Kind = "session_updated"
	SessionRemoved Kind = "session_removed"
	StreakUpdated  Kind = "streak_updated"

	SettingsUpdated Kind = "settings_updated"
	ThemeChanged    Kind = "theme_changed"

	UserProfileCreated   Kind = "user_profile_created"
	UserProfileUpdated   Kind = "user_profile_updated"
	UserLoggedOut        Kind = "user_logged_out"
	UserSessionCompleted Kind = "user_session_completed"

	DataCleared  Kind = "data_cleared"
	DataImported Kind = "data_imported"

	AppInitialized Kind = "app_initialized"
)

// Payload is the closed set of event bodies. Every payload knows which
// kind it belongs to, so an Event can never carry a mismatched body.
type Payload interface {
	Kind() Kind
}

// Event is the canonical envelope. Identity is the ID; the timestamp is
// informational only.
type Event struct {
	ID      string
	Payload Payload
	At      time.Time
	Source  string
}

// Kind returns the payload's kind tag.
func (e Event) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// New wraps a payload in an envelope with a fresh ID and timestamp.
func New(p Payload) Event {
	return Event{ID: uuid.NewString(), Payload: p, At: time.Now()}
}

// NewFrom is New with an originating slice recorded for debugging.
func NewFrom(source string, p Payload) Event {
	e := New(p)
	e.Source = source
	return e
}

// --- Timer ---

// TimerStartedPayload announces a new focus session. Duration is the
// planned span in minutes, as presets are configured.
type TimerStartedPayload struct {
	SessionID string
	Mode      domain.Mode
	Duration  int
}

func (TimerStartedPayload) Kind() Kind { return TimerStarted }

// TimerTickPayload carries sampled live progress, emitted every fifth
// second of a running session. Times are in seconds.
type TimerTickPayload struct {
	SessionID       string
	CurrentTime     int
	PlannedDuration int
	Progress        float64
}

func (TimerTickPayload) Kind() Kind { return TimerTick }

// TimerCompletedPayload announces the natural completion of a focus
// session. Manual stops do not produce this event. Duration is the
// actual span in seconds.
type TimerCompletedPayload struct {
	SessionID string
	Mode      domain.Mode
	Duration  int
	Quality   domain.Quality
}

func (TimerCompletedPayload) Kind() Kind { return TimerCompleted }

// BreakStartedPayload announces an automatic break. Duration is in
// minutes.
type BreakStartedPayload struct {
	Duration    int
	IsLongBreak bool
}

func (BreakStartedPayload) Kind() Kind { return BreakStarted }

// --- Audio ---

type AudioPlayPayload struct {
	TrackID    string
	PlaylistID string
}

func (AudioPlayPayload) Kind() Kind { return AudioPlay }

type AudioPausePayload struct{}

func (AudioPausePayload) Kind() Kind { return AudioPause }

type AudioStopPayload struct{}

func (AudioStopPayload) Kind() Kind { return AudioStop }

type AudioTrackChangedPayload struct {
	TrackID   string
	Direction string // "next" or "previous"
}

func (AudioTrackChangedPayload) Kind() Kind { return AudioTrackChanged }

type AudioPlaylistChangedPayload struct {
	PlaylistID string
}

func (AudioPlaylistChangedPayload) Kind() Kind { return AudioPlaylistChanged }

// --- Session ledger ---

// SessionAddedPayload accompanies every ledger append, completed or
// aborted. Duration is the actual span in seconds.
type SessionAddedPayload struct {
	SessionID string
	Mode      domain.Mode
	Duration  int
	Completed bool
}

func (SessionAddedPayload) Kind() Kind { return SessionAdded }

type SessionUpdatedPayload struct {
	SessionID string
}

func (SessionUpdatedPayload) Kind() Kind { return SessionUpdated }

type SessionRemovedPayload struct {
	SessionID string
}

func (SessionRemovedPayload) Kind() Kind { return SessionRemoved }

type StreakUpdatedPayload struct {
	CurrentStreak int
	LongestStreak int
}

func (StreakUpdatedPayload) Kind() Kind { return StreakUpdated }

// --- Settings ---

type SettingsUpdatedPayload struct {
	Section string
	Source  string // "user" or "import"
}

func (SettingsUpdatedPayload) Kind() Kind { return SettingsUpdated }

type ThemeChangedPayload struct {
	Theme string
}

func (ThemeChangedPayload) Kind() Kind { return ThemeChanged }

// --- User ---

type UserProfileCreatedPayload struct {
	Pseudo string
}

func (UserProfileCreatedPayload) Kind() Kind { return UserProfileCreated }

type UserProfileUpdatedPayload struct {
	Pseudo string
}

func (UserProfileUpdatedPayload) Kind() Kind { return UserProfileUpdated }

type UserLoggedOutPayload struct{}

func (UserLoggedOutPayload) Kind() Kind { return UserLoggedOut }

type UserSessionCompletedPayload struct {
	Pseudo       string
	SessionCount int
}

func (UserSessionCompletedPayload) Kind() Kind { return UserSessionCompleted }

// --- Data management ---

type DataClearedPayload struct{}

func (DataClearedPayload) Kind() Kind { return DataCleared }

type DataImportedPayload struct {
	SessionCount int
}

func (DataImportedPayload) Kind() Kind { return DataImported }

type AppInitializedPayload struct{}

func (AppInitializedPayload) Kind() Kind { return AppInitialized }
