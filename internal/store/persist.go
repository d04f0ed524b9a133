package store

import (
	"fmt"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
	"github.com/evrenbey/grove/internal/user"
)

// Storage keys, one per persisted partition. The event log and live
// playback state are deliberately absent: they are runtime-only.
const (
	keySessions = "sessions"
	keySettings = "settings"
	keyAudio    = "audio"
	keyUser     = "user"
)

// audioState is the persisted subset of the audio slice. Playback
// position and transport state never persist.
type audioState struct {
	Volume    int               `json:"volume"`
	EQPreset  domain.EQPreset   `json:"eqPreset"`
	Playlists []domain.Playlist `json:"playlists,omitempty"`
}

// persist writes the partitions touched by the event. Failures are
// swallowed; persistence is best-effort and never disturbs live state.
func (a *App) persist(ev event.Event) {
	if a.db == nil {
		return
	}
	switch ev.Payload.(type) {
	case event.SessionAddedPayload, event.SessionUpdatedPayload, event.SessionRemovedPayload,
		event.TimerCompletedPayload, event.StreakUpdatedPayload,
		event.DataClearedPayload, event.DataImportedPayload:
		a.saveSessions()
	case event.SettingsUpdatedPayload, event.ThemeChangedPayload:
		a.saveSettings()
	case event.AudioPlaylistChangedPayload, event.AudioTrackChangedPayload:
		a.saveAudio()
	case event.UserProfileCreatedPayload, event.UserProfileUpdatedPayload,
		event.UserSessionCompletedPayload, event.UserLoggedOutPayload:
		a.saveUser()
	}
}

func (a *App) saveSessions() {
	data, err := a.Ledger.Export()
	if err != nil {
		return
	}
	_ = a.db.Save(keySessions, string(data))
}

func (a *App) saveSettings() {
	data, err := a.Settings.Export()
	if err != nil {
		return
	}
	if a.db.Save(keySettings, string(data)) == nil {
		a.Settings.MarkSaved()
	}
}

func (a *App) saveAudio() {
	_ = a.db.SaveJSON(keyAudio, audioState{
		Volume:    a.Audio.Volume(),
		EQPreset:  a.Audio.EQPreset(),
		Playlists: a.Audio.Playlists(),
	})
}

func (a *App) saveUser() {
	profile, ok := a.User.Profile()
	if !ok {
		_ = a.db.Delete(keyUser)
		return
	}
	_ = a.db.SaveJSON(keyUser, profile)
}

// SaveAll flushes every partition, typically on shutdown so setter-only
// changes such as volume survive.
func (a *App) SaveAll() {
	if a.db == nil {
		return
	}
	a.saveSessions()
	a.saveSettings()
	a.saveAudio()
	a.saveUser()
}

// LoadState restores each persisted partition over its defaults. A
// missing partition keeps defaults; a corrupt one is skipped, never
// fatal.
func (a *App) LoadState() error {
	if a.db == nil {
		return nil
	}

	if raw, ok, err := a.db.Load(keySessions); err != nil {
		return fmt.Errorf("load sessions: %w", err)
	} else if ok {
		_ = a.Ledger.Import([]byte(raw))
	}

	if raw, ok, err := a.db.Load(keySettings); err != nil {
		return fmt.Errorf("load settings: %w", err)
	} else if ok {
		_ = a.Settings.Import([]byte(raw))
		a.Settings.MarkSaved()
	}

	var audioSaved audioState
	if ok, err := a.db.LoadJSON(keyAudio, &audioSaved); err != nil {
		return fmt.Errorf("load audio state: %w", err)
	} else if ok {
		a.Audio.SetVolume(audioSaved.Volume)
		a.Audio.SetEQPreset(audioSaved.EQPreset)
		if len(audioSaved.Playlists) > 0 {
			a.Audio.SetPlaylists(audioSaved.Playlists)
		}
	}

	var profile user.Profile
	if ok, err := a.db.LoadJSON(keyUser, &profile); err != nil {
		return fmt.Errorf("load user profile: %w", err)
	} else if ok {
		a.User.Restore(profile)
	}

	a.Forest.SyncWithSessions()
	a.Dispatch(event.AppInitializedPayload{})
	return nil
}
