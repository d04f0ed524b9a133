// Package settings holds the four independently resettable
// configuration sections: background, ui, general and shortcuts. Each
// section is a flat record of primitive options; numeric options are
// clamped at the setter, never at read time.
package settings

import (
	"net/url"
	"regexp"
	"sync"

	"github.com/evrenbey/grove/internal/event"
)

// Background controls the visual backdrop and its image rotation.
type Background struct {
	CurrentBackground  string `json:"currentBackground"`
	BackgroundType     string `json:"backgroundType"` // solid, gradient, image, video
	BackgroundOpacity  int    `json:"backgroundOpacity"`
	BlurAmount         int    `json:"blurAmount"`
	CustomURL          string `json:"customBackgroundUrl"`
	PhotoFeedEnabled   bool   `json:"photoFeedEnabled"`
	PhotoCategory      string `json:"photoCategory"`
	AutoRefresh        bool   `json:"autoRefresh"`
	RefreshIntervalMin int    `json:"refreshIntervalMinutes"`
	EnableAnimations   bool   `json:"enableAnimations"`
	ReduceMotion       bool   `json:"reduceMotion"`
	LowPowerMode       bool   `json:"lowPowerMode"`
}

// UI controls theme, layout and notifications.
type UI struct {
	Theme               string `json:"theme"` // light, dark, system
	AccentColor         string `json:"accentColor"`
	FontSize            string `json:"fontSize"` // small, medium, large
	CompactMode         bool   `json:"compactMode"`
	ShowSeconds         bool   `json:"showSeconds"`
	HideControls        bool   `json:"hideControls"`
	ViewMode            string `json:"viewMode"` // timer, forest
	EnableNotifications bool   `json:"enableNotifications"`
	SoundEnabled        bool   `json:"soundEnabled"`
	NotificationVolume  int    `json:"notificationVolume"`
}

// General holds application-wide toggles.
type General struct {
	Language             string `json:"language"`
	StartWithSystem      bool   `json:"startWithSystem"`
	CheckUpdates         bool   `json:"checkUpdates"`
	AnalyticsEnabled     bool   `json:"analyticsEnabled"`
	CrashReports         bool   `json:"crashReports"`
	LocalStorageOnly     bool   `json:"localStorageOnly"`
	DeveloperMode        bool   `json:"developerMode"`
	ExperimentalFeatures bool   `json:"experimentalFeatures"`
}

// Shortcuts maps actions to key chords.
type Shortcuts struct {
	ToggleTimer      string `json:"toggleTimer"`
	PauseResume      string `json:"pauseResume"`
	ResetTimer       string `json:"resetTimer"`
	SkipSession      string `json:"skipSession"`
	OpenSettings     string `json:"openSettings"`
	ToggleFullscreen string `json:"toggleFullscreen"`
	VolumeUp         string `json:"volumeUp"`
	VolumeDown       string `json:"volumeDown"`
	NextTrack        string `json:"nextTrack"`
	PreviousTrack    string `json:"previousTrack"`
}

func DefaultBackground() Background {
	return Background{
		CurrentBackground:  "nature",
		BackgroundType:     "image",
		BackgroundOpacity:  70,
		BlurAmount:         0,
		PhotoFeedEnabled:   true,
		PhotoCategory:      "nature",
		AutoRefresh:        false,
		RefreshIntervalMin: 30,
		EnableAnimations:   true,
	}
}

func DefaultUI() UI {
	return UI{
		Theme:               "system",
		AccentColor:         "#3b82f6",
		FontSize:            "medium",
		ShowSeconds:         true,
		ViewMode:            "timer",
		EnableNotifications: true,
		SoundEnabled:        true,
		NotificationVolume:  70,
	}
}

func DefaultGeneral() General {
	return General{
		Language:         "en",
		CheckUpdates:     true,
		CrashReports:     true,
		LocalStorageOnly: true,
	}
}

func DefaultShortcuts() Shortcuts {
	return Shortcuts{
		ToggleTimer:      "Space",
		PauseResume:      "Space",
		ResetTimer:       "Escape",
		SkipSession:      "Tab",
		OpenSettings:     "Ctrl+,",
		ToggleFullscreen: "F11",
		VolumeUp:         "ArrowUp",
		VolumeDown:       "ArrowDown",
		NextTrack:        "ArrowRight",
		PreviousTrack:    "ArrowLeft",
	}
}

// Clamp bounds for the numeric setters.
const (
	minOpacity      = 0
	maxOpacity      = 100
	minBlur         = 0
	maxBlur         = 20
	minRefreshMin   = 5
	maxRefreshMin   = 180
	minVolume       = 0
	maxVolume       = 100
)

// Emitter is the outbound announcement path for settings changes.
type Emitter func(p event.Payload)

// Store is the settings aggregate. Reads return copies; all mutation
// goes through the setters so clamping and change tracking hold. Safe
// for concurrent use; announcements fire with the lock released so an
// emitter may read back through the getters.
type Store struct {
	mu         sync.Mutex
	background Background
	ui         UI
	general    General
	shortcuts  Shortcuts
	unsaved    bool
	emit       Emitter
}

func NewStore(emit Emitter) *Store {
	return &Store{
		background: DefaultBackground(),
		ui:         DefaultUI(),
		general:    DefaultGeneral(),
		shortcuts:  DefaultShortcuts(),
		emit:       emit,
	}
}

func (s *Store) Background() Background {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

func (s *Store) UI() UI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

func (s *Store) General() General {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.general
}

func (s *Store) Shortcuts() Shortcuts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shortcuts
}

// HandleEvents holds the settings slot in the dispatch order. Settings
// change only through their setters, never in reaction to the bus.
func (s *Store) HandleEvents([]event.Event) {}

// HasUnsavedChanges reports whether a mutation happened since the last
// MarkSaved.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsaved
}

// MarkSaved clears the dirty flag, typically after persistence.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsaved = false
}

// changed marks the store dirty and announces the section. Called after
// the mutation's lock is released.
func (s *Store) changed(section string) {
	s.mu.Lock()
	s.unsaved = true
	s.mu.Unlock()
	if s.emit != nil {
		s.emit(event.SettingsUpdatedPayload{Section: section, Source: "user"})
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- Background setters ---

func (s *Store) SetCurrentBackground(name string) {
	s.mu.Lock()
	s.background.CurrentBackground = name
	s.mu.Unlock()
	s.changed("background")
}

func (s *Store) SetBackgroundOpacity(opacity int) {
	s.mu.Lock()
	s.background.BackgroundOpacity = clampInt(opacity, minOpacity, maxOpacity)
	s.mu.Unlock()
	s.changed("background")
}

func (s *Store) SetBlurAmount(blur int) {
	s.mu.Lock()
	s.background.BlurAmount = clampInt(blur, minBlur, maxBlur)
	s.mu.Unlock()
	s.changed("background")
}

// SetCustomBackgroundURL rejects URLs outside the allowed schemes by
// storing the empty string.
func (s *Store) SetCustomBackgroundURL(raw string) {
	s.mu.Lock()
	s.background.CustomURL = SanitizeBackgroundURL(raw)
	s.mu.Unlock()
	s.changed("background")
}

func (s *Store) SetPhotoFeedEnabled(enabled bool) {
	s.mu.Lock()
	s.background.PhotoFeedEnabled = enabled
	s.mu.Unlock()
	s.changed("background")
}

func (s *Store) SetPhotoCategory(category string) {
	s.mu.Lock()
	s.background.PhotoCategory = category
	s.mu.Unlock()
	s.changed("background")
}

func (s *Store) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	s.background.AutoRefresh = enabled
	s.mu.Unlock()
	s.changed("background")
}

func (s *Store) SetRefreshInterval(minutes int) {
	s.mu.Lock()
	s.background.RefreshIntervalMin = clampInt(minutes, minRefreshMin, maxRefreshMin)
	s.mu.Unlock()
	s.changed("background")
}

// --- UI setters ---

// SetTheme additionally announces the theme switch so live surfaces can
// restyle without a restart.
func (s *Store) SetTheme(theme string) {
	switch theme {
	case "light", "dark", "system":
	default:
		return
	}
	s.mu.Lock()
	s.ui.Theme = theme
	s.unsaved = true
	s.mu.Unlock()
	if s.emit != nil {
		s.emit(event.ThemeChangedPayload{Theme: theme})
	}
}

func (s *Store) SetAccentColor(color string) {
	if !ValidColor(color) {
		return
	}
	s.mu.Lock()
	s.ui.AccentColor = color
	s.mu.Unlock()
	s.changed("ui")
}

func (s *Store) SetFontSize(size string) {
	switch size {
	case "small", "medium", "large":
	default:
		return
	}
	s.mu.Lock()
	s.ui.FontSize = size
	s.mu.Unlock()
	s.changed("ui")
}

func (s *Store) SetViewMode(mode string) {
	switch mode {
	case "timer", "forest":
	default:
		return
	}
	s.mu.Lock()
	s.ui.ViewMode = mode
	s.mu.Unlock()
	s.changed("ui")
}

func (s *Store) SetShowSeconds(enabled bool) {
	s.mu.Lock()
	s.ui.ShowSeconds = enabled
	s.mu.Unlock()
	s.changed("ui")
}

func (s *Store) SetCompactMode(enabled bool) {
	s.mu.Lock()
	s.ui.CompactMode = enabled
	s.mu.Unlock()
	s.changed("ui")
}

func (s *Store) SetNotificationVolume(volume int) {
	s.mu.Lock()
	s.ui.NotificationVolume = clampInt(volume, minVolume, maxVolume)
	s.mu.Unlock()
	s.changed("ui")
}

func (s *Store) SetSoundEnabled(enabled bool) {
	s.mu.Lock()
	s.ui.SoundEnabled = enabled
	s.mu.Unlock()
	s.changed("ui")
}

// --- General setters ---

func (s *Store) SetLanguage(lang string) {
	switch lang {
	case "en", "fr", "es", "de":
	default:
		return
	}
	s.mu.Lock()
	s.general.Language = lang
	s.mu.Unlock()
	s.changed("general")
}

func (s *Store) SetGeneral(g General) {
	s.mu.Lock()
	s.general = g
	s.mu.Unlock()
	s.changed("general")
}

// --- Shortcut setters ---

// SetShortcut updates one binding. Invalid chords are ignored.
func (s *Store) SetShortcut(action, chord string) {
	if !ValidShortcut(chord) {
		return
	}
	s.mu.Lock()
	switch action {
	case "toggleTimer":
		s.shortcuts.ToggleTimer = chord
	case "pauseResume":
		s.shortcuts.PauseResume = chord
	case "resetTimer":
		s.shortcuts.ResetTimer = chord
	case "skipSession":
		s.shortcuts.SkipSession = chord
	case "openSettings":
		s.shortcuts.OpenSettings = chord
	case "toggleFullscreen":
		s.shortcuts.ToggleFullscreen = chord
	case "volumeUp":
		s.shortcuts.VolumeUp = chord
	case "volumeDown":
		s.shortcuts.VolumeDown = chord
	case "nextTrack":
		s.shortcuts.NextTrack = chord
	case "previousTrack":
		s.shortcuts.PreviousTrack = chord
	default:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.changed("shortcuts")
}

// --- Resets ---

// ResetSection restores one section to its defaults. Unknown section
// names are ignored.
func (s *Store) ResetSection(section string) {
	s.mu.Lock()
	switch section {
	case "background":
		s.background = DefaultBackground()
	case "ui":
		s.ui = DefaultUI()
	case "general":
		s.general = DefaultGeneral()
	case "shortcuts":
		s.shortcuts = DefaultShortcuts()
	default:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.changed(section)
}

// ResetAll restores every section.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.background = DefaultBackground()
	s.ui = DefaultUI()
	s.general = DefaultGeneral()
	s.shortcuts = DefaultShortcuts()
	s.mu.Unlock()
	s.changed("all")
}

var (
	shortcutPattern = regexp.MustCompile(`^(Ctrl\+|Alt\+|Shift\+|Meta\+)*(F[1-9]|F1[0-2]|[A-Za-z,]|ArrowUp|ArrowDown|ArrowLeft|ArrowRight|Space|Enter|Escape|Tab)$`)
	colorPattern    = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
)

// ValidShortcut reports whether chord is a supported key combination.
func ValidShortcut(chord string) bool {
	return shortcutPattern.MatchString(chord)
}

// ValidColor reports whether color is a 3 or 6 digit hex value.
func ValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// SanitizeBackgroundURL returns raw when it parses with an allowed
// scheme, otherwise the empty string.
func SanitizeBackgroundURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "data":
		return raw
	}
	return ""
}
