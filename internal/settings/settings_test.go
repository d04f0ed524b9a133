package settings

import (
	"testing"

	"github.com/evrenbey/grove/internal/event"
)

func newTestStore() (*Store, *[]event.Payload) {
	var emitted []event.Payload
	s := NewStore(func(p event.Payload) {
		emitted = append(emitted, p)
	})
	return s, &emitted
}

func TestNumericSettersClamp(t *testing.T) {
	s, _ := newTestStore()

	s.SetBackgroundOpacity(150)
	if got := s.Background().BackgroundOpacity; got != 100 {
		t.Errorf("opacity = %d, want clamp to 100", got)
	}
	s.SetBackgroundOpacity(-5)
	if got := s.Background().BackgroundOpacity; got != 0 {
		t.Errorf("opacity = %d, want clamp to 0", got)
	}

	s.SetBlurAmount(99)
	if got := s.Background().BlurAmount; got != 20 {
		t.Errorf("blur = %d, want clamp to 20", got)
	}

	s.SetRefreshInterval(1)
	if got := s.Background().RefreshIntervalMin; got != 5 {
		t.Errorf("refresh interval = %d, want clamp to 5", got)
	}
	s.SetRefreshInterval(999)
	if got := s.Background().RefreshIntervalMin; got != 180 {
		t.Errorf("refresh interval = %d, want clamp to 180", got)
	}

	s.SetNotificationVolume(200)
	if got := s.UI().NotificationVolume; got != 100 {
		t.Errorf("notification volume = %d, want clamp to 100", got)
	}
}

func TestSetThemeEmitsThemeChanged(t *testing.T) {
	s, emitted := newTestStore()

	s.SetTheme("dark")
	if s.UI().Theme != "dark" {
		t.Fatalf("theme = %s, want dark", s.UI().Theme)
	}
	if len(*emitted) != 1 {
		t.Fatalf("emitted %d events, want 1", len(*emitted))
	}
	p, ok := (*emitted)[0].(event.ThemeChangedPayload)
	if !ok || p.Theme != "dark" {
		t.Errorf("unexpected payload %#v", (*emitted)[0])
	}

	s.SetTheme("neon") // invalid, ignored
	if s.UI().Theme != "dark" {
		t.Error("invalid theme mutated the store")
	}
}

func TestInvalidValuesIgnored(t *testing.T) {
	s, _ := newTestStore()

	s.SetAccentColor("blue")
	if s.UI().AccentColor != DefaultUI().AccentColor {
		t.Error("invalid color accepted")
	}
	s.SetAccentColor("#ff0000")
	if s.UI().AccentColor != "#ff0000" {
		t.Error("valid color rejected")
	}

	s.SetShortcut("toggleTimer", "NotAKey!")
	if s.Shortcuts().ToggleTimer != "Space" {
		t.Error("invalid shortcut accepted")
	}
	s.SetShortcut("toggleTimer", "Ctrl+T")
	if s.Shortcuts().ToggleTimer != "Ctrl+T" {
		t.Error("valid shortcut rejected")
	}
	s.SetShortcut("unknownAction", "Ctrl+T") // ignored

	s.SetCustomBackgroundURL("javascript:alert(1)")
	if s.Background().CustomURL != "" {
		t.Error("disallowed scheme stored")
	}
	s.SetCustomBackgroundURL("https://example.com/bg.png")
	if s.Background().CustomURL != "https://example.com/bg.png" {
		t.Error("https url rejected")
	}
}

func TestResetSection(t *testing.T) {
	s, _ := newTestStore()
	s.SetBackgroundOpacity(10)
	s.SetTheme("dark")

	s.ResetSection("background")
	if s.Background() != DefaultBackground() {
		t.Error("background not reset")
	}
	if s.UI().Theme != "dark" {
		t.Error("reset of one section touched another")
	}

	s.ResetSection("bogus") // ignored
	s.ResetAll()
	if s.UI() != DefaultUI() || s.Shortcuts() != DefaultShortcuts() {
		t.Error("reset all incomplete")
	}
}

func TestUnsavedChangesTracking(t *testing.T) {
	s, _ := newTestStore()
	if s.HasUnsavedChanges() {
		t.Fatal("fresh store already dirty")
	}
	s.SetShowSeconds(false)
	if !s.HasUnsavedChanges() {
		t.Fatal("mutation did not mark dirty")
	}
	s.MarkSaved()
	if s.HasUnsavedChanges() {
		t.Fatal("MarkSaved did not clear dirty flag")
	}
}
