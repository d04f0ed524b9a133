package settings

import (
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := newTestStore()
	src.SetTheme("dark")
	src.SetBackgroundOpacity(42)
	src.SetShortcut("nextTrack", "Ctrl+N")
	src.SetLanguage("fr")

	data, err := src.Export()
	if err != nil {
		t.Fatal(err)
	}

	dst, _ := newTestStore()
	if err := dst.Import(data); err != nil {
		t.Fatal(err)
	}

	if dst.Background() != src.Background() {
		t.Errorf("background after round trip = %+v, want %+v", dst.Background(), src.Background())
	}
	if dst.UI() != src.UI() {
		t.Errorf("ui after round trip = %+v, want %+v", dst.UI(), src.UI())
	}
	if dst.General() != src.General() {
		t.Errorf("general after round trip = %+v, want %+v", dst.General(), src.General())
	}
	if dst.Shortcuts() != src.Shortcuts() {
		t.Errorf("shortcuts after round trip = %+v, want %+v", dst.Shortcuts(), src.Shortcuts())
	}
}

func TestImportRejectsBadShape(t *testing.T) {
	s, _ := newTestStore()
	s.SetTheme("dark")

	cases := map[string]string{
		"malformed json":   `{nope`,
		"missing version":  `{"settings": {"background": {}, "ui": {}, "general": {}, "shortcuts": {}}}`,
		"section not object": `{"version": "1.0", "settings": {"background": 17}}`,
	}
	for name, payload := range cases {
		if err := s.Import([]byte(payload)); err == nil {
			t.Errorf("%s: import accepted", name)
		}
	}
	if s.UI().Theme != "dark" {
		t.Error("failed import mutated state")
	}
}

func TestImportMissingSectionFallsBackToDefaults(t *testing.T) {
	s, _ := newTestStore()
	s.SetShortcut("toggleTimer", "Ctrl+T")

	bundle := `{
		"version": "1.0",
		"settings": {
			"background": {"backgroundOpacity": 55},
			"ui": {"theme": "light"},
			"general": {"language": "de"}
		}
	}`
	if err := s.Import([]byte(bundle)); err != nil {
		t.Fatal(err)
	}

	if s.Shortcuts() != DefaultShortcuts() {
		t.Error("missing shortcuts section should restore defaults")
	}
	if s.Background().BackgroundOpacity != 55 {
		t.Errorf("opacity = %d, want 55", s.Background().BackgroundOpacity)
	}
	if s.UI().Theme != "light" {
		t.Errorf("theme = %s, want light", s.UI().Theme)
	}
	if s.General().Language != "de" {
		t.Errorf("language = %s, want de", s.General().Language)
	}
}

func TestImportDropsTypeMismatchedFields(t *testing.T) {
	s, _ := newTestStore()

	bundle := `{
		"version": "1.0",
		"settings": {
			"background": {"backgroundOpacity": "very", "blurAmount": 7, "unknownKnob": true},
			"ui": {"theme": 3},
			"general": {},
			"shortcuts": {}
		}
	}`
	if err := s.Import([]byte(bundle)); err != nil {
		t.Fatal(err)
	}

	bg := s.Background()
	if bg.BackgroundOpacity != DefaultBackground().BackgroundOpacity {
		t.Errorf("string-typed opacity should be dropped, got %d", bg.BackgroundOpacity)
	}
	if bg.BlurAmount != 7 {
		t.Errorf("blur = %d, want 7", bg.BlurAmount)
	}
	if s.UI().Theme != DefaultUI().Theme {
		t.Errorf("number-typed theme should be dropped, got %s", s.UI().Theme)
	}
}
