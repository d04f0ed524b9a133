package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/evrenbey/grove/internal/event"
)

// BundleVersion tags exported settings for forward migration.
const BundleVersion = "1.0"

type sections struct {
	Background json.RawMessage `json:"background"`
	UI         json.RawMessage `json:"ui"`
	General    json.RawMessage `json:"general"`
	Shortcuts  json.RawMessage `json:"shortcuts"`
}

type bundle struct {
	Version    string   `json:"version"`
	ExportDate string   `json:"exportDate"`
	Settings   sections `json:"settings"`
}

// Export serializes all four sections under a version tag.
func (s *Store) Export() ([]byte, error) {
	enc := func(v any) json.RawMessage {
		raw, _ := json.Marshal(v)
		return raw
	}
	s.mu.Lock()
	b := bundle{
		Version:    BundleVersion,
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Settings: sections{
			Background: enc(s.background),
			UI:         enc(s.ui),
			General:    enc(s.general),
			Shortcuts:  enc(s.shortcuts),
		},
	}
	s.mu.Unlock()
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	return data, nil
}

// Import validates the bundle shape, then merges each section
// field-by-field over its defaults. Unknown fields are dropped and
// fields whose type disagrees with the default keep the default value,
// so a corrupt bundle can degrade options but never poison the store.
func (s *Store) Import(data []byte) error {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("import settings: %w", err)
	}
	if b.Version == "" {
		return fmt.Errorf("import settings: missing version tag")
	}
	// A section may be absent, in which case its defaults apply, but a
	// present section must be a JSON object.
	for name, raw := range map[string]json.RawMessage{
		"background": b.Settings.Background,
		"ui":         b.Settings.UI,
		"general":    b.Settings.General,
		"shortcuts":  b.Settings.Shortcuts,
	} {
		if raw != nil && !isObject(raw) {
			return fmt.Errorf("import settings: section %q is not an object", name)
		}
	}

	s.mu.Lock()
	if err := mergeSection(&s.background, DefaultBackground(), b.Settings.Background); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("import settings: %w", err)
	}
	if err := mergeSection(&s.ui, DefaultUI(), b.Settings.UI); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("import settings: %w", err)
	}
	if err := mergeSection(&s.general, DefaultGeneral(), b.Settings.General); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("import settings: %w", err)
	}
	if err := mergeSection(&s.shortcuts, DefaultShortcuts(), b.Settings.Shortcuts); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("import settings: %w", err)
	}
	s.unsaved = true
	s.mu.Unlock()

	if s.emit != nil {
		s.emit(event.SettingsUpdatedPayload{Section: "all", Source: "import"})
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && raw != nil
}

// mergeSection copies imported fields over the section defaults,
// keeping only keys the defaults know about whose JSON type matches. A
// nil section leaves pure defaults.
func mergeSection[T any](dst *T, defaults T, raw json.RawMessage) error {
	if raw == nil {
		*dst = defaults
		return nil
	}
	defRaw, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	var defMap, inMap map[string]any
	if err := json.Unmarshal(defRaw, &defMap); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &inMap); err != nil {
		return err
	}

	for key, val := range inMap {
		def, known := defMap[key]
		if !known || val == nil {
			continue
		}
		if jsonType(def) != jsonType(val) {
			continue
		}
		defMap[key] = val
	}

	merged, err := json.Marshal(defMap)
	if err != nil {
		return err
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return err
	}
	*dst = out
	return nil
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "null"
	}
}
