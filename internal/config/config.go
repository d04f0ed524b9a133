// Package config loads the application config file. A missing file is
// not an error; documented defaults apply.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evrenbey/grove/internal/domain"
)

const configFileName = "grove.yaml"

// IntendedMinSessionDuration is the threshold the statistics layer was
// designed around. The shipped default is zero to match the reference
// behavior; deployments that want the intended gate set
// min_session_minutes to 20 in the config file.
const IntendedMinSessionDuration = 20 * time.Minute

// Config is the runtime configuration for the store and its external
// sources.
type Config struct {
	Presets            []domain.Preset
	MinSessionDuration time.Duration
	LongBreakInterval  int

	PlaylistSourceURL string
	PlaylistSASToken  string
	ImageSourceURL    string
	ImageAccessKey    string

	// FocusPlaylist and BreakPlaylist name the playlists the audio
	// controller switches to on session start and on breaks. Empty
	// leaves the current playlist alone.
	FocusPlaylist string
	BreakPlaylist string
}

type yamlConfig struct {
	Presets           []domain.Preset `yaml:"presets"`
	MinSessionMinutes int             `yaml:"min_session_minutes"`
	LongBreakInterval int             `yaml:"long_break_interval"`
	PlaylistSourceURL string          `yaml:"playlist_source_url"`
	PlaylistSASToken  string          `yaml:"playlist_sas_token"`
	ImageSourceURL    string          `yaml:"image_source_url"`
	ImageAccessKey    string          `yaml:"image_access_key"`
	FocusPlaylist     string          `yaml:"focus_playlist"`
	BreakPlaylist     string          `yaml:"break_playlist"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Presets:            domain.DefaultPresets(),
		MinSessionDuration: 0,
		LongBreakInterval:  4,
	}
}

// DefaultPath returns the config file location under the user config
// directory.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "grove", configFileName), nil
}

// Load reads the config at path, falling back to defaults for a missing
// file and for any field the file leaves unset.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var file yamlConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	if len(file.Presets) > 0 {
		presets := file.Presets[:0:0]
		for _, p := range file.Presets {
			if p.Mode.Valid() && p.WorkMinutes > 0 {
				presets = append(presets, p)
			}
		}
		if len(presets) > 0 {
			cfg.Presets = presets
		}
	}
	if file.MinSessionMinutes > 0 {
		cfg.MinSessionDuration = time.Duration(file.MinSessionMinutes) * time.Minute
	}
	if file.LongBreakInterval > 0 {
		cfg.LongBreakInterval = file.LongBreakInterval
	}
	if file.PlaylistSourceURL != "" {
		cfg.PlaylistSourceURL = file.PlaylistSourceURL
	}
	if file.PlaylistSASToken != "" {
		cfg.PlaylistSASToken = file.PlaylistSASToken
	}
	if file.ImageSourceURL != "" {
		cfg.ImageSourceURL = file.ImageSourceURL
	}
	if file.ImageAccessKey != "" {
		cfg.ImageAccessKey = file.ImageAccessKey
	}
	if file.FocusPlaylist != "" {
		cfg.FocusPlaylist = file.FocusPlaylist
	}
	if file.BreakPlaylist != "" {
		cfg.BreakPlaylist = file.BreakPlaylist
	}
	return cfg, nil
}

// PresetFor returns the preset for mode, or the first preset when the
// mode is unknown. A config with no presets at all falls back to the
// built-in defaults, so a zero-value Config still drives the timer.
func (c Config) PresetFor(mode domain.Mode) domain.Preset {
	for _, p := range c.Presets {
		if p.Mode == mode {
			return p
		}
	}
	if len(c.Presets) == 0 {
		defaults := domain.DefaultPresets()
		for _, p := range defaults {
			if p.Mode == mode {
				return p
			}
		}
		return defaults[0]
	}
	return c.Presets[0]
}
