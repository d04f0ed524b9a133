package tui

import (
	"fmt"
	"time"

	"github.com/evrenbey/grove/internal/background"
	"github.com/evrenbey/grove/internal/domain"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewForest
	viewPlaylists
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Forest", "Playlists", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type playlistsFetchedMsg struct {
	playlists []domain.Playlist
	err       error
}

type backdropFetchedMsg struct {
	photo background.Photo
	url   string
	err   error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatClock renders a countdown as MM:SS, the way the timer face
// shows it.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func formatHours(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}
