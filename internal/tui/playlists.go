package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/playlist"
	"github.com/evrenbey/grove/internal/store"
)

type playlistsModel struct {
	app    *store.App
	client *playlist.Client
	width  int
	height int

	cursor        int
	trackCursor   int
	viewingTracks bool
	fetching      bool
}

func newPlaylistsModel(app *store.App, client *playlist.Client) playlistsModel {
	return playlistsModel{app: app, client: client}
}

func (p *playlistsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p playlistsModel) fetch() tea.Cmd {
	if p.client == nil {
		return statusCmd("No playlist source configured")
	}
	client := p.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		lists, err := client.FetchPlaylists(ctx)
		return playlistsFetchedMsg{playlists: lists, err: err}
	}
}

func (p playlistsModel) update(msg tea.Msg) (playlistsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case playlistsFetchedMsg:
		p.fetching = false
		if msg.err != nil {
			return p, statusCmd(fmt.Sprintf("Fetch error: %v", msg.err))
		}
		p.app.Audio.SetPlaylists(msg.playlists)
		p.cursor = 0
		p.trackCursor = 0
		return p, statusCmd(fmt.Sprintf("Fetched %d playlists", len(msg.playlists)))

	case tea.KeyMsg:
		if p.viewingTracks {
			return p.updateTrackView(msg)
		}
		return p.updatePlaylistList(msg)
	}
	return p, nil
}

func (p playlistsModel) updatePlaylistList(msg tea.KeyMsg) (playlistsModel, tea.Cmd) {
	lists := p.app.Audio.Playlists()
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(lists)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if p.cursor < len(lists) {
			p.app.Audio.SetPlaylist(lists[p.cursor].ID)
			p.viewingTracks = true
			p.trackCursor = 0
		}
	case key.Matches(msg, keys.Fetch):
		if !p.fetching {
			p.fetching = true
			return p, p.fetch()
		}
	default:
		return p.updatePlayback(msg)
	}
	return p, nil
}

func (p playlistsModel) updateTrackView(msg tea.KeyMsg) (playlistsModel, tea.Cmd) {
	current, ok := p.app.Audio.CurrentPlaylist()
	if !ok {
		p.viewingTracks = false
		return p, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTracks = false
	case key.Matches(msg, keys.Up):
		if p.trackCursor > 0 {
			p.trackCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.trackCursor < len(current.Tracks)-1 {
			p.trackCursor++
		}
	case key.Matches(msg, keys.Enter):
		if p.trackCursor < len(current.Tracks) {
			p.app.Audio.SetTrack(current.Tracks[p.trackCursor].ID)
			p.app.Audio.Play()
		}
	default:
		return p.updatePlayback(msg)
	}
	return p, nil
}

// updatePlayback handles the transport keys shared by both levels of
// the browser.
func (p playlistsModel) updatePlayback(msg tea.KeyMsg) (playlistsModel, tea.Cmd) {
	a := p.app.Audio
	switch {
	case key.Matches(msg, keys.Play):
		if a.IsPlaying() {
			a.Pause()
		} else {
			a.Play()
		}
	case key.Matches(msg, keys.Next):
		a.Next()
	case key.Matches(msg, keys.Prev):
		a.Previous()
	case key.Matches(msg, keys.VolUp):
		a.SetVolume(a.Volume() + 5)
	case key.Matches(msg, keys.VolDown):
		a.SetVolume(a.Volume() - 5)
	case key.Matches(msg, keys.Shuffle):
		a.SetShuffleMode(!a.ShuffleMode())
	case key.Matches(msg, keys.Repeat):
		a.SetRepeatMode(nextRepeat(a.RepeatMode()))
	}
	return p, nil
}

func nextRepeat(m domain.RepeatMode) domain.RepeatMode {
	switch m {
	case domain.RepeatNone:
		return domain.RepeatAll
	case domain.RepeatAll:
		return domain.RepeatOne
	default:
		return domain.RepeatNone
	}
}

func (p playlistsModel) view() string {
	if p.viewingTracks {
		return p.renderTrackView()
	}
	return p.renderPlaylistList()
}

func (p playlistsModel) renderPlaylistList() string {
	w := p.width - 4
	title := titleStyle.Render("Playlists")
	lists := p.app.Audio.Playlists()

	if len(lists) == 0 {
		hint := "No playlists. Press f to fetch from the source."
		if p.fetching {
			hint = "Fetching playlists..."
		}
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render(hint),
		)
		return panelStyle.Width(w).Render(content)
	}

	currentID := ""
	if cur, ok := p.app.Audio.CurrentPlaylist(); ok {
		currentID = cur.ID
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, pl := range lists {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := "  "
		if pl.ID == currentID {
			marker = successStyle.Render("♪ ")
		}
		row := style.Render(fmt.Sprintf("%s%s%-24s", cursor, marker, pl.Name)) +
			mutedStyle.Render(fmt.Sprintf("%d tracks", len(pl.Tracks)))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, p.renderNowPlaying())
	rows = append(rows, mutedStyle.Render("  enter: open  f: fetch  p: play/pause  +/-: volume"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p playlistsModel) renderTrackView() string {
	w := p.width - 4
	current, ok := p.app.Audio.CurrentPlaylist()
	if !ok {
		return panelStyle.Width(w).Render(mutedStyle.Render("No playlist selected"))
	}
	title := titleStyle.Render(fmt.Sprintf("♪ %s", current.Name))

	playing, hasTrack := p.app.Audio.CurrentTrack()

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, tr := range current.Tracks {
		cursor := "  "
		style := normalItemStyle
		if i == p.trackCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := "  "
		if hasTrack && tr.ID == playing.ID {
			if p.app.Audio.IsPlaying() {
				marker = successStyle.Render("▶ ")
			} else {
				marker = warningStyle.Render("⏸ ")
			}
		}
		rows = append(rows, style.Render(cursor)+marker+style.Render(tr.Title))
	}

	rows = append(rows, "")
	rows = append(rows, p.renderNowPlaying())
	rows = append(rows, mutedStyle.Render("  enter: play  ]/[: next/prev  S: shuffle  r: repeat  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p playlistsModel) renderNowPlaying() string {
	a := p.app.Audio
	track, ok := a.CurrentTrack()
	if !ok {
		return mutedStyle.Render("  nothing loaded")
	}

	state := mutedStyle.Render("stopped")
	if a.IsPlaying() {
		state = successStyle.Render("playing")
	} else if a.IsPaused() {
		state = warningStyle.Render("paused")
	}

	flags := []string{fmt.Sprintf("vol %d", a.Volume())}
	if a.ShuffleMode() {
		flags = append(flags, "shuffle")
	}
	if a.RepeatMode() != domain.RepeatNone {
		flags = append(flags, "repeat "+string(a.RepeatMode()))
	}

	return fmt.Sprintf("  %s %s  %s",
		state,
		highlightStyle.Render(track.Title),
		mutedStyle.Render(strings.Join(flags, "  ")),
	)
}
