package domain

import "time"

// Track is a single playable item.
type Track struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	URL      string        `json:"url"`
	Duration time.Duration `json:"duration,omitempty"`
	Artist   string        `json:"artist,omitempty"`
}

// Playlist is an ordered collection of tracks, usually mirroring one
// folder of the remote playlist source.
type Playlist struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Tracks   []Track `json:"tracks"`
	Category string  `json:"category,omitempty"`
}

// TrackByID returns the index of the track with the given id, or -1.
func (p Playlist) TrackByID(id string) int {
	for i, t := range p.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
