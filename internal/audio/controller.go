// Package audio owns playback state: the current playlist and track,
// volume and EQ, shuffle and repeat, and the timer-driven loop
// override. The playback engine itself is a driven peripheral; all
// policy lives here.
package audio

import (
	"math/rand"
	"sync"
	"time"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
)

// Emitter announces playback changes to the rest of the app.
type Emitter func(p event.Payload)

// Controller is the audio slice. Safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	playlists []domain.Playlist
	current   *domain.Playlist
	trackIdx  int

	playing bool
	paused  bool
	// intent is whether the user wants sound; it survives track and
	// playlist switches so a switch never forces a pause.
	intent bool

	currentTime float64
	duration    float64

	volume  int
	eq      domain.EQPreset
	shuffle bool
	repeat  domain.RepeatMode

	// originalRepeat is the user's own repeat mode, snapshotted exactly
	// once when a timer loop override begins and cleared when it ends.
	originalRepeat  *domain.RepeatMode
	loopDuringTimer bool
	timerRunning    bool

	autoPlayOnTimerStart bool
	autoStopOnComplete   bool
	focusPlaylistID      string
	breakPlaylistID      string

	lastErr error

	engine Engine
	emit   Emitter
	loads  *loader
	rng    *rand.Rand
}

// Option tweaks controller construction.
type Option func(*Controller)

// WithDebounceWindow overrides the track-load debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(c *Controller) { c.loads = newLoader(d, c.fireLoad) }
}

// WithAutoPlayOnTimerStart controls starting the focus playlist when a
// session begins. On unless disabled.
func WithAutoPlayOnTimerStart(enabled bool) Option {
	return func(c *Controller) { c.autoPlayOnTimerStart = enabled }
}

// WithAutoStopOnComplete enables stopping playback when a session
// completes naturally.
func WithAutoStopOnComplete(enabled bool) Option {
	return func(c *Controller) { c.autoStopOnComplete = enabled }
}

// WithFocusPlaylist names the playlist started on timer start.
func WithFocusPlaylist(id string) Option {
	return func(c *Controller) { c.focusPlaylistID = id }
}

// WithBreakPlaylist names the playlist switched to on breaks.
func WithBreakPlaylist(id string) Option {
	return func(c *Controller) { c.breakPlaylistID = id }
}

// defaultVolume is the stock volume, also restored on unmute.
const defaultVolume = 70

func NewController(engine Engine, emit Emitter, opts ...Option) *Controller {
	c := &Controller{
		volume:               defaultVolume,
		eq:                   domain.EQNeutral,
		repeat:               domain.RepeatNone,
		loopDuringTimer:      true,
		autoPlayOnTimerStart: true,
		engine:               engine,
		emit:                 emit,
		rng:                  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.loads = newLoader(defaultDebounce, c.fireLoad)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) announce(p event.Payload) {
	if c.emit != nil {
		c.emit(p)
	}
}

// --- State reads ---

func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// CurrentTrack returns the loaded track, if any.
func (c *Controller) CurrentTrack() (domain.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTrackLocked()
}

func (c *Controller) currentTrackLocked() (domain.Track, bool) {
	if c.current == nil || c.trackIdx < 0 || c.trackIdx >= len(c.current.Tracks) {
		return domain.Track{}, false
	}
	return c.current.Tracks[c.trackIdx], true
}

// CurrentPlaylist returns the active playlist, if any.
func (c *Controller) CurrentPlaylist() (domain.Playlist, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.Playlist{}, false
	}
	return *c.current, true
}

func (c *Controller) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *Controller) EQPreset() domain.EQPreset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eq
}

func (c *Controller) RepeatMode() domain.RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repeat
}

func (c *Controller) ShuffleMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuffle
}

// LastError returns the most recent engine failure, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Playlists returns the current collection.
func (c *Controller) Playlists() []domain.Playlist {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Playlist, len(c.playlists))
	copy(out, c.playlists)
	return out
}

// --- Playback operations ---

// Play starts or resumes playback of the current track.
func (c *Controller) Play() {
	c.mu.Lock()
	if _, ok := c.currentTrackLocked(); !ok {
		c.mu.Unlock()
		return
	}
	c.intent = true
	c.playing = true
	c.paused = false
	track, _ := c.currentTrackLocked()
	playlistID := c.current.ID
	c.mu.Unlock()

	if c.engine != nil {
		if err := c.engine.Play(); err != nil {
			c.HandleEngineError(err)
			return
		}
	}
	c.announce(event.AudioPlayPayload{TrackID: track.ID, PlaylistID: playlistID})
}

// Pause suspends playback, keeping the position.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	c.paused = true
	c.intent = false
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.Pause()
	}
	c.announce(event.AudioPausePayload{})
}

// Stop halts playback and rewinds.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.playing && !c.paused {
		c.mu.Unlock()
		return
	}
	c.playing = false
	c.paused = false
	c.intent = false
	c.currentTime = 0
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.Stop()
	}
	c.announce(event.AudioStopPayload{})
}

// Next advances to the computed next track. With repeat=one the index
// stays; with shuffle a different index is picked at random; otherwise
// the index advances, wrapping only when repeat=all.
func (c *Controller) Next() {
	c.step(1, "next")
}

// Previous retreats one track under the same policy as Next.
func (c *Controller) Previous() {
	c.step(-1, "previous")
}

func (c *Controller) step(delta int, direction string) {
	c.mu.Lock()
	idx, ok := c.targetIndexLocked(delta)
	if !ok {
		c.mu.Unlock()
		return
	}
	c.trackIdx = idx
	track := c.current.Tracks[idx]
	c.mu.Unlock()

	c.loads.request(track.URL)
	c.announce(event.AudioTrackChangedPayload{TrackID: track.ID, Direction: direction})
}

// targetIndexLocked applies the next/previous policy. The bool result
// is false when the selection should not change at all.
func (c *Controller) targetIndexLocked(delta int) (int, bool) {
	if c.current == nil || len(c.current.Tracks) == 0 {
		return 0, false
	}
	n := len(c.current.Tracks)
	if c.repeat == domain.RepeatOne {
		return c.trackIdx, true
	}
	if c.shuffle {
		if n == 1 {
			return 0, false
		}
		idx := c.rng.Intn(n - 1)
		if idx >= c.trackIdx {
			idx++
		}
		return idx, true
	}
	idx := c.trackIdx + delta
	if idx < 0 || idx >= n {
		if c.repeat != domain.RepeatAll {
			return 0, false
		}
		idx = (idx + n) % n
	}
	return idx, true
}

// Seek moves the playhead within the loaded track.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	if c.duration > 0 && seconds > c.duration {
		seconds = c.duration
	}
	c.currentTime = seconds
	c.mu.Unlock()
	if c.engine != nil {
		c.engine.Seek(seconds)
	}
}

// SetVolume clamps to 0..100 and pushes the combined gain to the
// engine.
func (c *Controller) SetVolume(volume int) {
	c.mu.Lock()
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	c.volume = volume
	gain := c.gainLocked()
	c.mu.Unlock()
	if c.engine != nil {
		c.engine.SetGain(gain)
	}
}

// Mute silences output without touching playback state.
func (c *Controller) Mute() {
	c.SetVolume(0)
}

// Unmute restores the default volume rather than the pre-mute value.
func (c *Controller) Unmute() {
	c.SetVolume(defaultVolume)
}

// SetEQPreset applies a simulated EQ curve by scaling output gain.
func (c *Controller) SetEQPreset(preset domain.EQPreset) {
	c.mu.Lock()
	c.eq = preset
	gain := c.gainLocked()
	c.mu.Unlock()
	if c.engine != nil {
		c.engine.SetGain(gain)
	}
}

// gainLocked combines user volume with the EQ preset's boost, clamped
// so the engine never clips past unity.
func (c *Controller) gainLocked() float64 {
	gain := float64(c.volume) / 100 * c.eq.Gain()
	if gain > 1.0 {
		gain = 1.0
	}
	return gain
}

// SetRepeatMode sets the user's repeat preference. While a timer loop
// override is active the change lands in the snapshot, so it takes
// effect when the override ends instead of being lost.
func (c *Controller) SetRepeatMode(mode domain.RepeatMode) {
	if !mode.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.originalRepeat != nil {
		*c.originalRepeat = mode
		return
	}
	c.repeat = mode
}

// SetShuffleMode toggles shuffle.
func (c *Controller) SetShuffleMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shuffle = enabled
}

// SetPlaylists replaces the whole collection, as delivered by a fetch.
// Replacement, not merge, so refetching never accumulates duplicates.
func (c *Controller) SetPlaylists(playlists []domain.Playlist) {
	c.mu.Lock()
	c.playlists = playlists
	if c.current != nil {
		keep := false
		for i := range playlists {
			if playlists[i].ID == c.current.ID {
				c.current = &playlists[i]
				keep = true
				break
			}
		}
		if !keep {
			c.current = nil
			c.trackIdx = 0
		}
	}
	c.mu.Unlock()
}

// SetPlaylist activates a playlist by id, loading its first track. The
// playing intent survives the switch.
func (c *Controller) SetPlaylist(id string) {
	c.mu.Lock()
	var target *domain.Playlist
	for i := range c.playlists {
		if c.playlists[i].ID == id {
			target = &c.playlists[i]
			break
		}
	}
	if target == nil || len(target.Tracks) == 0 {
		c.mu.Unlock()
		return
	}
	c.current = target
	c.trackIdx = 0
	url := target.Tracks[0].URL
	c.mu.Unlock()

	c.loads.request(url)
	c.announce(event.AudioPlaylistChangedPayload{PlaylistID: id})
}

// SetTrack selects a track in the current playlist by id. The playing
// intent survives the switch.
func (c *Controller) SetTrack(id string) {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	idx := c.current.TrackByID(id)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.trackIdx = idx
	url := c.current.Tracks[idx].URL
	c.mu.Unlock()

	c.loads.request(url)
	c.announce(event.AudioTrackChangedPayload{TrackID: id})
}

// --- Load pipeline ---

// fireLoad is the loader's callback once the debounce window closes.
func (c *Controller) fireLoad(url string, gen uint64) {
	if c.engine == nil {
		return
	}
	if err := c.engine.Load(url); err != nil {
		if c.loads.current(gen) {
			c.HandleEngineError(err)
		}
		return
	}
}

// HandleLoaded is the engine's load-completion callback. Restores the
// playing intent so a switch mid-playback resumes seamlessly.
func (c *Controller) HandleLoaded(duration float64) {
	c.mu.Lock()
	c.duration = duration
	c.currentTime = 0
	c.lastErr = nil
	resume := c.intent
	c.playing = resume
	c.mu.Unlock()

	if resume && c.engine != nil {
		if err := c.engine.Play(); err != nil {
			c.HandleEngineError(err)
		}
	}
}

// HandleEngineError records a playback failure as a slice-local flag
// and resets the transport. Never panics, never propagates.
func (c *Controller) HandleEngineError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.playing = false
	c.paused = false
	c.mu.Unlock()
}

// UpdatePosition is the engine's progress callback.
func (c *Controller) UpdatePosition(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = seconds
}

// OnTrackEnd is the engine's end-of-track callback. During an active
// timer with loop-during-timer on, focus is preserved: replay on
// repeat=one, advance on repeat=all, replay as the fallback. Otherwise
// the user's own repeat setting decides, stopping on repeat=none.
func (c *Controller) OnTrackEnd() {
	c.mu.Lock()
	timerLoop := c.timerRunning && c.loopDuringTimer
	repeat := c.repeat
	c.mu.Unlock()

	if timerLoop {
		switch repeat {
		case domain.RepeatAll:
			c.Next()
		default:
			c.replay()
		}
		return
	}

	switch repeat {
	case domain.RepeatOne:
		c.replay()
	case domain.RepeatAll:
		c.Next()
	default:
		c.Stop()
	}
}

func (c *Controller) replay() {
	c.mu.Lock()
	c.currentTime = 0
	ok := c.playing
	c.mu.Unlock()
	if !ok || c.engine == nil {
		return
	}
	c.engine.Seek(0)
	if err := c.engine.Play(); err != nil {
		c.HandleEngineError(err)
	}
}

// --- Timer reactions ---

// HandleEvents reacts to the newest log entry. Timer lifecycle events
// drive the loop override and auto play/stop behavior.
func (c *Controller) HandleEvents(log []event.Event) {
	if len(log) == 0 {
		return
	}
	switch log[len(log)-1].Payload.(type) {
	case event.TimerStartedPayload:
		c.onTimerStarted()
	case event.TimerCompletedPayload:
		c.onTimerCompleted()
	case event.BreakStartedPayload:
		c.onBreakStarted()
	}
}

// onTimerStarted begins the loop override. The snapshot is taken only
// once, so repeated starts cannot overwrite the user's real preference.
func (c *Controller) onTimerStarted() {
	c.mu.Lock()
	c.timerRunning = true
	if c.loopDuringTimer && c.originalRepeat == nil {
		saved := c.repeat
		c.originalRepeat = &saved
		c.repeat = domain.RepeatAll
	}
	startFocus := c.autoPlayOnTimerStart && !c.playing
	focusID := c.focusPlaylistID
	_, haveTrack := c.currentTrackLocked()
	c.mu.Unlock()

	if !startFocus {
		return
	}
	if focusID != "" {
		c.SetPlaylist(focusID)
		c.mu.Lock()
		c.intent = true
		c.mu.Unlock()
		return
	}
	if haveTrack {
		c.Play()
	}
}

// onTimerCompleted ends the loop override and restores the snapshot.
func (c *Controller) onTimerCompleted() {
	c.mu.Lock()
	c.timerRunning = false
	if c.originalRepeat != nil {
		c.repeat = *c.originalRepeat
		c.originalRepeat = nil
	}
	stop := c.autoStopOnComplete && (c.playing || c.paused)
	c.mu.Unlock()

	if stop {
		c.Stop()
	}
}

// onBreakStarted restores normal repeat for the break and switches to
// the break playlist if one is configured.
func (c *Controller) onBreakStarted() {
	c.mu.Lock()
	if c.originalRepeat != nil {
		c.repeat = *c.originalRepeat
	}
	breakID := c.breakPlaylistID
	c.mu.Unlock()

	if breakID != "" {
		c.SetPlaylist(breakID)
	}
}

// SetLoopDuringTimer toggles the timer loop override behavior.
func (c *Controller) SetLoopDuringTimer(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loopDuringTimer = enabled
}
