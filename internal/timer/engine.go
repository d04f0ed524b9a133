// Package timer implements the countdown engine and its state machine:
// Idle to Running, Paused toggling, and finalization into the session
// ledger on completion or manual stop. Breaks are an orthogonal
// sub-state entered automatically after natural completion.
package timer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
)

// State is the engine's lifecycle position.
type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
	Break   State = "break"
)

// tickEmitEvery samples live-progress events to one per five seconds,
// bounding cross-component event volume.
const tickEmitEvery = 5

// Recorder receives the finalized ledger entry for every ended session,
// completed or not.
type Recorder func(e domain.Entry)

// PresetSource resolves a mode to its timer preset.
type PresetSource func(mode domain.Mode) domain.Preset

// Emitter announces engine transitions. Pause, resume and manual stop
// stay local and never pass through it.
type Emitter func(p event.Payload)

// Engine drives one focus session at a time. All methods are safe for
// concurrent use; invalid-state calls are silent no-ops.
type Engine struct {
	mu sync.Mutex

	state     State
	preset    domain.Preset
	session   *domain.Session
	remaining time.Duration
	ticks     int

	breakRemaining time.Duration
	completedRuns  int

	autoStartBreaks   bool
	longBreakInterval int

	presets  PresetSource
	record   Recorder
	emit     Emitter
	now      func() time.Time
	interval time.Duration

	stop    chan struct{}
	stopped bool
}

// NewEngine builds an idle engine armed with the short-focus preset.
func NewEngine(presets PresetSource, record Recorder, emit Emitter) *Engine {
	return &Engine{
		state:             Idle,
		preset:            presets(domain.ModeShortFocus),
		autoStartBreaks:   true,
		longBreakInterval: 4,
		presets:           presets,
		record:            record,
		emit:              emit,
		now:               time.Now,
		interval:          time.Second,
	}
}

// SetAutoStartBreaks toggles the automatic break after completion.
func (e *Engine) SetAutoStartBreaks(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoStartBreaks = enabled
}

// SetLongBreakInterval sets how many completed sessions earn a long
// break. Values below one are ignored.
func (e *Engine) SetLongBreakInterval(n int) {
	if n < 1 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.longBreakInterval = n
}

// State returns the current lifecycle position.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Preset returns the armed preset.
func (e *Engine) Preset() domain.Preset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preset
}

// Remaining returns the time left on the active countdown, or the
// preset's full span when idle.
func (e *Engine) Remaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Idle {
		return e.preset.WorkDuration()
	}
	if e.state == Break {
		return e.breakRemaining
	}
	return e.remaining
}

// Session returns a copy of the in-flight session.
func (e *Engine) Session() (domain.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return domain.Session{}, false
	}
	return *e.session, true
}

// Progress returns the elapsed fraction of the active session.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

func (e *Engine) progressLocked() float64 {
	if e.session == nil || e.session.PlannedDuration <= 0 {
		return 0
	}
	elapsed := e.session.PlannedDuration - e.remaining
	return float64(elapsed) / float64(e.session.PlannedDuration)
}

func (e *Engine) announce(p event.Payload) {
	if e.emit != nil {
		e.emit(p)
	}
}

// HandleEvents holds the engine's slot in the dispatch order. The
// engine is a pure event source; it reacts to nothing on the bus.
func (e *Engine) HandleEvents([]event.Event) {}

// Start begins a session in the given mode. Valid only from Idle; any
// other state ignores the call.
func (e *Engine) Start(mode domain.Mode) {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return
	}
	e.preset = e.presets(mode)
	e.session = &domain.Session{
		ID:              uuid.NewString(),
		Mode:            e.preset.Mode,
		StartTime:       e.now(),
		PlannedDuration: e.preset.WorkDuration(),
	}
	e.remaining = e.session.PlannedDuration
	e.ticks = 0
	e.state = Running
	e.startTickerLocked()

	payload := event.TimerStartedPayload{
		SessionID: e.session.ID,
		Mode:      e.session.Mode,
		Duration:  e.preset.WorkMinutes,
	}
	e.mu.Unlock()
	e.announce(payload)
}

// Pause freezes the countdown. Only meaningful while Running; no event
// is emitted, pausing is a local concern.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		return
	}
	e.state = Paused
	if e.session != nil {
		e.session.Paused = true
		e.session.PausedAt = e.now()
	}
}

// Resume continues a paused countdown. No event is emitted.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Paused {
		return
	}
	e.state = Running
	if e.session != nil {
		e.session.Paused = false
		e.session.PausedAt = time.Time{}
	}
}

// Stop aborts the session. The aborted session still lands in the
// ledger with completed=false, but no completion event fires; only
// natural completion announces itself. Stopping during a break cancels
// the break. Stopping while Idle is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	switch e.state {
	case Idle:
		e.mu.Unlock()
		return
	case Break:
		e.breakRemaining = 0
		e.state = Idle
		e.stopTickerLocked()
		e.mu.Unlock()
		return
	}

	entry := e.finalizeLocked(false)
	e.state = Idle
	e.stopTickerLocked()
	e.mu.Unlock()

	if e.record != nil {
		e.record(entry)
	}
}

// SwitchMode changes the active preset. Valid only from Idle.
func (e *Engine) SwitchMode(mode domain.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		return
	}
	e.preset = e.presets(mode)
}

// finalizeLocked converts the in-flight session into a ledger entry
// and clears it. The entry's id is the session id, so downstream
// projections keyed by session line up.
func (e *Engine) finalizeLocked(completed bool) domain.Entry {
	now := e.now()
	actual := e.session.PlannedDuration - e.remaining
	if completed {
		actual = e.session.PlannedDuration
	}
	entry := domain.Entry{
		ID:              e.session.ID,
		Date:            domain.DateOf(e.session.StartTime),
		StartTime:       e.session.StartTime,
		EndTime:         now,
		Duration:        actual,
		PlannedDuration: e.session.PlannedDuration,
		Mode:            e.session.Mode,
		Completed:       completed,
	}
	e.session = nil
	e.remaining = 0
	return entry
}

func (e *Engine) startTickerLocked() {
	e.stop = make(chan struct{})
	e.stopped = false
	go e.loop(e.stop)
}

func (e *Engine) stopTickerLocked() {
	if e.stop != nil && !e.stopped {
		close(e.stop)
		e.stopped = true
	}
}

func (e *Engine) loop(stop chan struct{}) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick advances the countdown by one second. The internal ticker calls
// it while the engine is live; headless drivers may call it directly. A
// tick racing a concurrent stop finds the engine Idle and does nothing.
func (e *Engine) Tick() {
	e.mu.Lock()

	switch e.state {
	case Break:
		e.breakRemaining -= time.Second
		if e.breakRemaining <= 0 {
			e.breakRemaining = 0
			e.state = Idle
			e.stopTickerLocked()
		}
		e.mu.Unlock()
		return
	case Running:
	default:
		e.mu.Unlock()
		return
	}

	e.remaining -= time.Second
	e.ticks++

	if e.remaining <= 0 {
		e.completeLocked()
		return
	}

	if e.ticks%tickEmitEvery == 0 {
		payload := event.TimerTickPayload{
			SessionID:       e.session.ID,
			CurrentTime:     int((e.session.PlannedDuration - e.remaining) / time.Second),
			PlannedDuration: int(e.session.PlannedDuration / time.Second),
			Progress:        e.progressLocked(),
		}
		e.mu.Unlock()
		e.announce(payload)
		return
	}
	e.mu.Unlock()
}

// completeLocked finalizes a naturally finished session, announces it,
// and either rolls into a break or returns to Idle. Releases the lock.
func (e *Engine) completeLocked() {
	e.remaining = 0
	sessionID := e.session.ID
	mode := e.session.Mode
	planned := e.session.PlannedDuration
	entry := e.finalizeLocked(true)
	e.completedRuns++

	var breakPayload *event.BreakStartedPayload
	if e.autoStartBreaks {
		minutes := e.preset.BreakMinutes
		long := e.longBreakInterval > 0 && e.completedRuns%e.longBreakInterval == 0
		if long && e.preset.LongBreakMinutes > 0 {
			minutes = e.preset.LongBreakMinutes
		}
		if minutes > 0 {
			e.state = Break
			e.breakRemaining = time.Duration(minutes) * time.Minute
			breakPayload = &event.BreakStartedPayload{Duration: minutes, IsLongBreak: long}
		} else {
			e.state = Idle
			e.stopTickerLocked()
		}
	} else {
		e.state = Idle
		e.stopTickerLocked()
	}
	e.mu.Unlock()

	if e.record != nil {
		e.record(entry)
	}
	e.announce(event.TimerCompletedPayload{
		SessionID: sessionID,
		Mode:      mode,
		Duration:  int(planned / time.Second),
	})
	if breakPayload != nil {
		e.announce(*breakPayload)
	}
}
