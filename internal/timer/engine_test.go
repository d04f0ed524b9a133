package timer

import (
	"testing"
	"time"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
)

func presetTable(mode domain.Mode) domain.Preset {
	for _, p := range domain.DefaultPresets() {
		if p.Mode == mode {
			return p
		}
	}
	return domain.DefaultPresets()[0]
}

type capture struct {
	entries []domain.Entry
	events  []event.Payload
}

// newTestEngine parks the real ticker so tests drive ticks by hand.
func newTestEngine(t *testing.T) (*Engine, *capture) {
	t.Helper()
	c := &capture{}
	e := NewEngine(presetTable,
		func(entry domain.Entry) { c.entries = append(c.entries, entry) },
		func(p event.Payload) { c.events = append(c.events, p) },
	)
	e.interval = time.Hour
	t.Cleanup(func() { e.Stop() })
	return e, c
}

func tickN(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Tick()
	}
}

func TestStartOnlyFromIdle(t *testing.T) {
	e, c := newTestEngine(t)

	e.Start(domain.ModeShortFocus)
	if e.State() != Running {
		t.Fatalf("state = %s, want running", e.State())
	}
	if len(c.events) != 1 {
		t.Fatalf("emitted %d events, want 1", len(c.events))
	}
	started := c.events[0].(event.TimerStartedPayload)
	if started.Mode != domain.ModeShortFocus || started.Duration != 25 {
		t.Errorf("unexpected start payload %+v", started)
	}

	e.Start(domain.ModeLongFocus) // ignored while running
	if s, _ := e.Session(); s.Mode != domain.ModeShortFocus {
		t.Error("start while running replaced the session")
	}
}

func TestTickSamplingEveryFifthSecond(t *testing.T) {
	e, c := newTestEngine(t)
	e.Start(domain.ModeShortFocus)
	c.events = nil

	tickN(e, 4)
	if len(c.events) != 0 {
		t.Fatalf("events after 4 ticks = %d, want 0", len(c.events))
	}

	e.Tick()
	if len(c.events) != 1 {
		t.Fatalf("events after 5 ticks = %d, want 1", len(c.events))
	}
	tick := c.events[0].(event.TimerTickPayload)
	if tick.CurrentTime != 5 || tick.PlannedDuration != 1500 {
		t.Errorf("unexpected tick payload %+v", tick)
	}
	want := 5.0 / 1500.0
	if diff := tick.Progress - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("progress = %v, want %v", tick.Progress, want)
	}

	tickN(e, 5)
	if len(c.events) != 2 {
		t.Errorf("events after 10 ticks = %d, want 2", len(c.events))
	}
}

func TestPauseFreezesWithoutEvents(t *testing.T) {
	e, c := newTestEngine(t)
	e.Pause() // idle, no-op
	e.Start(domain.ModeShortFocus)
	c.events = nil

	e.Pause()
	if e.State() != Paused {
		t.Fatalf("state = %s, want paused", e.State())
	}
	before := e.Remaining()
	tickN(e, 10)
	if e.Remaining() != before {
		t.Error("paused countdown advanced")
	}

	e.Resume()
	e.Resume() // second resume is a no-op
	e.Tick()
	if e.Remaining() != before-time.Second {
		t.Error("resumed countdown did not advance")
	}
	for _, p := range c.events {
		switch p.(type) {
		case event.TimerTickPayload:
		default:
			t.Errorf("pause/resume emitted %#v", p)
		}
	}
}

func TestManualStopRecordsIncompleteSilently(t *testing.T) {
	e, c := newTestEngine(t)
	e.Stop() // idle, no-op
	e.Start(domain.ModeShortFocus)
	tickN(e, 60)
	c.events = nil

	e.Stop()
	if e.State() != Idle {
		t.Fatalf("state = %s, want idle", e.State())
	}
	if len(c.entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(c.entries))
	}
	entry := c.entries[0]
	if entry.Completed {
		t.Error("manual stop marked completed")
	}
	if entry.Duration != 60*time.Second {
		t.Errorf("entry duration = %s, want 1m0s", entry.Duration)
	}
	for _, p := range c.events {
		if _, ok := p.(event.TimerCompletedPayload); ok {
			t.Error("manual stop emitted a completion event")
		}
	}
}

func TestNaturalCompletionRecordsAndBreaks(t *testing.T) {
	e, c := newTestEngine(t)
	e.Start(domain.ModeShortFocus)
	tickN(e, 25*60)

	if len(c.entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(c.entries))
	}
	entry := c.entries[0]
	if !entry.Completed || entry.Duration != 25*time.Minute {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.ID == "" {
		t.Error("entry id empty; projections key on it")
	}

	var completed *event.TimerCompletedPayload
	var brk *event.BreakStartedPayload
	for i := range c.events {
		switch p := c.events[i].(type) {
		case event.TimerCompletedPayload:
			completed = &p
		case event.BreakStartedPayload:
			brk = &p
		}
	}
	if completed == nil || completed.Duration != 1500 {
		t.Fatalf("completion event missing or wrong: %+v", completed)
	}
	if brk == nil || brk.Duration != 5 {
		t.Fatalf("break event missing or wrong: %+v", brk)
	}
	if e.State() != Break {
		t.Fatalf("state = %s, want break", e.State())
	}

	// Break counts down to idle without any ledger entry.
	tickN(e, 5*60)
	if e.State() != Idle {
		t.Errorf("state after break = %s, want idle", e.State())
	}
	if len(c.entries) != 1 {
		t.Error("break produced a ledger entry")
	}
}

func TestLongBreakEveryInterval(t *testing.T) {
	e, c := newTestEngine(t)
	e.SetLongBreakInterval(2)
	e.SetLongBreakInterval(0) // ignored

	for run := 0; run < 2; run++ {
		e.Start(domain.ModeShortFocus)
		tickN(e, 25*60) // complete
		if e.State() == Break {
			e.Stop() // skip the break
		}
	}

	var breaks []event.BreakStartedPayload
	for _, p := range c.events {
		if b, ok := p.(event.BreakStartedPayload); ok {
			breaks = append(breaks, b)
		}
	}
	if len(breaks) != 2 {
		t.Fatalf("breaks = %d, want 2", len(breaks))
	}
	if breaks[0].IsLongBreak || breaks[0].Duration != 5 {
		t.Errorf("first break = %+v, want short", breaks[0])
	}
	if !breaks[1].IsLongBreak || breaks[1].Duration != 15 {
		t.Errorf("second break = %+v, want long 15m", breaks[1])
	}
}

func TestAutoStartBreaksDisabled(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetAutoStartBreaks(false)
	e.Start(domain.ModeShortFocus)
	tickN(e, 25*60)
	if e.State() != Idle {
		t.Errorf("state = %s, want idle with breaks disabled", e.State())
	}
}

func TestSwitchModeOnlyFromIdle(t *testing.T) {
	e, _ := newTestEngine(t)

	e.SwitchMode(domain.ModeLongFocus)
	if e.Remaining() != 50*time.Minute {
		t.Errorf("remaining after switch = %s, want 50m", e.Remaining())
	}

	e.Start(domain.ModeLongFocus)
	e.SwitchMode(domain.ModeShortFocus) // ignored while running
	if s, _ := e.Session(); s.Mode != domain.ModeLongFocus {
		t.Error("switch while running changed the session")
	}
}
