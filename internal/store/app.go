// Package store composes the application slices behind one dispatch
// entry point. Every component announces through Dispatch; every
// dispatch appends to the shared log and replays the whole log to each
// component's handler in a fixed order.
package store

import (
	"fmt"
	"sync"

	"github.com/evrenbey/grove/internal/audio"
	"github.com/evrenbey/grove/internal/config"
	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
	"github.com/evrenbey/grove/internal/forest"
	"github.com/evrenbey/grove/internal/session"
	"github.com/evrenbey/grove/internal/settings"
	"github.com/evrenbey/grove/internal/storage"
	"github.com/evrenbey/grove/internal/timer"
	"github.com/evrenbey/grove/internal/user"
)

// App is the composed application state. Components never hold
// references to each other; everything crosses through Dispatch or a
// narrow injected capability.
type App struct {
	Timer    *timer.Engine
	Audio    *audio.Controller
	Ledger   *session.Ledger
	Settings *settings.Store
	User     *user.Store
	Forest   *forest.Projection

	cfg config.Config
	db  *storage.Store

	bus      *event.Bus
	handlers []event.Subscriber

	// Dispatch is not reentrant: a dispatch arriving while a pass is
	// running queues behind it and drains in FIFO order once the pass
	// finishes, so handler ordering holds for every event.
	queueMu     sync.Mutex
	dispatching bool
	queue       []event.Event
}

// New wires the full application. engine may be nil for headless use;
// the audio controller then tracks state without driving a backend.
func New(cfg config.Config, db *storage.Store, engine audio.Engine, audioOpts ...audio.Option) *App {
	a := &App{cfg: cfg, db: db}
	emit := func(p event.Payload) { a.Dispatch(p) }

	a.Ledger = session.NewLedger(cfg.MinSessionDuration, emit)
	a.Timer = timer.NewEngine(cfg.PresetFor, func(e domain.Entry) { a.Ledger.AddEntry(e) }, emit)
	a.Timer.SetLongBreakInterval(cfg.LongBreakInterval)
	opts := make([]audio.Option, 0, len(audioOpts)+2)
	if cfg.FocusPlaylist != "" {
		opts = append(opts, audio.WithFocusPlaylist(cfg.FocusPlaylist))
	}
	if cfg.BreakPlaylist != "" {
		opts = append(opts, audio.WithBreakPlaylist(cfg.BreakPlaylist))
	}
	opts = append(opts, audioOpts...)
	a.Audio = audio.NewController(engine, emit, opts...)
	a.Settings = settings.NewStore(emit)
	a.User = user.NewStore(emit)
	a.Forest = forest.NewProjection(a.Ledger.Entries)

	// Handler order is a contract, not an accident: the ledger's
	// handler runs before the forest's so an entry added earlier in the
	// same pass is already visible to the forest's sync.
	a.handlers = []event.Subscriber{
		a.Timer.HandleEvents,
		a.Audio.HandleEvents,
		a.Ledger.HandleEvents,
		a.Settings.HandleEvents,
		a.User.HandleEvents,
		a.Forest.HandleEvents,
	}

	a.bus = event.NewBus()
	a.bus.Subscribe(func(log []event.Event) {
		for _, h := range a.handlers {
			h(log)
		}
	})
	return a
}

// Dispatch appends the payload to the event log and runs one handler
// pass over the updated log. Dispatches triggered by handlers queue up
// and run after the current pass, in arrival order.
func (a *App) Dispatch(p event.Payload) {
	ev := event.New(p)

	a.queueMu.Lock()
	if a.dispatching {
		a.queue = append(a.queue, ev)
		a.queueMu.Unlock()
		return
	}
	a.dispatching = true
	a.queueMu.Unlock()

	a.process(ev)
	for {
		a.queueMu.Lock()
		if len(a.queue) == 0 {
			a.dispatching = false
			a.queueMu.Unlock()
			return
		}
		next := a.queue[0]
		a.queue = a.queue[1:]
		a.queueMu.Unlock()
		a.process(next)
	}
}

func (a *App) process(ev event.Event) {
	a.bus.Dispatch(ev)
	a.persist(ev)
}

// Events returns a snapshot of the event log, oldest first.
func (a *App) Events() []event.Event {
	return a.bus.Events()
}

// ClearLog empties the event log without notifying anyone.
func (a *App) ClearLog() {
	a.bus.Clear()
}

// Close tears down live resources. The in-flight session, if any, is
// aborted and recorded like any manual stop.
func (a *App) Close() error {
	a.Timer.Stop()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}
