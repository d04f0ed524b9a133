package store

import (
	"testing"
	"time"

	"github.com/evrenbey/grove/internal/config"
	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
	"github.com/evrenbey/grove/internal/forest"
	"github.com/evrenbey/grove/internal/storage"
)

// testConfig shrinks the presets so a full session fits in a handful of
// ticks and the event log never evicts the start of the run.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Presets = []domain.Preset{
		{Mode: domain.ModeShortFocus, Name: "Short Focus", WorkMinutes: 1, BreakMinutes: 1},
		{Mode: domain.ModeLongFocus, Name: "Long Focus", WorkMinutes: 2, BreakMinutes: 1},
	}
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, err := storage.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	a := New(testConfig(), db, nil)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// runToCompletion drives the engine through a full focus session.
func runToCompletion(a *App, minutes int) {
	for i := 0; i < minutes*60; i++ {
		a.Timer.Tick()
	}
}

func TestFullSessionScenario(t *testing.T) {
	a := newTestApp(t)

	a.Timer.Start(domain.ModeShortFocus)
	if len(a.Forest.Trees()) != 1 {
		t.Fatalf("trees after start = %d, want eager seed", len(a.Forest.Trees()))
	}
	seed := a.Forest.Trees()[0]
	if seed.Stage != forest.StageSeed {
		t.Fatalf("eager tree stage = %s, want seed", seed.Stage)
	}

	runToCompletion(a, 1)

	entries := a.Ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if !entry.Completed || entry.Duration != time.Minute || entry.PlannedDuration != time.Minute {
		t.Errorf("unexpected entry %+v", entry)
	}

	trees := a.Forest.Trees()
	if len(trees) != 1 {
		t.Fatalf("trees after completion = %d, want the seed reconciled", len(trees))
	}
	if trees[0].Stage != forest.StageTree {
		t.Errorf("tree stage = %s, want tree", trees[0].Stage)
	}
	if trees[0].SessionID != entry.ID {
		t.Error("tree not keyed by the session id")
	}
	if trees[0].ID != seed.ID || trees[0].Position != seed.Position {
		t.Error("completion replaced or moved the eager seed tree")
	}
}

func TestSessionVisibleToForestInSamePass(t *testing.T) {
	a := newTestApp(t)

	// An entry added outside any pass must produce its tree within the
	// same dispatch: the ledger handler runs before the forest's, so
	// the fresh entry is already visible to the sync.
	a.Ledger.AddEntry(domain.Entry{
		Mode:            domain.ModeShortFocus,
		StartTime:       time.Now(),
		EndTime:         time.Now().Add(25 * time.Minute),
		Duration:        25 * time.Minute,
		PlannedDuration: 25 * time.Minute,
		Completed:       true,
	})

	if len(a.Forest.Trees()) != 1 {
		t.Fatalf("trees = %d, want sync in the same pass", len(a.Forest.Trees()))
	}
}

func TestReentrantDispatchKeepsArrivalOrder(t *testing.T) {
	a := newTestApp(t)

	// Completion produces a burst of nested dispatches: the recorder
	// adds the ledger entry (session_added), then the engine announces
	// timer_completed and break_started. The log must show them in
	// arrival order.
	a.Timer.Start(domain.ModeShortFocus)
	runToCompletion(a, 1)

	var core []event.Kind
	for _, ev := range a.Events() {
		switch ev.Kind() {
		case event.TimerStarted, event.SessionAdded, event.TimerCompleted, event.BreakStarted:
			core = append(core, ev.Kind())
		}
	}
	want := []event.Kind{event.TimerStarted, event.SessionAdded, event.TimerCompleted, event.BreakStarted}
	if len(core) != len(want) {
		t.Fatalf("core sequence = %v, want %v", core, want)
	}
	for i := range want {
		if core[i] != want[i] {
			t.Fatalf("core sequence = %v, want %v", core, want)
		}
	}
}

// TestConcurrentTicksAndReads mirrors the live layout: the engine's
// ticker goroutine drives dispatch while the UI goroutine renders from
// the same slices. Run with -race.
func TestConcurrentTicksAndReads(t *testing.T) {
	a := newTestApp(t)
	if err := a.User.SubmitPseudo("alice"); err != nil {
		t.Fatal(err)
	}
	a.Timer.Start(domain.ModeShortFocus)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 60; i++ {
			a.Timer.Tick()
		}
	}()

	for {
		a.Ledger.Today()
		a.Ledger.Entries()
		a.Ledger.CurrentStreak()
		a.Forest.Trees()
		a.Settings.UI()
		a.User.Profile()
		a.Audio.Volume()
		a.Events()
		select {
		case <-done:
			if len(a.Ledger.Entries()) != 1 {
				t.Fatalf("entries after concurrent run = %d, want 1", len(a.Ledger.Entries()))
			}
			if len(a.Forest.Trees()) != 1 {
				t.Fatalf("trees after concurrent run = %d, want 1", len(a.Forest.Trees()))
			}
			return
		default:
		}
	}
}

func TestPersistAndReload(t *testing.T) {
	db, err := storage.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	a := New(testConfig(), db, nil)
	if err := a.User.SubmitPseudo("alice"); err != nil {
		t.Fatal(err)
	}
	a.Ledger.AddEntry(domain.Entry{
		Mode:            domain.ModeLongFocus,
		StartTime:       time.Now(),
		EndTime:         time.Now().Add(50 * time.Minute),
		Duration:        50 * time.Minute,
		PlannedDuration: 50 * time.Minute,
		Completed:       true,
	})
	a.Settings.SetTheme("dark")
	a.Audio.SetVolume(35)
	a.SaveAll()

	b := New(testConfig(), db, nil)
	if err := b.LoadState(); err != nil {
		t.Fatal(err)
	}

	if len(b.Ledger.Entries()) != 1 {
		t.Errorf("reloaded entries = %d, want 1", len(b.Ledger.Entries()))
	}
	if b.Settings.UI().Theme != "dark" {
		t.Errorf("reloaded theme = %s, want dark", b.Settings.UI().Theme)
	}
	if b.Audio.Volume() != 35 {
		t.Errorf("reloaded volume = %d, want 35", b.Audio.Volume())
	}
	if p, ok := b.User.Profile(); !ok || p.Pseudo != "alice" {
		t.Errorf("reloaded profile = %+v, ok = %v", p, ok)
	}
	if len(b.Forest.Trees()) != 1 {
		t.Errorf("reloaded trees = %d, want projection rebuilt from sessions", len(b.Forest.Trees()))
	}
}

func TestConfiguredFocusPlaylistStartsWithTimer(t *testing.T) {
	db, err := storage.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.FocusPlaylist = "lofi"
	a := New(cfg, db, nil)
	t.Cleanup(func() { _ = a.Close() })

	a.Audio.SetPlaylists([]domain.Playlist{
		{ID: "lofi", Name: "Lofi", Tracks: []domain.Track{{ID: "t1", Title: "One", URL: "https://cdn.example/one.mp3"}}},
	})

	a.Timer.Start(domain.ModeShortFocus)

	if pl, ok := a.Audio.CurrentPlaylist(); !ok || pl.ID != "lofi" {
		t.Fatalf("playlist after start = %+v, ok = %v, want lofi", pl, ok)
	}
}

func TestUserCounterFollowsCompletion(t *testing.T) {
	a := newTestApp(t)
	if err := a.User.SubmitPseudo("alice"); err != nil {
		t.Fatal(err)
	}

	a.Timer.Start(domain.ModeShortFocus)
	runToCompletion(a, 1)

	p, _ := a.User.Profile()
	if p.TotalSessions != 1 {
		t.Errorf("total sessions = %d, want 1", p.TotalSessions)
	}
}

func TestLogTrimKeepsDispatchWorking(t *testing.T) {
	a := newTestApp(t)
	for i := 0; i < 120; i++ {
		a.Dispatch(event.AudioPausePayload{})
	}
	if n := len(a.Events()); n > event.Capacity {
		t.Errorf("log length = %d, want <= %d", n, event.Capacity)
	}
	latest := a.Events()[len(a.Events())-1]
	if latest.Kind() != event.AudioPause {
		t.Errorf("latest kind = %s", latest.Kind())
	}
}
