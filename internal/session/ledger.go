package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
)

// Emitter is the ledger's outbound path. Mutations announce themselves
// through it; the owner decides how the announcement travels.
type Emitter func(p event.Payload)

// Goals are the user's targets. Zero values are replaced by defaults
// when importing older bundles.
type Goals struct {
	DailyMinutes      int `json:"dailyMinutes"`
	WeeklyMinutes     int `json:"weeklyMinutes"`
	TargetPerDay      int `json:"targetPerDay"`
	LongBreakInterval int `json:"longBreakInterval"`
}

// DefaultGoals mirror a roughly four-hour focus day.
func DefaultGoals() Goals {
	return Goals{
		DailyMinutes:      240,
		WeeklyMinutes:     1200,
		TargetPerDay:      8,
		LongBreakInterval: 4,
	}
}

// Ledger is the append-log of finished sessions plus everything
// derived from it. Statistics are recomputed after every mutation, so
// reads always see aggregates consistent with the entry list. Safe for
// concurrent use; announcements fire after the lock is released so an
// emitter may call back into the ledger.
type Ledger struct {
	mu sync.Mutex

	entries []domain.Entry
	goals   Goals

	currentStreak int
	longestStreak int
	totalSessions int
	totalTime     time.Duration

	today DayStats
	week  WeekStats

	minDuration time.Duration
	now         func() time.Time
	emit        Emitter
}

// NewLedger builds an empty ledger. The emitter may be nil, in which
// case mutations are silent.
func NewLedger(minDuration time.Duration, emit Emitter) *Ledger {
	l := &Ledger{
		goals:       DefaultGoals(),
		minDuration: minDuration,
		now:         time.Now,
		emit:        emit,
	}
	l.recomputeLocked()
	return l
}

func (l *Ledger) announce(payloads ...event.Payload) {
	if l.emit == nil {
		return
	}
	for _, p := range payloads {
		if p != nil {
			l.emit(p)
		}
	}
}

// AddEntry records a finished session and refreshes every aggregate.
// Entries below the validity threshold are stored but excluded from
// statistics.
func (l *Ledger) AddEntry(e domain.Entry) domain.Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date == "" {
		e.Date = domain.DateOf(e.StartTime)
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	streak := l.recomputeLocked()
	l.mu.Unlock()

	l.announce(streak, event.SessionAddedPayload{
		SessionID: e.ID,
		Mode:      e.Mode,
		Duration:  int(e.Duration / time.Second),
		Completed: e.Completed,
	})
	return e
}

// EntryUpdate names the fields UpdateEntry may change. Nil fields keep
// their current value.
type EntryUpdate struct {
	Duration  *time.Duration
	Completed *bool
	Quality   *domain.Quality
}

// UpdateEntry applies a partial update to the entry with the given id.
func (l *Ledger) UpdateEntry(id string, u EntryUpdate) error {
	l.mu.Lock()
	for i := range l.entries {
		if l.entries[i].ID != id {
			continue
		}
		if u.Duration != nil {
			l.entries[i].Duration = *u.Duration
		}
		if u.Completed != nil {
			l.entries[i].Completed = *u.Completed
		}
		if u.Quality != nil {
			l.entries[i].Quality = *u.Quality
		}
		streak := l.recomputeLocked()
		l.mu.Unlock()
		l.announce(streak, event.SessionUpdatedPayload{SessionID: id})
		return nil
	}
	l.mu.Unlock()
	return fmt.Errorf("update session %s: not found", id)
}

// RemoveEntry deletes the entry with the given id. Removing an unknown
// id is a no-op.
func (l *Ledger) RemoveEntry(id string) {
	l.mu.Lock()
	for i := range l.entries {
		if l.entries[i].ID != id {
			continue
		}
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		streak := l.recomputeLocked()
		l.mu.Unlock()
		l.announce(streak, event.SessionRemovedPayload{SessionID: id})
		return
	}
	l.mu.Unlock()
}

// Entries returns a copy of the entry list, oldest first.
func (l *Ledger) Entries() []domain.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entriesLocked()
}

func (l *Ledger) entriesLocked() []domain.Entry {
	out := make([]domain.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// EntryByID returns the entry with the given id.
func (l *Ledger) EntryByID(id string) (domain.Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Entry{}, false
}

// Goals returns the current targets.
func (l *Ledger) Goals() Goals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.goals
}

// SetGoals replaces the targets and refreshes goal-dependent stats.
func (l *Ledger) SetGoals(g Goals) {
	l.mu.Lock()
	l.goals = g
	streak := l.recomputeLocked()
	l.mu.Unlock()
	l.announce(streak)
}

// Today returns today's aggregates.
func (l *Ledger) Today() DayStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.today
}

// Week returns the current Monday-to-Sunday aggregates.
func (l *Ledger) Week() WeekStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.week
}

// CurrentStreak is the run of consecutive days, ending at the most
// recent active day, on which at least one qualifying session landed.
func (l *Ledger) CurrentStreak() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentStreak
}

// LongestStreak is the historical maximum of CurrentStreak.
func (l *Ledger) LongestStreak() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.longestStreak
}

// TotalSessions counts qualifying entries across all time.
func (l *Ledger) TotalSessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSessions
}

// TotalTime sums qualifying entry durations across all time.
func (l *Ledger) TotalTime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalTime
}

// DayStatsFor computes aggregates for an arbitrary calendar day.
func (l *Ledger) DayStatsFor(date string) DayStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ComputeDayStats(l.entries, date, l.minDuration)
}

// WeekStatsFor computes aggregates for the week containing t.
func (l *Ledger) WeekStatsFor(t time.Time) WeekStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ComputeWeekStats(l.entries, WeekStartOf(t), l.minDuration)
}

// RefreshStats recomputes every aggregate, for callers that changed an
// input the ledger cannot see, such as a date rollover.
func (l *Ledger) RefreshStats() {
	l.mu.Lock()
	streak := l.recomputeLocked()
	l.mu.Unlock()
	l.announce(streak)
}

// HandleEvents reacts to the newest log entry. Settings changes can
// move goal thresholds, so aggregates are refreshed.
func (l *Ledger) HandleEvents(log []event.Event) {
	if len(log) == 0 {
		return
	}
	switch log[len(log)-1].Payload.(type) {
	case event.SettingsUpdatedPayload:
		l.RefreshStats()
	}
}

// ClearAll wipes every entry and resets the derived state.
func (l *Ledger) ClearAll() {
	l.mu.Lock()
	l.entries = nil
	l.currentStreak = 0
	l.longestStreak = 0
	streak := l.recomputeLocked()
	l.mu.Unlock()
	l.announce(streak, event.DataClearedPayload{})
}

// recomputeLocked rebuilds every aggregate from the entry list. It
// returns a streak payload when the current streak moved, for the
// caller to announce once the lock is released.
func (l *Ledger) recomputeLocked() event.Payload {
	now := l.now()
	l.today = ComputeDayStats(l.entries, domain.DateOf(now), l.minDuration)
	l.week = ComputeWeekStats(l.entries, WeekStartOf(now), l.minDuration)

	l.totalSessions = 0
	l.totalTime = 0
	for _, e := range l.entries {
		if !qualifies(e, l.minDuration) {
			continue
		}
		l.totalSessions++
		l.totalTime += e.Duration
	}
	return l.updateStreaksLocked(now)
}

// updateStreaksLocked scans backward from the most recent day with a
// qualifying session, counting consecutive active days. The longest
// streak is a running maximum and never shrinks.
func (l *Ledger) updateStreaksLocked(now time.Time) event.Payload {
	active := make(map[string]bool)
	for _, e := range l.entries {
		if qualifies(e, l.minDuration) {
			active[e.Date] = true
		}
	}
	if len(active) == 0 {
		l.currentStreak = 0
		return nil
	}

	dates := make([]string, 0, len(active))
	for d := range active {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	anchor, err := time.Parse("2006-01-02", dates[len(dates)-1])
	if err != nil {
		l.currentStreak = 0
		return nil
	}

	streak := 0
	for day := anchor; active[domain.DateOf(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}

	changed := streak != l.currentStreak
	l.currentStreak = streak
	if streak > l.longestStreak {
		l.longestStreak = streak
	}
	if !changed {
		return nil
	}
	return event.StreakUpdatedPayload{
		CurrentStreak: l.currentStreak,
		LongestStreak: l.longestStreak,
	}
}
