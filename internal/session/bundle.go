package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
)

// BundleVersion tags exported data so future formats can migrate.
const BundleVersion = "1.0"

// Bundle is the portable snapshot of the ledger: entries, goals and
// all-time counters under a version tag.
type Bundle struct {
	Version       string         `json:"version"`
	ExportedAt    time.Time      `json:"exportedAt"`
	Sessions      []domain.Entry `json:"sessions"`
	Goals         *Goals         `json:"goals,omitempty"`
	LongestStreak int            `json:"longestStreak"`
}

// Export serializes the ledger into a versioned bundle.
func (l *Ledger) Export() ([]byte, error) {
	l.mu.Lock()
	goals := l.goals
	b := Bundle{
		Version:       BundleVersion,
		ExportedAt:    l.now(),
		Sessions:      l.entriesLocked(),
		Goals:         &goals,
		LongestStreak: l.longestStreak,
	}
	l.mu.Unlock()
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export sessions: %w", err)
	}
	return data, nil
}

// Import replaces the ledger with the bundle's contents. The bundle
// must carry a version tag and a sessions collection; fields missing
// from older bundles are merged against defaults. The current state is
// untouched when validation fails.
func (l *Ledger) Import(data []byte) error {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("import sessions: %w", err)
	}
	if b.Version == "" {
		return fmt.Errorf("import sessions: missing version tag")
	}
	if b.Sessions == nil {
		return fmt.Errorf("import sessions: missing sessions collection")
	}

	goals := DefaultGoals()
	if b.Goals != nil {
		merged := *b.Goals
		if merged.DailyMinutes == 0 {
			merged.DailyMinutes = goals.DailyMinutes
		}
		if merged.WeeklyMinutes == 0 {
			merged.WeeklyMinutes = goals.WeeklyMinutes
		}
		if merged.TargetPerDay == 0 {
			merged.TargetPerDay = goals.TargetPerDay
		}
		if merged.LongBreakInterval == 0 {
			merged.LongBreakInterval = goals.LongBreakInterval
		}
		goals = merged
	}

	l.mu.Lock()
	l.entries = append([]domain.Entry(nil), b.Sessions...)
	l.goals = goals
	l.currentStreak = 0
	l.longestStreak = b.LongestStreak
	streak := l.recomputeLocked()
	l.mu.Unlock()
	l.announce(streak, event.DataImportedPayload{SessionCount: len(b.Sessions)})
	return nil
}
