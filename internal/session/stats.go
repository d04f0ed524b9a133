package session

import (
	"time"

	"github.com/evrenbey/grove/internal/domain"
)

// DayStats are pure aggregates over one calendar day's qualifying
// entries. Never mutated in place; always recomputed from the ledger.
type DayStats struct {
	Date              string                        `json:"date"`
	TotalTime         time.Duration                 `json:"totalTime"`
	SessionCount      int                           `json:"sessionCount"`
	CompletedSessions int                           `json:"completedSessions"`
	Modes             map[domain.Mode]time.Duration `json:"modes"`
	AverageLength     time.Duration                 `json:"averageLength"`
	CompletionRate    float64                       `json:"completionRate"` // percent
}

// WeekStats aggregate a Monday-to-Sunday span.
type WeekStats struct {
	WeekStart         string        `json:"weekStart"` // Monday
	WeekEnd           string        `json:"weekEnd"`   // Sunday
	TotalTime         time.Duration `json:"totalTime"`
	TotalSessions     int           `json:"totalSessions"`
	CompletedSessions int           `json:"completedSessions"`
	Daily             []DayStats    `json:"daily"`
	AverageDailyTime  time.Duration `json:"averageDailyTime"`
	MostProductiveDay string        `json:"mostProductiveDay"`
	StreakDays        int           `json:"streakDays"`
}

// qualifies is the minimum-duration validity predicate. The threshold
// is configuration, not a constant; see config.IntendedMinSessionDuration
// for the history behind the default of zero.
func qualifies(e domain.Entry, minDuration time.Duration) bool {
	return e.Duration >= minDuration
}

// WeekStartOf returns the Monday of t's week as a calendar-day string.
// Weeks always start on Monday regardless of the input day.
func WeekStartOf(t time.Time) string {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday belongs to the week that started 6 days ago
		weekday = 7
	}
	monday := t.AddDate(0, 0, 1-weekday)
	return domain.DateOf(monday)
}

// WeekEndOf returns the Sunday closing the week that starts at
// weekStart (YYYY-MM-DD).
func WeekEndOf(weekStart string) string {
	start, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return weekStart
	}
	return domain.DateOf(start.AddDate(0, 0, 6))
}

// ComputeDayStats folds the qualifying entries of one day.
func ComputeDayStats(entries []domain.Entry, date string, minDuration time.Duration) DayStats {
	stats := DayStats{Date: date, Modes: make(map[domain.Mode]time.Duration)}
	for _, e := range entries {
		if e.Date != date || !qualifies(e, minDuration) {
			continue
		}
		stats.SessionCount++
		stats.TotalTime += e.Duration
		stats.Modes[e.Mode] += e.Duration
		if e.Completed {
			stats.CompletedSessions++
		}
	}
	if stats.SessionCount > 0 {
		stats.AverageLength = stats.TotalTime / time.Duration(stats.SessionCount)
		stats.CompletionRate = float64(stats.CompletedSessions) / float64(stats.SessionCount) * 100
	}
	return stats
}

// ComputeWeekStats folds the qualifying entries of the week starting at
// weekStart, recomputing day statistics day by day across the span.
func ComputeWeekStats(entries []domain.Entry, weekStart string, minDuration time.Duration) WeekStats {
	weekEnd := WeekEndOf(weekStart)
	stats := WeekStats{WeekStart: weekStart, WeekEnd: weekEnd}

	start, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return stats
	}
	for i := 0; i < 7; i++ {
		day := domain.DateOf(start.AddDate(0, 0, i))
		stats.Daily = append(stats.Daily, ComputeDayStats(entries, day, minDuration))
	}

	for _, e := range entries {
		if e.Date < weekStart || e.Date > weekEnd || !qualifies(e, minDuration) {
			continue
		}
		stats.TotalSessions++
		stats.TotalTime += e.Duration
		if e.Completed {
			stats.CompletedSessions++
		}
	}

	stats.AverageDailyTime = stats.TotalTime / 7
	most := stats.Daily[0]
	for _, d := range stats.Daily[1:] {
		if d.TotalTime > most.TotalTime {
			most = d
		}
	}
	stats.MostProductiveDay = most.Date
	stats.StreakDays = trailingStreak(stats.Daily)
	return stats
}

// trailingStreak counts consecutive days with sessions, scanning back
// from the end of the span.
func trailingStreak(daily []DayStats) int {
	streak := 0
	for i := len(daily) - 1; i >= 0; i-- {
		if daily[i].SessionCount == 0 {
			break
		}
		streak++
	}
	return streak
}

// GoalReached reports whether actual minutes meet the goal.
func GoalReached(actualMinutes, goalMinutes int) bool {
	return actualMinutes >= goalMinutes
}

// GoalProgress returns goal completion as a percentage capped at 100.
func GoalProgress(actual, goal int) float64 {
	if goal == 0 {
		return 0
	}
	pct := float64(actual) / float64(goal) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
