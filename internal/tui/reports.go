package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbey/grove/internal/session"
	"github.com/evrenbey/grove/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	app    *store.App
	width  int
	height int

	mode   reportMode
	offset int // weeks back from the current one (0 = current)

	chart barchart.Model
}

func newReportsModel(app *store.App) reportsModel {
	return reportsModel{
		app:   app,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

// weekAnchor returns a time inside the week the view is focused on.
func (r reportsModel) weekAnchor() time.Time {
	return time.Now().AddDate(0, 0, -7*r.offset)
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			r.buildChart()
			return r, nil
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			r.buildChart()
			return r, nil
		case key.Matches(msg, keys.Tab):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			r.buildChart()
			return r, nil
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	completedStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	partialStyle := lipgloss.NewStyle().Foreground(colorSubtle)

	var bars []barchart.BarData
	for _, day := range r.visibleDays() {
		d, err := time.Parse("2006-01-02", day.Date)
		label := day.Date
		if err == nil {
			label = d.Format("Mon 02")
		}

		completedHours := 0.0
		if day.SessionCount > 0 {
			completedHours = day.TotalTime.Hours() * float64(day.CompletedSessions) / float64(day.SessionCount)
		}
		restHours := day.TotalTime.Hours() - completedHours

		values := []barchart.BarValue{
			{Name: "completed", Value: completedHours, Style: completedStyle},
		}
		if restHours > 0 {
			values = append(values, barchart.BarValue{Name: "stopped", Value: restHours, Style: partialStyle})
		}

		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

// visibleDays returns the seven daily folds of the focused range:
// calendar weeks in weekly mode, the trailing seven days otherwise.
func (r reportsModel) visibleDays() []session.DayStats {
	if r.mode == reportWeekly {
		return r.app.Ledger.WeekStatsFor(r.weekAnchor()).Daily
	}

	end := time.Now().AddDate(0, 0, -7*r.offset)
	days := make([]session.DayStats, 0, 7)
	for i := 6; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		days = append(days, r.app.Ledger.DayStatsFor(date))
	}
	return days
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Last 7 days")
	weeklyTab := inactiveTabStyle.Render("Calendar week")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Last 7 days")
	} else {
		weeklyTab = activeTabStyle.Render("Calendar week")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs,
	)

	chartView := r.chart.View()
	goals := r.renderGoals(w)
	table := r.renderSummaryTable(w)
	nav := mutedStyle.Render("  ←/→: navigate  tab: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", goals, "", table, "", nav,
		),
	)
}

func (r reportsModel) renderGoals(w int) string {
	goals := r.app.Ledger.Goals()
	today := r.app.Ledger.Today()
	week := r.app.Ledger.Week()

	dailyPct := session.GoalProgress(int(today.TotalTime.Minutes()), goals.DailyMinutes)
	weeklyPct := session.GoalProgress(int(week.TotalTime.Minutes()), goals.WeeklyMinutes)

	return strings.Join([]string{
		fmt.Sprintf("  daily goal   %s %.0f%%", renderGoalBar(dailyPct, 24), dailyPct),
		fmt.Sprintf("  weekly goal  %s %.0f%%", renderGoalBar(weeklyPct, 24), weeklyPct),
	}, "\n")
}

func renderGoalBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar
}

func (r reportsModel) renderSummaryTable(w int) string {
	days := r.visibleDays()

	any := false
	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %12s", "Date", "Sessions", "Done", "Duration"))
	rows = append(rows, headerRow)
	limit := w - 6
	if limit > 48 {
		limit = 48
	}
	if limit < 0 {
		limit = 0
	}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", limit)))

	for _, d := range days {
		if d.SessionCount == 0 {
			continue
		}
		any = true
		rows = append(rows, fmt.Sprintf("  %-12s %10d %10d %12s",
			d.Date, d.SessionCount, d.CompletedSessions, formatDuration(d.TotalTime),
		))
	}
	if !any {
		return mutedStyle.Render("  No sessions in this period")
	}
	return strings.Join(rows, "\n")
}
