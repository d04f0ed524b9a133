package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/store"
	"github.com/evrenbey/grove/internal/timer"
)

var modeCycle = []domain.Mode{domain.ModeShortFocus, domain.ModeLongFocus, domain.ModeCustom}

type timerModel struct {
	app    *store.App
	width  int
	height int

	bar progress.Model
}

func newTimerModel(app *store.App) timerModel {
	bar := progress.New(progress.WithGradient("#2ECC71", "#7AA2F7"))
	bar.ShowPercentage = false
	return timerModel{app: app, bar: bar}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
	barWidth := w - 12
	if barWidth < 10 {
		barWidth = 10
	}
	t.bar.Width = barWidth
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// The engine counts down on its own ticker; the message only
		// forces a redraw.
		return t, nil

	case tea.KeyMsg:
		state := t.app.Timer.State()
		switch {
		case key.Matches(msg, keys.Start):
			if state == timer.Idle {
				t.app.Timer.Start(t.app.Timer.Preset().Mode)
				return t, statusCmd("Session started")
			}
		case key.Matches(msg, keys.Pause):
			switch state {
			case timer.Running:
				t.app.Timer.Pause()
			case timer.Paused:
				t.app.Timer.Resume()
			}
			return t, nil
		case key.Matches(msg, keys.Stop):
			if state != timer.Idle {
				t.app.Timer.Stop()
				if state == timer.Break {
					return t, statusCmd("Break skipped")
				}
				return t, statusCmd("Session stopped")
			}
		case key.Matches(msg, keys.Mode):
			if state == timer.Idle {
				t.app.Timer.SwitchMode(nextMode(t.app.Timer.Preset().Mode))
			}
			return t, nil
		}
	}
	return t, nil
}

func nextMode(m domain.Mode) domain.Mode {
	for i, c := range modeCycle {
		if c == m {
			return modeCycle[(i+1)%len(modeCycle)]
		}
	}
	return modeCycle[0]
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func (t timerModel) view() string {
	w := t.width - 4
	state := t.app.Timer.State()
	preset := t.app.Timer.Preset()
	remaining := t.app.Timer.Remaining()

	title := titleStyle.Render(preset.Name)

	var timeDisplay, stateLabel string
	switch state {
	case timer.Running:
		timeDisplay = timerRunningStyle.Width(w - 6).Render(formatClock(remaining))
		stateLabel = accentStyle.Bold(true).Render("FOCUS")
	case timer.Paused:
		timeDisplay = timerPausedStyle.Width(w - 6).Render(formatClock(remaining))
		stateLabel = warningStyle.Bold(true).Render("PAUSED")
	case timer.Break:
		timeDisplay = timerBreakStyle.Width(w - 6).Render(formatClock(remaining))
		stateLabel = successStyle.Bold(true).Render("BREAK")
	default:
		timeDisplay = timerStyle.Width(w - 6).Render(formatClock(remaining))
		stateLabel = mutedStyle.Render("Ready")
	}

	var bar string
	if state == timer.Running || state == timer.Paused {
		bar = t.bar.ViewAs(t.app.Timer.Progress())
	}

	dots := t.renderSessionDots()
	streak := t.renderStreakLine()

	var controls string
	switch state {
	case timer.Idle:
		controls = mutedStyle.Render("s: start  m: mode  q: quit")
	case timer.Break:
		controls = mutedStyle.Render("x: skip break")
	default:
		controls = mutedStyle.Render("space: pause/resume  x: stop")
	}

	parts := []string{title, "", timeDisplay, stateLabel}
	if bar != "" {
		parts = append(parts, "", bar)
	}
	parts = append(parts, "", dots, streak, "", controls)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, parts...),
	)
}

// renderSessionDots shows today's completed sessions against the daily
// target.
func (t timerModel) renderSessionDots() string {
	today := t.app.Ledger.Today()
	target := t.app.Ledger.Goals().TargetPerDay
	if target < 1 {
		target = 1
	}

	var parts []string
	for i := 0; i < target; i++ {
		switch {
		case i < today.CompletedSessions:
			parts = append(parts, successStyle.Render("●"))
		case i == today.CompletedSessions && t.app.Timer.State() == timer.Running:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d today", today.CompletedSessions, target))
	return strings.Join(parts, " ") + counter
}

func (t timerModel) renderStreakLine() string {
	streak := t.app.Ledger.CurrentStreak()
	if streak == 0 {
		return mutedStyle.Render("no active streak")
	}
	label := "days"
	if streak == 1 {
		label = "day"
	}
	return highlightStyle.Render(fmt.Sprintf("🔥 %d %s streak", streak, label))
}
