package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbey/grove/internal/forest"
	"github.com/evrenbey/grove/internal/store"
)

// worldRadius bounds the raster projection; placement never puts a tree
// further out than the rim fallback.
const worldRadius = 45.0

type forestModel struct {
	app    *store.App
	width  int
	height int
}

func newForestModel(app *store.App) forestModel {
	return forestModel{app: app}
}

func (f *forestModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f forestModel) update(msg tea.Msg) (forestModel, tea.Cmd) {
	return f, nil
}

func (f forestModel) view() string {
	if f.width < 20 {
		return "Terminal too small"
	}
	contentWidth := f.width - 4

	summary := f.renderSummaryPanel(contentWidth)
	grid := f.renderForestPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, summary, grid)
}

func (f forestModel) renderSummaryPanel(w int) string {
	today := f.app.Ledger.Today()
	week := f.app.Ledger.Week()

	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatDuration(today.TotalTime))
	header := fmt.Sprintf("%s  %s", title, total)

	rows := []string{
		header,
		fmt.Sprintf("  sessions   %d (%d completed)", today.SessionCount, today.CompletedSessions),
		fmt.Sprintf("  this week  %s across %d sessions", formatHours(week.TotalTime), week.TotalSessions),
		fmt.Sprintf("  streak     %d days (best %d)", f.app.Ledger.CurrentStreak(), f.app.Ledger.LongestStreak()),
	}
	if today.SessionCount > 0 {
		rows = append(rows, fmt.Sprintf("  completion %.0f%%", today.CompletionRate))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (f forestModel) renderForestPanel(w int) string {
	trees := f.app.Forest.Trees()

	title := titleStyle.Render(fmt.Sprintf("Forest (%d trees)", len(trees)))
	if len(trees) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing planted yet. Complete a session to grow your first tree."),
		)
		return panelStyle.Width(w).Render(content)
	}

	grid := f.renderGrid(trees, w-6)
	legend := f.renderLegend(trees)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", grid, "", legend),
	)
}

// renderGrid projects tree positions onto a character raster. Terminal
// cells are about twice as tall as wide, so the vertical axis is
// compressed to keep the layout roughly round.
func (f forestModel) renderGrid(trees []forest.Tree, cols int) string {
	if cols > 64 {
		cols = 64
	}
	if cols < 16 {
		cols = 16
	}
	rows := cols / 3

	raster := make([][]string, rows)
	for r := range raster {
		raster[r] = make([]string, cols)
		for c := range raster[r] {
			raster[r][c] = " "
		}
	}

	for _, tr := range trees {
		col := int((tr.Position.X + worldRadius) / (2 * worldRadius) * float64(cols))
		row := int((tr.Position.Z + worldRadius) / (2 * worldRadius) * float64(rows))
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		raster[row][col] = treeGlyph(tr)
	}

	lines := make([]string, rows)
	for r := range raster {
		lines[r] = strings.Join(raster[r], "")
	}
	return strings.Join(lines, "\n")
}

func treeGlyph(t forest.Tree) string {
	switch t.Stage {
	case forest.StageSeed:
		return seedStyle.Render("·")
	case forest.StageBush:
		return bushStyle.Render("*")
	}
	switch t.VisualType {
	case forest.Oak:
		return oakStyle.Render("♠")
	case forest.Pine:
		return pineStyle.Render("▲")
	case forest.Birch:
		return birchStyle.Render("†")
	case forest.Willow:
		return willowStyle.Render("~")
	}
	return oakStyle.Render("♠")
}

func (f forestModel) renderLegend(trees []forest.Tree) string {
	counts := make(map[forest.VisualType]int)
	seeds := 0
	for _, t := range trees {
		if t.Stage == forest.StageTree {
			counts[t.VisualType]++
		} else {
			seeds++
		}
	}

	var items []string
	if n := counts[forest.Oak]; n > 0 {
		items = append(items, fmt.Sprintf("%s oak ×%d", oakStyle.Render("♠"), n))
	}
	if n := counts[forest.Pine]; n > 0 {
		items = append(items, fmt.Sprintf("%s pine ×%d", pineStyle.Render("▲"), n))
	}
	if n := counts[forest.Birch]; n > 0 {
		items = append(items, fmt.Sprintf("%s birch ×%d", birchStyle.Render("†"), n))
	}
	if n := counts[forest.Willow]; n > 0 {
		items = append(items, fmt.Sprintf("%s willow ×%d", willowStyle.Render("~"), n))
	}
	if seeds > 0 {
		items = append(items, fmt.Sprintf("%s growing ×%d", seedStyle.Render("·"), seeds))
	}
	return mutedStyle.Render("  ") + strings.Join(items, "  ")
}
