// Package cli wires the cobra command tree. The bare command opens the
// interactive terminal UI; subcommands give scripted access to the
// ledger without entering it.
package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/evrenbey/grove/internal/background"
	"github.com/evrenbey/grove/internal/playlist"
	"github.com/evrenbey/grove/internal/store"
	"github.com/evrenbey/grove/internal/tui"
)

// App carries the wired application state into commands.
type App struct {
	Store    *store.App
	Playlist *playlist.Client
	Images   *background.Client
}

// NewRootCmd creates the top-level "grove" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "grove",
		Short:        "Focus timer that grows a forest",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(
				tui.NewApp(app.Store, app.Playlist, app.Images),
				tea.WithAltScreen(),
			)
			_, err := p.Run()
			app.Store.SaveAll()
			return err
		},
	}

	root.AddCommand(
		newStatsCmd(app),
		newExportCmd(app),
		newImportCmd(app),
	)

	return root
}
