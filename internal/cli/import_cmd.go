package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evrenbey/grove/internal/export"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import ledger entries from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := export.FromJSON(args[0])
			if err != nil {
				return err
			}

			added := 0
			for _, e := range entries {
				if _, ok := app.Store.Ledger.EntryByID(e.ID); ok {
					continue
				}
				app.Store.Ledger.AddEntry(e)
				added++
			}
			app.Store.SaveAll()

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d duplicates skipped)\n",
				added, len(entries)-added)
			return nil
		},
	}
	return cmd
}
