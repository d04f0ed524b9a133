package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evrenbey/grove/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the session ledger to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := app.Store.Ledger.Entries()

			path := out
			if path == "" {
				path = fmt.Sprintf("grove-export-%s.%s", time.Now().Format("2006-01-02"), format)
			}

			switch format {
			case "csv":
				if err := export.ToCSV(entries, path); err != nil {
					return err
				}
			case "json":
				if err := export.ToJSON(entries, path); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (csv or json)", format)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format (csv or json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default grove-export-<date>.<format>)")
	return cmd
}
