package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evrenbey/grove/internal/session"
)

func newStatsCmd(app *App) *cobra.Command {
	var week bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print session statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ledger := app.Store.Ledger
			goals := ledger.Goals()

			if week {
				w := ledger.Week()
				fmt.Fprintf(out, "Week %s – %s\n", w.WeekStart, w.WeekEnd)
				fmt.Fprintf(out, "  total time        %s\n", fmtDur(w.TotalTime))
				fmt.Fprintf(out, "  sessions          %d (%d completed)\n", w.TotalSessions, w.CompletedSessions)
				fmt.Fprintf(out, "  daily average     %s\n", fmtDur(w.AverageDailyTime))
				if w.MostProductiveDay != "" {
					fmt.Fprintf(out, "  best day          %s\n", w.MostProductiveDay)
				}
				fmt.Fprintf(out, "  weekly goal       %.0f%%\n",
					session.GoalProgress(int(w.TotalTime.Minutes()), goals.WeeklyMinutes))
				return nil
			}

			d := ledger.Today()
			fmt.Fprintf(out, "Today %s\n", d.Date)
			fmt.Fprintf(out, "  total time        %s\n", fmtDur(d.TotalTime))
			fmt.Fprintf(out, "  sessions          %d (%d completed)\n", d.SessionCount, d.CompletedSessions)
			if d.SessionCount > 0 {
				fmt.Fprintf(out, "  average length    %s\n", fmtDur(d.AverageLength))
				fmt.Fprintf(out, "  completion rate   %.0f%%\n", d.CompletionRate)
			}
			fmt.Fprintf(out, "  daily goal        %.0f%%\n",
				session.GoalProgress(int(d.TotalTime.Minutes()), goals.DailyMinutes))
			fmt.Fprintf(out, "  streak            %d days (best %d)\n",
				ledger.CurrentStreak(), ledger.LongestStreak())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&week, "week", "w", false, "show the current week instead of today")
	return cmd
}

func fmtDur(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
