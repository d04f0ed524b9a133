package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/evrenbey/grove/internal/domain"
)

func ToCSV(entries []domain.Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Date", "Mode", "Start", "End", "Duration (s)", "Duration", "Completed", "Quality"}); err != nil {
		return err
	}

	for _, e := range entries {
		secs := int64(e.Duration / time.Second)
		row := []string{
			e.ID,
			e.Date,
			string(e.Mode),
			e.StartTime.Local().Format(time.RFC3339),
			e.EndTime.Local().Format(time.RFC3339),
			strconv.FormatInt(secs, 10),
			formatDuration(secs),
			strconv.FormatBool(e.Completed),
			string(e.Quality),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
