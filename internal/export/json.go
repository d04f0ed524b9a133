package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/evrenbey/grove/internal/domain"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Mode        string `json:"mode"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Completed   bool   `json:"completed"`
	Quality     string `json:"quality,omitempty"`
}

func ToJSON(entries []domain.Entry, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
	}

	for _, e := range entries {
		secs := int64(e.Duration / time.Second)
		export.Entries = append(export.Entries, jsonEntry{
			ID:          e.ID,
			Date:        e.Date,
			Mode:        string(e.Mode),
			StartTime:   e.StartTime.Local().Format(time.RFC3339),
			EndTime:     e.EndTime.Local().Format(time.RFC3339),
			DurationSec: secs,
			Duration:    formatDuration(secs),
			Completed:   e.Completed,
			Quality:     string(e.Quality),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// FromJSON reads a file produced by ToJSON back into ledger entries.
func FromJSON(path string) ([]domain.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json file: %w", err)
	}

	var in jsonExport
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse json file: %w", err)
	}

	entries := make([]domain.Entry, 0, len(in.Entries))
	for i, je := range in.Entries {
		start, err := time.Parse(time.RFC3339, je.StartTime)
		if err != nil {
			return nil, fmt.Errorf("entry %d: bad start time: %w", i, err)
		}
		end, err := time.Parse(time.RFC3339, je.EndTime)
		if err != nil {
			return nil, fmt.Errorf("entry %d: bad end time: %w", i, err)
		}
		entries = append(entries, domain.Entry{
			ID:        je.ID,
			Date:      je.Date,
			StartTime: start,
			EndTime:   end,
			Duration:  time.Duration(je.DurationSec) * time.Second,
			Mode:      domain.Mode(je.Mode),
			Completed: je.Completed,
			Quality:   domain.Quality(je.Quality),
		})
	}
	return entries, nil
}
