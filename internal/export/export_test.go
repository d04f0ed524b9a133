package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evrenbey/grove/internal/domain"
)

func sampleEntries() []domain.Entry {
	start := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	return []domain.Entry{
		{
			ID:              "s-1",
			Date:            "2026-03-11",
			StartTime:       start,
			EndTime:         start.Add(25 * time.Minute),
			Duration:        25 * time.Minute,
			PlannedDuration: 25 * time.Minute,
			Mode:            domain.ModeShortFocus,
			Completed:       true,
			Quality:         domain.QualityHigh,
		},
		{
			ID:              "s-2",
			Date:            "2026-03-11",
			StartTime:       start.Add(time.Hour),
			EndTime:         start.Add(time.Hour + 50*time.Minute),
			Duration:        50 * time.Minute,
			PlannedDuration: 50 * time.Minute,
			Mode:            domain.ModeLongFocus,
			Completed:       true,
		},
		{
			ID:              "s-3",
			Date:            "2026-03-12",
			StartTime:       start.Add(24 * time.Hour),
			EndTime:         start.Add(24*time.Hour + 10*time.Minute),
			Duration:        10 * time.Minute,
			PlannedDuration: 30 * time.Minute,
			Mode:            domain.ModeCustom,
			Completed:       false, // stopped early
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	entries := sampleEntries()
	path := filepath.Join(t.TempDir(), "test.csv")

	err := ToCSV(entries, path)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	// Check header
	header := records[0]
	expectedHeader := []string{"ID", "Date", "Mode", "Start", "End", "Duration (s)", "Duration", "Completed", "Quality"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	// Check first data row
	row := records[1]
	if row[0] != "s-1" {
		t.Fatalf("ID = %q, want s-1", row[0])
	}
	if row[2] != "short-focus" {
		t.Fatalf("Mode = %q, want short-focus", row[2])
	}
	if row[5] != "1500" {
		t.Fatalf("Duration (s) = %q, want 1500", row[5])
	}
	if row[6] != "00:25:00" {
		t.Fatalf("Duration = %q, want 00:25:00", row[6])
	}
	if row[7] != "true" {
		t.Fatalf("Completed = %q, want true", row[7])
	}
	if row[8] != "high" {
		t.Fatalf("Quality = %q, want high", row[8])
	}

	// Stopped entry is still exported, flagged incomplete with no quality.
	stopped := records[3]
	if stopped[7] != "false" {
		t.Fatalf("stopped entry Completed = %q, want false", stopped[7])
	}
	if stopped[8] != "" {
		t.Fatalf("stopped entry Quality = %q, want empty", stopped[8])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	err := ToCSV(nil, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	entries := sampleEntries()
	path := filepath.Join(t.TempDir(), "test.json")

	err := ToJSON(entries, path)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(result.Entries))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	// Check first entry
	e := result.Entries[0]
	if e.ID != "s-1" {
		t.Fatalf("ID = %q, want s-1", e.ID)
	}
	if e.Date != "2026-03-11" {
		t.Fatalf("Date = %q", e.Date)
	}
	if e.DurationSec != 1500 {
		t.Fatalf("DurationSec = %d, want 1500", e.DurationSec)
	}
	if e.Duration != "00:25:00" {
		t.Fatalf("Duration = %q, want 00:25:00", e.Duration)
	}
	if e.Quality != "high" {
		t.Fatalf("Quality = %q", e.Quality)
	}

	// Quality is omitted entirely when unset.
	if strings.Contains(string(data), `"quality": ""`) {
		t.Fatal("empty quality should be omitted")
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	err := ToJSON(nil, path)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Entries != nil {
		t.Fatal("entries should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestFromJSONRoundTrip(t *testing.T) {
	entries := sampleEntries()
	path := filepath.Join(t.TempDir(), "round.json")

	if err := ToJSON(entries, path); err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	got, err := FromJSON(path)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		g := got[i]
		if g.ID != e.ID || g.Date != e.Date || g.Mode != e.Mode {
			t.Errorf("entry %d identity mismatch: %+v", i, g)
		}
		if g.Duration != e.Duration {
			t.Errorf("entry %d duration = %v, want %v", i, g.Duration, e.Duration)
		}
		if g.Completed != e.Completed || g.Quality != e.Quality {
			t.Errorf("entry %d flags mismatch: %+v", i, g)
		}
		if !g.StartTime.Equal(e.StartTime.Truncate(time.Second)) {
			t.Errorf("entry %d start = %v, want %v", i, g.StartTime, e.StartTime)
		}
	}
}

func TestFromJSONMissingFile(t *testing.T) {
	if _, err := FromJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := FromJSON(path); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, path)

	data, _ := os.ReadFile(path)
	// Pretty-printed JSON should contain newlines and indentation
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	entries := sampleEntries()
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(entries, path)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	// exported_at should be valid RFC3339
	_, err := time.Parse(time.RFC3339, result.ExportedAt)
	if err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	// entry timestamps should be valid RFC3339
	for _, e := range result.Entries {
		_, err := time.Parse(time.RFC3339, e.StartTime)
		if err != nil {
			t.Fatalf("start_time is not valid RFC3339: %q", e.StartTime)
		}
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
