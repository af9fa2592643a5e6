package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/tasks"
)

func sampleChangeLog() models.ChangeLog {
	return models.ChangeLog{
		Timestamp: "2025-03-14T09:26:53Z",
		Summary: models.ChangeSummary{
			TotalOld:           120,
			TotalNew:           123,
			AddedCount:         2,
			RemovedCount:       1,
			StatusChangesCount: 1,
		},
		Added: []models.ItemRef{
			{ID: "C1", Title: "Baz"},
			{ID: "C2", Title: "Qux"},
		},
		Removed: []models.ItemRef{{ID: "B1", Title: "Bar"}},
		StatusChanges: []models.StatusChange{
			{ID: "A1", Title: "Foo", OldStatus: "RELEASING", NewStatus: "FINISHED"},
		},
	}
}

func TestWriteCounters(t *testing.T) {
	var buf bytes.Buffer

	counters := []tasks.Counter{
		{Key: "added", Value: 2},
		{Key: "removed", Value: 1},
		{Key: "status_changes", Value: 1},
		{Key: "enriched", Value: 100},
		{Key: "not_found", Value: 23},
	}
	if err := WriteCounters(&buf, counters); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	want := "added=2\nremoved=1\nstatus_changes=1\nenriched=100\nnot_found=23\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestExportToText(t *testing.T) {
	output := string(ExportToText(sampleChangeLog()))

	for _, want := range []string{
		"Run: 2025-03-14T09:26:53Z",
		"Entries: 120 -> 123",
		"Added: 2, Removed: 1, Status changes: 1",
		"1. Baz (C1)",
		"1. Bar (B1)",
		"1. Foo: RELEASING -> FINISHED",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q:\n%s", want, output)
		}
	}

	empty := string(ExportToText(models.ChangeLog{Timestamp: "2025-03-14T09:26:53Z"}))
	if strings.Contains(empty, "Added:\n") || strings.Contains(empty, "Status changes:\n") {
		t.Errorf("empty sections should be omitted:\n%s", empty)
	}
}

func TestExportToMarkdown(t *testing.T) {
	output := string(ExportToMarkdown(sampleChangeLog()))

	for _, want := range []string{
		"# Catalog changes 2025-03-14T09:26:53Z",
		"**Entries**: 120 -> 123",
		"## Added",
		"2. Qux (`C2`)",
		"## Removed",
		"| Foo | RELEASING | FINISHED |",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown output missing %q:\n%s", want, output)
		}
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleChangeLog())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d rows", len(records))
	}
	if records[0][0] != "ID" || records[0][3] != "New Status" {
		t.Errorf("unexpected headers %v", records[0])
	}
	if records[1][1] != "Foo" || records[1][2] != "RELEASING" {
		t.Errorf("unexpected row %v", records[1])
	}
}

func TestExportChangeLog(t *testing.T) {
	log := sampleChangeLog()

	tests := []struct {
		format   string
		contains string
	}{
		{format: "json", contains: `"status_changes_count": 1`},
		{format: "csv", contains: "ID,Title,Old Status,New Status"},
		{format: "markdown", contains: "# Catalog changes"},
		{format: "md", contains: "# Catalog changes"},
		{format: "txt", contains: "Run: 2025-03-14T09:26:53Z"},
		{format: "text", contains: "Run: 2025-03-14T09:26:53Z"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, err := ExportChangeLog(log, tt.format)
			if err != nil {
				t.Fatalf("export failed: %v", err)
			}
			if !strings.Contains(string(data), tt.contains) {
				t.Errorf("%s output missing %q:\n%s", tt.format, tt.contains, data)
			}
		})
	}

	t.Run("unsupported format", func(t *testing.T) {
		if _, err := ExportChangeLog(log, "yaml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestStats(t *testing.T) {
	items := []models.EnrichedItem{
		{Anilist: &models.Enrichment{Genres: []string{"Action", "Comedy"}, Tags: []string{"Shounen"}}},
		{Anilist: &models.Enrichment{Genres: []string{"Action"}, Tags: []string{"Shounen", "Isekai"}}},
		{Anilist: &models.Enrichment{Genres: []string{"Drama"}}},
		{}, // unmatched entries contribute nothing
	}

	t.Run("genres ordered by count then name", func(t *testing.T) {
		stats := GenreStats(items, 0)
		want := []StatCount{{"Action", 2}, {"Comedy", 1}, {"Drama", 1}}
		if len(stats) != len(want) {
			t.Fatalf("got %d stats, want %d", len(stats), len(want))
		}
		for i := range want {
			if stats[i] != want[i] {
				t.Errorf("position %d: got %+v, want %+v", i, stats[i], want[i])
			}
		}
	})

	t.Run("top n truncates", func(t *testing.T) {
		stats := GenreStats(items, 1)
		if len(stats) != 1 || stats[0].Name != "Action" {
			t.Errorf("expected only the top genre, got %+v", stats)
		}
	})

	t.Run("tags", func(t *testing.T) {
		stats := TagStats(items, 10)
		if len(stats) != 2 || stats[0] != (StatCount{"Shounen", 2}) {
			t.Errorf("unexpected tag stats %+v", stats)
		}
	})

	t.Run("no enriched items", func(t *testing.T) {
		if stats := GenreStats(nil, 5); len(stats) != 0 {
			t.Errorf("expected empty stats, got %+v", stats)
		}
	})
}
