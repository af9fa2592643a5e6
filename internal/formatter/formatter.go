// package formatter provides functions to export run results to various formats (CSV, Markdown, plain text)
// plus machine-readable counter output for CI workflows.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/shared"
	"github.com/desertthunder/anidex/internal/tasks"
)

// WriteCounters writes run counters as key=value lines.
//
// The format matches what CI output files expect (one pair per line), so the
// writer can point at $GITHUB_OUTPUT or stdout interchangeably.
func WriteCounters(w io.Writer, counters []tasks.Counter) error {
	for _, counter := range counters {
		if _, err := fmt.Fprintf(w, "%s=%d\n", counter.Key, counter.Value); err != nil {
			return fmt.Errorf("failed to write counter: %w", err)
		}
	}
	return nil
}

// ExportToText converts a change log to plain text format
func ExportToText(changeLog models.ChangeLog) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s\n", changeLog.Timestamp))
	buf.WriteString(fmt.Sprintf("Entries: %d -> %d\n", changeLog.Summary.TotalOld, changeLog.Summary.TotalNew))
	buf.WriteString(fmt.Sprintf("Added: %d, Removed: %d, Status changes: %d\n",
		changeLog.Summary.AddedCount, changeLog.Summary.RemovedCount, changeLog.Summary.StatusChangesCount))

	if len(changeLog.Added) > 0 {
		buf.WriteString("\nAdded:\n")
		for i, ref := range changeLog.Added {
			buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, ref.Title, ref.ID))
		}
	}

	if len(changeLog.Removed) > 0 {
		buf.WriteString("\nRemoved:\n")
		for i, ref := range changeLog.Removed {
			buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, ref.Title, ref.ID))
		}
	}

	if len(changeLog.StatusChanges) > 0 {
		buf.WriteString("\nStatus changes:\n")
		for i, change := range changeLog.StatusChanges {
			buf.WriteString(fmt.Sprintf("%d. %s: %s -> %s\n", i+1, change.Title, change.OldStatus, change.NewStatus))
		}
	}

	return buf.Bytes()
}

// ExportToMarkdown converts a change log to Markdown format
func ExportToMarkdown(changeLog models.ChangeLog) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Catalog changes %s\n\n", changeLog.Timestamp))
	buf.WriteString(fmt.Sprintf("**Entries**: %d -> %d\n", changeLog.Summary.TotalOld, changeLog.Summary.TotalNew))
	buf.WriteString(fmt.Sprintf("**Added**: %d\n", changeLog.Summary.AddedCount))
	buf.WriteString(fmt.Sprintf("**Removed**: %d\n", changeLog.Summary.RemovedCount))
	buf.WriteString(fmt.Sprintf("**Status changes**: %d\n\n", changeLog.Summary.StatusChangesCount))

	if len(changeLog.Added) > 0 {
		buf.WriteString("## Added\n\n")
		for i, ref := range changeLog.Added {
			buf.WriteString(fmt.Sprintf("%d. %s (`%s`)\n", i+1, ref.Title, ref.ID))
		}
		buf.WriteString("\n")
	}

	if len(changeLog.Removed) > 0 {
		buf.WriteString("## Removed\n\n")
		for i, ref := range changeLog.Removed {
			buf.WriteString(fmt.Sprintf("%d. %s (`%s`)\n", i+1, ref.Title, ref.ID))
		}
		buf.WriteString("\n")
	}

	if len(changeLog.StatusChanges) > 0 {
		buf.WriteString("## Status changes\n\n")
		buf.WriteString("| Title | Old | New |\n")
		buf.WriteString("| --- | --- | --- |\n")
		for _, change := range changeLog.StatusChanges {
			buf.WriteString(fmt.Sprintf("| %s | %s | %s |\n", change.Title, change.OldStatus, change.NewStatus))
		}
	}

	return buf.Bytes()
}

// ExportToCSV converts a change log's status changes to CSV with columns: ID, Title, Old Status, New Status
func ExportToCSV(changeLog models.ChangeLog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Old Status", "New Status"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, change := range changeLog.StatusChanges {
		record := []string{change.ID, change.Title, change.OldStatus, change.NewStatus}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToSummaryJSON generates a JSON representation of the change summary (without listings)
func ToSummaryJSON(changeLog models.ChangeLog) ([]byte, error) {
	return shared.MarshalJSON(changeLog.Summary, true)
}

// ExportChangeLog renders a change log in the named format.
//
// Supported formats: json (full log), csv (status changes only), markdown, txt.
func ExportChangeLog(changeLog models.ChangeLog, format string) ([]byte, error) {
	switch format {
	case "json":
		return shared.MarshalJSON(changeLog, true)
	case "csv":
		return ExportToCSV(changeLog)
	case "markdown", "md":
		return ExportToMarkdown(changeLog), nil
	case "txt", "text":
		return ExportToText(changeLog), nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidInput, format)
	}
}

// StatCount pairs a label with how many enriched entries carry it.
type StatCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GenreStats tallies genres across enriched entries, returning the top n descending.
//
// Ties break alphabetically so output stays stable across runs. A non-positive
// n returns all genres.
func GenreStats(items []models.EnrichedItem, n int) []StatCount {
	return tally(items, n, func(e *models.Enrichment) []string { return e.Genres })
}

// TagStats tallies tags across enriched entries, returning the top n descending.
func TagStats(items []models.EnrichedItem, n int) []StatCount {
	return tally(items, n, func(e *models.Enrichment) []string { return e.Tags })
}

func tally(items []models.EnrichedItem, n int, pick func(*models.Enrichment) []string) []StatCount {
	counts := map[string]int{}
	for _, item := range items {
		if item.Anilist == nil {
			continue
		}
		for _, name := range pick(item.Anilist) {
			counts[name]++
		}
	}

	stats := make([]StatCount, 0, len(counts))
	for name, count := range counts {
		stats = append(stats, StatCount{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})

	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}
