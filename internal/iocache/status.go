package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/assetload/schema"
)

// PrintJournalStatus prints journal status information.
func PrintJournalStatus(w io.Writer, status schema.JournalStatus) {
	_, _ = fmt.Fprintf(w, "Journal Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Records: %s\n", humanize.Comma(int64(status.TotalRecords)))
	if status.TotalRecords > 0 {
		_, _ = fmt.Fprintf(w, "Last Record: %s (%s)\n", status.LastRecordTime.Format("2006-01-02 15:04:05"), humanize.Time(status.LastRecordTime))
		_, _ = fmt.Fprintf(w, "Oldest Record: %s (%s)\n", status.OldestRecordTime.Format("2006-01-02 15:04:05"), humanize.Time(status.OldestRecordTime))
	}
	if len(status.Outcomes) > 0 {
		_, _ = fmt.Fprintln(w, "Outcomes:")
		for _, outcome := range orderedOutcomes(status.Outcomes) {
			_, _ = fmt.Fprintf(w, "  %s: %d\n", outcome, status.Outcomes[outcome])
		}
	}
	if len(status.Origins) > 0 {
		_, _ = fmt.Fprintln(w, "Origins:")
		for _, origin := range slices.Sorted(maps.Keys(status.Origins)) {
			_, _ = fmt.Fprintf(w, "  %s: %d\n", origin, status.Origins[origin])
		}
	}
	_, _ = fmt.Fprintf(w, "Table Size: %s\n", humanize.Bytes(uint64(max(status.TableSizeBytes, 0))))
}

// orderedOutcomes lists known states in lifecycle order, then unknown ones sorted.
func orderedOutcomes(counts map[schema.LoadState]int64) []schema.LoadState {
	out := make([]schema.LoadState, 0, len(counts))
	for _, state := range schema.AllLoadStates {
		if _, ok := counts[state]; ok {
			out = append(out, state)
		}
	}
	for _, state := range slices.Sorted(maps.Keys(counts)) {
		if !slices.Contains(schema.AllLoadStates, state) {
			out = append(out, state)
		}
	}
	return out
}
