package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
)

// fetchFixedWidth covers the #, Label, Attempts, Size and Took columns.
const fetchFixedWidth = 50

// WriteFetchResults outputs headless load results, dispatching on the configured format.
func WriteFetchResults(results []schema.FetchResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg,
		func(w io.Writer) error { return writeFetchTable(w, results, cfg, duration) },
		func(w io.Writer) error { return writeFetchJSON(w, results) },
		func(w io.Writer) error { return writeFetchCSV(w, results) },
	)
}

// writeFetchTable generates and writes the human-readable table.
func writeFetchTable(w io.Writer, results []schema.FetchResult, cfg *contract.Config, duration time.Duration) error {
	keyWidth := GetMaxTableKeyWidth(cfg, fetchFixedWidth)

	rows := make([][]string, 0, len(results))
	loaded, failed := 0, 0
	for i, res := range results {
		switch res.State {
		case schema.LoadedState:
			loaded++
		case schema.FailedPermanentlyState:
			failed++
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			contract.TruncateKey(res.Key, keyWidth),
			contract.GetColorLabel(res),
			strconv.Itoa(res.Attempts),
			formatDimensions(res),
			res.Duration.Round(time.Millisecond).String(),
		})
	}

	if err := renderTable(w, []string{"#", "Key", "Label", "Attempts", "Size", "Took"}, rows); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Loaded %d of %d resources (%d failed)\n", loaded, len(results), failed); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Completed in %v with %d workers. Journal backend: %s\n", duration.Round(time.Millisecond), cfg.Workers, cfg.JournalBackend)
	return err
}

// writeFetchJSON writes the results with their labels in JSON format.
func writeFetchJSON(w io.Writer, results []schema.FetchResult) error {
	type jsonFetchResult struct {
		Label string `json:"label"`
		schema.FetchResult
	}

	output := make([]jsonFetchResult, len(results))
	for i, res := range results {
		output[i] = jsonFetchResult{Label: contract.GetPlainLabel(res), FetchResult: res}
	}
	return writeJSON(w, output)
}

// writeFetchCSV writes the results in CSV format.
func writeFetchCSV(w io.Writer, results []schema.FetchResult) error {
	header := []string{"key", "label", "state", "attempts", "from_cache", "width", "height", "duration_ms", "error_kind", "error"}
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.Key,
			contract.GetPlainLabel(res),
			string(res.State),
			strconv.Itoa(res.Attempts),
			strconv.FormatBool(res.FromCache),
			strconv.Itoa(res.Width),
			strconv.Itoa(res.Height),
			strconv.FormatInt(res.Duration.Milliseconds(), 10),
			string(res.Kind),
			res.Error,
		})
	}
	return writeCSVWithHeader(w, header, rows)
}

// formatDimensions renders decoded dimensions, or "-" when unknown.
func formatDimensions(res schema.FetchResult) string {
	if res.Width <= 0 || res.Height <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", res.Width, res.Height)
}
