package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
)

// preloadFixedWidth covers the # and URI columns.
const preloadFixedWidth = 10

// WritePreloadResults outputs preload results, dispatching on the configured format.
func WritePreloadResults(results []schema.PreloadResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg,
		func(w io.Writer) error { return writePreloadTable(w, results, cfg, duration) },
		func(w io.Writer) error { return writeJSON(w, results) },
		func(w io.Writer) error { return writePreloadCSV(w, results) },
	)
}

// writePreloadTable prints one row per slot; failed slots show null like the JSON form.
func writePreloadTable(w io.Writer, results []schema.PreloadResult, cfg *contract.Config, duration time.Duration) error {
	keyWidth := GetMaxTableKeyWidth(cfg, preloadFixedWidth) / 2

	rows := make([][]string, 0, len(results))
	warmed := 0
	for i, res := range results {
		uri := contract.FailedColor.Sprint("null")
		if res.URI != nil {
			uri = contract.TruncateKey(*res.URI, keyWidth)
			warmed++
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), contract.TruncateKey(res.Key, keyWidth), uri})
	}

	if err := renderTable(w, []string{"#", "Key", "URI"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Preloaded %d of %d resources in %v\n", warmed, len(results), duration.Round(time.Millisecond))
	return err
}

func writePreloadCSV(w io.Writer, results []schema.PreloadResult) error {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		uri := ""
		if res.URI != nil {
			uri = *res.URI
		}
		rows = append(rows, []string{res.Key, uri, res.Error})
	}
	return writeCSVWithHeader(w, []string{"key", "uri", "error"}, rows)
}
