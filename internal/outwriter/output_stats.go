package outwriter

import (
	"io"
	"strconv"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
)

// WriteCacheStatsResult outputs cache statistics, dispatching on the configured format.
func WriteCacheStatsResult(stats schema.CacheStats, cfg *contract.Config) error {
	return dispatch(cfg,
		func(w io.Writer) error { return writeCacheStatsTable(w, stats) },
		func(w io.Writer) error { return writeJSON(w, stats) },
		func(w io.Writer) error { return writeCacheStatsCSV(w, stats) },
	)
}

func writeCacheStatsTable(w io.Writer, stats schema.CacheStats) error {
	return renderTable(w, []string{"Size", "Max Size", "Free"}, [][]string{{
		strconv.Itoa(stats.Size),
		strconv.Itoa(stats.MaxSize),
		strconv.Itoa(max(stats.MaxSize-stats.Size, 0)),
	}})
}

func writeCacheStatsCSV(w io.Writer, stats schema.CacheStats) error {
	return writeCSVWithHeader(w, []string{"size", "max_size"}, [][]string{{
		strconv.Itoa(stats.Size),
		strconv.Itoa(stats.MaxSize),
	}})
}
