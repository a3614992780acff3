// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteFetch prints headless load results using the configured output format.
func (ow *OutWriter) WriteFetch(results []schema.FetchResult, cfg *contract.Config, duration time.Duration) error {
	return WriteFetchResults(results, cfg, duration)
}

// WritePreload prints preload results using the configured output format.
func (ow *OutWriter) WritePreload(results []schema.PreloadResult, cfg *contract.Config, duration time.Duration) error {
	return WritePreloadResults(results, cfg, duration)
}

// WriteCacheStats prints cache statistics using the configured output format.
func (ow *OutWriter) WriteCacheStats(stats schema.CacheStats, cfg *contract.Config) error {
	return WriteCacheStatsResult(stats, cfg)
}
