// Package parquet provides data structures and functions for exporting the
// load journal to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/assetload/schema"
	"github.com/parquet-go/parquet-go"
)

// LoadRecord represents one terminal load outcome.
// This struct maps to the assetload_load_journal database table.
type LoadRecord struct {
	// RecordID is the unique identifier for this record
	RecordID int64 `parquet:"record_id,snappy"`

	// SessionID identifies the load session; empty for preloads
	SessionID string `parquet:"session_id,snappy"`

	// ResourceKey is the cache key (URI) of the resource
	ResourceKey string `parquet:"resource_key,snappy"`

	// Origin is "session" or "preload"
	Origin string `parquet:"origin,snappy"`

	// Outcome is the terminal load state
	Outcome string `parquet:"outcome,snappy"`

	Attempts   int32 `parquet:"attempts,snappy"`
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// ErrorKind classifies the failure (nullable)
	ErrorKind *string `parquet:"error_kind,optional,snappy"`

	CacheHit bool `parquet:"cache_hit,snappy"`

	// RecordedAt is when the outcome was recorded (stored as TIMESTAMP with nanosecond precision)
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// WriteLoadRecordsParquet writes a slice of LoadRecord structs to a Parquet file.
func WriteLoadRecordsParquet(data []LoadRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the LoadRecord struct tags
	writer := parquet.NewGenericWriter[LoadRecord](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertJournalRecords converts schema.JournalRecord to LoadRecord for Parquet export.
func ConvertJournalRecords(records []schema.JournalRecord) []LoadRecord {
	result := make([]LoadRecord, len(records))
	for i, record := range records {
		result[i] = LoadRecord{
			RecordID:    record.RecordID,
			SessionID:   record.SessionID,
			ResourceKey: record.Key,
			Origin:      string(record.Origin),
			Outcome:     string(record.Outcome),
			Attempts:    record.Attempts,
			DurationMs:  record.DurationMs,
			ErrorKind:   record.ErrorKind,
			CacheHit:    record.CacheHit,
			RecordedAt:  record.RecordedAt,
		}
	}
	return result
}
