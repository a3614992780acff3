package schema

import "time"

// JournalRecord represents a row from the assetload_load_journal table.
type JournalRecord struct {
	RecordID   int64
	SessionID  string
	Key        string
	Origin     JournalOrigin
	Outcome    LoadState
	Attempts   int32
	DurationMs int64
	ErrorKind  *string
	CacheHit   bool
	RecordedAt time.Time
}

// JournalStatus represents the status of the journal store.
type JournalStatus struct {
	Backend          string                  `json:"backend"`
	Connected        bool                    `json:"connected"`
	TotalRecords     int                     `json:"total_records"`
	LastRecordTime   time.Time               `json:"last_record_time"`
	OldestRecordTime time.Time               `json:"oldest_record_time"`
	Outcomes         map[LoadState]int64     `json:"outcomes"`
	Origins          map[JournalOrigin]int64 `json:"origins"`
	TableSizeBytes   int64                   `json:"table_size_bytes"`
}
