// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/assetload/schema"
)

// PrefetchAdapter triggers a platform-level background fetch of a URI without rendering it.
// It warms caches and connections; rendering never waits on it.
type PrefetchAdapter interface {
	Prefetch(ctx context.Context, uri string) error
}

// RenderTarget performs the actual network fetch and decode of a resource.
// Load must not block the caller for the duration of the fetch, and it reports
// the outcome through done exactly once. Reports after the first are ignored.
type RenderTarget interface {
	Load(req schema.RenderRequest, done func(schema.RenderReport))
}

// StoreManager defines the interface for managing the persistence stores.
// This allows the journal layer to be mocked for testing.
type StoreManager interface {
	GetJournalStore() JournalStore
}

// JournalStore defines the interface for recording terminal load outcomes.
type JournalStore interface {
	// Record stores one terminal outcome
	Record(rec schema.JournalRecord) error

	// GetAllRecords returns every record ordered by record ID
	GetAllRecords() ([]schema.JournalRecord, error)

	// GetStatus returns status information about the journal store
	GetStatus() (schema.JournalStatus, error)

	// Close closes the underlying connection
	Close() error
}
