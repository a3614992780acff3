// Package core has the loading engine: cache, retry policy, load sessions and rendering policy.
package core

import "errors"

// Sentinel errors surfaced through LoadEvent.Err.
var (
	ErrEmptySource      = errors.New("source has no resolvable key")
	ErrRetriesExhausted = errors.New("retries exhausted")
	ErrFetchTimeout     = errors.New("fetch did not report before the timeout")
	ErrNoPrefetcher     = errors.New("no prefetch adapter configured")
)
