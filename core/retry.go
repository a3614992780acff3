package core

import (
	"time"

	"github.com/huangsam/assetload/schema"
)

// RetryPolicy decides whether and when a failed load is attempted again.
// Backoff grows linearly with the attempt number.
type RetryPolicy struct {
	BaseDelay time.Duration
}

// NewRetryPolicy returns a policy with the given base delay, or the default when it is not positive.
func NewRetryPolicy(base time.Duration) RetryPolicy {
	if base <= 0 {
		base = schema.DefaultRetryBaseDelay
	}
	return RetryPolicy{BaseDelay: base}
}

// ShouldRetry reports whether a failure of the given zero-based attempt leaves retries.
func (p RetryPolicy) ShouldRetry(attempt, limit int) bool {
	return attempt < limit
}

// BackoffDelay returns how long to wait before the attempt after the given one.
func (p RetryPolicy) BackoffDelay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt+1)
}
