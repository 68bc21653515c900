package source

import (
	"fmt"
	"time"
)

// ConfigurationError indicates an adapter is missing required
// credentials or settings. Fatal for that adapter's contribution to a
// query, non-fatal for the batch.
type ConfigurationError struct {
	Server string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: not configured: %s", e.Server, e.Reason)
}

// RateLimitError indicates an adapter-local quota was exhausted. The
// caller may retry after ResetAt.
type RateLimitError struct {
	Server  string
	Window  string // "hour" or "day"
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: %s rate limit of %d reached, resets at %s",
		e.Server, e.Window, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// SourceError wraps any failure inside an adapter's Search. It is
// caught at the ExecuteQuery boundary and folded into the result's
// error list, never returned to callers.
type SourceError struct {
	Server string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Server, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
