package retry

import (
	"context"
	"time"
)

type onRetryKey struct{}

// WithOnRetry attaches a per-call retry observer to ctx, overriding any
// OnRetry set on the Config a ChatClient was constructed with. Orchestrator
// uses this so a single long-lived ChatClient can still report
// RetryAttempt events to whichever turn's stream is currently active.
func WithOnRetry(ctx context.Context, fn func(attempt int, cause error, sleep time.Duration)) context.Context {
	return context.WithValue(ctx, onRetryKey{}, fn)
}

// OnRetryFromContext returns the observer attached by WithOnRetry, or nil.
func OnRetryFromContext(ctx context.Context) func(attempt int, cause error, sleep time.Duration) {
	fn, _ := ctx.Value(onRetryKey{}).(func(attempt int, cause error, sleep time.Duration))
	return fn
}
