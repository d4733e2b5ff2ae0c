// Package backoff spaces out retries of an operation that is expected to
// start succeeding once a peer comes up.
package backoff

import (
	"context"
	"time"
)

type Backoff interface {
	// Backoff sleeps before retry number attempts. It returns ctx.Err() if
	// the context ends first.
	Backoff(ctx context.Context, attempts int) error
	// BackoffDuration is how long Backoff sleeps before retry number attempts.
	BackoffDuration(attempts int) time.Duration
}
