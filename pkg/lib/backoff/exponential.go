package backoff

import (
	"context"
	"time"
)

// Exponential doubles the wait on every attempt, starting at Base and capped
// at Max.
type Exponential struct {
	Base time.Duration
	Max  time.Duration
}

func NewExponential(base, maxDelay time.Duration) *Exponential {
	return &Exponential{Base: base, Max: maxDelay}
}

func (e *Exponential) BackoffDuration(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}
	d := e.Base
	for i := 1; i < attempts && d < e.Max; i++ {
		d *= 2
	}
	return min(d, e.Max)
}

func (e *Exponential) Backoff(ctx context.Context, attempts int) error {
	d := e.BackoffDuration(attempts)
	if d == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Backoff = (*Exponential)(nil)
