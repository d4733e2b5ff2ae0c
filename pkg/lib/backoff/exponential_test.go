//go:build unit || !integration

package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialDuration(t *testing.T) {
	e := NewExponential(10*time.Millisecond, 50*time.Millisecond)
	assert.Equal(t, time.Duration(0), e.BackoffDuration(0))
	assert.Equal(t, 10*time.Millisecond, e.BackoffDuration(1))
	assert.Equal(t, 20*time.Millisecond, e.BackoffDuration(2))
	assert.Equal(t, 40*time.Millisecond, e.BackoffDuration(3))
	assert.Equal(t, 50*time.Millisecond, e.BackoffDuration(4))
	assert.Equal(t, 50*time.Millisecond, e.BackoffDuration(100))
}

func TestExponentialWaits(t *testing.T) {
	e := NewExponential(5*time.Millisecond, time.Second)
	start := time.Now()
	assert.NoError(t, e.Backoff(context.Background(), 2))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestExponentialCancelled(t *testing.T) {
	e := NewExponential(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Backoff(ctx, 1), context.Canceled)
}
