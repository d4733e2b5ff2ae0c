//go:build unit || !integration

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxMatchesSourceAndTag(t *testing.T) {
	ctx := context.Background()
	m := NewMailbox(4)

	require.NoError(t, m.Deliver(ctx, 1, TagArrival, []byte("a1")))
	require.NoError(t, m.Deliver(ctx, 2, TagArrival, []byte("a2")))
	require.NoError(t, m.Deliver(ctx, 1, TagRelease, []byte("r1")))
	require.NoError(t, m.Deliver(ctx, 1, TagArrival, []byte("a1-second")))

	p, err := m.Take(ctx, 1, TagRelease)
	require.NoError(t, err)
	assert.Equal(t, "r1", string(p))

	p, err = m.Take(ctx, 1, TagArrival)
	require.NoError(t, err)
	assert.Equal(t, "a1", string(p))

	p, err = m.Take(ctx, 1, TagArrival)
	require.NoError(t, err)
	assert.Equal(t, "a1-second", string(p))

	p, err = m.Take(ctx, 2, TagArrival)
	require.NoError(t, err)
	assert.Equal(t, "a2", string(p))
}

func TestMailboxTakeHonoursContext(t *testing.T) {
	m := NewMailbox(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Take(ctx, 0, TagArrival)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMailboxClose(t *testing.T) {
	m := NewMailbox(1)
	done := make(chan error)
	go func() {
		_, err := m.Take(context.Background(), 0, TagArrival)
		done <- err
	}()
	m.Close()
	m.Close()
	assert.ErrorIs(t, <-done, ErrClosed)
}

func TestThreadLevelOrdering(t *testing.T) {
	assert.Less(t, Single, Funneled)
	assert.Less(t, Funneled, Serialized)
	assert.Less(t, Serialized, Multiple)
	assert.Equal(t, "funneled", Funneled.String())
}

func TestMailboxTryDeliver(t *testing.T) {
	m := NewMailbox(1)
	require.True(t, m.TryDeliver(1, TagArrival, []byte("a")))
	assert.False(t, m.TryDeliver(1, TagArrival, []byte("b")))
	// other queues are unaffected by a full one
	assert.True(t, m.TryDeliver(1, TagRelease, []byte("c")))

	p, err := m.Take(context.Background(), 1, TagArrival)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), p)
	assert.True(t, m.TryDeliver(1, TagArrival, []byte("b")))

	m.Close()
	assert.False(t, m.TryDeliver(2, TagArrival, []byte("d")))
}

func TestMailboxBlockedDeliverReleasedByClose(t *testing.T) {
	m := NewMailbox(1)
	require.NoError(t, m.Deliver(context.Background(), 0, TagArrival, []byte("a")))

	done := make(chan error)
	go func() {
		done <- m.Deliver(context.Background(), 0, TagArrival, []byte("b"))
	}()
	select {
	case err := <-done:
		t.Fatalf("deliver on a full queue returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	m.Close()
	assert.ErrorIs(t, <-done, ErrClosed)
}
