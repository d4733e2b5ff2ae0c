package shm

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
)

// SenseReversing is a centralized barrier: every participant increments one
// shared counter, and the participant that brings it to n resets it and
// publishes the new global sense. Participants never reset a flag between
// rounds; they compare the global sense against a private sense that flips
// every round, so a late reader of round r-1 cannot mistake round r's
// signal for its own.
type SenseReversing struct {
	n    int
	opts options

	_     cpu.CacheLinePad
	count arrivalCounter
	_     cpu.CacheLinePad
	sense senseFlag
	_     cpu.CacheLinePad

	local  []localSense
	closed atomic.Bool
}

// NewSenseReversing allocates a barrier for n participants.
func NewSenseReversing(n int, opts ...Option) (*SenseReversing, error) {
	if n < 1 {
		return nil, errors.Wrapf(barrier.ErrInvalidParticipants, "sense-reversing barrier with %d participants", n)
	}
	b := &SenseReversing{
		n:     n,
		opts:  newOptions(opts...),
		local: newLocalSenses(n),
	}
	b.sense.publish(1)
	return b, nil
}

// Wait blocks participant id until all n participants have called Wait for
// this round.
func (b *SenseReversing) Wait(id int) {
	if b == nil || b.local == nil {
		if b != nil && b.closed.Load() {
			panic(barrier.ErrClosed)
		}
		panic(barrier.ErrNotInitialized)
	}

	slot := &b.local[id]
	slot.v = 1 - slot.v
	sense := slot.v

	if b.count.arrive(1) == int32(b.n) {
		// exactly one participant sees the counter reach n
		b.count.reset(0)
		b.sense.publish(sense)
		return
	}
	spinUntil(&b.sense, sense, b.opts.spinBudget)
}

// Size returns the participant count.
func (b *SenseReversing) Size() int {
	return b.n
}

// Close releases the per-participant flags. Closing a barrier that was never
// built panics like Wait does.
func (b *SenseReversing) Close() error {
	if b.local == nil && !b.closed.Load() {
		panic(barrier.ErrNotInitialized)
	}
	if !b.closed.CompareAndSwap(false, true) {
		return barrier.ErrClosed
	}
	b.local = nil
	return nil
}

// compile-time check that SenseReversing implements barrier.Local
var _ barrier.Local = (*SenseReversing)(nil)
