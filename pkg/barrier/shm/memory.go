package shm

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// arrivalCounter counts arrivals within a round.
type arrivalCounter struct {
	n atomic.Int32
}

// arrive adds delta and returns the new value. Relaxed: callers only
// compare the result against the trigger value.
func (c *arrivalCounter) arrive(delta int32) int32 {
	return c.n.Add(delta)
}

// reset restores the counter for the next round. Only the participant that
// caused the trigger transition calls it, before publishing the wake
// condition.
func (c *arrivalCounter) reset(v int32) {
	c.n.Store(v)
}

// senseFlag is a wake condition.
type senseFlag struct {
	v atomic.Uint32
}

// publish is the release write of the wake condition.
func (f *senseFlag) publish(v uint32) {
	f.v.Store(v)
}

// observe is the acquire read of the wake condition.
func (f *senseFlag) observe() uint32 {
	return f.v.Load()
}

// localSense is a participant's private sense on its own cache line. It is
// only touched by its owner, so plain loads and stores suffice.
type localSense struct {
	v uint32
	_ cpu.CacheLinePad
}

func newLocalSenses(n int) []localSense {
	local := make([]localSense, n)
	for i := range local {
		local[i].v = 1
	}
	return local
}
