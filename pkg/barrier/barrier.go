// Package barrier defines the contracts shared by every barrier in this
// module. Shared-memory implementations live in shm, message-passing ones in
// dist, and hybrid composes one of each.
//
// All barriers follow the same lifecycle: a constructor allocates every
// structure the barrier needs, Wait is called once per round by every
// participant, and Close releases the storage. A barrier is not valid before
// construction or after Close.
package barrier

import "context"

// Local is a barrier whose participants are goroutines of one process.
// Participants identify themselves explicitly; id must be in [0, Size()).
type Local interface {
	// Wait blocks the calling participant until every participant has
	// called Wait for the current round.
	Wait(id int)
	// Size returns the number of participants fixed at construction.
	Size() int
	// Close releases the barrier storage. Wait must not be called afterwards.
	Close() error
}

// Distributed is a barrier whose participants are processes reachable
// through a transport. Exactly one goroutine per process calls Wait.
type Distributed interface {
	// Wait blocks until every rank has entered the current round. A message
	// that never arrives blocks forever unless ctx is cancelled.
	Wait(ctx context.Context) error
	Rank() int
	Size() int
	Close() error
}

// Kind names a barrier algorithm.
type Kind string

const (
	KindSense     Kind = "sense"
	KindTree      Kind = "tree"
	KindRing      Kind = "ring"
	KindButterfly Kind = "butterfly"
	KindHybrid    Kind = "hybrid"
)

// LocalKinds are the algorithms implementing Local.
var LocalKinds = []Kind{KindSense, KindTree}

// DistributedKinds are the algorithms implementing Distributed.
var DistributedKinds = []Kind{KindRing, KindButterfly}

func (k Kind) String() string {
	return string(k)
}

// IsLocal reports whether k names a shared-memory algorithm.
func (k Kind) IsLocal() bool {
	return k == KindSense || k == KindTree
}

// IsDistributed reports whether k names a message-passing algorithm.
func (k Kind) IsDistributed() bool {
	return k == KindRing || k == KindButterfly
}
