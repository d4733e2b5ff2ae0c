package dist

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

// Ring is a barrier where an arrival token travels 0 -> 1 -> ... -> n-1 and
// rank n-1 releases the group with a broadcast.
type Ring struct {
	base
	topo ringTopology
}

// NewRing builds a ring barrier over t. expectedSize is only compared with
// t.Size(); zero skips the comparison.
func NewRing(t transport.Transport, expectedSize int) (*Ring, error) {
	r := &Ring{}
	if err := r.init(barrier.KindRing, t, expectedSize); err != nil {
		return nil, err
	}
	r.topo = newRingTopology(r.rank, r.size)
	return r, nil
}

func (r *Ring) Wait(ctx context.Context) error {
	if err := r.begin(); err != nil {
		return err
	}
	if r.rank != 0 {
		if err := r.recv(ctx, r.topo.predecessor, transport.TagArrival); err != nil {
			return errors.Wrapf(err, "ring round %d: waiting for rank %d", r.round, r.topo.predecessor)
		}
	}
	if r.rank != r.topo.root {
		if err := r.send(ctx, r.topo.successor, transport.TagArrival); err != nil {
			return errors.Wrapf(err, "ring round %d: passing token to rank %d", r.round, r.topo.successor)
		}
	}

	var payload []byte
	if r.rank == r.topo.root {
		var err error
		if payload, err = (token{Rank: r.rank, Size: r.size, Round: r.round}).encode(); err != nil {
			return err
		}
	}
	release, err := r.t.Broadcast(ctx, r.topo.root, payload)
	if err != nil {
		return errors.Wrapf(err, "ring round %d: release broadcast", r.round)
	}
	return r.check(ctx, r.topo.root, release)
}

var _ barrier.Distributed = (*Ring)(nil)
