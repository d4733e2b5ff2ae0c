package dist

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/lib/validate"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

// Butterfly is a dissemination barrier pairing rank i with i XOR mask.
type Butterfly struct {
	base
}

// NewButterfly builds a butterfly barrier over t. The transport size must be
// a power of two.
func NewButterfly(t transport.Transport, expectedSize int) (*Butterfly, error) {
	b := &Butterfly{}
	if err := b.init(barrier.KindButterfly, t, expectedSize); err != nil {
		return nil, err
	}
	if err := validate.IsPowerOfTwo(b.size, "group of %d ranks", b.size); err != nil {
		return nil, errors.Wrap(barrier.ErrNotPowerOfTwo, err.Error())
	}
	return b, nil
}

func (b *Butterfly) Wait(ctx context.Context) error {
	if err := b.begin(); err != nil {
		return err
	}

	// arrival: the higher rank of each pair reports to the lower and stops
	mask := 1
	for ; mask < b.size; mask <<= 1 {
		p, ok := partner(b.rank, mask, b.size)
		if !ok {
			continue
		}
		if b.rank&mask != 0 {
			if err := b.send(ctx, p, transport.TagArrival); err != nil {
				return errors.Wrapf(err, "butterfly round %d: arrival to rank %d", b.round, p)
			}
			break
		}
		if err := b.recv(ctx, p, transport.TagArrival); err != nil {
			return errors.Wrapf(err, "butterfly round %d: arrival from rank %d", b.round, p)
		}
	}

	// release retraces the arrival steps in reverse
	if b.rank&mask == 0 {
		mask >>= 1
	}
	for ; mask > 0; mask >>= 1 {
		p, ok := partner(b.rank, mask, b.size)
		if !ok {
			continue
		}
		if b.rank&mask != 0 {
			if err := b.recv(ctx, p, transport.TagRelease); err != nil {
				return errors.Wrapf(err, "butterfly round %d: release from rank %d", b.round, p)
			}
		} else {
			if err := b.send(ctx, p, transport.TagRelease); err != nil {
				return errors.Wrapf(err, "butterfly round %d: release to rank %d", b.round, p)
			}
		}
	}
	return nil
}

var _ barrier.Distributed = (*Butterfly)(nil)
