package dist

import (
	"github.com/pkg/errors"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

// New builds the distributed barrier named by kind.
func New(kind barrier.Kind, t transport.Transport, expectedSize int) (barrier.Distributed, error) {
	var (
		b   barrier.Distributed
		err error
	)
	switch kind {
	case barrier.KindRing:
		b, err = NewRing(t, expectedSize)
	case barrier.KindButterfly:
		b, err = NewButterfly(t, expectedSize)
	default:
		return nil, errors.Wrapf(barrier.ErrUnknownKind, "%q is not a distributed barrier", kind)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
