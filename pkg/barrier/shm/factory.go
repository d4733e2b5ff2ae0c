package shm

import (
	"github.com/pkg/errors"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
)

// New builds the shared-memory barrier named by kind.
func New(kind barrier.Kind, n int, opts ...Option) (barrier.Local, error) {
	var (
		b   barrier.Local
		err error
	)
	switch kind {
	case barrier.KindSense:
		b, err = NewSenseReversing(n, opts...)
	case barrier.KindTree:
		b, err = NewCombiningTree(n, opts...)
	default:
		return nil, errors.Wrapf(barrier.ErrUnknownKind, "%q is not a shared-memory barrier", kind)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
