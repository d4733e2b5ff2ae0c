// Package hybrid combines a shared-memory barrier inside each process with a
// distributed barrier across processes. Only the master thread of a process
// talks to the transport.
package hybrid

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/dist"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

type Params struct {
	// Local synchronizes the threads of this process.
	Local barrier.Local
	// Transport connects this process to the others.
	Transport transport.Transport
	// Distributed is the barrier run across processes, ring or butterfly.
	Distributed barrier.Kind
	// ExpectedProcesses is compared with the transport size. Zero skips the check.
	ExpectedProcesses int
	// Master is the thread that drives the distributed barrier.
	Master int
}

// Barrier is a two-level barrier: local join, distributed join by the master,
// local join again.
type Barrier struct {
	local  barrier.Local
	global barrier.Distributed
	master int

	// written by the master between the two local joins
	err    error
	closed atomic.Bool
}

func New(params Params) (*Barrier, error) {
	if params.Local == nil || params.Transport == nil {
		return nil, errors.Wrap(barrier.ErrNotInitialized, "hybrid barrier needs a local barrier and a transport")
	}
	if level := params.Transport.ThreadLevel(); level < transport.Funneled {
		return nil, errors.Wrapf(barrier.ErrInsufficientThreadLevel, "transport provides %s", level)
	}
	if params.Master < 0 || params.Master >= params.Local.Size() {
		return nil, errors.Wrapf(barrier.ErrInvalidParticipants,
			"master thread %d outside [0, %d)", params.Master, params.Local.Size())
	}
	kind := params.Distributed
	if kind == "" {
		kind = barrier.KindRing
	}
	global, err := dist.New(kind, params.Transport, params.ExpectedProcesses)
	if err != nil {
		return nil, err
	}
	return &Barrier{
		local:  params.Local,
		global: global,
		master: params.Master,
	}, nil
}

// Wait blocks thread id until every thread of every process has called Wait
// for this round. All threads of a process return the master's error.
func (b *Barrier) Wait(ctx context.Context, id int) error {
	if b.local == nil {
		return barrier.ErrNotInitialized
	}
	if b.closed.Load() {
		return barrier.ErrClosed
	}

	b.local.Wait(id)
	if id == b.master {
		b.err = b.global.Wait(ctx)
	}
	// nobody leaves until the master is back from the distributed join
	b.local.Wait(id)
	return b.err
}

// Threads is the number of threads per process.
func (b *Barrier) Threads() int { return b.local.Size() }

// Processes is the number of processes in the group.
func (b *Barrier) Processes() int { return b.global.Size() }

// Rank of this process.
func (b *Barrier) Rank() int { return b.global.Rank() }

func (b *Barrier) Master() int { return b.master }

// Close releases both levels. The transport belongs to the caller.
func (b *Barrier) Close() error {
	if b.local == nil {
		return barrier.ErrNotInitialized
	}
	if !b.closed.CompareAndSwap(false, true) {
		return barrier.ErrClosed
	}
	return multierr.Combine(b.global.Close(), b.local.Close())
}
