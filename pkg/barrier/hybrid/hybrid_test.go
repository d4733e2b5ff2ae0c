//go:build unit || !integration

package hybrid

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/shm"
	"github.com/bacalhau-project/gtbarrier/pkg/logger"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/inmemory"
)

type HybridSuite struct {
	suite.Suite
}

func TestHybridSuite(t *testing.T) {
	suite.Run(t, new(HybridSuite))
}

func (s *HybridSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
}

// group builds one hybrid barrier per process over an in-memory fabric.
func (s *HybridSuite) group(processes, threads int, local, distributed barrier.Kind, opts ...inmemory.Option) []*Barrier {
	f, err := inmemory.NewFabric(processes, opts...)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = f.Close() })

	out := make([]*Barrier, processes)
	for p := 0; p < processes; p++ {
		l, err := shm.New(local, threads)
		s.Require().NoError(err)
		out[p], err = New(Params{
			Local:             l,
			Transport:         f.Endpoint(p),
			Distributed:       distributed,
			ExpectedProcesses: processes,
		})
		s.Require().NoError(err)
	}
	return out
}

// Two processes of four threads, ten rounds: no thread finishes round k+1
// while another is still at round k.
func (s *HybridSuite) TestTwoProcessesFourThreads() {
	const (
		processes = 2
		threads   = 4
		rounds    = 10
		total     = processes * threads
	)
	for _, local := range barrier.LocalKinds {
		for _, distributed := range barrier.DistributedKinds {
			barriers := s.group(processes, threads, local, distributed)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			entered := make([]atomic.Int32, rounds)
			var early atomic.Int32
			counter := make([][]int, processes)

			var wg sync.WaitGroup
			for p, b := range barriers {
				counter[p] = make([]int, threads)
				for id := 0; id < threads; id++ {
					wg.Add(1)
					go func(p, id int, b *Barrier) {
						defer wg.Done()
						for r := 0; r < rounds; r++ {
							entered[r].Add(1)
							if err := b.Wait(ctx, id); err != nil {
								s.Fail("wait failed", "process %d thread %d: %v", p, id, err)
								return
							}
							if entered[r].Load() != total {
								early.Add(1)
							}
							counter[p][id]++
						}
					}(p, id, b)
				}
			}
			wg.Wait()
			cancel()

			s.Zero(early.Load(), "%s/%s released a round early", local, distributed)
			for p := range counter {
				s.Equal([]int{rounds, rounds, rounds, rounds}, counter[p], "%s/%s process %d", local, distributed, p)
			}
			for _, b := range barriers {
				s.Equal(threads, b.Threads())
				s.Equal(processes, b.Processes())
				s.NoError(b.Close())
			}
		}
	}
}

func (s *HybridSuite) TestRejectsSingleThreadLevel() {
	f, err := inmemory.NewFabric(2, inmemory.WithThreadLevel(transport.Single))
	s.Require().NoError(err)
	defer f.Close()

	l, err := shm.NewSenseReversing(4)
	s.Require().NoError(err)
	_, err = New(Params{Local: l, Transport: f.Endpoint(0)})
	s.ErrorIs(err, barrier.ErrInsufficientThreadLevel)
}

func (s *HybridSuite) TestAcceptsFunneled() {
	barriers := s.group(1, 2, barrier.KindSense, barrier.KindRing, inmemory.WithThreadLevel(transport.Funneled))
	s.Equal(0, barriers[0].Rank())
	s.Equal(0, barriers[0].Master())
}

func (s *HybridSuite) TestMasterErrorReachesEveryThread() {
	f, err := inmemory.NewFabric(2)
	s.Require().NoError(err)
	defer f.Close()

	l, err := shm.NewCombiningTree(3)
	s.Require().NoError(err)
	b, err := New(Params{Local: l, Transport: f.Endpoint(0), Distributed: barrier.KindButterfly, Master: 1})
	s.Require().NoError(err)

	// process 1 never joins, so the master gives up when ctx expires
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errs := make([]error, 3)
	var wg sync.WaitGroup
	for id := 0; id < 3; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			errs[id] = b.Wait(ctx, id)
		}(id)
	}
	wg.Wait()
	for id, err := range errs {
		s.ErrorIs(err, context.DeadlineExceeded, "thread %d", id)
	}
}

func (s *HybridSuite) TestLifecycle() {
	barriers := s.group(1, 2, barrier.KindTree, barrier.KindButterfly)
	b := barriers[0]
	s.NoError(b.Close())
	s.ErrorIs(b.Close(), barrier.ErrClosed)
	s.ErrorIs(b.Wait(context.Background(), 0), barrier.ErrClosed)
	s.ErrorIs((&Barrier{}).Wait(context.Background(), 0), barrier.ErrNotInitialized)
	s.ErrorIs((&Barrier{}).Close(), barrier.ErrNotInitialized)

	f, err := inmemory.NewFabric(1)
	s.Require().NoError(err)
	defer f.Close()
	l, err := shm.NewSenseReversing(2)
	s.Require().NoError(err)
	_, err = New(Params{Local: l, Transport: f.Endpoint(0), Master: 2})
	s.ErrorIs(err, barrier.ErrInvalidParticipants)
	_, err = New(Params{Transport: f.Endpoint(0)})
	s.ErrorIs(err, barrier.ErrNotInitialized)
}
