//go:build unit || !integration

package dist

import (
	"context"
	"sync"
	"time"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/nats"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/nats/natstest"
)

func (s *DistributedBarrierSuite) connectNATS(ctx context.Context, url string, size int) []transport.Transport {
	group := natstest.Group()
	out := make([]transport.Transport, size)
	errs := make([]error, size)
	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			cfg := nats.Config{URL: url, Group: group, Rank: rank}
			if rank == 0 {
				cfg.Size = size
			}
			t, err := nats.Connect(ctx, cfg)
			out[rank], errs[rank] = t, err
		}(rank)
	}
	wg.Wait()
	for rank, err := range errs {
		s.Require().NoError(err, "rank %d", rank)
	}
	return out
}

func (s *DistributedBarrierSuite) TestOverNATS() {
	server := natstest.StartServer(s.T())
	for _, kind := range barrier.DistributedKinds {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		ts := s.connectNATS(ctx, server.ClientURL(), 4)

		barriers, err := build(kind, ts)
		s.Require().NoError(err)
		trace, err := drive(ctx, barriers, 20)
		s.Require().NoError(err, kind)
		s.Zero(trace.early.Load(), kind)
		s.Equal([]int{20, 20, 20, 20}, trace.counter, kind)

		for i := range ts {
			s.NoError(barriers[i].Close())
			s.NoError(ts[i].Close())
		}
		cancel()
	}
}
