// Package runner drives barriers for a number of rounds, measures them and
// checks that no participant ever left a round early.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/hybrid"
	"github.com/bacalhau-project/gtbarrier/pkg/telemetry"
)

// ErrRoundIsolation is returned when a participant left a round before every
// participant had entered it, or completed the wrong number of rounds.
var ErrRoundIsolation = errors.New("round isolation violated")

// roundTracker counts, per round, the participants that entered it.
type roundTracker struct {
	size    int32
	entered []atomic.Int32
	early   atomic.Int32
	done    []int
}

func newRoundTracker(size, rounds int) *roundTracker {
	return &roundTracker{
		size:    int32(size),
		entered: make([]atomic.Int32, rounds),
		done:    make([]int, size),
	}
}

func (t *roundTracker) enter(round int) { t.entered[round].Add(1) }

// leave must be called by participant id after its Wait of round returned.
func (t *roundTracker) leave(id, round int) {
	if t.entered[round].Load() != t.size {
		t.early.Add(1)
	}
	t.done[id]++
}

func (t *roundTracker) check(rounds int) error {
	var err error
	if early := t.early.Load(); early > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %d early releases", ErrRoundIsolation, early))
	}
	for id, n := range t.done {
		if n != rounds {
			err = multierr.Append(err, fmt.Errorf("%w: participant %d completed %d of %d rounds",
				ErrRoundIsolation, id, n, rounds))
		}
	}
	return err
}

type measurement struct {
	start   time.Time
	cpu     time.Duration
	metrics *telemetry.BarrierMetrics
	attrs   []attribute.KeyValue
}

func startMeasurement(params Params, name string, participants int) *measurement {
	return &measurement{
		start:   time.Now(),
		cpu:     processCPUTime(),
		metrics: params.Metrics,
		attrs: []attribute.KeyValue{
			telemetry.BarrierKey.String(name),
			telemetry.ParticipantsKey.Int(participants),
		},
	}
}

// round wraps one Wait of the reporting participant.
func (m *measurement) round(ctx context.Context, wait func()) {
	if m.metrics == nil {
		wait()
		return
	}
	stop := telemetry.Timer(ctx, m.metrics.RoundDuration, m.attrs...)
	wait()
	stop()
	m.metrics.Rounds.Inc(ctx, m.attrs...)
}

func (m *measurement) result(kind Mode, name string, participants, processes, rank, rounds int) Result {
	wall := time.Since(m.start)
	var avg time.Duration
	if rounds > 0 {
		avg = wall / time.Duration(rounds)
	}
	return Result{
		ID:           uuid.NewString(),
		Kind:         kind,
		Barrier:      name,
		Participants: participants,
		Processes:    processes,
		Rank:         rank,
		Rounds:       rounds,
		Wall:         wall,
		CPU:          processCPUTime() - m.cpu,
		AvgPerRound:  avg,
		StartedAt:    m.start.UTC(),
	}
}

// RunLocal runs a shared-memory barrier with one goroutine per participant.
func RunLocal(ctx context.Context, b barrier.Local, name string, params Params) (Result, error) {
	n, rounds := b.Size(), params.rounds()
	tracker := newRoundTracker(n, rounds)

	m := startMeasurement(params, name, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for id := 0; id < n; id++ {
		go func(id int) {
			defer wg.Done()
			if params.Pin {
				if err := pin(id); err != nil {
					log.Ctx(ctx).Warn().Err(err).Int("Participant", id).Msg("running unpinned")
				}
			}
			for r := 0; r < rounds; r++ {
				tracker.enter(r)
				if id == 0 {
					m.round(ctx, func() { b.Wait(id) })
				} else {
					b.Wait(id)
				}
				tracker.leave(id, r)
			}
		}(id)
	}
	wg.Wait()
	res := m.result(ModeShm, name, n, 1, 0, rounds)

	log.Ctx(ctx).Debug().
		Str("Barrier", name).
		Int("Participants", n).
		Dur("Wall", res.Wall).
		Msg("shared-memory run finished")
	return res, tracker.check(rounds)
}

// RunDistributed runs rounds of a distributed barrier for the process's only
// participant. It stops at the first failed round.
func RunDistributed(ctx context.Context, b barrier.Distributed, name string, params Params) (Result, error) {
	rounds := params.rounds()
	m := startMeasurement(params, name, b.Size())
	m.attrs = append(m.attrs, telemetry.RankKey.Int(b.Rank()))

	completed := 0
	var err error
	run := func() {
		if params.Pin {
			if perr := pin(b.Rank()); perr != nil {
				log.Ctx(ctx).Warn().Err(perr).Msg("running unpinned")
			}
		}
		for ; completed < rounds; completed++ {
			m.round(ctx, func() { err = b.Wait(ctx) })
			if err != nil {
				err = fmt.Errorf("round %d: %w", completed, err)
				return
			}
		}
	}
	if params.Pin {
		// a pinned thread must not return to the caller
		done := make(chan struct{})
		go func() {
			defer close(done)
			run()
		}()
		<-done
	} else {
		run()
	}
	return m.result(ModeDist, name, b.Size(), b.Size(), b.Rank(), completed), err
}

// RunHybrid runs a hybrid barrier with one goroutine per thread of this
// process.
func RunHybrid(ctx context.Context, h *hybrid.Barrier, name string, params Params) (Result, error) {
	threads, rounds := h.Threads(), params.rounds()
	tracker := newRoundTracker(threads, rounds)
	errs := make([]error, threads)

	m := startMeasurement(params, name, threads*h.Processes())
	m.attrs = append(m.attrs, telemetry.RankKey.Int(h.Rank()))

	var wg sync.WaitGroup
	wg.Add(threads)
	for id := 0; id < threads; id++ {
		go func(id int) {
			defer wg.Done()
			if params.Pin {
				if err := pin(h.Rank()*threads + id); err != nil {
					log.Ctx(ctx).Warn().Err(err).Int("Participant", id).Msg("running unpinned")
				}
			}
			for r := 0; r < rounds; r++ {
				tracker.enter(r)
				var err error
				if id == h.Master() {
					m.round(ctx, func() { err = h.Wait(ctx, id) })
				} else {
					err = h.Wait(ctx, id)
				}
				if err != nil {
					errs[id] = fmt.Errorf("thread %d round %d: %w", id, r, err)
					return
				}
				tracker.leave(id, r)
			}
		}(id)
	}
	wg.Wait()
	res := m.result(ModeHybrid, name, threads*h.Processes(), h.Processes(), h.Rank(), rounds)

	if err := multierr.Combine(errs...); err != nil {
		return res, err
	}
	return res, tracker.check(rounds)
}
