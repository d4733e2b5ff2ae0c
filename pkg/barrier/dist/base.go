package dist

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

// base holds what every distributed barrier shares.
type base struct {
	kind   barrier.Kind
	t      transport.Transport
	rank   int
	size   int
	round  uint64
	closed atomic.Bool
}

func (b *base) init(kind barrier.Kind, t transport.Transport, expectedSize int) error {
	if t == nil {
		return errors.Wrapf(barrier.ErrNotInitialized, "%s barrier needs a transport", kind)
	}
	size := t.Size()
	if size < 1 {
		return errors.Wrapf(barrier.ErrInvalidParticipants, "transport reports %d ranks", size)
	}
	if expectedSize > 0 && expectedSize != size {
		log.Warn().
			Str("Barrier", kind.String()).
			Int("Expected", expectedSize).
			Int("Actual", size).
			Msg("expected participant count differs from transport size, using transport size")
	}
	b.kind = kind
	b.t = t
	b.rank = t.Rank()
	b.size = size
	return nil
}

func (b *base) Rank() int { return b.rank }
func (b *base) Size() int { return b.size }

func (b *base) begin() error {
	if b.t == nil {
		return barrier.ErrNotInitialized
	}
	if b.closed.Load() {
		return barrier.ErrClosed
	}
	b.round++
	return nil
}

func (b *base) send(ctx context.Context, dst int, tag transport.Tag) error {
	data, err := token{Rank: b.rank, Size: b.size, Round: b.round}.encode()
	if err != nil {
		return err
	}
	return b.t.Send(ctx, dst, tag, data)
}

func (b *base) recv(ctx context.Context, src int, tag transport.Tag) error {
	data, err := b.t.Recv(ctx, src, tag)
	if err != nil {
		return err
	}
	return b.check(ctx, src, data)
}

// check logs tokens that do not belong to this round or group. The barrier
// carries on regardless.
func (b *base) check(ctx context.Context, src int, data []byte) error {
	tok, err := decodeToken(data)
	if err != nil {
		return err
	}
	if tok.Rank != src || tok.Round != b.round || tok.Size != b.size {
		log.Ctx(ctx).Warn().
			Int("Source", src).
			Int("TokenRank", tok.Rank).
			Uint64("TokenRound", tok.Round).
			Uint64("Round", b.round).
			Int("TokenSize", tok.Size).
			Msg("unexpected barrier token")
	}
	return nil
}

// Close marks the barrier closed. The transport belongs to the caller.
func (b *base) Close() error {
	if b.t == nil {
		return barrier.ErrNotInitialized
	}
	if !b.closed.CompareAndSwap(false, true) {
		return barrier.ErrClosed
	}
	return nil
}
