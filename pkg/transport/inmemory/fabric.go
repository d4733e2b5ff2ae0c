// Package inmemory connects a group of ranks living in one process. Each rank
// is an Endpoint driven by its own goroutine.
package inmemory

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

// broadcast messages travel on a tag no barrier uses.
const tagBroadcast transport.Tag = -1

const defaultQueueCapacity = 64

type Option func(*Fabric)

// WithThreadLevel overrides the thread level reported by every endpoint.
func WithThreadLevel(level transport.ThreadLevel) Option {
	return func(f *Fabric) {
		f.level = level
	}
}

// WithQueueCapacity sets how many messages a (source, tag) queue holds before
// Send blocks.
func WithQueueCapacity(capacity int) Option {
	return func(f *Fabric) {
		f.capacity = capacity
	}
}

// Stats counts the messages that crossed the fabric.
type Stats struct {
	// PointToPoint is the number of Send calls.
	PointToPoint int64
	// Broadcasts is the number of collective broadcasts, counted once at the root.
	Broadcasts int64
	// BroadcastMessages is the number of copies the roots fanned out.
	BroadcastMessages int64
}

// Fabric is a fixed group of endpoints exchanging messages through mailboxes.
type Fabric struct {
	size      int
	level     transport.ThreadLevel
	capacity  int
	boxes     []*transport.Mailbox
	endpoints []*Endpoint

	p2p        atomic.Int64
	broadcasts atomic.Int64
	fanout     atomic.Int64
}

func NewFabric(size int, opts ...Option) (*Fabric, error) {
	if size < 1 {
		return nil, errors.Errorf("inmemory: fabric size must be positive, got %d", size)
	}
	f := &Fabric{
		size:     size,
		level:    transport.Multiple,
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.boxes = make([]*transport.Mailbox, size)
	f.endpoints = make([]*Endpoint, size)
	for i := range f.boxes {
		f.boxes[i] = transport.NewMailbox(f.capacity)
		f.endpoints[i] = &Endpoint{fabric: f, rank: i}
	}
	return f, nil
}

func (f *Fabric) Size() int { return f.size }

// Endpoint returns the transport of one rank.
func (f *Fabric) Endpoint(rank int) *Endpoint {
	return f.endpoints[rank]
}

// Transports returns every endpoint, indexed by rank.
func (f *Fabric) Transports() []transport.Transport {
	out := make([]transport.Transport, f.size)
	for i, e := range f.endpoints {
		out[i] = e
	}
	return out
}

func (f *Fabric) Stats() Stats {
	return Stats{
		PointToPoint:      f.p2p.Load(),
		Broadcasts:        f.broadcasts.Load(),
		BroadcastMessages: f.fanout.Load(),
	}
}

// Close closes every endpoint.
func (f *Fabric) Close() error {
	var errs error
	for _, e := range f.endpoints {
		if err := e.Close(); err != nil && !errors.Is(err, transport.ErrClosed) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Endpoint is the transport.Transport of one rank of a Fabric.
type Endpoint struct {
	fabric *Fabric
	rank   int
	closed atomic.Bool
}

func (e *Endpoint) Rank() int                          { return e.rank }
func (e *Endpoint) Size() int                          { return e.fabric.size }
func (e *Endpoint) ThreadLevel() transport.ThreadLevel { return e.fabric.level }

func (e *Endpoint) checkPeer(op string, peer int, tag transport.Tag) error {
	if e.closed.Load() {
		return &transport.OpError{Op: op, Rank: e.rank, Peer: peer, Tag: tag, Err: transport.ErrClosed}
	}
	if peer < 0 || peer >= e.fabric.size {
		return &transport.OpError{Op: op, Rank: e.rank, Peer: peer, Tag: tag, Err: transport.ErrInvalidRank}
	}
	return nil
}

func (e *Endpoint) Send(ctx context.Context, dst int, tag transport.Tag, payload []byte) error {
	if err := e.checkPeer("send", dst, tag); err != nil {
		return err
	}
	if err := e.fabric.boxes[dst].Deliver(ctx, e.rank, tag, payload); err != nil {
		return &transport.OpError{Op: "send", Rank: e.rank, Peer: dst, Tag: tag, Err: err}
	}
	e.fabric.p2p.Add(1)
	return nil
}

func (e *Endpoint) Recv(ctx context.Context, src int, tag transport.Tag) ([]byte, error) {
	if err := e.checkPeer("recv", src, tag); err != nil {
		return nil, err
	}
	p, err := e.fabric.boxes[e.rank].Take(ctx, src, tag)
	if err != nil {
		return nil, &transport.OpError{Op: "recv", Rank: e.rank, Peer: src, Tag: tag, Err: err}
	}
	return p, nil
}

// Broadcast fans the root's payload out to every other rank's mailbox.
func (e *Endpoint) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	if err := e.checkPeer("broadcast", root, tagBroadcast); err != nil {
		return nil, err
	}
	if e.rank != root {
		p, err := e.fabric.boxes[e.rank].Take(ctx, root, tagBroadcast)
		if err != nil {
			return nil, &transport.OpError{Op: "broadcast", Rank: e.rank, Peer: root, Tag: tagBroadcast, Err: err}
		}
		return p, nil
	}

	for dst := 0; dst < e.fabric.size; dst++ {
		if dst == root {
			continue
		}
		if err := e.fabric.boxes[dst].Deliver(ctx, root, tagBroadcast, payload); err != nil {
			return nil, &transport.OpError{Op: "broadcast", Rank: e.rank, Peer: dst, Tag: tagBroadcast, Err: err}
		}
		e.fabric.fanout.Add(1)
	}
	e.fabric.broadcasts.Add(1)
	return payload, nil
}

// Close stops this endpoint's mailbox. Peers blocked on it see ErrClosed.
func (e *Endpoint) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return transport.ErrClosed
	}
	e.fabric.boxes[e.rank].Close()
	return nil
}

// compile-time check that Endpoint implements transport.Transport
var _ transport.Transport = (*Endpoint)(nil)
