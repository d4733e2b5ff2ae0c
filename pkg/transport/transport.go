// Package transport defines the point-to-point and broadcast messaging the
// distributed barriers are built on.
package transport

import (
	"context"
	"fmt"
)

// ThreadLevel is the degree of multi-threaded use a transport supports.
type ThreadLevel int

const (
	// Single allows only one thread in the process.
	Single ThreadLevel = iota
	// Funneled allows many threads, but only the main thread calls the transport.
	Funneled
	// Serialized allows any thread to call, one at a time.
	Serialized
	// Multiple allows concurrent calls from any thread.
	Multiple
)

func (l ThreadLevel) String() string {
	switch l {
	case Single:
		return "single"
	case Funneled:
		return "funneled"
	case Serialized:
		return "serialized"
	case Multiple:
		return "multiple"
	default:
		return fmt.Sprintf("ThreadLevel(%d)", int(l))
	}
}

// Tag separates independent message streams between the same pair of ranks.
type Tag int

// Tags used by the distributed barriers.
const (
	TagArrival Tag = iota + 1
	TagRelease
)

// Transport connects the ranks of a fixed-size group.
type Transport interface {
	// Rank of this process in [0, Size()).
	Rank() int
	Size() int
	ThreadLevel() ThreadLevel
	// Send blocks until the payload has been handed to the transport.
	Send(ctx context.Context, dst int, tag Tag, payload []byte) error
	// Recv blocks until a message from src with the given tag arrives.
	Recv(ctx context.Context, src int, tag Tag) ([]byte, error)
	// Broadcast is a collective call: every rank calls it with the same root
	// and all of them return root's payload.
	Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error)
	Close() error
}

// OpError describes a failed transport operation.
type OpError struct {
	Op   string
	Rank int
	Peer int
	Tag  Tag
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("transport: %s rank=%d peer=%d tag=%d: %v", e.Op, e.Rank, e.Peer, e.Tag, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
