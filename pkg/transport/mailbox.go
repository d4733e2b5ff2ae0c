package transport

import (
	"context"
	"sync"
)

type mailboxKey struct {
	src int
	tag Tag
}

// Mailbox queues messages for one receiver until a matching Recv asks for
// them. Messages from the same (source, tag) are delivered in order.
type Mailbox struct {
	mu     sync.Mutex
	queues map[mailboxKey]chan []byte
	size   int
	closed chan struct{}
	once   sync.Once
}

// NewMailbox creates a mailbox whose queues hold up to capacity messages each.
func NewMailbox(capacity int) *Mailbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Mailbox{
		queues: make(map[mailboxKey]chan []byte),
		size:   capacity,
		closed: make(chan struct{}),
	}
}

func (m *Mailbox) queue(src int, tag Tag) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := mailboxKey{src: src, tag: tag}
	q, ok := m.queues[k]
	if !ok {
		q = make(chan []byte, m.size)
		m.queues[k] = q
	}
	return q
}

// Deliver enqueues payload as a message from src. It blocks while the queue
// is full.
func (m *Mailbox) Deliver(ctx context.Context, src int, tag Tag, payload []byte) error {
	q := m.queue(src, tag)
	select {
	case q <- payload:
		return nil
	case <-m.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryDeliver enqueues payload without blocking. It reports false when the
// queue for (src, tag) is full or the mailbox is closed.
func (m *Mailbox) TryDeliver(src int, tag Tag, payload []byte) bool {
	select {
	case <-m.closed:
		return false
	default:
	}
	select {
	case m.queue(src, tag) <- payload:
		return true
	default:
		return false
	}
}

// Take blocks until a message from src with tag is available.
func (m *Mailbox) Take(ctx context.Context, src int, tag Tag) ([]byte, error) {
	q := m.queue(src, tag)
	select {
	case p := <-q:
		return p, nil
	case <-m.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases every blocked Deliver and Take.
func (m *Mailbox) Close() {
	m.once.Do(func() { close(m.closed) })
}
