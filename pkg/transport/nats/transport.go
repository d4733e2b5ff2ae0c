// Package nats implements transport.Transport over a NATS server. Each rank
// holds one connection; ranks find each other through a rendezvous on
// subjects scoped by a group name.
package nats

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/multierr"

	"github.com/bacalhau-project/gtbarrier/pkg/lib/backoff"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

// broadcast messages share the mailbox with point-to-point ones on a tag no
// barrier uses.
const tagBroadcast transport.Tag = -1

const (
	mailboxCapacity = 1024
	joinRetryBase   = 50 * time.Millisecond
	joinRetryMax    = time.Second
	joinRequestWait = time.Second
)

type joinRequest struct {
	Rank int `json:"rank"`
}

type joinReply struct {
	Size  int    `json:"size"`
	Error string `json:"error,omitempty"`
}

type readyMessage struct {
	Size int `json:"size"`
}

// Transport is one rank's connection to a group.
type Transport struct {
	conn     *nats.Conn
	subjects subjects
	rank     int
	size     int
	mailbox  *transport.Mailbox
	subs     []*nats.Subscription
	closed   atomic.Bool
}

// Connect joins the group described by cfg and returns once every rank has
// joined. Rank 0 coordinates the rendezvous.
func Connect(ctx context.Context, cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid nats transport config")
	}
	name := cfg.Name
	if name == "" {
		name = cfg.Group
	}
	conn, err := nats.Connect(cfg.serverURL(), nats.Name(name), nats.NoEcho())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to NATS at %s", cfg.serverURL())
	}

	t := &Transport{
		conn:     conn,
		subjects: newSubjects(cfg.Group),
		rank:     cfg.Rank,
		size:     cfg.Size,
		mailbox:  transport.NewMailbox(mailboxCapacity),
	}
	if err = t.subscribe(); err != nil {
		return nil, multierr.Append(err, t.Close())
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.joinTimeout())
	defer cancel()
	if cfg.Rank == 0 {
		err = t.coordinate(ctx)
	} else {
		err = t.join(ctx)
	}
	if err != nil {
		return nil, multierr.Append(errors.Wrapf(err, "rank %d failed to join group %s", cfg.Rank, cfg.Group), t.Close())
	}
	log.Ctx(ctx).Debug().Int("Rank", t.rank).Int("Size", t.size).Msg("joined barrier group")
	return t, nil
}

func (t *Transport) subscribe() error {
	inbox, err := t.conn.Subscribe(t.subjects.inbox(t.rank), func(msg *nats.Msg) {
		src, tag, err := parseP2P(msg.Subject)
		if err != nil {
			log.Warn().Err(err).Msg("dropping message")
			return
		}
		t.deliver(src, tag, msg.Data)
	})
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to inbox")
	}
	t.subs = append(t.subs, inbox)

	bcast, err := t.conn.Subscribe(t.subjects.broadcasts(), func(msg *nats.Msg) {
		root, err := parseBroadcast(msg.Subject)
		if err != nil {
			log.Warn().Err(err).Msg("dropping broadcast")
			return
		}
		t.deliver(root, tagBroadcast, msg.Data)
	})
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to broadcasts")
	}
	t.subs = append(t.subs, bcast)
	return nil
}

// deliver runs on the inbox subscription's dispatcher. Barrier peers are at
// most one round apart and send one message per (peer, tag) per round, so a
// queue of mailboxCapacity only fills when the receiver stopped calling Recv.
// Delivery then blocks the dispatcher for every peer until Recv or Close.
func (t *Transport) deliver(src int, tag transport.Tag, data []byte) {
	if t.mailbox.TryDeliver(src, tag, data) {
		return
	}
	if t.closed.Load() {
		return
	}
	log.Warn().Int("Source", src).Int("Tag", int(tag)).Int("Capacity", mailboxCapacity).
		Msg("mailbox full, inbox delivery stalls until the message is received")
	if err := t.mailbox.Deliver(context.Background(), src, tag, data); err != nil && !t.closed.Load() {
		log.Warn().Err(err).Int("Source", src).Int("Tag", int(tag)).Msg("failed to queue message")
	}
}

// coordinate answers join requests until size-1 distinct ranks have joined,
// then tells everyone the group is complete.
func (t *Transport) coordinate(ctx context.Context) error {
	if t.size == 1 {
		return nil
	}

	var mu sync.Mutex
	joined := make(map[int]struct{}, t.size-1)
	complete := make(chan struct{})

	sub, err := t.conn.Subscribe(t.subjects.join(), func(msg *nats.Msg) {
		var req joinRequest
		reply := joinReply{Size: t.size}
		if err := sonnet.Unmarshal(msg.Data, &req); err != nil {
			reply.Error = err.Error()
		} else if req.Rank <= 0 || req.Rank >= t.size {
			reply.Error = errors.Wrapf(transport.ErrInvalidRank, "rank %d for group of %d", req.Rank, t.size).Error()
		}
		data, _ := sonnet.Marshal(reply)
		if err := msg.Respond(data); err != nil {
			log.Warn().Err(err).Int("Rank", req.Rank).Msg("failed to answer join request")
			return
		}
		if reply.Error != "" {
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if _, dup := joined[req.Rank]; dup {
			return
		}
		joined[req.Rank] = struct{}{}
		if len(joined) == t.size-1 {
			close(complete)
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to join requests")
	}
	defer func() { _ = sub.Unsubscribe() }()

	select {
	case <-complete:
	case <-ctx.Done():
		mu.Lock()
		n := len(joined)
		mu.Unlock()
		return errors.Wrapf(ctx.Err(), "only %d of %d ranks joined", n+1, t.size)
	}

	data, err := sonnet.Marshal(readyMessage{Size: t.size})
	if err != nil {
		return err
	}
	if err = t.conn.Publish(t.subjects.ready(), data); err != nil {
		return errors.Wrap(err, "failed to announce group")
	}
	return t.conn.FlushWithContext(ctx)
}

// join registers with rank 0, retrying until it is reachable, and waits for
// the group to be complete.
func (t *Transport) join(ctx context.Context) error {
	ready, err := t.conn.SubscribeSync(t.subjects.ready())
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to ready announcements")
	}
	defer func() { _ = ready.Unsubscribe() }()
	// subscriptions must reach the server before rank 0 learns we exist
	if err = t.conn.FlushWithContext(ctx); err != nil {
		return errors.Wrap(err, "failed to flush subscriptions")
	}

	req, err := sonnet.Marshal(joinRequest{Rank: t.rank})
	if err != nil {
		return err
	}
	var reply joinReply
	retry := backoff.NewExponential(joinRetryBase, joinRetryMax)
	for attempt := 1; ; attempt++ {
		msg, err := t.conn.Request(t.subjects.join(), req, joinRequestWait)
		if err == nil {
			if err = sonnet.Unmarshal(msg.Data, &reply); err != nil {
				return errors.Wrap(err, "malformed join reply")
			}
			break
		}
		if !errors.Is(err, nats.ErrNoResponders) && !errors.Is(err, nats.ErrTimeout) {
			return errors.Wrap(err, "join request failed")
		}
		log.Ctx(ctx).Trace().Err(err).Int("Rank", t.rank).Msg("rank 0 not reachable yet")
		if err = retry.Backoff(ctx, attempt); err != nil {
			return errors.Wrap(err, "rank 0 never answered")
		}
	}
	if reply.Error != "" {
		return errors.New(reply.Error)
	}
	t.size = reply.Size

	msg, err := ready.NextMsgWithContext(ctx)
	if err != nil {
		return errors.Wrap(err, "group never became ready")
	}
	var announced readyMessage
	if err = sonnet.Unmarshal(msg.Data, &announced); err != nil {
		return errors.Wrap(err, "malformed ready announcement")
	}
	if announced.Size != t.size {
		return errors.Errorf("ready announced size %d, join reply said %d", announced.Size, t.size)
	}
	return nil
}

func (t *Transport) Rank() int { return t.rank }
func (t *Transport) Size() int { return t.size }

// ThreadLevel is Multiple: a nats.Conn is safe for concurrent use.
func (t *Transport) ThreadLevel() transport.ThreadLevel { return transport.Multiple }

func (t *Transport) check(op string, peer int, tag transport.Tag) error {
	if t.closed.Load() {
		return &transport.OpError{Op: op, Rank: t.rank, Peer: peer, Tag: tag, Err: transport.ErrClosed}
	}
	if peer < 0 || peer >= t.size {
		return &transport.OpError{Op: op, Rank: t.rank, Peer: peer, Tag: tag, Err: transport.ErrInvalidRank}
	}
	return nil
}

func (t *Transport) Send(ctx context.Context, dst int, tag transport.Tag, payload []byte) error {
	if err := t.check("send", dst, tag); err != nil {
		return err
	}
	if err := t.conn.Publish(t.subjects.p2p(dst, t.rank, tag), payload); err != nil {
		return &transport.OpError{Op: "send", Rank: t.rank, Peer: dst, Tag: tag, Err: err}
	}
	return nil
}

func (t *Transport) Recv(ctx context.Context, src int, tag transport.Tag) ([]byte, error) {
	if err := t.check("recv", src, tag); err != nil {
		return nil, err
	}
	p, err := t.mailbox.Take(ctx, src, tag)
	if err != nil {
		return nil, &transport.OpError{Op: "recv", Rank: t.rank, Peer: src, Tag: tag, Err: err}
	}
	return p, nil
}

func (t *Transport) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	if err := t.check("broadcast", root, tagBroadcast); err != nil {
		return nil, err
	}
	if t.rank != root {
		p, err := t.mailbox.Take(ctx, root, tagBroadcast)
		if err != nil {
			return nil, &transport.OpError{Op: "broadcast", Rank: t.rank, Peer: root, Tag: tagBroadcast, Err: err}
		}
		return p, nil
	}
	if t.size == 1 {
		return payload, nil
	}
	if err := t.conn.Publish(t.subjects.broadcast(root), payload); err != nil {
		return nil, &transport.OpError{Op: "broadcast", Rank: t.rank, Peer: root, Tag: tagBroadcast, Err: err}
	}
	return payload, nil
}

// Close drains nothing: pending messages are dropped and blocked receivers
// see transport.ErrClosed.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return transport.ErrClosed
	}
	var errs error
	for _, sub := range t.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			errs = multierr.Append(errs, err)
		}
	}
	if err := t.conn.FlushTimeout(time.Second); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		errs = multierr.Append(errs, err)
	}
	t.mailbox.Close()
	t.conn.Close()
	return errs
}

var _ transport.Transport = (*Transport)(nil)
