// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vitrine-io/vitrine/internal/logging"
	"github.com/vitrine-io/vitrine/internal/metrics"
)

// bufferDepth is the per-subscriber buffer. Subscribers that fall more
// than this many messages behind start dropping.
const bufferDepth = 5

var (
	// ErrLagged is returned once per overflow episode. The subscriber
	// should log it and re-read catalog state on its next reaction.
	ErrLagged = errors.New("change bus: subscriber lagged, messages dropped")

	// ErrClosed is returned after the subscription has been closed.
	ErrClosed = errors.New("change bus: subscription closed")
)

// Bus fans catalog changes out to all live subscribers. Publish never
// blocks; a full subscriber buffer drops the message for that
// subscriber only.
type Bus struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber with its own cursor and buffer.
// The caller must Close the subscription when done.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan Change, bufferDepth),
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers the change to every subscriber that has buffer room
// and counts a drop for each one that does not. Publishing with no
// subscribers is a no-op.
func (b *Bus) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subs) == 0 {
		logging.Debug().Str("kind", c.Kind.String()).Msg("No subscribers for change")
		return
	}

	for sub := range b.subs {
		select {
		case sub.ch <- c:
			metrics.RecordChangePublished(c.Kind.String())
		default:
			sub.dropped.Add(1)
			metrics.RecordChangeDropped(c.Kind.String())
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscription is one consumer's cursor into the bus.
type Subscription struct {
	bus     *Bus
	ch      chan Change
	dropped atomic.Int64
	closed  atomic.Bool
}

// Recv blocks until a change arrives, the context is cancelled, or the
// subscription is closed. After an overflow it returns ErrLagged
// exactly once before resuming delivery of whatever is still buffered.
func (s *Subscription) Recv(ctx context.Context) (Change, error) {
	if n := s.dropped.Swap(0); n > 0 {
		logging.Warn().Int64("dropped", n).Msg("Change bus subscriber lagged")
		return Change{}, ErrLagged
	}

	select {
	case c, ok := <-s.ch:
		if !ok {
			return Change{}, ErrClosed
		}
		return c, nil
	case <-ctx.Done():
		return Change{}, ctx.Err()
	}
}

// Close detaches the subscription from the bus. Safe to call more than
// once.
func (s *Subscription) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	close(s.ch)
	s.bus.mu.Unlock()
}
