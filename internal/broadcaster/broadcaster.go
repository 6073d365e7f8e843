// Package broadcaster implements the Task Event Broadcaster (C12): fan-out
// of domain.TaskEvents to any number of live subscribers after a
// successful task mutation. It is grounded on the same broadcast-channel
// shape as internal/eventbus, narrowed to the task-event payload and the
// delivery contract in §4.10: best-effort, in-order per subscriber,
// bounded buffer, no persistence.
package broadcaster

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// DefaultBacklog is the default bounded channel size per subscriber.
const DefaultBacklog = 128

// Broadcaster is a multi-producer, multi-consumer fan-out of
// domain.TaskEvents. The zero value is not usable; construct with New.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[int]chan domain.TaskEvent
	nextID  int
	backlog int
	logger  *zap.Logger
}

// New creates a Broadcaster whose subscriber channels are sized backlog. A
// non-positive backlog falls back to DefaultBacklog.
func New(backlog int, logger *zap.Logger) *Broadcaster {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Broadcaster{
		subs:    make(map[int]chan domain.TaskEvent),
		backlog: backlog,
		logger:  logger.With(zap.String("component", "broadcaster")),
	}
}

// Subscription is an independent receive handle for one live connection
// (normally a websocket writer pump). Call Unsubscribe when the consumer
// disconnects to release the channel.
type Subscription struct {
	id  int
	ch  <-chan domain.TaskEvent
	b   *Broadcaster
}

// Events returns the receive-only channel for this subscription.
func (s *Subscription) Events() <-chan domain.TaskEvent { return s.ch }

// Unsubscribe removes the subscription and closes its channel. Safe to
// call more than once.
func (s *Subscription) Unsubscribe() { s.b.unsubscribe(s.id) }

// Subscribe returns an independent broadcast receiver, starting from the
// moment Subscribe is called; no backfill is provided, matching the
// no-persistence contract.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.TaskEvent, b.backlog)
	b.subs[id] = ch

	return &Subscription{id: id, ch: ch, b: b}
}

func (b *Broadcaster) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Broadcast delivers ev to every current subscriber. A subscriber whose
// backlog is full has its oldest buffered event dropped to make room
// rather than blocking the publisher or other subscribers, preserving
// per-subscriber order at the cost of completeness under sustained
// backpressure.
func (b *Broadcaster) Broadcast(ev domain.TaskEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
				b.logger.Warn("subscriber backlog full, dropped oldest task event",
					zap.Int("subscriber_id", id), zap.String("event_type", string(ev.Type)))
			default:
			}
			select {
			case ch <- ev:
			default:
				b.logger.Warn("subscriber still full after drop, discarding task event",
					zap.Int("subscriber_id", id), zap.String("event_type", string(ev.Type)))
			}
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
