// Package eventbus is an in-process multi-subscriber broadcast of
// domain.DomainEvents with a bounded backlog per subscriber. It is
// grounded on the broadcast-channel pattern called out for re-architecture
// in the design notes: a single RWMutex guards the subscriber list, and
// Publish holds its read lock while it sends, but every send is
// non-blocking, so a full subscriber never stalls the publisher.
package eventbus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/domain"
)

// DefaultBacklog is the default bounded channel size per subscriber.
const DefaultBacklog = 256

// Bus is a multi-producer, multi-consumer broadcast of DomainEvents.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]chan domain.DomainEvent
	nextID  int
	backlog int
	logger  *zap.Logger
}

// New creates an event bus whose subscriber channels are sized backlog.
// A non-positive backlog falls back to DefaultBacklog.
func New(backlog int, logger *zap.Logger) *Bus {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Bus{
		subs:    make(map[int]chan domain.DomainEvent),
		backlog: backlog,
		logger:  logger.With(zap.String("component", "eventbus")),
	}
}

// Subscription is an independent receive handle; call Unsubscribe when the
// consumer is done to release the channel.
type Subscription struct {
	id     int
	ch     <-chan domain.DomainEvent
	bus    *Bus
}

// Events returns the receive-only channel for this subscription.
func (s *Subscription) Events() <-chan domain.DomainEvent { return s.ch }

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription) Unsubscribe() { s.bus.unsubscribe(s.id) }

// Subscribe returns an independent broadcast receiver.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.DomainEvent, b.backlog)
	b.subs[id] = ch

	return &Subscription{id: id, ch: ch, bus: b}
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish broadcasts ev to every current subscriber. Delivery is
// at-most-once per subscriber: a subscriber whose backlog is full has its
// oldest buffered event dropped to make room, rather than blocking the
// publisher or the other subscribers.
func (b *Bus) Publish(ev domain.DomainEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Backlog full: drop the oldest buffered event and retry once.
			select {
			case <-ch:
				b.logger.Warn("subscriber backlog full, dropped oldest event",
					zap.Int("subscriber_id", id), zap.String("event_type", string(ev.Type)))
			default:
			}
			select {
			case ch <- ev:
			default:
				b.logger.Warn("subscriber still full after drop, discarding event",
					zap.Int("subscriber_id", id), zap.String("event_type", string(ev.Type)))
			}
		}
	}
}

// SubscriberCount reports the number of live subscriptions, used mainly by
// tests and health checks.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
