package eventbus

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/domain"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	bus := New(4, zap.NewNop())
	sub1 := bus.Subscribe()
	sub2 := bus.Subscribe()

	ev := domain.DomainEvent{Type: domain.EventStoryCreated, EntityID: uuid.New()}
	bus.Publish(ev)

	select {
	case got := <-sub1.Events():
		if got.EntityID != ev.EntityID {
			t.Fatalf("sub1 got wrong event")
		}
	case <-time.After(time.Second):
		t.Fatal("sub1 timed out waiting for event")
	}

	select {
	case got := <-sub2.Events():
		if got.EntityID != ev.EntityID {
			t.Fatalf("sub2 got wrong event")
		}
	case <-time.After(time.Second):
		t.Fatal("sub2 timed out waiting for event")
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	bus := New(2, zap.NewNop())
	sub := bus.Subscribe()

	first := domain.DomainEvent{Type: domain.EventTaskCreated, EntityID: uuid.New()}
	second := domain.DomainEvent{Type: domain.EventTaskUpdated, EntityID: uuid.New()}
	third := domain.DomainEvent{Type: domain.EventTaskDeleted, EntityID: uuid.New()}

	bus.Publish(first)
	bus.Publish(second)
	bus.Publish(third) // backlog is full (2); oldest (first) should be dropped

	got1 := <-sub.Events()
	got2 := <-sub.Events()

	if got1.Type != domain.EventTaskUpdated {
		t.Fatalf("expected oldest event dropped, got %s first", got1.Type)
	}
	if got2.Type != domain.EventTaskDeleted {
		t.Fatalf("expected third event delivered, got %s", got2.Type)
	}
}

func TestUnsubscribeRemovesSubscriber(t *testing.T) {
	bus := New(4, zap.NewNop())
	sub := bus.Subscribe()
	if bus.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	sub.Unsubscribe()
	if bus.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe")
	}
}
