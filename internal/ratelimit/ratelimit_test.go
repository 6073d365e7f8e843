package ratelimit

import "testing"

func TestAllowWithinCapacity(t *testing.T) {
	l := New()
	key := Key("user-1", "interpret")
	if !l.Allow(key) {
		t.Fatalf("first request should be allowed")
	}
}

func TestRemainingAfterFirstCallIsCapacityMinusOne(t *testing.T) {
	l := New()
	key := Key("user-1", "interpret")
	l.Allow(key)
	if got := l.Remaining(key); got != Capacity-1 {
		t.Fatalf("expected %d remaining after the creation debit, got %d", Capacity-1, got)
	}
}

func TestRemainingForUnseenKeyReportsFullCapacity(t *testing.T) {
	l := New()
	if got := l.Remaining(Key("nobody", "interpret")); got != Capacity {
		t.Fatalf("expected full capacity for unseen key, got %d", got)
	}
}

func TestKeysAreIndependentPerResource(t *testing.T) {
	l := New()
	interpretKey := Key("user-1", "interpret")
	actKey := Key("user-1", "act")

	l.Allow(interpretKey)
	if got := l.Remaining(actKey); got != Capacity {
		t.Fatalf("expected act bucket untouched by interpret calls, got %d", got)
	}
}

func TestExhaustingBucketDeniesFurtherRequests(t *testing.T) {
	l := New()
	key := Key("user-1", "interpret")
	allowed := 0
	for i := 0; i < Capacity+5; i++ {
		if l.Allow(key) {
			allowed++
		}
	}
	if allowed != Capacity {
		t.Fatalf("expected exactly %d allowed requests before the bucket is exhausted, got %d", Capacity, allowed)
	}
}
