package events

import (
	"testing"

	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

func TestDrainReturnsPublishOrder(t *testing.T) {
	b := NewBus()
	b.Publish(UniformWrite{Key: "uTime", Value: uniform.Float(1)})
	b.Publish(CameraSnap{})
	b.Publish(ResetAccumulation{})

	got := b.Drain()
	if len(got) != 3 {
		t.Fatalf("drained %d events, want 3", len(got))
	}
	if _, ok := got[0].(UniformWrite); !ok {
		t.Errorf("event 0 = %T, want UniformWrite", got[0])
	}
	if _, ok := got[1].(CameraSnap); !ok {
		t.Errorf("event 1 = %T, want CameraSnap", got[1])
	}
	if _, ok := got[2].(ResetAccumulation); !ok {
		t.Errorf("event 2 = %T, want ResetAccumulation", got[2])
	}

	if rest := b.Drain(); len(rest) != 0 {
		t.Errorf("second drain returned %d events, want 0", len(rest))
	}
}

func TestSubscribeObservesPublishes(t *testing.T) {
	b := NewBus()
	var seen []Event
	sub := b.Subscribe(func(e Event) { seen = append(seen, e) })

	b.Publish(CameraSnap{})
	if len(seen) != 1 {
		t.Fatalf("handler saw %d events, want 1", len(seen))
	}

	sub.Cancel()
	b.Publish(ResetAccumulation{})
	if len(seen) != 1 {
		t.Error("cancelled handler still received an event")
	}
	// Cancelling twice is harmless.
	sub.Cancel()
}

func TestSubscriberMayPublishFromCallback(t *testing.T) {
	b := NewBus()
	var sub Subscription
	sub = b.Subscribe(func(e Event) {
		if _, ok := e.(CameraSnap); ok {
			sub.Cancel()
			b.Publish(ResetAccumulation{})
		}
	})
	b.Publish(CameraSnap{})

	got := b.Drain()
	if len(got) != 2 {
		t.Fatalf("drained %d events, want 2", len(got))
	}
}

func TestSubscriptionOrderStable(t *testing.T) {
	b := NewBus()
	var order []int
	b.Subscribe(func(Event) { order = append(order, 1) })
	b.Subscribe(func(Event) { order = append(order, 2) })
	b.Subscribe(func(Event) { order = append(order, 3) })
	b.Publish(CameraSnap{})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("handler order = %v, want [1 2 3]", order)
	}
}
