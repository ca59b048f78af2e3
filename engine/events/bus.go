package events

import "sync"

// Handler receives every event published after its subscription.
type Handler func(Event)

// Subscription is the cancellation handle returned by Subscribe.
type Subscription interface {
	// Cancel removes the handler. Safe to call more than once.
	Cancel()
}

// subscription is the implementation of the Subscription interface.
type subscription struct {
	bus *busImpl
	id  uint64
}

func (s *subscription) Cancel() {
	s.bus.unsubscribe(s.id)
}

// busImpl is the implementation of the Bus interface.
type busImpl struct {
	mu *sync.Mutex

	queue    []Event
	handlers map[uint64]Handler
	order    []uint64
	nextID   uint64
}

// Bus is the typed message channel decoupling configuration producers from
// the engine. Published events are queued in order for the owning engine to
// drain once per frame, and observers may subscribe with explicit
// cancellation handles so ordering and lifetime stay auditable.
type Bus interface {
	// Publish appends an event to the queue and notifies every subscriber
	// synchronously, in subscription order.
	//
	// Parameters:
	//   - e: the event to publish
	Publish(e Event)

	// Drain removes and returns all queued events in publish order. Only the
	// owning engine should drain; collaborators observe via Subscribe.
	//
	// Returns:
	//   - []Event: the queued events, oldest first
	Drain() []Event

	// Subscribe registers a handler for every subsequently published event.
	//
	// Parameters:
	//   - h: the handler to register
	//
	// Returns:
	//   - Subscription: the cancellation handle
	Subscribe(h Handler) Subscription
}

var _ Bus = &busImpl{}

// NewBus creates an event Bus.
//
// Returns:
//   - Bus: the newly created bus
func NewBus() Bus {
	return &busImpl{
		mu:       &sync.Mutex{},
		handlers: map[uint64]Handler{},
	}
}

func (b *busImpl) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	ids := make([]uint64, len(b.order))
	copy(ids, b.order)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		if h, ok := b.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	// Handlers run outside the lock so a subscriber may publish or cancel
	// from inside its callback.
	for _, h := range handlers {
		h(e)
	}
}

func (b *busImpl) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

func (b *busImpl) Subscribe(h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)
	return &subscription{bus: b, id: id}
}

func (b *busImpl) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}
