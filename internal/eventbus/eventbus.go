// ABOUTME: Typed in-process event bus used to observe finished query cycles
// ABOUTME: Subscribers are called synchronously in subscription order; a nil bus is a no-op

package eventbus

import "sync"

// Handler is a callback function for events.
type Handler[T any] func(T)

type subscriber[T any] struct {
	id int
	fn Handler[T]
}

// Bus is a typed event bus that delivers events to registered handlers.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []subscriber[T]
	nextID int
}

// New creates a new event bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a handler and returns an unsubscribe function.
// Calling the unsubscribe function more than once is harmless.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber[T]{id: id, fn: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers event to every subscriber in the order they subscribed.
// Handlers run on the publishing goroutine, outside the bus lock, so a
// handler may subscribe or unsubscribe.
func (b *Bus[T]) Publish(event T) {
	if b == nil {
		return
	}
	b.mu.RLock()
	snapshot := make([]Handler[T], len(b.subs))
	for i, s := range b.subs {
		snapshot[i] = s.fn
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(event)
	}
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
