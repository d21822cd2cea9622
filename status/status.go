// Package status provides the search lifecycle states and a small
// last-value-wins observable channel used to broadcast them.
package status

import "sync"

// Status represents a coarse lifecycle state of the search engine.
type Status int

// Lifecycle states. Cleared is the construction state.
const (
	Cleared Status = iota
	Ready
	Loading
	ListChanged
	Error
)

// String returns a readable name for logging
func (s Status) String() string {
	switch s {
	case Cleared:
		return "cleared"
	case Ready:
		return "ready"
	case Loading:
		return "loading"
	case ListChanged:
		return "listChanged"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Observer receives notified values.
type Observer[V any] func(V)

// Channel is a last-value-wins observable: it holds a single current
// value and delivers every notification synchronously to all
// subscribed observers in registration order. There is no history; a
// late subscriber only ever sees the current value via Value.
type Channel[V any] struct {
	mu        sync.Mutex
	value     V
	observers []entry[V]
	nextID    int
}

type entry[V any] struct {
	id int
	fn Observer[V]
}

// NewChannel creates a channel holding the given initial value.
func NewChannel[V any](initial V) *Channel[V] {
	return &Channel[V]{value: initial}
}

// Notify overwrites the current value and delivers it to every
// observer. There is no equality check: notifying the same value twice
// fires observers twice. Delivery happens on the caller's goroutine,
// against a snapshot of the observer list, so an observer may
// unsubscribe itself (or others) without affecting the in-flight
// delivery.
func (c *Channel[V]) Notify(v V) {
	c.mu.Lock()
	c.value = v
	snapshot := make([]entry[V], len(c.observers))
	copy(snapshot, c.observers)
	c.mu.Unlock()

	for _, e := range snapshot {
		e.fn(v)
	}
}

// Subscribe registers an observer and returns an unsubscribe function.
func (c *Channel[V]) Subscribe(fn Observer[V]) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers = append(c.observers, entry[V]{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, e := range c.observers {
			if e.id == id {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				break
			}
		}
	}
}

// Value returns the last-notified value.
func (c *Channel[V]) Value() V {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
