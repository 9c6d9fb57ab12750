package inventory

import (
	"sync"
	"time"
)

// EventKind represents the type of collection change.
type EventKind int

const (
	// EventAdded is emitted when an instance is placed into a slot.
	EventAdded EventKind = iota
	// EventRemoved is emitted when units leave a collection intact
	// (deleted, consumed or taken for a transfer).
	EventRemoved
	// EventSelected is emitted when an instance becomes the selection.
	EventSelected
	// EventDeselected is emitted when the selection is cleared.
	EventDeselected
	// EventMerged is emitted when units are absorbed into a resident stack.
	EventMerged
	// EventDestroyed is emitted when an instance is discarded by an
	// overwrite or truncated away by a capacity change.
	EventDestroyed
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "Added"
	case EventRemoved:
		return "Removed"
	case EventSelected:
		return "Selected"
	case EventDeselected:
		return "Deselected"
	case EventMerged:
		return "Merged"
	case EventDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// Event describes one change to a collection.
type Event struct {
	Kind       EventKind    `json:"kind"`
	Collection string       `json:"collection"`
	Instance   InstanceID   `json:"instance"`
	Definition DefinitionID `json:"definition"`
	Slot       int          `json:"slot"`
	// Amount is the number of units affected by this change.
	Amount int `json:"amount"`
	// Count is the instance's count after the change.
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// EventSink receives collection events.
type EventSink interface {
	Publish(event Event)
}

// AllCollections subscribes a handler to every collection's events.
const AllCollections = "*"

// EventBus manages event subscriptions and delivery.
type EventBus interface {
	EventSink

	// Subscribe registers a handler for events of one collection, or of all
	// collections when key is AllCollections.
	Subscribe(key string, handler func(Event))

	// Unsubscribe removes the handler registered under key.
	Unsubscribe(key string)
}

// SimpleEventBus is an in-memory bus that delivers events synchronously,
// in publish order, on the caller's goroutine.
type SimpleEventBus struct {
	mu       sync.RWMutex
	handlers map[string]func(Event)
}

// NewSimpleEventBus creates an empty bus.
func NewSimpleEventBus() *SimpleEventBus {
	return &SimpleEventBus{handlers: make(map[string]func(Event))}
}

// Subscribe registers a handler under key, replacing any previous one.
func (bus *SimpleEventBus) Subscribe(key string, handler func(Event)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[key] = handler
}

// Unsubscribe removes the handler registered under key.
func (bus *SimpleEventBus) Unsubscribe(key string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.handlers, key)
}

// Publish delivers the event to the collection's handler, then to the
// wildcard handler.
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	specific := bus.handlers[event.Collection]
	wildcard := bus.handlers[AllCollections]
	bus.mu.RUnlock()

	if specific != nil {
		specific(event)
	}
	if wildcard != nil {
		wildcard(event)
	}
}

// NullEventBus is an event bus that does nothing.
type NullEventBus struct{}

// NewNullEventBus creates a new null event bus.
func NewNullEventBus() *NullEventBus { return &NullEventBus{} }

// Subscribe does nothing.
func (bus *NullEventBus) Subscribe(key string, handler func(Event)) {}

// Unsubscribe does nothing.
func (bus *NullEventBus) Unsubscribe(key string) {}

// Publish does nothing.
func (bus *NullEventBus) Publish(event Event) {}

// EventRecorder collects events in memory. It is useful for tests and for
// hosts that drain changes once per frame.
type EventRecorder struct {
	events []Event
}

// Publish appends the event.
func (r *EventRecorder) Publish(event Event) { r.events = append(r.events, event) }

// Events returns the recorded events.
func (r *EventRecorder) Events() []Event { return r.events }

// Drain returns the recorded events and resets the recorder.
func (r *EventRecorder) Drain() []Event {
	out := r.events
	r.events = nil
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *EventRecorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}
