package events

import (
	"sync"

	"github.com/debs2013/possession/internal/telemetry"
)

// Handler consumes one event. A returned error is logged and dispatch
// continues with the next handler.
type Handler func(Event) error

// Bus is a synchronous in-process dispatcher: Publish invokes every
// handler registered for the event's type, in registration order, on the
// publisher's goroutine. Sinks that cannot keep up must hand off to their
// own goroutine — the bus itself never applies back-pressure to the
// pipeline driving it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers h for every future Publish of eventType.
func (b *Bus) Subscribe(eventType EventType, h Handler) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
	b.mu.Unlock()
}

// Publish dispatches e to every handler registered for e.Type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			telemetry.Warnf("events: handler for %s failed: %v", e.Type, err)
		}
	}
}
