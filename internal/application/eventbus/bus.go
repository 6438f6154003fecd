// Package eventbus provides an in-process implementation of
// event.Publisher.
//
// Unlike a channel-fanout bus, it invokes handlers synchronously and in
// registration order: for a given event.Kind, every Subscribe call is
// awaited in full before the next handler runs, and Publish itself
// blocks until the last handler returns. This is required by the
// application layer, where state transitions for one event must be
// fully applied before the next handler (or the next published event)
// observes the resulting state.
package eventbus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/logging"
)

// subscriberEntry pairs a registered handler with the id used to remove it.
type subscriberEntry struct {
	id uint64
	h  event.Handler
}

// Bus implements event.Publisher with a simple, registration-ordered
// synchronous dispatch model.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[event.Kind][]subscriberEntry
	nextID      uint64

	logger logging.Logger
}

// NewBus constructs a Bus that logs handler errors and panics through
// logger.
func NewBus(logger logging.Logger) *Bus {
	return &Bus{
		subscribers: make(map[event.Kind][]subscriberEntry),
		logger:      logger,
	}
}

// Subscribe registers h to run for every Event of kind, after every
// previously registered handler for that kind.
func (b *Bus) Subscribe(kind event.Kind, h event.Handler) event.Subscription {
	id := atomic.AddUint64(&b.nextID, 1)

	b.mu.Lock()
	b.subscribers[kind] = append(b.subscribers[kind], subscriberEntry{id: id, h: h})
	b.mu.Unlock()

	return event.NewSubscription(kind, id)
}

// Unsubscribe removes a previously registered handler. Safe to call more
// than once, or with an unknown subscription.
func (b *Bus) Unsubscribe(sub event.Subscription) {
	kind, id := sub.Identity()

	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.subscribers[kind]
	for i, e := range entries {
		if e.id == id {
			b.subscribers[kind] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Publish invokes every handler registered for e.Kind, in registration
// order, awaiting each before the next runs. A handler error, or panic,
// is logged and does not stop subsequent handlers.
func (b *Bus) Publish(ctx context.Context, e event.Event) {
	b.mu.RLock()
	entries := append([]subscriberEntry(nil), b.subscribers[e.Kind]...)
	b.mu.RUnlock()

	for _, entry := range entries {
		b.invoke(ctx, entry.h, e)
	}
}

func (b *Bus) invoke(ctx context.Context, h event.Handler, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logError(e, fmt.Errorf("handler panicked: %v", r))
		}
	}()

	if err := h(ctx, e); err != nil {
		b.logError(e, err)
	}
}

func (b *Bus) logError(e event.Event, err error) {
	if b.logger == nil {
		return
	}
	b.logger.Error("", e.Kind.String(), "event handler failed", map[string]any{
		"error": err.Error(),
	})
}

var _ event.Publisher = (*Bus)(nil)
