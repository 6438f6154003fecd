// Package event provides domain types for event handling.
package event

import "context"

// Handler handles one published event. Handlers run sequentially per
// publish, in registration order; a returned error is logged by the
// publisher and does not stop subsequent handlers from running.
type Handler func(ctx context.Context, e Event) error

// Subscription identifies a registered Handler so it can be removed later.
// Its fields are opaque to callers; publisher implementations construct
// and inspect it via NewSubscription and Identity.
type Subscription struct {
	kind Kind
	id   uint64
}

// NewSubscription constructs a Subscription from a kind and an
// implementation-assigned id. Intended for use by Publisher
// implementations, not by subscribers.
func NewSubscription(kind Kind, id uint64) Subscription {
	return Subscription{kind: kind, id: id}
}

// Identity returns the kind and id a Subscription was constructed with.
// Intended for use by Publisher implementations.
func (s Subscription) Identity() (Kind, uint64) {
	return s.kind, s.id
}

// Publisher defines the interface for publishing events and registering
// handlers. For a given kind, handlers are invoked in registration order
// and awaited sequentially before the next handler runs; publishes for
// independent kinds (or from concurrent goroutines) are not ordered with
// respect to each other.
type Publisher interface {
	// Subscribe registers h to run for every Event of kind.
	Subscribe(kind Kind, h Handler) Subscription
	// Publish invokes every handler registered for e.Kind, in order.
	Publish(ctx context.Context, e Event)
	// Unsubscribe removes a previously registered handler.
	Unsubscribe(sub Subscription)
}
