// Package interaction provides the user-prompt rendezvous primitive: a
// single outstanding request from a running test case to a controlling
// client, resolved by a matching response.
package interaction

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Kind is the closed set of interaction kinds a test case may raise.
type Kind int

const (
	// KindInputRequest asks the controller for a value and blocks for it.
	KindInputRequest Kind = iota
	// KindNotification informs the controller without blocking for a reply.
	KindNotification
	// KindDecision asks the controller to choose among options.
	KindDecision
)

// String returns the wire name used in the outbound prompt payload.
func (k Kind) String() string {
	switch k {
	case KindInputRequest:
		return "input_request"
	case KindNotification:
		return "notification"
	case KindDecision:
		return "decision"
	default:
		return "unknown"
	}
}

// Context is a single outstanding user-prompt unit: an id, a kind, a
// message payload, and a one-shot response latch. Created by a running
// test case, resolved by a controller response carrying the matching id.
//
// The original implementation this engine was modeled on used an
// uncancellable wait primitive here; Wait below is deliberately
// cancellable so a test-run teardown can unblock a stuck case instead of
// hanging forever on an abandoned prompt.
type Context struct {
	id      string
	kind    Kind
	message string

	once sync.Once
	done chan struct{}
	mu   sync.Mutex
	resp any
}

// New creates an interaction Context of kind, carrying message, ready to
// be published and awaited.
func New(kind Kind, message string) *Context {
	return &Context{
		id:      uuid.NewString(),
		kind:    kind,
		message: message,
		done:    make(chan struct{}),
	}
}

// ID returns the context's identity, used to correlate a controller
// response back to this prompt.
func (c *Context) ID() string { return c.id }

// Kind returns the prompt kind.
func (c *Context) Kind() Kind { return c.kind }

// Message returns the prompt's message payload.
func (c *Context) Message() string { return c.message }

// Resolve delivers response and releases any waiter. Resolving an
// already-resolved context is a no-op; only the first call wins.
func (c *Context) Resolve(response any) {
	c.once.Do(func() {
		c.mu.Lock()
		c.resp = response
		c.mu.Unlock()
		close(c.done)
	})
}

// Wait blocks until Resolve is called or ctx is canceled, whichever comes
// first. On cancellation it returns ctx.Err() and a nil response; the
// context remains resolvable afterwards, in case a late response arrives.
func (c *Context) Wait(ctx context.Context) (any, error) {
	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
