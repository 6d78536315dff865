// Package event provides a synchronous publish/subscribe bus.
//
// Handlers run to completion on the publisher's goroutine, in subscription
// order, before Publish returns. This keeps the editor's event loop
// deterministic: a handler always observes every event published before it.
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TopicContentChanged, func(ctx context.Context, ev event.Event) error {
//	    engine.CheckOverflow(ev.Payload.(*pagination.Page))
//	    return nil
//	})
//	bus.Publish(ctx, event.Event{Topic: event.TopicContentChanged, Payload: page})
package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/dshills/folio/internal/event/topic"
)

// Event is a published event.
type Event struct {
	Topic   topic.Topic
	Payload any
}

// Handler handles an event.
type Handler func(ctx context.Context, ev Event) error

// SubscriptionID identifies a subscription.
type SubscriptionID uint64

// PanicHandler is called when a handler panics.
type PanicHandler func(ev Event, recovered any, stack []byte)

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type subscription struct {
	id      SubscriptionID
	pattern topic.Topic
	handler Handler
}

// Bus is a synchronous event bus.
type Bus struct {
	mu      sync.RWMutex
	subs    []subscription
	nextID  SubscriptionID
	onPanic PanicHandler
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the function called when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) {
		b.onPanic = h
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler) (SubscriptionID, error) {
	if !pattern.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if handler == nil {
		return 0, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, pattern: pattern, handler: handler})
	return b.nextID, nil
}

// Unsubscribe removes a subscription. It returns false if id is unknown.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev to every matching handler and returns their errors
// joined. A panicking handler is recovered and reported as ErrHandlerPanic.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev.Topic.IsWildcard() || !ev.Topic.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, ev.Topic)
	}

	b.mu.RLock()
	matched := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if ev.Topic.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range matched {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := b.deliver(ctx, ev, s.handler); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, ev Event, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, ev.Topic, r)
			if b.onPanic != nil {
				func() {
					defer func() { _ = recover() }()
					b.onPanic(ev, r, stack)
				}()
			}
		}
	}()
	return h(ctx, ev)
}
