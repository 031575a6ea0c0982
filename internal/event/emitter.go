// Package event carries store change notifications: an in-process observer
// list per store and an optional broker publisher that mirrors the same
// snapshots to Kafka or RabbitMQ.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler receives one change event.
type Handler[T any] func(ctx context.Context, e T)

// Emitter is a store-owned list of subscribers. Handlers run synchronously in
// registration order. A panicking handler is logged and skipped.
type Emitter[T any] struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   []subscription[T]
}

type subscription[T any] struct {
	id int
	fn Handler[T]
}

// NewEmitter creates an emitter whose events are logged under name.
func NewEmitter[T any](name string, logger *slog.Logger) *Emitter[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter[T]{name: name, logger: logger}
}

// Name returns the event name, e.g. "cartUpdated".
func (e *Emitter[T]) Name() string {
	return e.name
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (e *Emitter[T]) Subscribe(fn Handler[T]) func() {
	if fn == nil {
		return func() {}
	}

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription[T]{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, s := range e.subs {
				if s.id == id {
					e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Len returns the number of active subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Emit delivers ev to every subscriber registered at the time of the call.
func (e *Emitter[T]) Emit(ctx context.Context, ev T) {
	e.mu.Lock()
	subs := make([]subscription[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, s := range subs {
		e.deliver(ctx, s.fn, ev)
	}
}

func (e *Emitter[T]) deliver(ctx context.Context, fn Handler[T], ev T) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.ErrorContext(ctx, "event subscriber panicked",
				slog.String("event", e.name),
				slog.String("panic", fmt.Sprintf("%v", rec)),
			)
		}
	}()
	fn(ctx, ev)
}
