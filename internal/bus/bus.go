// Package bus fans events out to in-process subscribers.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var (
	_ctx   = context.Background()
	subsMu sync.RWMutex
	subs   = make(map[string][]func(ctx context.Context, event any))
)

func SetContext(ctx context.Context) {
	_ctx = ctx
}

func topic[T any]() string {
	return fmt.Sprintf("%T", *new(T))
}

// Subscribe registers fn for every published T. Handlers run on the
// publisher's goroutine and must not block.
func Subscribe[T any](name string, fn func(ctx context.Context, event T) error) {
	subsMu.Lock()
	defer subsMu.Unlock()

	t := topic[T]()
	subs[t] = append(subs[t], func(ctx context.Context, event any) {
		if err := fn(ctx, event.(T)); err != nil {
			slog.Error("Failed to handle event", "package", "bus", "name", name, "error", err)
		}
	})
}

func Publish[T any](event T) {
	subsMu.RLock()
	fns := subs[topic[T]()]
	subsMu.RUnlock()

	for _, fn := range fns {
		fn(_ctx, event)
	}
}

// Reset drops every subscription.
func Reset() {
	subsMu.Lock()
	clear(subs)
	subsMu.Unlock()
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[*chan T]struct{}),
	}
}

// Hub keeps the latest event and hands it to channel subscribers. Slow
// subscribers miss intermediate events instead of stalling the publisher.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[*chan T]struct{}
	latest T
	ok     bool
}

func (h *Hub[T]) Broadcast(ctx context.Context, event T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest, h.ok = event, true
	for sub := range h.subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case *sub <- event:
		default:
			// drop the stale event and keep only the newest
			select {
			case <-*sub:
			default:
			}
			select {
			case *sub <- event:
			default:
			}
		}
	}

	return nil
}

// Register subscribes the hub to the global bus.
func (h *Hub[T]) Register() *Hub[T] {
	Subscribe("bus.Hub", h.Broadcast)
	return h
}

// Latest returns the most recent event, if any.
func (h *Hub[T]) Latest() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.ok
}

func (h *Hub[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	h.mu.Lock()
	c := make(chan T, 1)

	key := &c
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	return c, func() {
		h.mu.Lock()
		delete(h.subs, key)
		h.mu.Unlock()
	}
}
