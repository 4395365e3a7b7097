// Package events is an in-process typed publish/subscribe bus.
package events

import (
	"context"
	"log/slog"
	"sync"
)

const subscriberBufferSize = 16

// Topic fans values out to every current subscriber
type Topic[T any] struct {
	name   string
	mu     sync.RWMutex
	subs   map[*subscriber[T]]struct{}
	logger *slog.Logger
}

type subscriber[T any] struct {
	ch   chan T
	done <-chan struct{}
	// overflow deliveries still in flight
	pending sync.WaitGroup
}

// NewTopic creates an empty topic
func NewTopic[T any](name string, logger *slog.Logger) *Topic[T] {
	return &Topic[T]{
		name:   name,
		subs:   make(map[*subscriber[T]]struct{}),
		logger: logger.With(slog.String("component", "events"), slog.String("topic", name)),
	}
}

// Subscribe returns a channel receiving every value published until ctx
// is done. The channel is closed after the subscription ends.
func (t *Topic[T]) Subscribe(ctx context.Context) <-chan T {
	sub := &subscriber[T]{
		ch:   make(chan T, subscriberBufferSize),
		done: ctx.Done(),
	}

	t.mu.Lock()
	t.subs[sub] = struct{}{}
	count := len(t.subs)
	t.mu.Unlock()
	t.logger.Debug("subscriber added", slog.Int("subscribers", count))

	go func() {
		<-ctx.Done()
		t.mu.Lock()
		delete(t.subs, sub)
		t.mu.Unlock()
		sub.pending.Wait()
		close(sub.ch)
	}()

	return sub.ch
}

// Publish delivers v to every subscriber and never blocks. A subscriber
// whose buffer is full receives v from a background goroutine instead.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for sub := range t.subs {
		select {
		case sub.ch <- v:
		default:
			t.logger.Debug("subscriber buffer full, delivering in background")
			sub.pending.Add(1)
			go func(sub *subscriber[T]) {
				defer sub.pending.Done()
				select {
				case sub.ch <- v:
				case <-sub.done:
				}
			}(sub)
		}
	}
}

// SubscriberCount returns the number of active subscriptions
func (t *Topic[T]) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}
