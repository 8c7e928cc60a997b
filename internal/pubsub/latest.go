// Package pubsub provides an in-process "latest value" broadcaster.
//
// Latest keeps the most recently published value and fans every new value out
// to its subscribers. A new subscriber receives the retained value at once.
// Each subscriber owns a channel with room for one value; publishing over an
// undelivered value replaces it, so a slow reader coalesces to the newest
// value and never blocks the publisher.
package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Subscribe and Update after Close.
var ErrClosed = errors.New("pubsub: closed")

type Latest[T any] struct {
	mu     sync.Mutex
	value  T
	has    bool
	closed bool
	subs   map[chan T]func() bool // channel -> stop for its context hook
}

// NewLatest returns a broadcaster with no retained value.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{subs: make(map[chan T]func() bool)}
}

// NewLatestWith returns a broadcaster retaining v.
func NewLatestWith[T any](v T) *Latest[T] {
	l := NewLatest[T]()
	l.value, l.has = v, true
	return l
}

// Value returns the retained value, if any.
func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.has
}

// Publish retains v and offers it to every subscriber.
// Publishing after Close is a no-op.
func (l *Latest[T]) Publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.publishLocked(v)
}

// Update applies fn to the retained value and publishes the result as one
// atomic step. If fn fails nothing is published and its error is returned.
func (l *Latest[T]) Update(fn func(cur T) (T, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	next, err := fn(l.value)
	if err != nil {
		return err
	}
	l.publishLocked(next)
	return nil
}

func (l *Latest[T]) publishLocked(v T) {
	l.value, l.has = v, true
	for ch := range l.subs {
		offer(ch, v)
	}
}

// offer must run under l.mu: the publisher is the only sender, so once the
// stale value is drained the final send cannot block.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// Subscribe returns a channel that first yields the retained value (if any)
// and then every later one. The channel is closed when ctx is done or the
// broadcaster is closed.
func (l *Latest[T]) Subscribe(ctx context.Context) (<-chan T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan T, 1)
	if l.has {
		ch <- l.value
	}
	l.subs[ch] = context.AfterFunc(ctx, func() { l.remove(ch) })
	return ch, nil
}

// Subscribers reports the number of live subscriptions.
func (l *Latest[T]) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

func (l *Latest[T]) remove(ch chan T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[ch]; !ok {
		return
	}
	delete(l.subs, ch)
	close(ch)
}

// Close ends every subscription. The retained value stays readable.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for ch, stop := range l.subs {
		stop()
		delete(l.subs, ch)
		close(ch)
	}
}
