package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when publishing to a closed broadcaster.
var ErrClosed = errors.New("broadcaster is closed")

// Message wraps published data with its publish time.
type Message[T any] struct {
	Data        T
	PublishedAt time.Time
}

// Publisher is the write side of a broadcaster.
type Publisher[T any] interface {
	Publish(ctx context.Context, data T) error
}

// Subscriber receives messages until it is closed.
type Subscriber[T any] interface {
	// Receive returns the channel messages are delivered on.
	// The channel is closed when the subscriber is closed.
	Receive() <-chan Message[T]

	// Close is idempotent.
	Close() error
}

// Broadcaster sends every published message to all current subscribers.
type Broadcaster[T any] interface {
	Publisher[T]
	Subscribe(ctx context.Context) Subscriber[T]
	Close() error
}

// subscriber is the buffered channel-backed Subscriber used by MemoryBroadcaster.
// dropped counts messages skipped because the buffer was full.
type subscriber[T any] struct {
	ch      chan Message[T]
	closed  bool
	dropped uint64
	mu      sync.Mutex
}

func newSubscriber[T any](bufferSize int) *subscriber[T] {
	return &subscriber[T]{ch: make(chan Message[T], bufferSize)}
}

// Receive returns the delivery channel. It is closed together with the subscriber.
func (s *subscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

// Close closes the delivery channel once; later calls do nothing.
func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

// send reports whether the message was delivered.
// It never blocks: a full buffer or a closed subscriber drops the message.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		s.dropped++
		return false
	}
}
