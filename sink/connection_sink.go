package sink

import (
	"context"
	"sync"

	"friend-chat/contract"
	"friend-chat/domain/event"
	"friend-chat/errors"
)

var _ contract.EventSink = (*ConnectionSink)(nil)

// ConnectionSink is the handle of one live connection.
// The fanout pushes events into a bounded buffer, the connection writer drains it.
type ConnectionSink struct {
	mu     sync.RWMutex
	events chan event.DomainEvent
	closed chan struct{}
	once   sync.Once
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		events: make(chan event.DomainEvent, bufferSize),
		closed: make(chan struct{}),
	}
}

// Consume is called by fanout and never blocks.
// A full buffer loses the event: the connection is too slow to keep up.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	select {
	case <-s.closed:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.events <- e:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// Events is drained by the connection writer until Done is closed.
func (s *ConnectionSink) Events() <-chan event.DomainEvent {
	return s.events
}

func (s *ConnectionSink) Done() <-chan struct{} {
	return s.closed
}

// Close stops accepting events. It is safe to call several times.
func (s *ConnectionSink) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		close(s.closed)
	})
}
