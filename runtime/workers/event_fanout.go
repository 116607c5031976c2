package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"friend-chat/contract"
	"friend-chat/errors"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout hands each queued delivery to its target connections.
//
// It is the only goroutine writing into connection sinks, one delivery at a time,
// so every connection receives events in the order the dispatcher emitted them.
// Delivery is best-effort: a sink that is full, closed or slower than sinkTimeout
// loses the event and the fanout moves on.
type EventFanout struct {
	log         *slog.Logger
	deliveries  <-chan contract.Delivery
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, deliveries <-chan contract.Delivery, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, deliveries: deliveries, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case delivery, ok := <-w.deliveries:
			if !ok {
				w.log.Debug("Delivery channel is closed")
				return nil
			}
			w.Fanout(ctx, delivery)
		}
	}
}

// Fanout One consume for each target
func (w *EventFanout) Fanout(ctx context.Context, delivery contract.Delivery) {
	for _, sink := range delivery.Targets {
		if sink == nil {
			continue
		}
		w.consume(ctx, sink, delivery)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, delivery contract.Delivery) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	err := sink.Consume(sinkCtx, delivery.Event)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrSinkClosed):
		w.log.Debug("Connection already closed, event dropped", "event", delivery.Event.Name())
	case stderrors.Is(err, errors.ErrSinkFull):
		w.log.Warn("Connection buffer full, event dropped", "event", delivery.Event.Name())
	default:
		w.log.Warn("Sink failed to consume event", "event", delivery.Event.Name(), "error", err)
	}
}
