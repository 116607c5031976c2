package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"friend-chat/contract"
	"friend-chat/domain/chat"
	"friend-chat/domain/event"
	"friend-chat/errors"
	"friend-chat/repositories"
)

// Ensure *DispatcherWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*DispatcherWorker)(nil)

// DispatcherWorker is the single consumer of the command channel.
// Commands are handled one at a time in arrival order, which makes it the only
// writer of the registry and of the persisted messages and stories.
// Handlers never write to a connection: they queue deliveries for the fanout.
type DispatcherWorker struct {
	log        *slog.Logger
	commands   <-chan contract.Inbound
	deliveries chan<- contract.Delivery
	registry   contract.IRegistry
	messages   repositories.IMessageRepository
	stories    repositories.IStoryRepository
	filter     contract.ContentFilter
	now        func() time.Time
}

func NewDispatcherWorker(
	log *slog.Logger,
	commands <-chan contract.Inbound,
	deliveries chan<- contract.Delivery,
	registry contract.IRegistry,
	messages repositories.IMessageRepository,
	stories repositories.IStoryRepository) *DispatcherWorker {
	return &DispatcherWorker{
		log:        log,
		commands:   commands,
		deliveries: deliveries,
		registry:   registry,
		messages:   messages,
		stories:    stories,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithContentFilter masks text contents before they are stored. Nil disables it.
func (w *DispatcherWorker) WithContentFilter(filter contract.ContentFilter) *DispatcherWorker {
	w.filter = filter
	return w
}

func (w *DispatcherWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping dispatcher")
			return ctx.Err()
		case in, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if err := w.Handle(ctx, in); err != nil {
				return err
			}
		}
	}
}

// Handle executes one command. A rejected command is reported to its origin
// as an error event and never stops the worker.
// The only returned error is the cancellation of ctx.
func (w *DispatcherWorker) Handle(ctx context.Context, in contract.Inbound) error {
	if in.Command == nil {
		return nil
	}
	err := chat.Validate(in.Command)
	if err == nil {
		err = w.route(ctx, in)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return nil
	}

	w.logFailure(in.Command, err)
	return w.emit(ctx, event.NewFailure(in.Command.Name(), err), in.Origin)
}

func (w *DispatcherWorker) route(ctx context.Context, in contract.Inbound) error {
	switch cmd := in.Command.(type) {
	case chat.JoinCommand:
		return w.join(ctx, cmd, in.Origin)
	case chat.LeaveCommand:
		return w.leave(ctx, cmd, in.Origin)
	case chat.SendMessageCommand:
		return w.sendMessage(ctx, cmd, in.Origin)
	case chat.ReadMessageCommand:
		return w.readMessage(ctx, cmd)
	case chat.PinMessageCommand:
		return w.pinMessage(ctx, cmd)
	case chat.DeleteMessageCommand:
		return w.deleteMessage(ctx, cmd, in.Origin)
	case chat.TypingCommand:
		return w.typing(ctx, cmd)
	case chat.AnnounceStoryCommand:
		return w.announceStory(ctx, cmd)
	case chat.ViewStoryCommand:
		return w.viewStory(ctx, cmd)
	case chat.ExpireStoriesCommand:
		return w.expireStories(ctx)
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownEvent, in.Command.Name())
	}
}

// emit queues evt for the given connections. Nil targets are skipped.
func (w *DispatcherWorker) emit(ctx context.Context, evt event.DomainEvent, targets ...contract.EventSink) error {
	sinks := make([]contract.EventSink, 0, len(targets))
	for _, target := range targets {
		if target != nil {
			sinks = append(sinks, target)
		}
	}
	if len(sinks) == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case w.deliveries <- contract.Delivery{Event: evt, Targets: sinks}:
		return nil
	}
}

// emitTo queues evt for every listed user that is currently reachable.
// An unreachable user is not an error.
func (w *DispatcherWorker) emitTo(ctx context.Context, evt event.DomainEvent, userIDs ...string) error {
	var targets []contract.EventSink
	seen := make(map[contract.EventSink]struct{}, len(userIDs))
	for _, userID := range userIDs {
		sink, ok := w.registry.Lookup(userID)
		if !ok {
			continue
		}
		if _, dup := seen[sink]; dup {
			continue
		}
		seen[sink] = struct{}{}
		targets = append(targets, sink)
	}
	return w.emit(ctx, evt, targets...)
}

func (w *DispatcherWorker) broadcast(ctx context.Context, evt event.DomainEvent) error {
	return w.emit(ctx, evt, w.registry.All()...)
}

func (w *DispatcherWorker) logFailure(cmd chat.Command, err error) {
	switch errors.KindOf(err) {
	case errors.KindPersistence, errors.KindInternal:
		w.log.Error("Command failed", "command", cmd.Name(), "error", err)
	default:
		w.log.Debug("Command rejected", "command", cmd.Name(), "error", err)
	}
}
