package workers

import (
	"context"
	"fmt"

	"friend-chat/contract"
	"friend-chat/domain/chat"
	"friend-chat/domain/event"
	"friend-chat/errors"

	"github.com/google/uuid"
)

// sendMessage persists a new message, delivers it to the receiver when reachable
// and confirms it to the sender with its final status.
func (w *DispatcherWorker) sendMessage(ctx context.Context, cmd chat.SendMessageCommand, origin contract.EventSink) error {
	masked := 0
	if w.filter != nil && cmd.Content != "" {
		cmd.Content, masked = w.filter.Censor(cmd.Content)
	}
	message := chat.NewMessage(cmd, w.now())
	if masked > 0 {
		w.log.Info("Message content masked", "message_id", message.ID, "user_id", cmd.SenderID, "words", masked)
	}
	if err := w.messages.StoreMessage(message); err != nil {
		return err
	}

	if receiver, ok := w.registry.Lookup(cmd.ReceiverID); ok {
		delivered, _, err := w.messages.UpdateMessage(message.ID, func(m *chat.Message) (bool, error) {
			return m.MarkDelivered(), nil
		})
		if err != nil {
			// The receiver still gets the message, a later read fixes the stored status
			w.log.Warn("Unable to persist delivered status", "message_id", message.ID, "error", err)
		} else {
			message = delivered
		}
		if err := w.emit(ctx, event.MessageReceived{Message: message}, receiver); err != nil {
			return err
		}
	}

	return w.emit(ctx, event.MessageSent{Message: message}, w.connectionOf(origin, cmd.SenderID))
}

func (w *DispatcherWorker) readMessage(ctx context.Context, cmd chat.ReadMessageCommand) error {
	id, err := parseID(cmd.MessageID)
	if err != nil {
		return err
	}
	message, changed, err := w.messages.UpdateMessage(id, func(m *chat.Message) (bool, error) {
		return m.MarkRead(cmd.RequesterID)
	})
	if err != nil || !changed {
		return err
	}
	return w.emitTo(ctx, event.MessageRead{MessageID: message.ID}, message.SenderID)
}

func (w *DispatcherWorker) pinMessage(ctx context.Context, cmd chat.PinMessageCommand) error {
	id, err := parseID(cmd.MessageID)
	if err != nil {
		return err
	}
	message, changed, err := w.messages.UpdateMessage(id, func(m *chat.Message) (bool, error) {
		return m.TogglePin(cmd.RequesterID)
	})
	if err != nil || !changed {
		return err
	}
	return w.emitTo(ctx, event.MessagePinned{MessageID: message.ID, Pinned: message.Pinned}, message.Participants()...)
}

// deleteMessage hides a message for its requester, or erases it for both
// participants. Repeated deletions are acknowledged to the requester only.
func (w *DispatcherWorker) deleteMessage(ctx context.Context, cmd chat.DeleteMessageCommand, origin contract.EventSink) error {
	id, err := parseID(cmd.MessageID)
	if err != nil {
		return err
	}
	ack := event.MessageDeleted{MessageID: id, ForEveryone: cmd.ForEveryone}

	if !cmd.ForEveryone {
		if _, _, err := w.messages.UpdateMessage(id, func(m *chat.Message) (bool, error) {
			return m.DeleteFor(cmd.RequesterID)
		}); err != nil {
			return err
		}
		return w.emit(ctx, ack, w.connectionOf(origin, cmd.RequesterID))
	}

	message, changed, err := w.messages.UpdateMessage(id, func(m *chat.Message) (bool, error) {
		return m.DeleteForEveryone(cmd.RequesterID)
	})
	if err != nil {
		return err
	}
	if !changed {
		return w.emit(ctx, ack, w.connectionOf(origin, cmd.RequesterID))
	}
	return w.emitTo(ctx, ack, message.Participants()...)
}

// connectionOf prefers the connection a command arrived on.
func (w *DispatcherWorker) connectionOf(origin contract.EventSink, userID string) contract.EventSink {
	if origin != nil {
		return origin
	}
	sink, _ := w.registry.Lookup(userID)
	return sink
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", errors.ErrValidation, raw)
	}
	return id, nil
}
