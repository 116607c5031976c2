package workers

import (
	"context"
	"fmt"

	"friend-chat/contract"
	"friend-chat/domain/chat"
	"friend-chat/domain/event"
	"friend-chat/errors"
)

// join binds the connection to its user, tells everyone the user is online
// and sends the current snapshot to the newcomer.
func (w *DispatcherWorker) join(ctx context.Context, cmd chat.JoinCommand, origin contract.EventSink) error {
	if origin == nil {
		return fmt.Errorf("%w: join requires a connection", errors.ErrValidation)
	}
	w.registry.Register(cmd.UserID, origin)
	w.log.Info("User online", "user_id", cmd.UserID)

	if err := w.broadcast(ctx, event.UserPresence{UserID: cmd.UserID, Online: true}); err != nil {
		return err
	}
	return w.emit(ctx, event.OnlineUsers{UserIDs: w.registry.SnapshotOnline()}, origin)
}

// leave announces the user offline only when this connection was still the
// registered one. A stale connection closing after a reconnect stays silent.
func (w *DispatcherWorker) leave(ctx context.Context, cmd chat.LeaveCommand, origin contract.EventSink) error {
	if !w.registry.Unregister(cmd.UserID, origin) {
		w.log.Debug("Stale connection closed", "user_id", cmd.UserID)
		return nil
	}
	w.log.Info("User offline", "user_id", cmd.UserID)
	return w.broadcast(ctx, event.UserPresence{UserID: cmd.UserID, Online: false})
}

// typing is relayed to the receiver only, nothing is stored.
func (w *DispatcherWorker) typing(ctx context.Context, cmd chat.TypingCommand) error {
	return w.emitTo(ctx, event.Typing{UserID: cmd.SenderID, Active: cmd.Active}, cmd.ReceiverID)
}
