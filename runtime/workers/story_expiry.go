package workers

import (
	"context"
	"log/slog"
	"time"

	"friend-chat/contract"
	"friend-chat/domain/chat"
)

var _ contract.Worker = (*StoryExpiryWorker)(nil)

// StoryExpiryWorker periodically asks the dispatcher to sweep expired stories.
// The sweep itself runs on the dispatcher so it is ordered with every other mutation.
type StoryExpiryWorker struct {
	log      *slog.Logger
	commands chan<- contract.Inbound
	interval time.Duration
}

func NewStoryExpiryWorker(log *slog.Logger, commands chan<- contract.Inbound, interval time.Duration) *StoryExpiryWorker {
	return &StoryExpiryWorker{log: log, commands: commands, interval: interval}
}

func (w *StoryExpiryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting story expiry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.commands <- contract.Inbound{Command: chat.ExpireStoriesCommand{}}:
			default:
				// The next tick will try again
				w.log.Warn("Command channel full, story sweep skipped")
			}
		}
	}
}
