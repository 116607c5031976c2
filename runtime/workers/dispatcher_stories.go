package workers

import (
	"context"
	"fmt"

	"friend-chat/domain/chat"
	"friend-chat/domain/event"
	"friend-chat/errors"
)

// announceStory broadcasts a story its owner already persisted.
// Only the stored record is trusted, never the client payload.
func (w *DispatcherWorker) announceStory(ctx context.Context, cmd chat.AnnounceStoryCommand) error {
	id, err := parseID(cmd.StoryID)
	if err != nil {
		return err
	}
	story, err := w.stories.GetStory(id, w.now())
	if err != nil {
		return err
	}
	if story.UserID != cmd.RequesterID {
		return fmt.Errorf("%w: story %s belongs to another user", errors.ErrUnauthorized, story.ID)
	}
	return w.broadcast(ctx, event.StoryAdded{Story: story})
}

func (w *DispatcherWorker) viewStory(ctx context.Context, cmd chat.ViewStoryCommand) error {
	id, err := parseID(cmd.StoryID)
	if err != nil {
		return err
	}
	story, changed, err := w.stories.AddViewer(id, cmd.ViewerID, w.now())
	if err != nil || !changed {
		return err
	}
	return w.emitTo(ctx, event.StoryViewed{StoryID: story.ID, ViewerID: cmd.ViewerID}, story.UserID)
}

// expireStories runs the periodic sweep and asks clients to refresh when
// anything was removed.
func (w *DispatcherWorker) expireStories(ctx context.Context) error {
	removed, err := w.stories.Sweep(w.now())
	if err != nil || len(removed) == 0 {
		return err
	}
	w.log.Info("Expired stories removed", "count", len(removed))
	return w.broadcast(ctx, event.StoriesExpired{StoryIDs: removed})
}
