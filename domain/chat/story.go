package chat

import (
	"fmt"
	"time"

	"friend-chat/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// StoryTTL is how long a story stays visible after its creation.
const StoryTTL = 24 * time.Hour

type Story struct {
	ID        uuid.UUID
	UserID    string
	MediaURL  string
	Type      MessageType
	CreatedAt time.Time
	Views     []string
}

func NewStory(cmd CreateStoryCommand, now time.Time) Story {
	return Story{
		ID:        uuid.New(),
		UserID:    cmd.UserID,
		MediaURL:  cmd.MediaURL,
		Type:      MessageType(cmd.Type),
		CreatedAt: now,
	}
}

func (s Story) ExpiresAt() time.Time {
	return s.CreatedAt.Add(StoryTTL)
}

// Expired is the single expiry rule shared by the lazy and the periodic sweep.
// A story aged exactly StoryTTL is expired.
func (s Story) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) >= StoryTTL
}

// AddViewer records viewerID once. The owner viewing their own story is not recorded.
func (s *Story) AddViewer(viewerID string) (bool, error) {
	if viewerID == "" {
		return false, fmt.Errorf("%w: viewer is required", errors.ErrValidation)
	}
	if viewerID == s.UserID || lo.Contains(s.Views, viewerID) {
		return false, nil
	}
	s.Views = append(s.Views, viewerID)
	return true, nil
}

// PartitionExpired splits stories into the ones still active and the expired ones.
func PartitionExpired(stories []Story, now time.Time) (active []Story, expired []Story) {
	return lo.FilterReject(stories, func(s Story, _ int) bool {
		return !s.Expired(now)
	})
}
