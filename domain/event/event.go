// Package event defines every event the server pushes to connected clients.
// The set is closed: transports switch on the concrete type to encode them.
package event

import (
	"friend-chat/domain/chat"
	"friend-chat/errors"

	"github.com/google/uuid"
)

type DomainEvent interface {
	Name() string
}

type UserPresence struct {
	UserID string
	Online bool
}

func (UserPresence) Name() string { return "user:online" }

// OnlineUsers is the snapshot sent once to a connection right after it joined.
type OnlineUsers struct {
	UserIDs []string
}

func (OnlineUsers) Name() string { return "users:online" }

type MessageReceived struct {
	Message chat.Message
}

func (MessageReceived) Name() string { return "message:receive" }

// MessageSent confirms a submission to its sender with the final status.
type MessageSent struct {
	Message chat.Message
}

func (MessageSent) Name() string { return "message:sent" }

type MessageRead struct {
	MessageID uuid.UUID
}

func (MessageRead) Name() string { return "message:read" }

type MessagePinned struct {
	MessageID uuid.UUID
	Pinned    bool
}

func (MessagePinned) Name() string { return "message:pinned" }

type MessageDeleted struct {
	MessageID   uuid.UUID
	ForEveryone bool
}

func (MessageDeleted) Name() string { return "message:deleted" }

type Typing struct {
	UserID string
	Active bool
}

func (t Typing) Name() string {
	if t.Active {
		return "typing:show"
	}
	return "typing:hide"
}

type StoryAdded struct {
	Story chat.Story
}

func (StoryAdded) Name() string { return "story:added" }

type StoryViewed struct {
	StoryID  uuid.UUID
	ViewerID string
}

func (StoryViewed) Name() string { return "story:viewed" }

// StoriesExpired asks clients to refresh their story list.
type StoriesExpired struct {
	StoryIDs []uuid.UUID
}

func (StoriesExpired) Name() string { return "stories:expired" }

// Failure reports a rejected command to the connection that sent it.
type Failure struct {
	Kind    errors.Kind
	Event   string
	Message string
}

func (Failure) Name() string { return "error" }

func NewFailure(eventName string, err error) Failure {
	return Failure{
		Kind:    errors.KindOf(err),
		Event:   eventName,
		Message: errors.PublicMessage(err),
	}
}
