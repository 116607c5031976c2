package api

import (
	"encoding/json"
	"fmt"

	"friend-chat/domain/event"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type UserPresence struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type MessageRef struct {
	MessageID string `json:"messageId"`
}

type MessagePinned struct {
	MessageID string `json:"messageId"`
	Pinned    bool   `json:"pinned"`
}

type MessageDeleted struct {
	MessageID   string `json:"messageId"`
	ForEveryone bool   `json:"forEveryone"`
}

type Typing struct {
	UserID string `json:"userId"`
}

type StoryViewed struct {
	StoryID string `json:"storyId"`
	UserID  string `json:"userId"`
}

type StoriesExpired struct {
	StoryIDs []string `json:"storyIds"`
}

type Failure struct {
	Kind    string `json:"kind"`
	Event   string `json:"event"`
	Message string `json:"message"`
}

// Encode turns a domain event into the frame sent to clients.
func Encode(evt event.DomainEvent) (Envelope, error) {
	payload, err := payloadOf(evt)
	if err != nil {
		return Envelope{}, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: evt.Name(), Data: data}, nil
}

func payloadOf(evt event.DomainEvent) (any, error) {
	switch e := evt.(type) {
	case event.UserPresence:
		return UserPresence{UserID: e.UserID, Online: e.Online}, nil
	case event.OnlineUsers:
		return nonNil(e.UserIDs), nil
	case event.MessageReceived:
		return FromMessage(e.Message), nil
	case event.MessageSent:
		return FromMessage(e.Message), nil
	case event.MessageRead:
		return MessageRef{MessageID: e.MessageID.String()}, nil
	case event.MessagePinned:
		return MessagePinned{MessageID: e.MessageID.String(), Pinned: e.Pinned}, nil
	case event.MessageDeleted:
		return MessageDeleted{MessageID: e.MessageID.String(), ForEveryone: e.ForEveryone}, nil
	case event.Typing:
		return Typing{UserID: e.UserID}, nil
	case event.StoryAdded:
		return FromStory(e.Story), nil
	case event.StoryViewed:
		return StoryViewed{StoryID: e.StoryID.String(), UserID: e.ViewerID}, nil
	case event.StoriesExpired:
		return StoriesExpired{StoryIDs: lo.Map(e.StoryIDs, func(id uuid.UUID, _ int) string { return id.String() })}, nil
	case event.Failure:
		return Failure{Kind: string(e.Kind), Event: e.Event, Message: e.Message}, nil
	default:
		return nil, fmt.Errorf("no wire format for event %s", evt.Name())
	}
}
