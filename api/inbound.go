package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"friend-chat/domain/chat"
	"friend-chat/errors"
)

// Inbound event names.
const (
	EventJoin          = "join"
	EventUserJoin      = "user:join"
	EventMessageSend   = "message:send"
	EventMessageRead   = "message:read"
	EventMessagePin    = "message:pin"
	EventMessageDelete = "message:delete"
	EventTypingStart   = "typing:start"
	EventTypingStop    = "typing:stop"
	EventStoryNew      = "story:new"
	EventStoryView     = "story:view"
)

type JoinRequest struct {
	UserID string `json:"userId"`
}

type SendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content,omitempty"`
	MediaURL   string `json:"mediaUrl,omitempty"`
	Type       string `json:"type,omitempty"`
}

type MessageRequest struct {
	MessageID string `json:"messageId"`
}

type DeleteMessageRequest struct {
	MessageID         string `json:"messageId"`
	UserID            string `json:"userId,omitempty"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
}

type TypingRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

// StoryRequest accepts the story itself or a {story} wrapper. Only the id is used.
type StoryRequest struct {
	ID    string `json:"id,omitempty"`
	Story *struct {
		ID string `json:"id"`
	} `json:"story,omitempty"`
}

type ViewStoryRequest struct {
	StoryID string `json:"storyId"`
}

type CreateStoryRequest struct {
	UserID   string `json:"userId"`
	MediaURL string `json:"mediaUrl"`
	Type     string `json:"type"`
}

// DecodeEnvelope parses one raw frame. Any frame that is not a JSON object with a
// string event is a validation failure, never a transport one.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: malformed frame", errors.ErrValidation)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: frame has no event", errors.ErrValidation)
	}
	return env, nil
}

// ToCommand decodes a frame received on a connection bound to joinedID.
// joinedID is empty until the connection joined. The ids carried by the payload
// must match the joined user, missing ones are filled from it.
func ToCommand(env Envelope, joinedID string) (chat.Command, error) {
	if env.Event == EventJoin || env.Event == EventUserJoin {
		return toJoin(env.Data, joinedID)
	}
	if joinedID == "" {
		return nil, fmt.Errorf("%w: send join before %s", errors.ErrNotJoined, env.Event)
	}

	switch env.Event {
	case EventMessageSend:
		var req SendMessageRequest
		if err := decode(env.Data, &req); err != nil {
			return nil, err
		}
		senderID, err := bind(req.SenderID, joinedID)
		if err != nil {
			return nil, err
		}
		return chat.SendMessageCommand{
			SenderID:   senderID,
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
			MediaURL:   req.MediaURL,
			Type:       req.Type,
		}, nil
	case EventMessageRead:
		var req MessageRequest
		if err := decode(env.Data, &req); err != nil {
			return nil, err
		}
		return chat.ReadMessageCommand{MessageID: req.MessageID, RequesterID: joinedID}, nil
	case EventMessagePin:
		var req MessageRequest
		if err := decode(env.Data, &req); err != nil {
			return nil, err
		}
		return chat.PinMessageCommand{MessageID: req.MessageID, RequesterID: joinedID}, nil
	case EventMessageDelete:
		var req DeleteMessageRequest
		if err := decode(env.Data, &req); err != nil {
			return nil, err
		}
		requesterID, err := bind(req.UserID, joinedID)
		if err != nil {
			return nil, err
		}
		return chat.DeleteMessageCommand{MessageID: req.MessageID, RequesterID: requesterID, ForEveryone: req.DeleteForEveryone}, nil
	case EventTypingStart, EventTypingStop:
		var req TypingRequest
		if err := decode(env.Data, &req); err != nil {
			return nil, err
		}
		senderID, err := bind(req.SenderID, joinedID)
		if err != nil {
			return nil, err
		}
		return chat.TypingCommand{SenderID: senderID, ReceiverID: req.ReceiverID, Active: env.Event == EventTypingStart}, nil
	case EventStoryNew:
		var req StoryRequest
		if err := decode(env.Data, &req); err != nil {
			return nil, err
		}
		storyID := req.ID
		if req.Story != nil {
			storyID = req.Story.ID
		}
		return chat.AnnounceStoryCommand{StoryID: storyID, RequesterID: joinedID}, nil
	case EventStoryView:
		var req ViewStoryRequest
		if err := decode(env.Data, &req); err != nil {
			return nil, err
		}
		return chat.ViewStoryCommand{StoryID: req.StoryID, ViewerID: joinedID}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, env.Event)
	}
}

// toJoin accepts a bare user id string, as browser clients send it, or {userId}.
func toJoin(data json.RawMessage, joinedID string) (chat.Command, error) {
	var userID string
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &userID); err != nil {
			return nil, fmt.Errorf("%w: malformed join payload", errors.ErrValidation)
		}
	} else {
		var req JoinRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		userID = req.UserID
	}
	if joinedID != "" && userID != joinedID {
		return nil, fmt.Errorf("%w: connection already joined as another user", errors.ErrUnauthorized)
	}
	return chat.JoinCommand{UserID: userID}, nil
}

// bind checks a payload id against the joined user.
func bind(claimed, joinedID string) (string, error) {
	if claimed == "" {
		return joinedID, nil
	}
	if claimed != joinedID {
		return "", fmt.Errorf("%w: %s does not match the joined user", errors.ErrUnauthorized, claimed)
	}
	return claimed, nil
}

func decode(data json.RawMessage, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: missing payload", errors.ErrValidation)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", errors.ErrValidation, err)
	}
	return nil
}
