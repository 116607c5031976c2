// Package api holds the JSON wire format shared by the WebSocket and HTTP
// surfaces, and the client side helpers built on it.
package api

import (
	"encoding/json"
	"time"

	"friend-chat/domain/chat"

	"github.com/samber/lo"
)

// Envelope wraps every WebSocket frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	MediaURL   *string   `json:"mediaUrl"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
	Pinned     bool      `json:"pinned"`
	Deleted    bool      `json:"deleted"`
	DeletedFor []string  `json:"deletedFor"`
}

type Story struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MediaURL  string    `json:"mediaUrl"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Views     []string  `json:"views"`
}

func FromMessage(m chat.Message) Message {
	return Message{
		ID:         m.ID.String(),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Type:       string(m.Type),
		MediaURL:   lo.EmptyableToPtr(m.MediaURL),
		Timestamp:  m.CreatedAt,
		Status:     string(m.Status),
		Pinned:     m.Pinned,
		Deleted:    m.Deleted,
		DeletedFor: nonNil(m.DeletedFor),
	}
}

func FromMessages(messages []chat.Message) []Message {
	return lo.Map(messages, func(m chat.Message, _ int) Message { return FromMessage(m) })
}

func FromStory(s chat.Story) Story {
	return Story{
		ID:        s.ID.String(),
		UserID:    s.UserID,
		MediaURL:  s.MediaURL,
		Type:      string(s.Type),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt(),
		Views:     nonNil(s.Views),
	}
}

func FromStories(stories []chat.Story) []Story {
	return lo.Map(stories, func(s chat.Story, _ int) Story { return FromStory(s) })
}

// nonNil keeps JSON arrays as [] instead of null.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
