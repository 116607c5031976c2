package api

import (
	"encoding/json"
	"testing"
	"time"

	"friend-chat/domain/chat"
	"friend-chat/domain/event"
	"friend-chat/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEncode_Message_Uses_Client_Field_Names(t *testing.T) {
	req := require.New(t)
	message := chat.NewMessage(chat.SendMessageCommand{
		SenderID:   uuid.NewString(),
		ReceiverID: uuid.NewString(),
		Content:    "hi",
	}, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	env, err := Encode(event.MessageReceived{Message: message})
	req.NoError(err)
	req.Equal("message:receive", env.Event)

	var fields map[string]any
	req.NoError(json.Unmarshal(env.Data, &fields))
	req.Equal(message.ID.String(), fields["id"])
	req.Equal(message.SenderID, fields["senderId"])
	req.Equal(message.ReceiverID, fields["receiverId"])
	req.Equal("hi", fields["content"])
	req.Equal("text", fields["type"])
	req.Nil(fields["mediaUrl"])
	req.Equal("2026-03-01T12:00:00Z", fields["timestamp"])
	req.Equal("sent", fields["status"])
	req.Equal(false, fields["pinned"])
	req.Equal(false, fields["deleted"])
	req.Equal([]any{}, fields["deletedFor"])
}

func TestEncode_Small_Events(t *testing.T) {
	req := require.New(t)
	id := uuid.MustParse("5f0c2b8e-8d1e-4c55-9a4b-0c2f3f9d7a10")

	cases := []struct {
		evt  event.DomainEvent
		name string
		json string
	}{
		{event.UserPresence{UserID: "u1", Online: true}, "user:online", `{"userId":"u1","online":true}`},
		{event.OnlineUsers{}, "users:online", `[]`},
		{event.MessageRead{MessageID: id}, "message:read", `{"messageId":"` + id.String() + `"}`},
		{event.MessagePinned{MessageID: id, Pinned: true}, "message:pinned", `{"messageId":"` + id.String() + `","pinned":true}`},
		{event.MessageDeleted{MessageID: id}, "message:deleted", `{"messageId":"` + id.String() + `","forEveryone":false}`},
		{event.Typing{UserID: "u1", Active: false}, "typing:hide", `{"userId":"u1"}`},
		{event.StoriesExpired{StoryIDs: []uuid.UUID{id}}, "stories:expired", `{"storyIds":["` + id.String() + `"]}`},
		{event.NewFailure("message:pin", errors.ErrNotFound), "error", `{"kind":"not_found","event":"message:pin","message":"not found"}`},
	}
	for _, c := range cases {
		env, err := Encode(c.evt)
		req.NoError(err)
		req.Equal(c.name, env.Event)
		req.JSONEq(c.json, string(env.Data))
	}
}

func TestFromStory_Exposes_Expiry(t *testing.T) {
	req := require.New(t)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	story := chat.NewStory(chat.CreateStoryCommand{UserID: "u1", MediaURL: "/s.mp4", Type: "video"}, createdAt)

	dto := FromStory(story)

	req.Equal(createdAt.Add(24*time.Hour), dto.ExpiresAt)
	req.Equal([]string{}, dto.Views)
	req.Equal("video", dto.Type)
}
