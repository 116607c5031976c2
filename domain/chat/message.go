// Package chat contains the core concepts of the direct messaging system.
// It holds the message state machine and the story expiry rule.
// No runtime, network or storage logic should be added here.
package chat

import (
	"fmt"
	"strings"
	"time"

	"friend-chat/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DeletedContent replaces the content of a message deleted for everyone.
const DeletedContent = "This message was deleted"

type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// rank orders statuses so transitions can only move forward.
func (s Status) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	default:
		return 0
	}
}

type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeVideo MessageType = "video"
)

func (t MessageType) IsMedia() bool {
	return t == TypeImage || t == TypeVideo
}

type Message struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Content    string
	MediaURL   string
	Type       MessageType
	CreatedAt  time.Time
	Status     Status
	Pinned     bool
	Deleted    bool
	DeletedFor []string
}

// NewMessage builds a freshly submitted message, always in the sent status.
// Blank content is dropped so a media message stores only its mediaUrl.
func NewMessage(cmd SendMessageCommand, now time.Time) Message {
	content := cmd.Content
	if strings.TrimSpace(content) == "" {
		content = ""
	}
	return Message{
		ID:         uuid.New(),
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Content:    content,
		MediaURL:   cmd.MediaURL,
		Type:       cmd.MessageType(),
		CreatedAt:  now,
		Status:     StatusSent,
	}
}

func (m *Message) IsParticipant(userID string) bool {
	return userID == m.SenderID || userID == m.ReceiverID
}

// Participants returns sender then receiver.
func (m *Message) Participants() []string {
	return []string{m.SenderID, m.ReceiverID}
}

// VisibleTo reports whether userID has not hidden the message for themselves.
func (m *Message) VisibleTo(userID string) bool {
	return !lo.Contains(m.DeletedFor, userID)
}

func (m *Message) advance(to Status) bool {
	if to.rank() <= m.Status.rank() {
		return false
	}
	m.Status = to
	return true
}

// MarkDelivered moves a sent message to delivered. Any later status is kept.
func (m *Message) MarkDelivered() bool {
	return m.advance(StatusDelivered)
}

// MarkRead moves the message to read on behalf of its receiver.
// Marking an already read message is a no-op.
func (m *Message) MarkRead(requesterID string) (bool, error) {
	if requesterID != m.ReceiverID {
		return false, fmt.Errorf("%w: only the receiver can mark message %s as read", errors.ErrUnauthorized, m.ID)
	}
	return m.advance(StatusRead), nil
}

// TogglePin flips the pinned flag. Messages deleted for everyone are left untouched.
func (m *Message) TogglePin(requesterID string) (bool, error) {
	if !m.IsParticipant(requesterID) {
		return false, fmt.Errorf("%w: user %s is not part of this conversation", errors.ErrUnauthorized, requesterID)
	}
	if m.Deleted {
		return false, nil
	}
	m.Pinned = !m.Pinned
	return true, nil
}

// DeleteFor hides the message for requesterID only.
func (m *Message) DeleteFor(requesterID string) (bool, error) {
	if !m.IsParticipant(requesterID) {
		return false, fmt.Errorf("%w: user %s is not part of this conversation", errors.ErrUnauthorized, requesterID)
	}
	if lo.Contains(m.DeletedFor, requesterID) {
		return false, nil
	}
	m.DeletedFor = append(m.DeletedFor, requesterID)
	return true, nil
}

// DeleteForEveryone irreversibly replaces the content with DeletedContent.
// Only the sender may do it.
func (m *Message) DeleteForEveryone(requesterID string) (bool, error) {
	if requesterID != m.SenderID {
		return false, fmt.Errorf("%w: only the sender can delete message %s for everyone", errors.ErrUnauthorized, m.ID)
	}
	if m.Deleted {
		return false, nil
	}
	m.Deleted = true
	m.Content = DeletedContent
	m.MediaURL = ""
	return true, nil
}
