//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"friend-chat/domain/chat"
	"friend-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message chat.Message) error
	UpdateMessage(id uuid.UUID, mutate func(*chat.Message) (bool, error)) (chat.Message, bool, error)
	GetConversation(userID, friendID string) ([]chat.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// DiskMessage is the stored form of a chat.Message.
type DiskMessage struct {
	ID         string   `cbor:"id"`
	SenderID   string   `cbor:"sender"`
	ReceiverID string   `cbor:"receiver"`
	Content    string   `cbor:"content,omitempty"`
	MediaURL   string   `cbor:"media,omitempty"`
	Type       string   `cbor:"type"`
	At         int64    `cbor:"at"`
	Status     string   `cbor:"status"`
	Pinned     bool     `cbor:"pinned,omitempty"`
	Deleted    bool     `cbor:"deleted,omitempty"`
	DeletedFor []string `cbor:"deleted_for,omitempty"`
}

func messageKey(id uuid.UUID) []byte {
	return []byte("msg:" + id.String())
}

// conversationPrefix is identical for both directions of a conversation.
func conversationPrefix(userID, friendID string) string {
	if userID > friendID {
		userID, friendID = friendID, userID
	}
	return fmt.Sprintf("conv:%s:%s:", userID, friendID)
}

// conversationKey is formatted as "conv:{low}:{high}:{timestamp_padded}:{uuid}" so a
// prefix scan returns the conversation in chronological order.
func conversationKey(message chat.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s",
		conversationPrefix(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

// StoreMessage persists the message and its conversation index in one transaction.
func (m MessageRepository) StoreMessage(message chat.Message) error {
	bytes, err := marshal(fromMessage(message))
	if err != nil {
		return classify(err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(message.ID), bytes); err != nil {
			return err
		}
		return txn.Set(conversationKey(message), nil)
	})
	return classify(err)
}

// GetMessage reads one message, including its hidden-for and deleted state.
func (m MessageRepository) GetMessage(id uuid.UUID) (chat.Message, error) {
	var message chat.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, err = readMessage(txn, id)
		return err
	})
	return message, classify(err)
}

// UpdateMessage applies mutate to the stored message inside a single transaction.
// Nothing is written when mutate reports no change or fails.
func (m MessageRepository) UpdateMessage(id uuid.UUID, mutate func(*chat.Message) (bool, error)) (chat.Message, bool, error) {
	var updated chat.Message
	var changed bool
	var mutateErr error
	err := update(m.db, func(txn *badger.Txn) error {
		message, err := readMessage(txn, id)
		if err != nil {
			return err
		}
		changed, mutateErr = mutate(&message)
		if mutateErr != nil {
			return mutateErr
		}
		updated = message
		if !changed {
			return nil
		}
		bytes, err := marshal(fromMessage(message))
		if err != nil {
			return err
		}
		return txn.Set(messageKey(id), bytes)
	})
	if mutateErr != nil {
		return chat.Message{}, false, mutateErr
	}
	if err != nil {
		return chat.Message{}, false, classify(err)
	}
	return updated, changed, nil
}

// GetConversation returns the messages exchanged between userID and friendID, oldest first.
// Messages userID deleted for themselves are skipped, and only the most recent
// limitMessages are kept when a limit is configured.
func (m MessageRepository) GetConversation(userID, friendID string) ([]chat.Message, error) {
	var messages []chat.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(userID, friendID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			id, err := uuid.Parse(key[strings.LastIndex(key, ":")+1:])
			if err != nil {
				return fmt.Errorf("corrupted conversation key %q: %w", key, err)
			}
			message, err := readMessage(txn, id)
			if err != nil {
				return err
			}
			if message.VisibleTo(userID) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if m.limitMessages != nil && len(messages) > *m.limitMessages {
		m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
		messages = messages[len(messages)-*m.limitMessages:]
	}
	return messages, nil
}

func readMessage(txn *badger.Txn, id uuid.UUID) (chat.Message, error) {
	item, err := txn.Get(messageKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return chat.Message{}, fmt.Errorf("message %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return chat.Message{}, err
	}
	var diskMessage DiskMessage
	err = item.Value(func(value []byte) error {
		return unmarshal(value, &diskMessage)
	})
	if err != nil {
		return chat.Message{}, err
	}
	return toMessage(diskMessage)
}

// DecodeMessage turns a stored value back into a chat.Message.
func DecodeMessage(value []byte) (chat.Message, error) {
	var diskMessage DiskMessage
	if err := unmarshal(value, &diskMessage); err != nil {
		return chat.Message{}, err
	}
	return toMessage(diskMessage)
}

func fromMessage(message chat.Message) DiskMessage {
	return DiskMessage{
		ID:         message.ID.String(),
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		MediaURL:   message.MediaURL,
		Type:       string(message.Type),
		At:         message.CreatedAt.UnixNano(),
		Status:     string(message.Status),
		Pinned:     message.Pinned,
		Deleted:    message.Deleted,
		DeletedFor: message.DeletedFor,
	}
}

func toMessage(diskMessage DiskMessage) (chat.Message, error) {
	parsedID, err := uuid.Parse(diskMessage.ID)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{
		ID:         parsedID,
		SenderID:   diskMessage.SenderID,
		ReceiverID: diskMessage.ReceiverID,
		Content:    diskMessage.Content,
		MediaURL:   diskMessage.MediaURL,
		Type:       chat.MessageType(diskMessage.Type),
		CreatedAt:  time.Unix(0, diskMessage.At).UTC(),
		Status:     chat.Status(diskMessage.Status),
		Pinned:     diskMessage.Pinned,
		Deleted:    diskMessage.Deleted,
		DeletedFor: diskMessage.DeletedFor,
	}, nil
}
