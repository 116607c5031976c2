//go:generate go run go.uber.org/mock/mockgen -source=story.go -destination=../mocks/mock_story_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"friend-chat/domain/chat"
	"friend-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const storyPrefix = "story:"

type IStoryRepository interface {
	StoreStory(story chat.Story) error
	GetStory(id uuid.UUID, now time.Time) (chat.Story, error)
	ListActive(now time.Time) ([]chat.Story, error)
	Sweep(now time.Time) ([]uuid.UUID, error)
	AddViewer(id uuid.UUID, viewerID string, now time.Time) (chat.Story, bool, error)
}

type StoryRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStoryRepository(db *badger.DB, log *slog.Logger) StoryRepository {
	return StoryRepository{db: db, log: log}
}

type DiskStory struct {
	ID       string   `cbor:"id"`
	UserID   string   `cbor:"user"`
	MediaURL string   `cbor:"media"`
	Type     string   `cbor:"type"`
	At       int64    `cbor:"at"`
	Views    []string `cbor:"views,omitempty"`
}

func storyKey(id uuid.UUID) []byte {
	return []byte(storyPrefix + id.String())
}

func (s StoryRepository) StoreStory(story chat.Story) error {
	bytes, err := marshal(fromStory(story))
	if err != nil {
		return classify(err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storyKey(story.ID), bytes)
	})
	return classify(err)
}

// GetStory returns a story that has not expired yet.
func (s StoryRepository) GetStory(id uuid.UUID, now time.Time) (chat.Story, error) {
	var story chat.Story
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		story, err = readActiveStory(txn, id, now)
		return err
	})
	return story, classify(err)
}

// ListActive is the lazy expiry path: expired stories are removed while listing,
// and the remaining ones are returned oldest first.
func (s StoryRepository) ListActive(now time.Time) ([]chat.Story, error) {
	var active []chat.Story
	err := update(s.db, func(txn *badger.Txn) error {
		var expired []uuid.UUID
		var err error
		active, expired, err = expireStories(txn, now)
		if err != nil {
			return err
		}
		if len(expired) > 0 {
			s.log.Debug("Expired stories removed on fetch", "count", len(expired))
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

// Sweep is the periodic expiry path. It returns the ids it removed.
func (s StoryRepository) Sweep(now time.Time) ([]uuid.UUID, error) {
	var expired []uuid.UUID
	err := update(s.db, func(txn *badger.Txn) error {
		var err error
		_, expired, err = expireStories(txn, now)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return expired, nil
}

// AddViewer grows the viewer set of an active story.
func (s StoryRepository) AddViewer(id uuid.UUID, viewerID string, now time.Time) (chat.Story, bool, error) {
	var story chat.Story
	var changed bool
	err := update(s.db, func(txn *badger.Txn) error {
		var err error
		story, err = readActiveStory(txn, id, now)
		if err != nil {
			return err
		}
		changed, err = story.AddViewer(viewerID)
		if err != nil || !changed {
			return err
		}
		bytes, err := marshal(fromStory(story))
		if err != nil {
			return err
		}
		return txn.Set(storyKey(id), bytes)
	})
	if err != nil {
		return chat.Story{}, false, classify(err)
	}
	return story, changed, nil
}

// expireStories reads every story inside txn and deletes the expired ones.
// Only keys read in this same transaction are deleted, so a story written
// concurrently is never removed by a stale snapshot.
func expireStories(txn *badger.Txn, now time.Time) ([]chat.Story, []uuid.UUID, error) {
	stories, err := readStories(txn)
	if err != nil {
		return nil, nil, err
	}
	active, expired := chat.PartitionExpired(stories, now)
	for _, story := range expired {
		if err := txn.Delete(storyKey(story.ID)); err != nil {
			return nil, nil, err
		}
	}
	return active, lo.Map(expired, func(story chat.Story, _ int) uuid.UUID {
		return story.ID
	}), nil
}

func readStories(txn *badger.Txn) ([]chat.Story, error) {
	var stories []chat.Story
	prefix := []byte(storyPrefix)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		err := it.Item().Value(func(value []byte) error {
			story, err := DecodeStory(value)
			if err != nil {
				return err
			}
			stories = append(stories, story)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return stories, nil
}

func readActiveStory(txn *badger.Txn, id uuid.UUID, now time.Time) (chat.Story, error) {
	item, err := txn.Get(storyKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return chat.Story{}, fmt.Errorf("story %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return chat.Story{}, err
	}
	var story chat.Story
	err = item.Value(func(value []byte) error {
		story, err = DecodeStory(value)
		return err
	})
	if err != nil {
		return chat.Story{}, err
	}
	if story.Expired(now) {
		return chat.Story{}, fmt.Errorf("story %s expired: %w", id, errors.ErrNotFound)
	}
	return story, nil
}

// DecodeStory turns a stored value back into a chat.Story.
func DecodeStory(value []byte) (chat.Story, error) {
	var diskStory DiskStory
	if err := unmarshal(value, &diskStory); err != nil {
		return chat.Story{}, err
	}
	return toStory(diskStory)
}

func fromStory(story chat.Story) DiskStory {
	return DiskStory{
		ID:       story.ID.String(),
		UserID:   story.UserID,
		MediaURL: story.MediaURL,
		Type:     string(story.Type),
		At:       story.CreatedAt.UnixNano(),
		Views:    story.Views,
	}
}

func toStory(diskStory DiskStory) (chat.Story, error) {
	parsedID, err := uuid.Parse(diskStory.ID)
	if err != nil {
		return chat.Story{}, err
	}
	return chat.Story{
		ID:        parsedID,
		UserID:    diskStory.UserID,
		MediaURL:  diskStory.MediaURL,
		Type:      chat.MessageType(diskStory.Type),
		CreatedAt: time.Unix(0, diskStory.At).UTC(),
		Views:     diskStory.Views,
	}, nil
}
