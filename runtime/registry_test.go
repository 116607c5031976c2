package runtime

import (
	"context"
	"sync"
	"testing"

	"friend-chat/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Register_One_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	sink := &Sink{}

	// Given no user is connected
	req.Empty(registry.SnapshotOnline())

	// When a user registers
	registry.Register(userID, sink)

	// Then
	found, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(sink, found)
	req.Equal([]string{userID}, registry.SnapshotOnline())
	req.Len(registry.All(), 1)
}

func TestRegistry_Register_Replaces_Previous_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	first, second := &Sink{name: "first"}, &Sink{name: "second"}

	// Given a user connected twice
	registry.Register(userID, first)
	registry.Register(userID, second)

	// Then only the latest connection is kept
	found, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(second, found)
	req.Len(registry.All(), 1)

	// When the stale connection closes
	removed := registry.Unregister(userID, first)

	// Then the user stays online
	req.False(removed)
	found, ok = registry.Lookup(userID)
	req.True(ok)
	req.Same(second, found)

	// When the current connection closes
	req.True(registry.Unregister(userID, second))

	// Then the user is offline
	_, ok = registry.Lookup(userID)
	req.False(ok)
	req.Empty(registry.SnapshotOnline())
}

func TestRegistry_Unregister_Unknown_User(t *testing.T) {
	registry := NewRegistry()

	require.False(t, registry.Unregister(uuid.NewString(), &Sink{}))
}

func TestRegistry_SnapshotOnline_Is_Sorted(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Register("c", &Sink{})
	registry.Register("a", &Sink{})
	registry.Register("b", &Sink{})

	req.Equal([]string{"a", "b", "c"}, registry.SnapshotOnline())
}

func TestRegistry_Concurrent_Access(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := uuid.NewString()
			sink := &Sink{}
			registry.Register(userID, sink)
			_ = registry.SnapshotOnline()
			_ = registry.All()
			registry.Unregister(userID, sink)
		}()
	}
	wg.Wait()

	req.Empty(registry.SnapshotOnline())
}
