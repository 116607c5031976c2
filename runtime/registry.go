package runtime

import (
	"sort"
	"sync"

	"friend-chat/contract"
)

// Registry maps each online user to the sink of their current connection.
// A user has at most one live connection: a new one replaces the previous.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink // map user -> Sink
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.EventSink),
	}
}

// Register binds userID to sink, replacing any previous connection.
func (r *Registry) Register(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID] = sink
}

// Unregister removes userID only if sink is still its current connection.
// A stale session closing after a reconnect leaves the new one in place.
func (r *Registry) Unregister(userID string, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[userID]
	if !ok || current != sink {
		return false
	}
	delete(r.sessions, userID)
	return true
}

func (r *Registry) Lookup(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.sessions[userID]
	return sink, ok
}

// SnapshotOnline returns the online user ids, sorted for stable output.
func (r *Registry) SnapshotOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

func (r *Registry) All() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}
