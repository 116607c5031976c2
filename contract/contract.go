//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"friend-chat/domain/chat"
	"friend-chat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName returns the type name of the worker, used in supervision logs.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the handle of one live connection.
// Implementations must be comparable (pointers): the registry compares handles
// to tell a stale session from the current one.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	Register(userID string, sink EventSink)
	Unregister(userID string, sink EventSink) bool
	Lookup(userID string) (EventSink, bool)
	SnapshotOnline() []string
	All() []EventSink
}

// Inbound is a validated command together with the connection it came from.
// Origin is nil for commands produced by the server itself.
type Inbound struct {
	Command chat.Command
	Origin  EventSink
}

// Delivery is one event addressed to a set of connections.
type Delivery struct {
	Event   event.DomainEvent
	Targets []EventSink
}

// ContentFilter rewrites the text of a message before it is stored and
// reports how many words it masked.
type ContentFilter interface {
	Censor(content string) (string, int)
}

type IOrchestrator interface {
	Dispatch(ctx context.Context, in Inbound) error
	Conversation(userID, friendID string) ([]chat.Message, error)
	ActiveStories() ([]chat.Story, error)
	CreateStory(cmd chat.CreateStoryCommand) (chat.Story, error)
	OnlineUsers() []string
	Start(ctx context.Context) error
	Stop()
}
