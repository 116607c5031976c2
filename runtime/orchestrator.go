// Package runtime wires the registry, the command channel and the supervised
// workers together. It contains no business rule: those live in domain/chat.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"friend-chat/contract"
	"friend-chat/domain/chat"
	"friend-chat/repositories"
	"friend-chat/runtime/workers"
)

var _ contract.IOrchestrator = (*Orchestrator)(nil)

type Orchestrator struct {
	mu                sync.Mutex
	log               *slog.Logger
	supervisor        contract.ISupervisor
	registry          contract.IRegistry
	commands          chan contract.Inbound
	deliveries        chan contract.Delivery
	messageRepository repositories.IMessageRepository
	storyRepository   repositories.IStoryRepository
	contentFilter     contract.ContentFilter
	sinkTimeout       time.Duration
	sweepInterval     time.Duration
	started           bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, messageRepository repositories.IMessageRepository,
	storyRepository repositories.IStoryRepository,
	bufferSize int, sinkTimeout, sweepInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		registry:          registry,
		commands:          make(chan contract.Inbound, bufferSize),
		deliveries:        make(chan contract.Delivery, bufferSize),
		messageRepository: messageRepository,
		storyRepository:   storyRepository,
		sinkTimeout:       sinkTimeout,
		sweepInterval:     sweepInterval,
	}
}

// WithContentFilter must be called before Start.
func (o *Orchestrator) WithContentFilter(filter contract.ContentFilter) *Orchestrator {
	o.contentFilter = filter
	return o
}

// Dispatch queues a command for the dispatcher. It blocks until the command is
// accepted or ctx is done, so a command is never silently dropped.
func (o *Orchestrator) Dispatch(ctx context.Context, in contract.Inbound) error {
	select {
	case o.commands <- in:
		return nil
	case <-ctx.Done():
		o.log.Warn("Command not dispatched", "command", in.Command.Name(), "error", ctx.Err())
		return ctx.Err()
	}
}

func (o *Orchestrator) Conversation(userID, friendID string) ([]chat.Message, error) {
	return o.messageRepository.GetConversation(userID, friendID)
}

// ActiveStories takes the lazy expiry path: expired stories are removed while listing.
func (o *Orchestrator) ActiveStories() ([]chat.Story, error) {
	return o.storyRepository.ListActive(time.Now().UTC())
}

// CreateStory persists a story synchronously. Announcing it is up to the owner.
func (o *Orchestrator) CreateStory(cmd chat.CreateStoryCommand) (chat.Story, error) {
	if err := chat.Validate(cmd); err != nil {
		return chat.Story{}, err
	}
	story := chat.NewStory(cmd, time.Now().UTC())
	if err := o.storyRepository.StoreStory(story); err != nil {
		return chat.Story{}, err
	}
	o.log.Info("Story created", "story_id", story.ID, "user_id", story.UserID)
	return story, nil
}

func (o *Orchestrator) OnlineUsers() []string {
	return o.registry.SnapshotOnline()
}

// Start registers the workers to the supervisor and blocks until they all stopped.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if !o.started {
		o.supervisor.Add(
			workers.NewDispatcherWorker(o.log, o.commands, o.deliveries,
				o.registry, o.messageRepository, o.storyRepository).
				WithContentFilter(o.contentFilter),
			workers.NewEventFanout(o.log, o.deliveries, o.sinkTimeout),
			workers.NewStoryExpiryWorker(o.log, o.commands, o.sweepInterval),
		)
		o.started = true
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised workers. Queued commands left in the channel are dropped.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
