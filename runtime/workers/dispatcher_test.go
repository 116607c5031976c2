package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"friend-chat/contract"
	"friend-chat/domain/chat"
	"friend-chat/domain/event"
	"friend-chat/errors"
	"friend-chat/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type dispatcherFixture struct {
	worker     *DispatcherWorker
	deliveries chan contract.Delivery
	registry   *mocks.MockIRegistry
	messages   *mocks.MockIMessageRepository
	stories    *mocks.MockIStoryRepository
	ctrl       *gomock.Controller
	now        time.Time
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	ctrl := gomock.NewController(t)
	f := &dispatcherFixture{
		deliveries: make(chan contract.Delivery, 16),
		registry:   mocks.NewMockIRegistry(ctrl),
		messages:   mocks.NewMockIMessageRepository(ctrl),
		stories:    mocks.NewMockIStoryRepository(ctrl),
		ctrl:       ctrl,
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.worker = NewDispatcherWorker(logs.GetLoggerFromLevel(slog.LevelDebug),
		nil, f.deliveries, f.registry, f.messages, f.stories)
	f.worker.now = func() time.Time { return f.now }
	return f
}

func (f *dispatcherFixture) handle(t *testing.T, cmd chat.Command, origin contract.EventSink) []contract.Delivery {
	t.Helper()
	require.NoError(t, f.worker.Handle(context.Background(), contract.Inbound{Command: cmd, Origin: origin}))
	var out []contract.Delivery
	for len(f.deliveries) > 0 {
		out = append(out, <-f.deliveries)
	}
	return out
}

// updateWith applies the mutation on a copy of stored, like the repository does.
func updateWith(stored *chat.Message) func(uuid.UUID, func(*chat.Message) (bool, error)) (chat.Message, bool, error) {
	return func(_ uuid.UUID, mutate func(*chat.Message) (bool, error)) (chat.Message, bool, error) {
		candidate := *stored
		candidate.DeletedFor = append([]string(nil), stored.DeletedFor...)
		changed, err := mutate(&candidate)
		if err != nil {
			return chat.Message{}, false, err
		}
		if changed {
			*stored = candidate
		}
		return candidate, changed, nil
	}
}

func storedMessage(sender, receiver string, at time.Time) chat.Message {
	return chat.NewMessage(chat.SendMessageCommand{SenderID: sender, ReceiverID: receiver, Content: "hello"}, at)
}

func TestDispatcher_Send_To_Online_Receiver(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)

	// Given bob is online
	var stored chat.Message
	f.messages.EXPECT().StoreMessage(gomock.Any()).DoAndReturn(func(m chat.Message) error {
		stored = m
		return nil
	})
	f.registry.EXPECT().Lookup(bob).Return(bobSink, true)
	f.messages.EXPECT().UpdateMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(id uuid.UUID, mutate func(*chat.Message) (bool, error)) (chat.Message, bool, error) {
			return updateWith(&stored)(id, mutate)
		})

	// When alice sends a message
	deliveries := f.handle(t, chat.SendMessageCommand{SenderID: alice, ReceiverID: bob, Content: "hi"}, aliceSink)

	// Then bob receives it delivered and alice gets the confirmation
	req.Len(deliveries, 2)
	received := deliveries[0].Event.(event.MessageReceived)
	req.Equal([]contract.EventSink{bobSink}, deliveries[0].Targets)
	req.Equal(chat.StatusDelivered, received.Message.Status)
	req.Equal("hi", received.Message.Content)
	req.Equal(f.now, received.Message.CreatedAt)

	sent := deliveries[1].Event.(event.MessageSent)
	req.Equal([]contract.EventSink{aliceSink}, deliveries[1].Targets)
	req.Equal(received.Message, sent.Message)
	req.Equal(chat.StatusDelivered, stored.Status)
}

func TestDispatcher_Send_To_Offline_Receiver(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink := mocks.NewMockEventSink(f.ctrl)

	// Given bob is offline
	f.messages.EXPECT().StoreMessage(gomock.Any()).Return(nil)
	f.registry.EXPECT().Lookup(bob).Return(nil, false)

	// When alice sends a message
	deliveries := f.handle(t, chat.SendMessageCommand{SenderID: alice, ReceiverID: bob, Content: "hi"}, aliceSink)

	// Then only alice is notified, the message stays sent
	req.Len(deliveries, 1)
	sent := deliveries[0].Event.(event.MessageSent)
	req.Equal(chat.StatusSent, sent.Message.Status)
	req.Equal([]contract.EventSink{aliceSink}, deliveries[0].Targets)
}

func TestDispatcher_Send_Delivers_Even_If_Status_Update_Fails(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)

	f.messages.EXPECT().StoreMessage(gomock.Any()).Return(nil)
	f.registry.EXPECT().Lookup(bob).Return(bobSink, true)
	f.messages.EXPECT().UpdateMessage(gomock.Any(), gomock.Any()).
		Return(chat.Message{}, false, errors.ErrPersistence)

	deliveries := f.handle(t, chat.SendMessageCommand{SenderID: alice, ReceiverID: bob, Content: "hi"}, aliceSink)

	req.Len(deliveries, 2)
	req.Equal(chat.StatusSent, deliveries[0].Event.(event.MessageReceived).Message.Status)
	req.Equal(chat.StatusSent, deliveries[1].Event.(event.MessageSent).Message.Status)
}

func TestDispatcher_Send_Censors_Text_Content(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	filter := mocks.NewMockContentFilter(f.ctrl)
	f.worker.WithContentFilter(filter)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink := mocks.NewMockEventSink(f.ctrl)

	// Given a filter masking a forbidden word
	filter.EXPECT().Censor("you snake").Return("you *****", 1)
	var stored chat.Message
	f.messages.EXPECT().StoreMessage(gomock.Any()).DoAndReturn(func(m chat.Message) error {
		stored = m
		return nil
	})
	f.registry.EXPECT().Lookup(bob).Return(nil, false)

	// When alice sends a text containing it
	deliveries := f.handle(t, chat.SendMessageCommand{SenderID: alice, ReceiverID: bob, Content: "you snake"}, aliceSink)

	// Then the masked content is stored and echoed
	req.Equal("you *****", stored.Content)
	req.Equal("you *****", deliveries[0].Event.(event.MessageSent).Message.Content)
}

func TestDispatcher_Send_Does_Not_Censor_Media(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	f.worker.WithContentFilter(mocks.NewMockContentFilter(f.ctrl))
	alice, bob := uuid.NewString(), uuid.NewString()

	// Given a media message, the filter is never called
	f.messages.EXPECT().StoreMessage(gomock.Any()).Return(nil)
	f.registry.EXPECT().Lookup(bob).Return(nil, false)

	deliveries := f.handle(t, chat.SendMessageCommand{SenderID: alice, ReceiverID: bob,
		MediaURL: "/uploads/snake.png", Type: "image"}, mocks.NewMockEventSink(f.ctrl))

	req.Equal("/uploads/snake.png", deliveries[0].Event.(event.MessageSent).Message.MediaURL)
}

func TestDispatcher_Invalid_Send_Reports_To_Sender_Only(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice := uuid.NewString()
	aliceSink := mocks.NewMockEventSink(f.ctrl)

	// When alice sends a message to herself, nothing is persisted
	deliveries := f.handle(t, chat.SendMessageCommand{SenderID: alice, ReceiverID: alice, Content: "hi"}, aliceSink)

	// Then she alone gets a validation error
	req.Len(deliveries, 1)
	req.Equal([]contract.EventSink{aliceSink}, deliveries[0].Targets)
	failure := deliveries[0].Event.(event.Failure)
	req.Equal(errors.KindValidation, failure.Kind)
	req.Equal("message:send", failure.Event)
}

func TestDispatcher_Store_Failure_Is_Reported_Without_Details(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	aliceSink := mocks.NewMockEventSink(f.ctrl)

	f.messages.EXPECT().StoreMessage(gomock.Any()).Return(errors.ErrPersistence)

	deliveries := f.handle(t, chat.SendMessageCommand{SenderID: uuid.NewString(), ReceiverID: uuid.NewString(), Content: "hi"}, aliceSink)

	req.Len(deliveries, 1)
	failure := deliveries[0].Event.(event.Failure)
	req.Equal(errors.KindPersistence, failure.Kind)
	req.Equal("operation failed, please retry", failure.Message)
}

func TestDispatcher_Read_Notifies_Sender_Once(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)
	stored := storedMessage(alice, bob, f.now)

	f.messages.EXPECT().UpdateMessage(stored.ID, gomock.Any()).DoAndReturn(updateWith(&stored)).Times(2)
	f.registry.EXPECT().Lookup(alice).Return(aliceSink, true).Times(1)

	// When bob reads the message twice
	first := f.handle(t, chat.ReadMessageCommand{MessageID: stored.ID.String(), RequesterID: bob}, bobSink)
	second := f.handle(t, chat.ReadMessageCommand{MessageID: stored.ID.String(), RequesterID: bob}, bobSink)

	// Then alice is notified only the first time
	req.Len(first, 1)
	req.Equal(event.MessageRead{MessageID: stored.ID}, first[0].Event)
	req.Equal([]contract.EventSink{aliceSink}, first[0].Targets)
	req.Empty(second)
	req.Equal(chat.StatusRead, stored.Status)
}

func TestDispatcher_Read_By_Sender_Is_Unauthorized(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink := mocks.NewMockEventSink(f.ctrl)
	stored := storedMessage(alice, bob, f.now)

	f.messages.EXPECT().UpdateMessage(stored.ID, gomock.Any()).DoAndReturn(updateWith(&stored))

	deliveries := f.handle(t, chat.ReadMessageCommand{MessageID: stored.ID.String(), RequesterID: alice}, aliceSink)

	req.Len(deliveries, 1)
	req.Equal(errors.KindAuthorization, deliveries[0].Event.(event.Failure).Kind)
	req.Equal(chat.StatusSent, stored.Status)
}

func TestDispatcher_Read_Unknown_Message_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	bobSink := mocks.NewMockEventSink(f.ctrl)

	f.messages.EXPECT().UpdateMessage(gomock.Any(), gomock.Any()).Return(chat.Message{}, false, errors.ErrNotFound)

	deliveries := f.handle(t, chat.ReadMessageCommand{MessageID: uuid.NewString(), RequesterID: uuid.NewString()}, bobSink)

	req.Len(deliveries, 1)
	req.Equal(errors.KindNotFound, deliveries[0].Event.(event.Failure).Kind)
}

func TestDispatcher_Pin_Toggles_For_Both_Participants(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)
	stored := storedMessage(alice, bob, f.now)

	f.messages.EXPECT().UpdateMessage(stored.ID, gomock.Any()).DoAndReturn(updateWith(&stored)).Times(2)
	f.registry.EXPECT().Lookup(alice).Return(aliceSink, true).Times(2)
	f.registry.EXPECT().Lookup(bob).Return(bobSink, true).Times(2)

	// When bob pins then unpins the message
	pinned := f.handle(t, chat.PinMessageCommand{MessageID: stored.ID.String(), RequesterID: bob}, bobSink)
	unpinned := f.handle(t, chat.PinMessageCommand{MessageID: stored.ID.String(), RequesterID: bob}, bobSink)

	// Then both participants see each change
	req.Len(pinned, 1)
	req.Equal(event.MessagePinned{MessageID: stored.ID, Pinned: true}, pinned[0].Event)
	req.ElementsMatch([]contract.EventSink{aliceSink, bobSink}, pinned[0].Targets)
	req.Len(unpinned, 1)
	req.Equal(event.MessagePinned{MessageID: stored.ID, Pinned: false}, unpinned[0].Event)
}

func TestDispatcher_Pin_Deleted_Message_Is_Ignored(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	bobSink := mocks.NewMockEventSink(f.ctrl)
	stored := storedMessage(alice, bob, f.now)
	_, err := stored.DeleteForEveryone(alice)
	req.NoError(err)

	f.messages.EXPECT().UpdateMessage(stored.ID, gomock.Any()).DoAndReturn(updateWith(&stored))

	deliveries := f.handle(t, chat.PinMessageCommand{MessageID: stored.ID.String(), RequesterID: bob}, bobSink)

	req.Empty(deliveries)
	req.False(stored.Pinned)
}

func TestDispatcher_Pin_By_Outsider_Is_Unauthorized(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	stored := storedMessage(uuid.NewString(), uuid.NewString(), f.now)
	outsiderSink := mocks.NewMockEventSink(f.ctrl)

	f.messages.EXPECT().UpdateMessage(stored.ID, gomock.Any()).DoAndReturn(updateWith(&stored))

	deliveries := f.handle(t, chat.PinMessageCommand{MessageID: stored.ID.String(), RequesterID: uuid.NewString()}, outsiderSink)

	req.Len(deliveries, 1)
	req.Equal([]contract.EventSink{outsiderSink}, deliveries[0].Targets)
	req.Equal(errors.KindAuthorization, deliveries[0].Event.(event.Failure).Kind)
}

func TestDispatcher_Delete_For_Me_Acks_Requester_Only(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	bobSink := mocks.NewMockEventSink(f.ctrl)
	stored := storedMessage(alice, bob, f.now)

	f.messages.EXPECT().UpdateMessage(stored.ID, gomock.Any()).DoAndReturn(updateWith(&stored)).Times(2)

	// When bob deletes the message for himself twice
	cmd := chat.DeleteMessageCommand{MessageID: stored.ID.String(), RequesterID: bob}
	first := f.handle(t, cmd, bobSink)
	second := f.handle(t, cmd, bobSink)

	// Then bob alone is acknowledged each time
	for _, deliveries := range [][]contract.Delivery{first, second} {
		req.Len(deliveries, 1)
		req.Equal(event.MessageDeleted{MessageID: stored.ID, ForEveryone: false}, deliveries[0].Event)
		req.Equal([]contract.EventSink{bobSink}, deliveries[0].Targets)
	}
	req.Equal([]string{bob}, stored.DeletedFor)
	req.Equal("hello", stored.Content)
}

func TestDispatcher_Delete_For_Everyone(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)
	stored := storedMessage(alice, bob, f.now)

	f.messages.EXPECT().UpdateMessage(stored.ID, gomock.Any()).DoAndReturn(updateWith(&stored)).Times(3)
	f.registry.EXPECT().Lookup(alice).Return(aliceSink, true).Times(1)
	f.registry.EXPECT().Lookup(bob).Return(bobSink, true).Times(1)

	cmd := chat.DeleteMessageCommand{MessageID: stored.ID.String(), ForEveryone: true}

	// When bob tries to delete alice's message for everyone
	cmd.RequesterID = bob
	denied := f.handle(t, cmd, bobSink)

	// Then it is refused and nothing changes
	req.Len(denied, 1)
	req.Equal(errors.KindAuthorization, denied[0].Event.(event.Failure).Kind)
	req.False(stored.Deleted)

	// When alice deletes it for everyone twice
	cmd.RequesterID = alice
	first := f.handle(t, cmd, aliceSink)
	second := f.handle(t, cmd, aliceSink)

	// Then both participants are notified once, then alice alone
	ack := event.MessageDeleted{MessageID: stored.ID, ForEveryone: true}
	req.Len(first, 1)
	req.Equal(ack, first[0].Event)
	req.ElementsMatch([]contract.EventSink{aliceSink, bobSink}, first[0].Targets)
	req.Len(second, 1)
	req.Equal(ack, second[0].Event)
	req.Equal([]contract.EventSink{aliceSink}, second[0].Targets)

	req.True(stored.Deleted)
	req.Equal(chat.DeletedContent, stored.Content)
}

func TestDispatcher_Join_Broadcasts_And_Sends_Snapshot(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)

	f.registry.EXPECT().Register(alice, aliceSink)
	f.registry.EXPECT().All().Return([]contract.EventSink{bobSink, aliceSink})
	f.registry.EXPECT().SnapshotOnline().Return([]string{alice, bob})

	deliveries := f.handle(t, chat.JoinCommand{UserID: alice}, aliceSink)

	req.Len(deliveries, 2)
	req.Equal(event.UserPresence{UserID: alice, Online: true}, deliveries[0].Event)
	req.ElementsMatch([]contract.EventSink{aliceSink, bobSink}, deliveries[0].Targets)
	req.Equal(event.OnlineUsers{UserIDs: []string{alice, bob}}, deliveries[1].Event)
	req.Equal([]contract.EventSink{aliceSink}, deliveries[1].Targets)
}

func TestDispatcher_Leave(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice := uuid.NewString()
	staleSink, otherSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)

	// Given a stale connection closing after a reconnect
	f.registry.EXPECT().Unregister(alice, staleSink).Return(false)
	// Then nobody is told alice went offline
	req.Empty(f.handle(t, chat.LeaveCommand{UserID: alice}, staleSink))

	// Given the current connection closing
	f.registry.EXPECT().Unregister(alice, staleSink).Return(true)
	f.registry.EXPECT().All().Return([]contract.EventSink{otherSink})
	// Then everyone is told alice went offline
	deliveries := f.handle(t, chat.LeaveCommand{UserID: alice}, staleSink)
	req.Len(deliveries, 1)
	req.Equal(event.UserPresence{UserID: alice, Online: false}, deliveries[0].Event)
}

func TestDispatcher_Typing(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)

	// Given bob online then offline
	gomock.InOrder(
		f.registry.EXPECT().Lookup(bob).Return(bobSink, true),
		f.registry.EXPECT().Lookup(bob).Return(nil, false),
	)

	shown := f.handle(t, chat.TypingCommand{SenderID: alice, ReceiverID: bob, Active: true}, aliceSink)
	dropped := f.handle(t, chat.TypingCommand{SenderID: alice, ReceiverID: bob, Active: false}, aliceSink)

	req.Len(shown, 1)
	req.Equal(event.Typing{UserID: alice, Active: true}, shown[0].Event)
	req.Equal([]contract.EventSink{bobSink}, shown[0].Targets)
	// An unreachable receiver is not an error
	req.Empty(dropped)
}

func TestDispatcher_Announce_Story(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	owner, friend := uuid.NewString(), uuid.NewString()
	ownerSink, friendSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)
	story := chat.NewStory(chat.CreateStoryCommand{UserID: owner, MediaURL: "/s.png", Type: "image"}, f.now)

	f.stories.EXPECT().GetStory(story.ID, f.now).Return(story, nil).Times(2)
	f.registry.EXPECT().All().Return([]contract.EventSink{ownerSink, friendSink})

	// When a friend announces the owner's story it is refused
	denied := f.handle(t, chat.AnnounceStoryCommand{StoryID: story.ID.String(), RequesterID: friend}, friendSink)
	req.Len(denied, 1)
	req.Equal(errors.KindAuthorization, denied[0].Event.(event.Failure).Kind)

	// When the owner announces it everyone receives the stored story
	deliveries := f.handle(t, chat.AnnounceStoryCommand{StoryID: story.ID.String(), RequesterID: owner}, ownerSink)
	req.Len(deliveries, 1)
	req.Equal(event.StoryAdded{Story: story}, deliveries[0].Event)
	req.ElementsMatch([]contract.EventSink{ownerSink, friendSink}, deliveries[0].Targets)
}

func TestDispatcher_View_Story_Notifies_Owner(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	owner, viewer := uuid.NewString(), uuid.NewString()
	ownerSink, viewerSink := mocks.NewMockEventSink(f.ctrl), mocks.NewMockEventSink(f.ctrl)
	story := chat.NewStory(chat.CreateStoryCommand{UserID: owner, MediaURL: "/s.png", Type: "image"}, f.now)
	viewed := story
	viewed.Views = []string{viewer}

	gomock.InOrder(
		f.stories.EXPECT().AddViewer(story.ID, viewer, f.now).Return(viewed, true, nil),
		f.stories.EXPECT().AddViewer(story.ID, viewer, f.now).Return(viewed, false, nil),
	)
	f.registry.EXPECT().Lookup(owner).Return(ownerSink, true)

	first := f.handle(t, chat.ViewStoryCommand{StoryID: story.ID.String(), ViewerID: viewer}, viewerSink)
	second := f.handle(t, chat.ViewStoryCommand{StoryID: story.ID.String(), ViewerID: viewer}, viewerSink)

	req.Len(first, 1)
	req.Equal(event.StoryViewed{StoryID: story.ID, ViewerID: viewer}, first[0].Event)
	req.Equal([]contract.EventSink{ownerSink}, first[0].Targets)
	req.Empty(second)
}

func TestDispatcher_Expire_Stories(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	sink := mocks.NewMockEventSink(f.ctrl)
	removed := []uuid.UUID{uuid.New()}

	gomock.InOrder(
		f.stories.EXPECT().Sweep(f.now).Return(removed, nil),
		f.stories.EXPECT().Sweep(f.now).Return(nil, nil),
	)
	f.registry.EXPECT().All().Return([]contract.EventSink{sink})

	swept := f.handle(t, chat.ExpireStoriesCommand{}, nil)
	nothing := f.handle(t, chat.ExpireStoriesCommand{}, nil)

	req.Len(swept, 1)
	req.Equal(event.StoriesExpired{StoryIDs: removed}, swept[0].Event)
	req.Empty(nothing)
}

func TestDispatcher_Sweep_Failure_Without_Origin_Is_Only_Logged(t *testing.T) {
	f := newDispatcherFixture(t)
	f.stories.EXPECT().Sweep(f.now).Return(nil, errors.ErrPersistence)

	require.Empty(t, f.handle(t, chat.ExpireStoriesCommand{}, nil))
}

type unknownCommand struct{}

func (unknownCommand) Name() string { return "room:join" }

func TestDispatcher_Unknown_Command(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	sink := mocks.NewMockEventSink(f.ctrl)

	deliveries := f.handle(t, unknownCommand{}, sink)

	req.Len(deliveries, 1)
	req.Equal(event.Failure{Kind: errors.KindValidation, Event: "room:join", Message: "unknown event: room:join"}, deliveries[0].Event)
}

func TestDispatcher_Run_Processes_In_Arrival_Order(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	commands := make(chan contract.Inbound, 4)
	f.worker.commands = commands
	alice, bob := uuid.NewString(), uuid.NewString()
	bobSink := mocks.NewMockEventSink(f.ctrl)

	f.registry.EXPECT().Lookup(bob).Return(bobSink, true).Times(2)
	commands <- contract.Inbound{Command: chat.TypingCommand{SenderID: alice, ReceiverID: bob, Active: true}}
	commands <- contract.Inbound{Command: chat.TypingCommand{SenderID: alice, ReceiverID: bob, Active: false}}
	close(commands)

	req.NoError(f.worker.Run(context.Background()))

	req.Len(f.deliveries, 2)
	req.Equal("typing:show", (<-f.deliveries).Event.Name())
	req.Equal("typing:hide", (<-f.deliveries).Event.Name())
}
