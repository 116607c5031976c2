package chat

// Command is a closed set of intents accepted by the dispatcher.
// Every command is validated at the boundary, before being dispatched.
type Command interface {
	Name() string
}

type JoinCommand struct {
	UserID string `validate:"required,uuid"`
}

func (JoinCommand) Name() string { return "join" }

// LeaveCommand is produced by the transport when a connection closes.
type LeaveCommand struct {
	UserID string `validate:"required"`
}

func (LeaveCommand) Name() string { return "leave" }

type SendMessageCommand struct {
	SenderID   string `validate:"required,uuid"`
	ReceiverID string `validate:"required,uuid,nefield=SenderID"`
	Content    string `validate:"max=4096"`
	MediaURL   string `validate:"max=2048"`
	Type       string `validate:"omitempty,oneof=text image video"`
}

func (SendMessageCommand) Name() string { return "message:send" }

// MessageType defaults to text when the client omitted it.
func (c SendMessageCommand) MessageType() MessageType {
	if c.Type == "" {
		return TypeText
	}
	return MessageType(c.Type)
}

type ReadMessageCommand struct {
	MessageID   string `validate:"required,uuid"`
	RequesterID string `validate:"required,uuid"`
}

func (ReadMessageCommand) Name() string { return "message:read" }

type PinMessageCommand struct {
	MessageID   string `validate:"required,uuid"`
	RequesterID string `validate:"required,uuid"`
}

func (PinMessageCommand) Name() string { return "message:pin" }

type DeleteMessageCommand struct {
	MessageID   string `validate:"required,uuid"`
	RequesterID string `validate:"required,uuid"`
	ForEveryone bool
}

func (DeleteMessageCommand) Name() string { return "message:delete" }

type TypingCommand struct {
	SenderID   string `validate:"required,uuid"`
	ReceiverID string `validate:"required,uuid,nefield=SenderID"`
	Active     bool
}

func (c TypingCommand) Name() string {
	if c.Active {
		return "typing:start"
	}
	return "typing:stop"
}

// CreateStoryCommand comes from the HTTP surface and is executed synchronously.
type CreateStoryCommand struct {
	UserID   string `validate:"required,uuid"`
	MediaURL string `validate:"required,max=2048"`
	Type     string `validate:"required,oneof=image video"`
}

func (CreateStoryCommand) Name() string { return "story:create" }

// AnnounceStoryCommand broadcasts an already persisted story.
type AnnounceStoryCommand struct {
	StoryID     string `validate:"required,uuid"`
	RequesterID string `validate:"required,uuid"`
}

func (AnnounceStoryCommand) Name() string { return "story:new" }

type ViewStoryCommand struct {
	StoryID  string `validate:"required,uuid"`
	ViewerID string `validate:"required,uuid"`
}

func (ViewStoryCommand) Name() string { return "story:view" }

// ExpireStoriesCommand is emitted by the periodic sweep.
type ExpireStoriesCommand struct{}

func (ExpireStoriesCommand) Name() string { return "stories:expire" }
