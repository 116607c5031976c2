package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"friend-chat/api"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=ws://localhost:3000/ws"`
	UserID        string `env:"CHAT_USER_ID,required=true"`
	FriendID      string `env:"CHAT_FRIEND_ID,required=true"`
	Token         string `env:"CHAT_TOKEN"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
}

const usage = `Type a line to send it to your friend.
  /typing         show the typing indicator
  /pin <id>       toggle the pin of a message
  /del <id>       delete a message for you
  /delall <id>    delete one of your messages for everyone`

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// client serializes writes: gorilla connections accept a single concurrent writer.
type client struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	config    Config
	log       *slog.Logger
	indicator *api.TypingIndicator
}

func (c *client) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(api.Envelope{Event: event, Data: data})
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connect and join.
	header := http.Header{}
	if config.Token != "" {
		header.Set("Authorization", "Bearer "+config.Token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerAddress, header)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	c := &client{conn: conn, config: config, log: log}
	// The friend's indicator hides itself if their typing:hide is lost
	c.indicator = api.NewTypingIndicator(api.TypingSilence,
		func(userID string) { color.Yellow.Printf("%s is typing...\n", short(userID)) },
		func(userID string) { color.Gray.Printf("%s stopped typing\n", short(userID)) },
	)
	if err := c.send(api.EventJoin, api.JoinRequest{UserID: config.UserID}); err != nil {
		return exitRuntime, fmt.Errorf("join failed: %w", err)
	}
	log.Info("Connected", "server", config.ServerAddress, "user", config.UserID)
	fmt.Println(usage)

	typing := api.NewTypingTracker(api.TypingSilence,
		func() { c.sendTyping(api.EventTypingStart) },
		func() { c.sendTyping(api.EventTypingStop) },
	)

	// 4. Reception loop runs until the server closes the connection.
	received := make(chan error, 1)
	go func() { received <- c.receive() }()
	go c.readInput(ctx, typing)

	select {
	case <-ctx.Done():
		log.Info("Stopping client...")
		typing.Stop()
		c.mu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.mu.Unlock()
		return exitOK, nil
	case err := <-received:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return exitOK, nil
		}
		return exitRuntime, fmt.Errorf("connection error: %w", err)
	}
}

func (c *client) sendTyping(event string) {
	req := api.TypingRequest{SenderID: c.config.UserID, ReceiverID: c.config.FriendID}
	if err := c.send(event, req); err != nil {
		c.log.Warn("Typing indicator not sent", "event", event, "error", err)
	}
}

func (c *client) readInput(ctx context.Context, typing *api.TypingTracker) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := c.command(line, typing); err != nil {
			color.Red.Printf("! %v\n", err)
		}
	}
}

func (c *client) command(line string, typing *api.TypingTracker) error {
	verb, arg, _ := strings.Cut(line, " ")
	switch verb {
	case "/typing":
		typing.Keystroke()
		return nil
	case "/pin":
		return c.send(api.EventMessagePin, api.MessageRequest{MessageID: arg})
	case "/del":
		return c.send(api.EventMessageDelete, api.DeleteMessageRequest{MessageID: arg})
	case "/delall":
		return c.send(api.EventMessageDelete, api.DeleteMessageRequest{MessageID: arg, DeleteForEveryone: true})
	default:
		typing.Stop()
		return c.send(api.EventMessageSend, api.SendMessageRequest{
			SenderID:   c.config.UserID,
			ReceiverID: c.config.FriendID,
			Content:    line,
			Type:       "text",
		})
	}
}

// receive prints server events and acknowledges incoming messages as read.
func (c *client) receive() error {
	for {
		var env api.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return err
		}
		if err := c.print(env); err != nil {
			c.log.Debug("Unreadable event", "event", env.Event, "error", err)
		}
	}
}

func (c *client) print(env api.Envelope) error {
	switch env.Event {
	case "message:receive":
		var m api.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return err
		}
		c.indicator.Hide(m.SenderID)
		color.Cyan.Printf("[%s] %s: %s (%s)\n", m.Timestamp.Format(time.TimeOnly), short(m.SenderID), m.Content, m.ID)
		if m.SenderID == c.config.FriendID {
			return c.send(api.EventMessageRead, api.MessageRequest{MessageID: m.ID})
		}
	case "message:sent":
		var m api.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return err
		}
		color.Gray.Printf("[%s] me: %s (%s, %s)\n", m.Timestamp.Format(time.TimeOnly), m.Content, m.Status, m.ID)
	case "message:read":
		var ref api.MessageRef
		if err := json.Unmarshal(env.Data, &ref); err != nil {
			return err
		}
		color.Gray.Printf("read %s\n", ref.MessageID)
	case "typing:show", "typing:hide":
		var typing api.Typing
		if err := json.Unmarshal(env.Data, &typing); err != nil {
			return err
		}
		if env.Event == "typing:show" {
			c.indicator.Show(typing.UserID)
		} else {
			c.indicator.Hide(typing.UserID)
		}
	case "user:online":
		var p api.UserPresence
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		state := "offline"
		if p.Online {
			state = "online"
		}
		color.Green.Printf("%s is %s\n", short(p.UserID), state)
	case "error":
		var f api.Failure
		if err := json.Unmarshal(env.Data, &f); err != nil {
			return err
		}
		color.Red.Printf("! %s: %s\n", f.Event, f.Message)
	default:
		c.log.Debug("Event", "event", env.Event, "data", string(env.Data))
	}
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
