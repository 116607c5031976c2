package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"friend-chat/api"
	"friend-chat/auth"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

const readTimeout = 3 * time.Second

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR is not set")
	}
}

// Step prints a colorized header for a scenario step in logs
func (s *BaseWsSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Client is one joined WebSocket connection.
type Client struct {
	suite  *BaseWsSuite
	UserID string
	conn   *websocket.Conn
}

// Connect opens a socket for userID and joins.
func (s *BaseWsSuite) Connect(userID string) *Client {
	url := "ws" + strings.TrimPrefix(s.Config.ServerAddr, "http") + "/ws"
	header := http.Header{}
	if s.Config.AuthSecret != "" {
		token, err := auth.GenerateToken([]byte(s.Config.AuthSecret), userID, time.Hour)
		s.Require().NoError(err)
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().NoError(err, "Failed to connect to "+url)
	s.T().Cleanup(func() { _ = conn.Close() })

	c := &Client{suite: s, UserID: userID, conn: conn}
	c.Send(api.EventJoin, api.JoinRequest{UserID: userID})
	c.Expect("users:online")
	return c
}

func (c *Client) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	c.suite.Require().NoError(err)
	if c.suite.Config.DebugJSON {
		c.suite.T().Logf("SEND %s %s %s", c.UserID[:8], event, data)
	}
	c.suite.Require().NoError(c.conn.WriteJSON(api.Envelope{Event: event, Data: data}))
}

// Expect reads frames until one named event arrives and decodes its data into out.
func (c *Client) Expect(event string, out ...any) {
	deadline := time.Now().Add(readTimeout)
	for {
		c.suite.Require().NoError(c.conn.SetReadDeadline(deadline))
		var env api.Envelope
		c.suite.Require().NoError(c.conn.ReadJSON(&env), "waiting for "+event)
		if c.suite.Config.DebugJSON {
			c.suite.T().Logf("RECV %s %s %s", c.UserID[:8], env.Event, env.Data)
		}
		if env.Event != event {
			continue
		}
		if len(out) > 0 {
			c.suite.Require().NoError(json.Unmarshal(env.Data, out[0]))
		}
		return
	}
}

func (c *Client) Close() {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = c.conn.Close()
}
