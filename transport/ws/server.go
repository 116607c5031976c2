// Package ws serves the real-time channel: one reader and one writer goroutine
// per connection, with every inbound frame turned into a dispatched command.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"friend-chat/api"
	"friend-chat/auth"
	"friend-chat/contract"
	"friend-chat/domain/chat"
	"friend-chat/domain/event"
	"friend-chat/errors"
	"friend-chat/sink"

	"github.com/gorilla/websocket"
)

const maxFrameSize = 64 * 1024

type Options struct {
	BufferSize      int
	DispatchTimeout time.Duration
	WriteWait       time.Duration
	PongWait        time.Duration
}

type Server struct {
	log          *slog.Logger
	orchestrator contract.IOrchestrator
	upgrader     websocket.Upgrader
	options      Options
}

func NewServer(log *slog.Logger, orchestrator contract.IOrchestrator, options Options) *Server {
	return &Server{
		log:          log,
		orchestrator: orchestrator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients are served from any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		options: options,
	}
}

// session is the state of one connection, owned by its reader goroutine.
type session struct {
	conn       *websocket.Conn
	sink       *sink.ConnectionSink
	joinedID   string
	identityID string
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Upgrade failed", "error", err)
		return
	}
	sess := &session{conn: conn, sink: sink.NewConnectionSink(s.options.BufferSize)}
	sess.identityID, _ = auth.UserIDFromContext(r.Context())
	s.log.Debug("Connection opened", "remote", r.RemoteAddr)

	go s.writePump(sess)
	s.readPump(sess)
}

// readPump runs until the connection fails, then announces the departure.
func (s *Server) readPump(sess *session) {
	defer s.close(sess)

	sess.conn.SetReadLimit(maxFrameSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(s.options.PongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(s.options.PongWait))
	})

	for {
		// Only transport errors end the session, a bad frame is answered on the connection
		_, frame, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Connection lost", "user_id", sess.joinedID, "error", err)
			}
			return
		}
		env, err := api.DecodeEnvelope(frame)
		if err != nil {
			s.reject(sess, "", err)
			continue
		}
		s.handle(sess, env)
	}
}

func (s *Server) handle(sess *session, env api.Envelope) {
	cmd, err := api.ToCommand(env, sess.joinedID)
	if err == nil {
		if join, ok := cmd.(chat.JoinCommand); ok {
			err = s.bindIdentity(sess, join)
		}
	}
	if err != nil {
		s.reject(sess, env.Event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.options.DispatchTimeout)
	defer cancel()
	if err := s.orchestrator.Dispatch(ctx, contract.Inbound{Command: cmd, Origin: sess.sink}); err != nil {
		s.reject(sess, env.Event, err)
	}
}

// bindIdentity accepts a join only for a valid id matching the token, if any.
func (s *Server) bindIdentity(sess *session, join chat.JoinCommand) error {
	if err := chat.Validate(join); err != nil {
		return err
	}
	if sess.identityID != "" && sess.identityID != join.UserID {
		return fmt.Errorf("%w: token was issued to another user", errors.ErrUnauthorized)
	}
	sess.joinedID = join.UserID
	return nil
}

// reject answers the connection directly, nothing reaches the dispatcher.
func (s *Server) reject(sess *session, eventName string, err error) {
	s.log.Debug("Frame rejected", "event", eventName, "user_id", sess.joinedID, "error", err)
	if err := sess.sink.Consume(context.Background(), event.NewFailure(eventName, err)); err != nil {
		s.log.Debug("Unable to report rejection", "error", err)
	}
}

// close unregisters the user with a fresh context so a leave is never lost
// because the connection context is already gone.
func (s *Server) close(sess *session) {
	if sess.joinedID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), s.options.DispatchTimeout)
		leave := contract.Inbound{Command: chat.LeaveCommand{UserID: sess.joinedID}, Origin: sess.sink}
		if err := s.orchestrator.Dispatch(ctx, leave); err != nil {
			s.log.Error("Leave not dispatched", "user_id", sess.joinedID, "error", err)
		}
		cancel()
	}
	sess.sink.Close()
	_ = sess.conn.Close()
	s.log.Debug("Connection closed", "user_id", sess.joinedID)
}

// writePump is the only writer of the connection.
func (s *Server) writePump(sess *session) {
	ticker := time.NewTicker(s.options.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = sess.conn.Close()
	}()

	for {
		select {
		case <-sess.sink.Done():
			_ = sess.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.options.WriteWait))
			return
		case evt := <-sess.sink.Events():
			env, err := api.Encode(evt)
			if err != nil {
				s.log.Error("Unable to encode event", "event", evt.Name(), "error", err)
				continue
			}
			_ = sess.conn.SetWriteDeadline(time.Now().Add(s.options.WriteWait))
			if err := sess.conn.WriteJSON(env); err != nil {
				s.log.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(s.options.WriteWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
