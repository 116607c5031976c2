package rest

import (
	"log/slog"
	"net/http"
	"time"

	"friend-chat/auth"
	"friend-chat/contract"

	"github.com/gorilla/mux"
)

// NewRouter mounts the HTTP endpoints and the WebSocket handler.
// Only /ws is guarded by the token check, when a secret is configured.
func NewRouter(log *slog.Logger, orchestrator contract.IOrchestrator, ws http.Handler, authSecret []byte) *mux.Router {
	h := NewHandler(log, orchestrator)

	r := mux.NewRouter()
	r.Use(loggingMiddleware(log))

	r.HandleFunc("/api/messages/{userId}/{friendId}", h.GetConversation).Methods(http.MethodGet)
	r.HandleFunc("/api/stories", h.GetStories).Methods(http.MethodGet)
	r.HandleFunc("/api/stories", h.CreateStory).Methods(http.MethodPost)
	r.HandleFunc("/api/users/online", h.GetOnlineUsers).Methods(http.MethodGet)

	r.Handle("/ws", auth.Middleware(authSecret, log)(ws)).Methods(http.MethodGet)
	return r
}

func loggingMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
