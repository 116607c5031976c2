// Package rest exposes the read side of the chat over HTTP and mounts the
// WebSocket endpoint on the same router.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"friend-chat/api"
	"friend-chat/contract"
	"friend-chat/domain/chat"
	"friend-chat/errors"

	"github.com/gorilla/mux"
)

type Handler struct {
	log          *slog.Logger
	orchestrator contract.IOrchestrator
}

func NewHandler(log *slog.Logger, orchestrator contract.IOrchestrator) *Handler {
	return &Handler{log: log, orchestrator: orchestrator}
}

// GetConversation returns the history between two users, oldest first,
// without the messages userId deleted for themselves.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	messages, err := h.orchestrator.Conversation(vars["userId"], vars["friendId"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.FromMessages(messages))
}

func (h *Handler) GetStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.orchestrator.ActiveStories()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.FromStories(stories))
}

func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req api.CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}
	story, err := h.orchestrator.CreateStory(chat.CreateStoryCommand{
		UserID:   req.UserID,
		MediaURL: req.MediaURL,
		Type:     req.Type,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, api.FromStory(story))
}

func (h *Handler) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.orchestrator.OnlineUsers())
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusOf(errors.KindOf(err))
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "error", err)
	}
	h.writeJSON(w, status, errorBody{Error: errors.PublicMessage(err)})
}

func statusOf(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindAuthorization:
		return http.StatusForbidden
	case errors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Debug("Unable to write response", "error", err)
	}
}
