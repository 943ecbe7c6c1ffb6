package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/signalry/triage-console/internal/session"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
)

// ChatHandler exposes the copilot transcript view.
type ChatHandler struct {
	client   *upstream.Client
	sessions *session.Manager
	registry *Registry
	logger   *logger.Logger
}

// NewChatHandler creates a new chat view handler.
func NewChatHandler(client *upstream.Client, sessions *session.Manager, registry *Registry, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		client:   client,
		sessions: sessions,
		registry: registry,
		logger:   log,
	}
}

func (h *ChatHandler) view(r *http.Request) *ViewSession {
	token, _ := h.sessions.Token(r)
	return h.registry.Get(token)
}

// State handles GET /chat/state.
func (h *ChatHandler) State(w http.ResponseWriter, r *http.Request) {
	vs := h.view(r)
	writeJSON(w, http.StatusOK, vs.Chat.State())
}

type sendRequest struct {
	Text string `json:"text"`
}

// Send handles POST /chat/send. Blank text and sends attempted while
// one is already in flight are accepted-but-ignored: the transcript is
// returned unchanged, mirroring a disabled send button.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vs := h.view(r)
	vs.Chat.Send(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, vs.Chat.State())
}

type expandRequest struct {
	Index int `json:"index"`
}

// Expand handles POST /chat/messages/{id}/expand: toggle the expanded
// sub-item on one message.
func (h *ChatHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Index < 0 {
		writeError(w, http.StatusBadRequest, "index must be non-negative")
		return
	}

	vs := h.view(r)
	vs.Chat.ToggleExpand(chi.URLParam(r, "id"), req.Index)
	writeJSON(w, http.StatusOK, vs.Chat.State())
}

type actionRequest struct {
	SignalID string `json:"signal_id"`
	Action   string `json:"action"`
}

// Action handles POST /chat/action: approve or discard a signal from
// inside an expanded chat card, then refresh the conversation by
// re-asking the last user question.
func (h *ChatHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch strings.ToLower(req.Action) {
	case "approve":
		err = h.client.Approve(r.Context(), req.SignalID)
	case "discard":
		err = h.client.Discard(r.Context(), req.SignalID)
	default:
		writeError(w, http.StatusBadRequest, "action must be approve or discard")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "action failed")
		return
	}

	vs := h.view(r)
	if last, ok := vs.Chat.LastUserText(); ok {
		vs.Chat.Send(r.Context(), last)
	}
	writeJSON(w, http.StatusOK, vs.Chat.State())
}
