package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/signalry/triage-console/internal/session"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
	"github.com/signalry/triage-console/pkg/metrics"
)

// connectFailureText is shown when the verify call never reached the
// backend, as opposed to the backend rejecting the code.
const connectFailureText = "Could not connect to the API. Is the backend running?"

// AuthHandler handles the invite-code login flow and logout.
type AuthHandler struct {
	client   *upstream.Client
	sessions *session.Manager
	registry *Registry
	logger   *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(client *upstream.Client, sessions *session.Manager, registry *Registry, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		client:   client,
		sessions: sessions,
		registry: registry,
		logger:   log,
	}
}

type loginRequest struct {
	Code     string `json:"code"`
	Redirect string `json:"redirect,omitempty"`
}

type loginResponse struct {
	Redirect string `json:"redirect"`
}

// Login handles POST /login. On success the session cookie is issued
// and the client is told where to navigate; on a rejected code the
// backend's detail string is surfaced verbatim and no cookie is set.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, "invite code is required")
		return
	}

	token, err := h.client.Verify(r.Context(), code)
	if err != nil {
		var authErr *upstream.AuthError
		if errors.As(err, &authErr) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusUnauthorized, authErr.Detail)
			return
		}
		metrics.LoginAttemptsTotal.WithLabelValues("unreachable").Inc()
		h.logger.Warn("verify call failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, connectFailureText)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	h.sessions.Issue(w, token)

	redirect := req.Redirect
	if redirect == "" {
		redirect = "/chat"
	}
	writeJSON(w, http.StatusOK, loginResponse{Redirect: redirect})
}

// Logout handles POST /logout: clears the cookie, drops the session's
// view state, and points the client at the root path.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := h.sessions.Token(r); ok {
		h.registry.Drop(token)
	}
	h.sessions.Clear(w)
	writeJSON(w, http.StatusOK, loginResponse{Redirect: "/"})
}
