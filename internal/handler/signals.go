package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/internal/review"
	"github.com/signalry/triage-console/internal/session"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
)

// SignalsHandler exposes the signal review view: the synchronized
// list, the selection, and the review actions.
type SignalsHandler struct {
	client   *upstream.Client
	sessions *session.Manager
	registry *Registry
	logger   *logger.Logger
}

// NewSignalsHandler creates a new signals view handler.
func NewSignalsHandler(client *upstream.Client, sessions *session.Manager, registry *Registry, log *logger.Logger) *SignalsHandler {
	return &SignalsHandler{
		client:   client,
		sessions: sessions,
		registry: registry,
		logger:   log,
	}
}

// view resolves the caller's view session. The session gate guarantees
// a token is present on these routes.
func (h *SignalsHandler) view(r *http.Request) *ViewSession {
	token, _ := h.sessions.Token(r)
	return h.registry.Get(token)
}

// State handles GET /app/state: load the current filter and return the
// full list view snapshot.
func (h *SignalsHandler) State(w http.ResponseWriter, r *http.Request) {
	vs := h.view(r)

	if f := r.URL.Query().Get("filter"); f != "" {
		if !review.ValidFilter(f) {
			writeError(w, http.StatusBadRequest, "unknown filter")
			return
		}
		vs.Review.SetFilter(review.Filter(f))
	}

	vs.Review.Load(r.Context())
	writeJSON(w, http.StatusOK, vs.Review.State())
}

// Run handles POST /app/run: trigger a pipeline pass and reload.
func (h *SignalsHandler) Run(w http.ResponseWriter, r *http.Request) {
	vs := h.view(r)
	if err := vs.Review.RunPipeline(r.Context()); err != nil {
		// The reload already happened; the run failure is still
		// reported rather than swallowed.
		writeError(w, http.StatusBadGateway, "pipeline run failed")
		return
	}
	writeJSON(w, http.StatusOK, vs.Review.State())
}

// Select handles POST /app/signals/{id}/select.
func (h *SignalsHandler) Select(w http.ResponseWriter, r *http.Request) {
	vs := h.view(r)
	vs.Review.Select(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, vs.Review.State())
}

// Approve handles POST /app/signals/{id}/approve.
func (h *SignalsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	vs := h.view(r)
	if err := vs.Review.Approve(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusBadGateway, "approve failed")
		return
	}
	writeJSON(w, http.StatusOK, vs.Review.State())
}

// Discard handles POST /app/signals/{id}/discard.
func (h *SignalsHandler) Discard(w http.ResponseWriter, r *http.Request) {
	vs := h.view(r)
	if err := vs.Review.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusBadGateway, "discard failed")
		return
	}
	writeJSON(w, http.StatusOK, vs.Review.State())
}

// Stats handles GET /app/stats: a pass-through to the backend's
// aggregate counters.
func (h *SignalsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Feedback handles POST /app/feedback: thumbs on a classification.
func (h *SignalsHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req model.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SignalID == "" || req.FeedbackType == "" {
		writeError(w, http.StatusBadRequest, "signal_id and feedback_type are required")
		return
	}
	if err := h.client.SendFeedback(r.Context(), req); err != nil {
		writeError(w, http.StatusBadGateway, "feedback failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// Outcome handles POST /app/outcome: log what happened after acting
// on a signal.
func (h *SignalsHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	var req model.OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SignalID == "" {
		writeError(w, http.StatusBadRequest, "signal_id is required")
		return
	}
	if err := h.client.LogOutcome(r.Context(), req); err != nil {
		writeError(w, http.StatusBadGateway, "outcome logging failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}
