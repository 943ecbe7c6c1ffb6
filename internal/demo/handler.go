package demo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/pkg/logger"
)

// Handler exposes the demo backend's API: the same surface the
// console's upstream client talks to in production.
type Handler struct {
	pipeline  *Pipeline
	store     *Store
	responder *Responder
	auth      *Auth
	logger    *logger.Logger
}

// NewHandler builds the demo API handler.
func NewHandler(pipeline *Pipeline, store *Store, responder *Responder, auth *Auth, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Global()
	}
	return &Handler{
		pipeline:  pipeline,
		store:     store,
		responder: responder,
		auth:      auth,
		logger:    log,
	}
}

// Routes mounts the demo API.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/signals", func(r chi.Router) {
		r.Get("/", h.ListSignals)
		r.Post("/run", h.RunPipeline)
		r.Post("/seed", h.Seed)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/discard", h.Discard)
	})
	r.Post("/chat", h.Chat)
	r.Get("/stats", h.GetStats)
	r.Post("/feedback", h.Feedback)
	r.Post("/outcome", h.Outcome)
	r.Post("/auth/verify", h.VerifyCode)
}

// ListSignals handles GET /signals?status=&limit=.
func (h *Handler) ListSignals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(model.StatusPending)
	}
	switch status {
	case "all", string(model.StatusPending), string(model.StatusApproved), string(model.StatusDiscarded):
	default:
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.store.List(status, limit)
	if err != nil {
		h.logger.Error("list signals failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list signals")
		return
	}
	writeJSON(w, http.StatusOK, model.ListSignalsResponse{Signals: items})
}

// RunPipeline handles POST /signals/run.
func (h *Handler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	var req model.RunPipelineRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.pipeline.Run(r.Context(), "", req.Keywords)
	if err != nil {
		h.logger.Error("pipeline run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "pipeline run failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Seed handles POST /signals/seed?persona=.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	persona := r.URL.Query().Get("persona")
	if persona == "" {
		persona = PersonaProduct
	}
	if !ValidPersona(persona) {
		writeError(w, http.StatusBadRequest, "unknown persona")
		return
	}

	result, err := h.pipeline.Seed(r.Context(), persona)
	if err != nil {
		h.logger.Error("seed failed", zap.String("persona", persona), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "seed failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Approve handles POST /signals/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.StatusApproved)
}

// Discard handles POST /signals/{id}/discard.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.StatusDiscarded)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, status model.ReviewStatus) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "signal id is required")
		return
	}

	err := h.store.UpdateStatus(id, status)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "signal not found")
	case errors.Is(err, ErrTerminal):
		writeError(w, http.StatusConflict, "signal already reviewed")
	case err != nil:
		h.logger.Error("review update failed", zap.String("signal_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update signal")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
	}
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.responder.Respond(req.Message)
	if err != nil {
		h.logger.Error("chat respond failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to answer")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Feedback handles POST /feedback.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req model.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SignalID == "" || req.FeedbackType == "" {
		writeError(w, http.StatusBadRequest, "signal_id and feedback_type are required")
		return
	}

	if err := h.store.SaveFeedback(req.SignalID, req.FeedbackType); err != nil {
		h.logger.Error("save feedback failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save feedback")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// Outcome handles POST /outcome.
func (h *Handler) Outcome(w http.ResponseWriter, r *http.Request) {
	var req model.OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SignalID == "" {
		writeError(w, http.StatusBadRequest, "signal_id is required")
		return
	}

	if err := h.store.SaveOutcome(req); err != nil {
		h.logger.Error("save outcome failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save outcome")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// VerifyCode handles POST /auth/verify. A bad code is a 401 whose
// detail field the console shows to the user verbatim.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invite code is required"})
		return
	}

	token, err := h.auth.Verify(req.Code)
	if errors.Is(err, ErrInvalidCode) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid invite code"})
		return
	}
	if err != nil {
		h.logger.Error("verify failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, model.VerifyResponse{Token: token})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
