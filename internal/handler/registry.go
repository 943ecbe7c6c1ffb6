// Package handler provides HTTP handlers for the console gateway.
package handler

import (
	"sync"
	"time"

	"github.com/signalry/triage-console/internal/chat"
	"github.com/signalry/triage-console/internal/review"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
	"github.com/signalry/triage-console/pkg/metrics"
)

// staleAfter is how long an untouched view session survives before the
// next access prunes it.
const staleAfter = 24 * time.Hour

// ViewSession holds the per-session view state: one signal list
// synchronizer and one chat transcript. Sessions never share state
// with each other; the auth cookie is the only cross-view state in
// the system.
type ViewSession struct {
	Review *review.Synchronizer
	Chat   *chat.Transcript

	lastSeen time.Time
}

// Registry maps session tokens to their view state, creating state
// lazily on first access.
type Registry struct {
	client *upstream.Client
	logger *logger.Logger
	limit  int

	mu       sync.Mutex
	sessions map[string]*ViewSession
}

// NewRegistry creates an empty session registry.
func NewRegistry(client *upstream.Client, signalLimit int, log *logger.Logger) *Registry {
	return &Registry{
		client:   client,
		logger:   log,
		limit:    signalLimit,
		sessions: make(map[string]*ViewSession),
	}
}

// Get returns the view session for a token, creating it if needed.
func (r *Registry) Get(token string) *ViewSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()

	vs, ok := r.sessions[token]
	if !ok {
		vs = &ViewSession{
			Review: review.NewSynchronizer(r.client, r.limit, r.logger),
			Chat:   chat.NewTranscript(r.client, r.logger),
		}
		r.sessions[token] = vs
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	vs.lastSeen = time.Now()
	return vs
}

// Drop discards the view state for a token, on logout.
func (r *Registry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}

// pruneLocked evicts sessions idle past staleAfter. Must be called
// with r.mu held.
func (r *Registry) pruneLocked() {
	cutoff := time.Now().Add(-staleAfter)
	for token, vs := range r.sessions {
		if vs.lastSeen.Before(cutoff) {
			delete(r.sessions, token)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}
