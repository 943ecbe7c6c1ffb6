// Package chat maintains the append-only copilot transcript for one
// session. Messages are appended optimistically and settle through an
// explicit pending → resolved | failed lifecycle.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
	"github.com/signalry/triage-console/pkg/metrics"
)

// FallbackText is the fixed agent reply appended when the backend is
// unreachable. It carries no structured response.
const FallbackText = "Couldn’t connect to the API. Make sure the backend is running on port 8000."

// Presets are the suggested prompts shown on an empty transcript.
var Presets = []string{
	"What should I focus on right now?",
	"Show me critical signals from the last 24 hours",
	"Are there any momentum patterns?",
	"Give me a summary of today’s signals",
}

// Transcript is the per-session conversation state. Sends are
// single-flight: at most one chat request is outstanding, so user and
// agent messages strictly alternate.
type Transcript struct {
	client *upstream.Client
	logger *logger.Logger

	mu       sync.RWMutex
	messages []model.ChatMessage
	sending  bool
}

// NewTranscript creates an empty transcript.
func NewTranscript(client *upstream.Client, log *logger.Logger) *Transcript {
	return &Transcript{
		client: client,
		logger: log,
	}
}

// Send appends the user message, issues the chat request, and appends
// the agent reply (or the fallback on failure). Blank text and calls
// made while a send is in flight are no-ops: nothing is appended and
// no request is issued. Returns whether the send was accepted.
func (t *Transcript) Send(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	t.mu.Lock()
	if t.sending {
		t.mu.Unlock()
		return false
	}
	t.sending = true
	userID := uuid.Must(uuid.NewV7()).String()
	t.messages = append(t.messages, model.ChatMessage{
		ID:    userID,
		Role:  model.RoleUser,
		Text:  text,
		Phase: model.PhasePending,
	})
	t.mu.Unlock()

	resp, err := t.client.Chat(ctx, text)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sending = false

	if err != nil {
		t.logger.Warn("chat send failed", zap.Error(err))
		metrics.ChatSendsTotal.WithLabelValues(string(model.PhaseFailed)).Inc()
		t.setPhase(userID, model.PhaseFailed)
		t.messages = append(t.messages, model.ChatMessage{
			ID:    uuid.Must(uuid.NewV7()).String(),
			Role:  model.RoleAgent,
			Text:  FallbackText,
			Phase: model.PhaseResolved,
		})
		return true
	}

	metrics.ChatSendsTotal.WithLabelValues(string(model.PhaseResolved)).Inc()
	t.setPhase(userID, model.PhaseResolved)
	t.messages = append(t.messages, model.ChatMessage{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Role:     model.RoleAgent,
		Text:     resp.Message,
		Phase:    model.PhaseResolved,
		Response: resp,
		// No sub-item expanded on arrival.
		ExpandedSignal: nil,
	})
	return true
}

// setPhase must be called with t.mu held.
func (t *Transcript) setPhase(messageID string, phase model.MessagePhase) {
	for i := range t.messages {
		if t.messages[i].ID == messageID {
			t.messages[i].Phase = phase
			return
		}
	}
}

// ToggleExpand flips the expanded sub-item pointer on one message:
// expanding index if it isn't the current expansion, collapsing it if
// it is. Expansion state is independent across messages.
func (t *Transcript) ToggleExpand(messageID string, index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.messages {
		if t.messages[i].ID != messageID {
			continue
		}
		cur := t.messages[i].ExpandedSignal
		if cur != nil && *cur == index {
			t.messages[i].ExpandedSignal = nil
		} else {
			idx := index
			t.messages[i].ExpandedSignal = &idx
		}
		return
	}
}

// LastUserText returns the text of the most recent user message, used
// to re-ask after a review action taken from inside the chat view.
func (t *Transcript) LastUserText() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == model.RoleUser {
			return t.messages[i].Text, true
		}
	}
	return "", false
}

// State is a point-in-time snapshot of the transcript view.
type State struct {
	Messages []model.ChatMessage `json:"messages"`
	Sending  bool                `json:"sending"`
	Presets  []string            `json:"presets"`
}

// State returns a snapshot safe for concurrent use.
func (t *Transcript) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := make([]model.ChatMessage, len(t.messages))
	copy(msgs, t.messages)
	return State{
		Messages: msgs,
		Sending:  t.sending,
		Presets:  Presets,
	}
}
