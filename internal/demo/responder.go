package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/signalry/triage-console/internal/model"
)

const briefingLimit = 5

// Responder routes chat questions to a structured answer built from
// the review queue. Keyword routing, no LLM: the answers are queue
// lookups, the phrasing is canned.
type Responder struct {
	store  *Store
	window time.Duration
}

// NewResponder returns a chat responder over the store.
func NewResponder(store *Store) *Responder {
	return &Responder{store: store, window: defaultWindow}
}

// Respond answers one chat message.
func (r *Responder) Respond(message string) (*model.ChatResponse, error) {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "momentum") || strings.Contains(lower, "pattern") || strings.Contains(lower, "trend"):
		return r.momentum()
	case strings.Contains(lower, "summary") || strings.Contains(lower, "overview") || strings.Contains(lower, "recap"):
		return r.summary()
	case strings.Contains(lower, "critical") || strings.Contains(lower, "urgent"):
		return r.briefing(true)
	default:
		return r.briefing(false)
	}
}

func (r *Responder) briefing(criticalOnly bool) (*model.ChatResponse, error) {
	items, err := r.store.List(string(model.StatusPending), 0)
	if err != nil {
		return nil, err
	}

	if criticalOnly {
		var kept []model.ReviewItem
		for _, item := range items {
			if item.Classification.Urgency == model.UrgencyCritical || item.Classification.Urgency == model.UrgencyHigh {
				kept = append(kept, item)
			}
		}
		items = kept
	}
	if len(items) > briefingLimit {
		items = items[:briefingLimit]
	}

	critical := 0
	for _, item := range items {
		if item.Classification.Urgency == model.UrgencyCritical {
			critical++
		}
	}

	var msg string
	switch {
	case len(items) == 0 && criticalOnly:
		msg = "No critical signals in the queue right now."
	case len(items) == 0:
		msg = "The review queue is empty. Run the pipeline to pull in fresh signals."
	case critical > 0:
		msg = fmt.Sprintf("Here are your top %d signals. %d need attention in the next few hours.", len(items), critical)
	default:
		msg = fmt.Sprintf("Here are your top %d signals, ordered by urgency and confidence.", len(items))
	}

	return &model.ChatResponse{
		Type:    model.ResponseBriefing,
		Message: msg,
		Data: model.ChatData{
			Signals:       items,
			CriticalCount: critical,
		},
	}, nil
}

func (r *Responder) momentum() (*model.ChatResponse, error) {
	items, err := r.store.RecentItems(r.window)
	if err != nil {
		return nil, err
	}
	clusters := MomentumSummary(items)

	msg := "No momentum patterns detected in the current window."
	if len(clusters) > 0 {
		top := clusters[0]
		msg = fmt.Sprintf("%d momentum pattern(s) detected. Biggest: %q with %d signals from %d actors.",
			len(clusters), top.Pain, top.SignalCount, top.UniqueActors)
	}

	return &model.ChatResponse{
		Type:    model.ResponseMomentum,
		Message: msg,
		Data: model.ChatData{
			Clusters:      clusters,
			MomentumCount: len(clusters),
		},
	}, nil
}

func (r *Responder) summary() (*model.ChatResponse, error) {
	stats, err := r.store.Stats()
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%d signals tracked: %d pending review, %d approved, %d discarded. %d carry a momentum flag.",
		stats.Total, stats.Pending, stats.Approved, stats.Discarded, stats.MomentumFlags)

	return &model.ChatResponse{
		Type:    model.ResponseSummary,
		Message: msg,
		Data:    model.ChatData{Stats: stats},
	}, nil
}
