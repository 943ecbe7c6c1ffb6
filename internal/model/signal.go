// Package model defines data structures for the triage console.
package model

import (
	"time"
)

// IntentStage is where the actor sits in their journey.
type IntentStage string

const (
	IntentExploring  IntentStage = "exploring"
	IntentEvaluating IntentStage = "evaluating"
	IntentRequesting IntentStage = "requesting"
	IntentChurning   IntentStage = "churning"
	IntentAdvocating IntentStage = "advocating"
)

// Urgency is the backend's time-sensitivity rating for a signal.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// ReviewStatus is the human-review state of an item. Both approved and
// discarded are terminal; pending is the only mutable state.
type ReviewStatus string

const (
	StatusPending   ReviewStatus = "pending"
	StatusApproved  ReviewStatus = "approved"
	StatusDiscarded ReviewStatus = "discarded"
)

// Signal is a single raw feedback item ingested from an external channel.
// Immutable once created.
type Signal struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Actor     string             `json:"actor"`
	Text      string             `json:"text"`
	Timestamp time.Time          `json:"timestamp"`
	SourceID  string             `json:"source_id"`
	ReplyTo   *string            `json:"reply_to"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Classification is the derived interpretation of a signal. One per
// signal, keyed by SignalID.
type Classification struct {
	SignalID          string      `json:"signal_id"`
	IntentStage       IntentStage `json:"intent_stage"`
	PrimaryPain       string      `json:"primary_pain"`
	Urgency           Urgency     `json:"urgency"`
	Confidence        float64     `json:"confidence"`
	MomentumFlag      bool        `json:"momentum_flag"`
	RecommendedAction string      `json:"recommended_action"`
}

// ReviewItem pairs a signal with its classification and review state.
type ReviewItem struct {
	Signal         Signal         `json:"signal"`
	Classification Classification `json:"classification"`
	Status         ReviewStatus   `json:"status"`
	ReviewedAt     *time.Time     `json:"reviewed_at"`
}

// ListSignalsResponse is the payload of GET /signals.
type ListSignalsResponse struct {
	Signals []ReviewItem `json:"signals"`
}

// Stats holds the aggregate counters from GET /stats.
type Stats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Approved       int `json:"approved"`
	Discarded      int `json:"discarded"`
	OutcomesLogged int `json:"outcomes_logged"`
	MomentumFlags  int `json:"momentum_flags"`
}

// MomentumCluster is a cross-signal pattern: the same pain raised by
// multiple actors within a time window.
type MomentumCluster struct {
	Pain         string       `json:"pain"`
	SignalCount  int          `json:"signal_count"`
	UniqueActors int          `json:"unique_actors"`
	Sources      []string     `json:"sources"`
	Signals      []ReviewItem `json:"signals"`
}
