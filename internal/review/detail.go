package review

import (
	"github.com/signalry/triage-console/internal/model"
)

// placeholderGlyph stands in for empty classification fields so the
// detail pane never renders blank content.
const placeholderGlyph = "—"

// Detail is the render model for the selected item: everything the
// detail pane shows, precomputed. A pure function of the ReviewItem.
type Detail struct {
	SignalID          string            `json:"signal_id"`
	Actor             string            `json:"actor"`
	Source            string            `json:"source"`
	Text              string            `json:"text"`
	Urgency           model.Urgency     `json:"urgency"`
	IntentStage       model.IntentStage `json:"intent_stage"`
	PrimaryPain       string            `json:"primary_pain"`
	RecommendedAction string            `json:"recommended_action"`
	Confidence        float64           `json:"confidence"`
	MomentumBadge     bool              `json:"momentum_badge"`
	Status            model.ReviewStatus `json:"status"`
	Actionable        bool              `json:"actionable"`
}

// BuildDetail derives the detail render model from a review item.
// Empty pain/action fields become a placeholder glyph; the momentum
// badge shows only when the classification flags momentum; actions are
// offered only while the item is still pending.
func BuildDetail(item model.ReviewItem) Detail {
	cls := item.Classification

	pain := cls.PrimaryPain
	if pain == "" {
		pain = placeholderGlyph
	}
	action := cls.RecommendedAction
	if action == "" {
		action = placeholderGlyph
	}

	return Detail{
		SignalID:          item.Signal.ID,
		Actor:             item.Signal.Actor,
		Source:            item.Signal.Source,
		Text:              item.Signal.Text,
		Urgency:           cls.Urgency,
		IntentStage:       cls.IntentStage,
		PrimaryPain:       pain,
		RecommendedAction: action,
		Confidence:        cls.Confidence,
		MomentumBadge:     cls.MomentumFlag,
		Status:            item.Status,
		Actionable:        item.Status == model.StatusPending,
	}
}
