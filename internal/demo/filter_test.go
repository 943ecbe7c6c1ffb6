package demo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalry/triage-console/internal/model"
)

func sig(id, text string) model.Signal {
	return model.Signal{ID: id, SourceID: "src_" + id, Text: text, Actor: "actor_" + id}
}

func TestFilterKeepsExplicitIntent(t *testing.T) {
	kept := FilterSignals([]model.Signal{
		sig("1", "I need an alternative to this tool for batch exports"),
		sig("2", "Does anyone know why the webhook integration is broken?"),
		sig("3", "Feature request: please add CSV export to the audit log"),
	})
	assert.Len(t, kept, 3)
}

func TestFilterDropsNoise(t *testing.T) {
	kept := FilterSignals([]model.Signal{
		sig("1", "gm wagmi 🚀🚀🚀"),
		sig("2", "FREE airdrop today! follow and retweet to claim"),
		sig("3", "guaranteed 100x gains on this one"),
		sig("4", "🚀🚀🚀🚀"),
	})
	assert.Empty(t, kept)
}

func TestFilterDropsShortAndVague(t *testing.T) {
	kept := FilterSignals([]model.Signal{
		sig("1", "Thanks!"),
		sig("2", "nice"),
		sig("3", "This product exists and I have seen it once."), // no intent marker
	})
	assert.Empty(t, kept)
}

func TestFilterDedupsBySourceID(t *testing.T) {
	a := sig("1", "I need a better export option for our reports")
	b := a
	b.ID = "2" // same source_id, different signal id

	kept := FilterSignals([]model.Signal{a, b})
	require.Len(t, kept, 1)
	assert.Equal(t, "1", kept[0].ID)
}

func TestFilterSeedPoolYield(t *testing.T) {
	// Every persona's pool must survive filtering with enough signals
	// to exercise the classifier and momentum detector.
	c := NewConnector()
	for _, persona := range []string{PersonaProduct, PersonaCrypto, PersonaSales} {
		raw := c.Fetch(nil, persona, 0)
		kept := FilterSignals(raw)
		assert.GreaterOrEqual(t, len(kept), 3, fmt.Sprintf("persona %s", persona))
		assert.Less(t, len(kept), len(raw), fmt.Sprintf("persona %s pool should contain some noise", persona))
	}
}
