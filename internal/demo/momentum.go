package demo

import (
	"sort"
	"strings"
	"time"

	"github.com/signalry/triage-console/internal/model"
)

// Momentum is counting plus time windowing, not ML. A pain topic
// raised by enough distinct actors inside the window is a cluster;
// the same actor repeating the same pain is persistence.
const (
	defaultWindow        = 48 * time.Hour
	minClusterSize       = 3
	actorRepeatThreshold = 2
)

type actorPain struct {
	actor string
	pain  string
}

// DetectMomentum sets momentum_flag on classifications that belong to
// a topic cluster (minClusterSize distinct actors on one pain inside
// the window) or an actor-persistence pattern (the same actor raising
// the same pain actorRepeatThreshold times).
func DetectMomentum(signals []model.Signal, classifications []model.Classification, window time.Duration) []model.Classification {
	if len(signals) == 0 || len(classifications) == 0 {
		return classifications
	}
	if window <= 0 {
		window = defaultWindow
	}

	sigByID := make(map[string]model.Signal, len(signals))
	for _, s := range signals {
		sigByID[s.ID] = s
	}
	windowStart := time.Now().UTC().Add(-window)

	painActors := map[string]map[string]struct{}{}
	for _, cls := range classifications {
		sig, ok := sigByID[cls.SignalID]
		if !ok || sig.Timestamp.Before(windowStart) {
			continue
		}
		key := painKey(cls.PrimaryPain)
		if painActors[key] == nil {
			painActors[key] = map[string]struct{}{}
		}
		painActors[key][sig.Actor] = struct{}{}
	}

	momentumPains := map[string]struct{}{}
	for pain, actors := range painActors {
		if len(actors) >= minClusterSize {
			momentumPains[pain] = struct{}{}
		}
	}

	repeatCount := map[actorPain]int{}
	for _, cls := range classifications {
		sig, ok := sigByID[cls.SignalID]
		if !ok {
			continue
		}
		repeatCount[actorPain{sig.Actor, painKey(cls.PrimaryPain)}]++
	}

	for i, cls := range classifications {
		key := painKey(cls.PrimaryPain)
		if _, hot := momentumPains[key]; hot {
			classifications[i].MomentumFlag = true
			continue
		}
		if sig, ok := sigByID[cls.SignalID]; ok &&
			repeatCount[actorPain{sig.Actor, key}] >= actorRepeatThreshold {
			classifications[i].MomentumFlag = true
		}
	}
	return classifications
}

func painKey(pain string) string {
	return strings.TrimSpace(strings.ToLower(pain))
}

// MomentumSummary groups flagged items into clusters for reporting.
func MomentumSummary(items []model.ReviewItem) []model.MomentumCluster {
	groups := map[string][]model.ReviewItem{}
	for _, item := range items {
		if !item.Classification.MomentumFlag {
			continue
		}
		groups[item.Classification.PrimaryPain] = append(groups[item.Classification.PrimaryPain], item)
	}

	clusters := make([]model.MomentumCluster, 0, len(groups))
	for pain, members := range groups {
		actors := map[string]struct{}{}
		sources := map[string]struct{}{}
		for _, m := range members {
			actors[m.Signal.Actor] = struct{}{}
			sources[m.Signal.Source] = struct{}{}
		}

		sourceList := make([]string, 0, len(sources))
		for s := range sources {
			sourceList = append(sourceList, s)
		}
		sort.Strings(sourceList)

		clusters = append(clusters, model.MomentumCluster{
			Pain:         pain,
			SignalCount:  len(members),
			UniqueActors: len(actors),
			Sources:      sourceList,
			Signals:      members,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].SignalCount != clusters[j].SignalCount {
			return clusters[i].SignalCount > clusters[j].SignalCount
		}
		return clusters[i].Pain < clusters[j].Pain
	})
	return clusters
}
