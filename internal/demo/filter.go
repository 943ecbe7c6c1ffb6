package demo

import (
	"regexp"
	"strings"

	"github.com/signalry/triage-console/internal/model"
)

// The filter keeps only posts with explicit intent markers. It is
// deliberately conservative: letting some noise through is fine, the
// classifier is the second gate.

var intentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(need|looking for|searching for|want|require)\b`),
	regexp.MustCompile(`(?i)\b(can anyone|does anyone|anyone know|who has|who can)\b`),
	regexp.MustCompile(`(?i)\b(recommend|suggestion|alternative to|instead of)\b`),
	regexp.MustCompile(`(?i)\b(comparing|vs\.?|versus|better than|switch from|migrate from)\b`),
	regexp.MustCompile(`(?i)\b(thinking about|considering|evaluating|should i)\b`),
	regexp.MustCompile(`(?i)\b(worth it|is it good|how is|review of)\b`),
	regexp.MustCompile(`(?i)\b(broken|doesn't work|can't|cannot|impossible to|frustrated)\b`),
	regexp.MustCompile(`(?i)\b(bug|issue|problem with|trouble with|struggling)\b`),
	regexp.MustCompile(`(?i)\b(why (is|does|can't|won't))\b`),
	regexp.MustCompile(`(?i)\b(wish|if only|would be great|please add|feature request)\b`),
	regexp.MustCompile(`(?i)\b(when will|roadmap|planned|eta for)\b`),
	regexp.MustCompile(`(?i)\b(just (started|switched|moved|migrated) to)\b`),
	regexp.MustCompile(`(?i)\b(leaving|left|dropped|cancelled|unsubscribed)\b`),
	regexp.MustCompile(`(?i)\b(going back to|returning to|switching back)\b`),
	regexp.MustCompile(`(?i)\b(rug(ged)?|scam|honeypot|drain)\b`),
	regexp.MustCompile(`(?i)\b(when (launch|token|airdrop|listing))\b`),
	regexp.MustCompile(`(?i)\b(utility|use case|tokenomics|real product)\b`),
	regexp.MustCompile(`(?i)\b(shipping|building|dev update|release)\b`),
}

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(gm|gn|wagmi|ngmi|lfg|bullish)[\s!.🚀🔥]*$`),
	regexp.MustCompile(`(?i)^(gm\s+wagmi|wagmi\s+gm)[\s!.🚀🔥]*$`),
	regexp.MustCompile(`(?i)\b(airdrop.*free|free.*airdrop)\b`),
	regexp.MustCompile(`(?i)\b(follow.*retweet|rt.*follow|like.*follow)\b`),
	regexp.MustCompile(`(?i)\b\d+x\s*(gain|return|profit)\b`),
	regexp.MustCompile(`(🚀{3,}|🔥{3,}|💰{3,})`),
}

const (
	minTextLength = 15
	minWordCount  = 3
)

func hasExplicitIntent(text string) bool {
	for _, p := range intentPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func isNoise(text string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func meetsMinimumQuality(text string) bool {
	clean := strings.TrimSpace(text)
	if len(clean) < minTextLength {
		return false
	}
	return len(strings.Fields(clean)) >= minWordCount
}

// FilterSignals drops duplicates, too-short posts, noise, and anything
// without an explicit intent marker.
func FilterSignals(signals []model.Signal) []model.Signal {
	seen := make(map[string]struct{}, len(signals))
	var passed []model.Signal

	for _, sig := range signals {
		if _, dup := seen[sig.SourceID]; dup {
			continue
		}
		seen[sig.SourceID] = struct{}{}

		if !meetsMinimumQuality(sig.Text) {
			continue
		}
		if isNoise(sig.Text) {
			continue
		}
		if !hasExplicitIntent(sig.Text) {
			continue
		}
		passed = append(passed, sig)
	}
	return passed
}
