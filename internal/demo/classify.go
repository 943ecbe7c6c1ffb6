package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/signalry/triage-console/internal/llm"
	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/pkg/logger"
)

// Classifier produces a structured classification for one signal.
type Classifier interface {
	Classify(ctx context.Context, sig model.Signal) (model.Classification, error)
}

// HeuristicClassifier is deterministic keyword matching. No API
// calls; lets the full pipeline run without provider keys.
type HeuristicClassifier struct{}

var confidenceWords = []string{
	"need", "want", "looking", "please", "wish", "bug",
	"broken", "switch", "leaving", "love", "recommend",
}

func (HeuristicClassifier) Classify(_ context.Context, sig model.Signal) (model.Classification, error) {
	text := strings.ToLower(sig.Text)

	intent := model.IntentExploring
	if containsAny(text, "need", "looking for", "searching", "recommend") {
		intent = model.IntentEvaluating
	}
	if containsAny(text, "please add", "feature request", "wish", "when will") {
		intent = model.IntentRequesting
	}
	if containsAny(text, "leaving", "left", "dropped", "cancelled", "switching back") {
		intent = model.IntentChurning
	}
	if containsAny(text, "love", "switched to", "started using", "best tool") {
		intent = model.IntentAdvocating
	}

	pain := "general feedback"
	switch {
	case containsAny(text, "bug", "broken", "error", "crash"):
		pain = "reliability/bugs"
	case containsAny(text, "slow", "performance", "lag"):
		pain = "performance"
	case containsAny(text, "confusing", "ux", "hard to use", "unintuitive"):
		pain = "usability"
	case containsAny(text, "price", "expensive", "cost", "pricing"):
		pain = "pricing"
	case containsAny(text, "missing", "no support for", "doesn't have"):
		pain = "missing feature"
	case containsAny(text, "scam", "rug", "honeypot", "drain"):
		pain = "trust/security"
	case containsAny(text, "token", "utility", "tokenomics"):
		pain = "token utility"
	}

	urgency := model.UrgencyMedium
	switch {
	case containsAny(text, "urgent", "asap", "critical", "down", "broken now"):
		urgency = model.UrgencyCritical
	case containsAny(text, "today", "right now", "immediately"):
		urgency = model.UrgencyHigh
	case containsAny(text, "eventually", "someday", "nice to have"):
		urgency = model.UrgencyLow
	}

	matches := 0
	for _, w := range confidenceWords {
		if strings.Contains(text, w) {
			matches++
		}
	}
	confidence := 0.3 + float64(matches)*0.15
	if confidence > 0.85 {
		confidence = 0.85
	}

	action := "Monitor — assess if pattern continues"
	switch intent {
	case model.IntentChurning:
		action = fmt.Sprintf("Engage %s — address %s before they leave", sig.Actor, pain)
	case model.IntentRequesting:
		action = fmt.Sprintf("Log feature request: %s — check if this clusters", pain)
	case model.IntentEvaluating:
		action = fmt.Sprintf("Respond to %s with relevant info about %s", sig.Actor, pain)
	case model.IntentAdvocating:
		action = fmt.Sprintf("Amplify — %s is a potential champion", sig.Actor)
	}

	return model.Classification{
		SignalID:          sig.ID,
		IntentStage:       intent,
		PrimaryPain:       pain,
		Urgency:           urgency,
		Confidence:        confidence,
		MomentumFlag:      false,
		RecommendedAction: action,
	}, nil
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

const classifierSystemPrompt = `You are a signal intelligence agent. You analyze social media posts
and classify them according to a strict schema.

You MUST respond with valid JSON matching this exact structure:
{
  "intent_stage": "exploring|evaluating|requesting|churning|advocating",
  "primary_pain": "brief description of the core pain or need",
  "urgency": "critical|high|medium|low",
  "confidence": 0.0-1.0,
  "recommended_action": "one specific, actionable suggestion"
}

Rules:
- intent_stage: where is this person in their journey? exploring (browsing), evaluating (comparing), requesting (asking for something), churning (leaving/frustrated), advocating (promoting)
- primary_pain: what is the underlying need or frustration? Be specific, not generic.
- urgency: how time-sensitive? critical = hours, high = today, medium = this week, low = backlog
- confidence: how confident are you in this classification? 0.0-1.0
- recommended_action: what should a product/strategy person do about this? One clear action.

Focus on EXPLICIT intent — what the person is actually asking/doing, not vibes or sentiment.
Do NOT infer intent that isn't clearly stated.`

var jsonFence = regexp.MustCompile("```(?:json)?\\s*")

// LLMClassifier sends each signal to a provider and parses the JSON
// reply. Falls back to the heuristic when the provider errors or
// returns junk.
type LLMClassifier struct {
	client   llm.Client
	fallback HeuristicClassifier
	logger   *logger.Logger
}

// NewLLMClassifier wraps an LLM client as a Classifier.
func NewLLMClassifier(client llm.Client, log *logger.Logger) *LLMClassifier {
	if log == nil {
		log = logger.Global()
	}
	return &LLMClassifier{client: client, logger: log}
}

func (c *LLMClassifier) Classify(ctx context.Context, sig model.Signal) (model.Classification, error) {
	metrics, _ := json.Marshal(sig.Metrics)
	prompt := fmt.Sprintf(`Classify this post:

Author: %s
Text: %s
Metrics: %s
Timestamp: %s

Respond with JSON only. No markdown, no explanation.`,
		sig.Actor, sig.Text, metrics, sig.Timestamp.Format("2006-01-02T15:04:05Z07:00"))

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		MaxTokens: 300,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: classifierSystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		c.logger.Warn("llm classify failed, using heuristic",
			zap.String("signal_id", sig.ID),
			zap.Error(err))
		return c.fallback.Classify(ctx, sig)
	}

	cls, err := parseClassification(sig.ID, resp.Content)
	if err != nil {
		c.logger.Warn("llm classify returned unparseable output, using heuristic",
			zap.String("signal_id", sig.ID),
			zap.Error(err))
		return c.fallback.Classify(ctx, sig)
	}
	return cls, nil
}

func parseClassification(signalID, raw string) (model.Classification, error) {
	text := jsonFence.ReplaceAllString(strings.TrimSpace(raw), "")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var data struct {
		IntentStage       string  `json:"intent_stage"`
		PrimaryPain       string  `json:"primary_pain"`
		Urgency           string  `json:"urgency"`
		Confidence        float64 `json:"confidence"`
		RecommendedAction string  `json:"recommended_action"`
	}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return model.Classification{}, fmt.Errorf("parse classification: %w", err)
	}

	return model.Classification{
		SignalID:          signalID,
		IntentStage:       model.IntentStage(data.IntentStage),
		PrimaryPain:       data.PrimaryPain,
		Urgency:           model.Urgency(data.Urgency),
		Confidence:        data.Confidence,
		RecommendedAction: data.RecommendedAction,
	}, nil
}
