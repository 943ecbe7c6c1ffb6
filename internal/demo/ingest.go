package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/signalry/triage-console/internal/model"
)

// Personas selectable when seeding demo data. Each maps to a set of
// simulated channels.
const (
	PersonaProduct = "product"
	PersonaCrypto  = "crypto"
	PersonaSales   = "sales"
)

// ValidPersona reports whether p names a known persona.
func ValidPersona(p string) bool {
	switch p {
	case PersonaProduct, PersonaCrypto, PersonaSales:
		return true
	}
	return false
}

type seedPost struct {
	source   string
	actor    string
	text     string
	hoursAgo float64
	replyTo  string
	metrics  map[string]float64
	personas []string
}

// The demo pool. Entries are written so the filter, classifier, and
// momentum detector each have something to do: momentum clusters (3+
// actors on one pain inside 48h), actor repeats, plain noise, and
// stale posts outside the window.
var seedPool = []seedPost{
	// product: API reliability cluster (momentum: 4 actors, same pain)
	{source: "intercom", actor: "dana@acmecorp.com", text: "Our nightly batch export keeps failing with a timeout error. This is broken for the third run in a row and reports are due today.", hoursAgo: 3, metrics: map[string]float64{"account_seats": 140}, personas: []string{PersonaProduct}},
	{source: "slack", actor: "mike.t", text: "Anyone else seeing the API return 429s way under the documented rate limit? Our integration can't finish a sync, this is urgent.", hoursAgo: 5, metrics: map[string]float64{"channel_members": 48}, personas: []string{PersonaProduct}},
	{source: "intercom", actor: "priya@northwind.io", text: "Bug report: webhook deliveries silently stop after about an hour. We can't rely on the integration until this is fixed.", hoursAgo: 9, metrics: map[string]float64{"account_seats": 62}, personas: []string{PersonaProduct}},
	{source: "hubspot", actor: "jlarsen", text: "Customer flagged during renewal call that the API error rate is a blocker. They need a fix timeline before signing.", hoursAgo: 14, metrics: map[string]float64{"deal_value": 48000}, personas: []string{PersonaProduct, PersonaSales}},
	// product: actor persistence (same actor, same pain, twice)
	{source: "slack", actor: "sofia.r", text: "Still struggling with the dashboard loading time, it takes forever on our workspace. Performance is killing us.", hoursAgo: 20, metrics: map[string]float64{"channel_members": 210}, personas: []string{PersonaProduct}},
	{source: "slack", actor: "sofia.r", text: "Dashboard is slow again today. Why is performance this bad on larger workspaces?", hoursAgo: 2, metrics: map[string]float64{"channel_members": 210}, personas: []string{PersonaProduct}},
	// product: feature requests
	{source: "intercom", actor: "tom@brightleaf.co", text: "Feature request: please add CSV export on the audit log page. We need it for compliance reviews.", hoursAgo: 26, metrics: map[string]float64{"account_seats": 35}, personas: []string{PersonaProduct}},
	{source: "slack", actor: "alexk", text: "Wish the mobile view had offline mode. Nice to have, not urgent, but it comes up every sprint.", hoursAgo: 30, personas: []string{PersonaProduct}},
	// product: advocacy
	{source: "slack", actor: "renata.m", text: "Just switched to the new editor and honestly it's the best tool in our stack now. Love it.", hoursAgo: 12, personas: []string{PersonaProduct}},
	// product: noise (filtered out)
	{source: "slack", actor: "bot-digest", text: "lfg", hoursAgo: 1, personas: []string{PersonaProduct}},
	{source: "intercom", actor: "sam@quickmail.dev", text: "Thanks!", hoursAgo: 4, personas: []string{PersonaProduct}},
	// product: outside the 48h momentum window
	{source: "intercom", actor: "old@archive.example", text: "We had trouble with the API timeout last month, is there any update on that issue?", hoursAgo: 96, personas: []string{PersonaProduct}},

	// crypto: trust cluster (momentum: 3 actors)
	{source: "x", actor: "@chainwatcher", text: "Is this project a rug? The deployer wallet just moved 40% of supply and nobody from the team is answering.", hoursAgo: 2, metrics: map[string]float64{"likes": 310, "reposts": 85}, personas: []string{PersonaCrypto}},
	{source: "telegram", actor: "degen_marta", text: "Contract looks like a honeypot to me, can anyone verify? Can't sell my test buy.", hoursAgo: 6, metrics: map[string]float64{"views": 1200}, personas: []string{PersonaCrypto}},
	{source: "discord", actor: "0xpavel", text: "Seeing drain-style approvals requested by the staking page. Is the frontend compromised? This is critical.", hoursAgo: 10, metrics: map[string]float64{"reactions": 44}, personas: []string{PersonaCrypto}},
	// crypto: token utility
	{source: "x", actor: "@ser_lin", text: "Honest question: what's the actual utility here? Tokenomics doc reads like every other launch. Need a real product before I hold.", hoursAgo: 18, metrics: map[string]float64{"likes": 95}, personas: []string{PersonaCrypto}},
	{source: "telegram", actor: "nightowl_k", text: "When will the roadmap get an ETA for the mainnet release? Dev update was promised two weeks ago.", hoursAgo: 22, personas: []string{PersonaCrypto}},
	// crypto: churn
	{source: "discord", actor: "yield_sam", text: "I'm leaving, cancelled my position. Support never responded and the bridge has been broken for days.", hoursAgo: 8, metrics: map[string]float64{"reactions": 12}, personas: []string{PersonaCrypto}},
	// crypto: noise
	{source: "x", actor: "@moonboi", text: "gm wagmi 🚀🚀🚀", hoursAgo: 1, personas: []string{PersonaCrypto}},
	{source: "x", actor: "@airdropalert", text: "FREE airdrop! follow and retweet to claim 100x gains", hoursAgo: 3, personas: []string{PersonaCrypto}},

	// sales: pricing cluster (momentum: 3 actors)
	{source: "hubspot", actor: "claire.b", text: "Prospect is comparing us vs Competitor X and says our pricing is too expensive at their seat count. Need ammo for the call.", hoursAgo: 4, metrics: map[string]float64{"deal_value": 72000}, personas: []string{PersonaSales}},
	{source: "slack", actor: "deal-desk-raj", text: "Second enterprise account this week pushing back on cost. They're evaluating alternatives because of the pricing tier jump.", hoursAgo: 11, metrics: map[string]float64{"deal_value": 120000}, personas: []string{PersonaSales}},
	{source: "intercom", actor: "finance@gridpoint.io", text: "We're considering downgrading. The price increase doesn't match the value we're getting from the pro tier.", hoursAgo: 19, metrics: map[string]float64{"account_seats": 88}, personas: []string{PersonaSales}},
	// sales: expansion intent
	{source: "hubspot", actor: "owen.d", text: "Champion at Meridian asked should I roll this out to two more teams? Looking for a volume discount structure.", hoursAgo: 15, metrics: map[string]float64{"deal_value": 54000}, personas: []string{PersonaSales}},
	{source: "slack", actor: "se-team-ana", text: "Prospect says they need SSO before security review will pass. Missing feature is the only blocker on a six-figure deal.", hoursAgo: 7, metrics: map[string]float64{"deal_value": 150000}, personas: []string{PersonaSales}},
	// sales: noise
	{source: "slack", actor: "gong-bot", text: "🔥🔥🔥", hoursAgo: 2, personas: []string{PersonaSales}},
}

// Connector generates demo signals from the seed pool with timestamps
// relative to now.
type Connector struct {
	pool []seedPost
	now  func() time.Time
}

// NewConnector returns the demo pull connector.
func NewConnector() *Connector {
	return &Connector{pool: seedPool, now: time.Now}
}

// Fetch returns pool signals for a persona (empty persona means all),
// optionally filtered by keywords, capped at limit.
func (c *Connector) Fetch(keywords []string, persona string, limit int) []model.Signal {
	now := c.now().UTC()

	var signals []model.Signal
	for i, post := range c.pool {
		if persona != "" && !contains(post.personas, persona) {
			continue
		}
		if len(keywords) > 0 && !matchesAny(post.text, keywords) {
			continue
		}

		var replyTo *string
		if post.replyTo != "" {
			rt := post.replyTo
			replyTo = &rt
		}
		metrics := post.metrics
		if metrics == nil {
			metrics = map[string]float64{}
		}

		signals = append(signals, model.Signal{
			ID:        fmt.Sprintf("rm_%03d", i+1),
			Source:    post.source,
			Actor:     post.actor,
			Text:      post.text,
			Timestamp: now.Add(-time.Duration(post.hoursAgo * float64(time.Hour))),
			SourceID:  fmt.Sprintf("rm_src_%03d", i+1),
			ReplyTo:   replyTo,
			Metrics:   metrics,
		})

		if limit > 0 && len(signals) >= limit {
			break
		}
	}
	return signals
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
