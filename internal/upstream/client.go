// Package upstream is the HTTP client for the Signalry API. Every
// interesting computation (classification, scoring, momentum, chat)
// happens behind these endpoints; the console only calls them.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/pkg/logger"
	"github.com/signalry/triage-console/pkg/metrics"
)

const defaultBaseURL = "http://localhost:8000"

// ErrUnavailable collapses every failure mode of an upstream call:
// transport error, non-2xx status, or an unparseable body. Callers
// never differentiate, so neither does the client.
var ErrUnavailable = errors.New("signalry API unavailable")

// AuthError carries the backend's detail string for a rejected invite
// code. The login flow surfaces Detail verbatim.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	return e.Detail
}

// Config controls how the upstream client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client wraps the Signalry REST endpoints the console consumes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a configured Client with sane defaults.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Global()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log,
	}
}

// ListSignals fetches review items filtered by status (pending,
// approved, or all) and capped at limit, in server order.
func (c *Client) ListSignals(ctx context.Context, status string, limit int) ([]model.ReviewItem, error) {
	q := url.Values{}
	q.Set("status", status)
	q.Set("limit", strconv.Itoa(limit))

	var resp model.ListSignalsResponse
	if err := c.do(ctx, "list_signals", http.MethodGet, "/signals?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Signals, nil
}

// RunPipeline triggers a backend pipeline pass.
func (c *Client) RunPipeline(ctx context.Context, keywords []string) (*model.RunPipelineResponse, error) {
	var resp model.RunPipelineResponse
	req := model.RunPipelineRequest{Keywords: keywords}
	if err := c.do(ctx, "run_pipeline", http.MethodPost, "/signals/run", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Approve marks a review item approved. Terminal.
func (c *Client) Approve(ctx context.Context, signalID string) error {
	return c.do(ctx, "approve", http.MethodPost, "/signals/"+url.PathEscape(signalID)+"/approve", nil, nil)
}

// Discard marks a review item discarded. Terminal.
func (c *Client) Discard(ctx context.Context, signalID string) error {
	return c.do(ctx, "discard", http.MethodPost, "/signals/"+url.PathEscape(signalID)+"/discard", nil, nil)
}

// Seed loads demo data for a persona.
func (c *Client) Seed(ctx context.Context, persona string) error {
	q := url.Values{}
	q.Set("persona", persona)
	return c.do(ctx, "seed", http.MethodPost, "/signals/seed?"+q.Encode(), nil, nil)
}

// Chat submits a message and returns the structured agent response.
func (c *Client) Chat(ctx context.Context, message string) (*model.ChatResponse, error) {
	var resp model.ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", model.ChatRequest{Message: message}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats fetches the aggregate counters.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var resp model.Stats
	if err := c.do(ctx, "stats", http.MethodGet, "/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendFeedback records thumbs-style feedback on a classification.
func (c *Client) SendFeedback(ctx context.Context, req model.FeedbackRequest) error {
	return c.do(ctx, "feedback", http.MethodPost, "/feedback", req, nil)
}

// LogOutcome records what happened after a signal was acted on.
func (c *Client) LogOutcome(ctx context.Context, req model.OutcomeRequest) error {
	return c.do(ctx, "outcome", http.MethodPost, "/outcome", req, nil)
}

// Verify exchanges an invite code for a session token. A rejected code
// returns *AuthError carrying the backend's detail string; anything
// else returns ErrUnavailable.
func (c *Client) Verify(ctx context.Context, code string) (string, error) {
	body, err := json.Marshal(model.VerifyRequest{Code: code})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/verify", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordUpstream("verify", "error", time.Since(start).Seconds())
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream("verify", strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := struct {
			Detail string `json:"detail"`
		}{Detail: "Invalid invite code"}
		if data, err := io.ReadAll(resp.Body); err == nil {
			// Best effort; the fallback detail stands on parse failure.
			var parsed struct {
				Detail string `json:"detail"`
			}
			if json.Unmarshal(data, &parsed) == nil && parsed.Detail != "" {
				detail.Detail = parsed.Detail
			}
		}
		return "", &AuthError{Detail: detail.Detail}
	}

	var out model.VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		return "", fmt.Errorf("%w: bad verify response", ErrUnavailable)
	}
	return out.Token, nil
}

// do issues one JSON request. Any transport failure, non-2xx status,
// or undecodable body comes back wrapped in ErrUnavailable. No retries.
func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(operation, "error", time.Since(start).Seconds())
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(operation, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
	}
	return nil
}
