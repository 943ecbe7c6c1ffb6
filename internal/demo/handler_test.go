package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/pkg/logger"
)

func newDemoServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store := newTestStore(t)
	pipeline := NewPipeline(NewConnector(), nil, store, logger.NewNop())
	responder := NewResponder(store)
	auth := NewAuth("test-secret", []string{"alpha-tester"}, time.Hour)
	h := NewHandler(pipeline, store, responder, auth, logger.NewNop())

	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSeedThenList(t *testing.T) {
	srv, _ := newDemoServer(t)

	resp, err := http.Post(srv.URL+"/signals/seed?persona=product", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.RunPipelineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Positive(t, result.Queued)
	assert.Positive(t, result.Ingested)

	listResp, err := http.Get(srv.URL + "/signals?status=pending&limit=50")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var list model.ListSignalsResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	assert.Len(t, list.Signals, result.Queued)
}

func TestSeedUnknownPersona(t *testing.T) {
	srv, _ := newDemoServer(t)

	resp, err := http.Post(srv.URL+"/signals/seed?persona=pirate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSeedReplacesPreviousPersona(t *testing.T) {
	srv, store := newDemoServer(t)

	resp, err := http.Post(srv.URL+"/signals/seed?persona=product", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/signals/seed?persona=crypto", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	items, err := store.List("all", 0)
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, "intercom", item.Signal.Source, "product sources should be gone after reseeding")
	}
}

func TestRunIsIdempotentOnDuplicates(t *testing.T) {
	srv, _ := newDemoServer(t)

	resp := postJSON(t, srv.URL+"/signals/run", model.RunPipelineRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first model.RunPipelineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))

	resp = postJSON(t, srv.URL+"/signals/run", model.RunPipelineRequest{})
	var second model.RunPipelineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))

	assert.Positive(t, first.Queued)
	assert.Zero(t, second.Queued, "second pass re-ingests the same source ids")
	assert.Equal(t, second.Filtered, second.Duplicates)
}

func TestApproveFlow(t *testing.T) {
	srv, store := newDemoServer(t)
	_, err := NewPipeline(NewConnector(), nil, store, logger.NewNop()).Seed(context.Background(), PersonaProduct)
	require.NoError(t, err)

	items, err := store.List("pending", 1)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	id := items[0].Signal.ID

	resp, err := http.Post(srv.URL+"/signals/"+id+"/approve", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Second review of the same signal conflicts.
	resp, err = http.Post(srv.URL+"/signals/"+id+"/discard", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/signals/ghost/approve", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	srv, store := newDemoServer(t)
	_, err := NewPipeline(NewConnector(), nil, store, logger.NewNop()).Seed(context.Background(), PersonaProduct)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/chat", model.ChatRequest{Message: "Are there any momentum patterns?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chat model.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chat))
	assert.Equal(t, model.ResponseMomentum, chat.Type)
}

func TestChatRequiresMessage(t *testing.T) {
	srv, _ := newDemoServer(t)
	resp := postJSON(t, srv.URL+"/chat", model.ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyEndpoint(t *testing.T) {
	srv, _ := newDemoServer(t)

	resp := postJSON(t, srv.URL+"/auth/verify", model.VerifyRequest{Code: "alpha-tester"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out model.VerifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.Token)
}

func TestVerifyEndpointRejects(t *testing.T) {
	srv, _ := newDemoServer(t)

	resp := postJSON(t, srv.URL+"/auth/verify", model.VerifyRequest{Code: "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var out struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Invalid invite code", out.Detail)
}

func TestFeedbackAndOutcomeEndpoints(t *testing.T) {
	srv, store := newDemoServer(t)
	sig, cls := storedSignal("s1", "dana", "pricing", model.UrgencyMedium)
	_, err := store.Add(sig, cls)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/feedback", model.FeedbackRequest{SignalID: "s1", FeedbackType: "thumbs_up"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/outcome", model.OutcomeRequest{SignalID: "s1", Acted: true, ResponseType: "briefing"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	statsResp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()

	var stats model.Stats
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.OutcomesLogged)
}
