package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalry/triage-console/internal/chat"
	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/internal/review"
	"github.com/signalry/triage-console/internal/session"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
)

// fakeAPI is a minimal Signalry backend for gateway tests.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /signals", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.ListSignalsResponse{Signals: []model.ReviewItem{
			{
				Signal:         model.Signal{ID: "rm_001", Actor: "dana", Text: "export is broken"},
				Classification: model.Classification{SignalID: "rm_001", Urgency: model.UrgencyHigh},
				Status:         model.StatusPending,
			},
		}})
	})
	mux.HandleFunc("POST /auth/verify", func(w http.ResponseWriter, r *http.Request) {
		var req model.VerifyRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "alpha-tester" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid invite code"})
			return
		}
		json.NewEncoder(w).Encode(model.VerifyResponse{Token: "session-jwt"})
	})
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.ChatResponse{
			Type:    model.ResponseBriefing,
			Message: "Here you go.",
			Data: model.ChatData{Signals: []model.ReviewItem{
				{Signal: model.Signal{ID: "rm_001"}},
			}},
		})
	})
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Stats{Total: 3, Pending: 1})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type gateway struct {
	router   *chi.Mux
	sessions *session.Manager
	registry *Registry
}

func newGateway(t *testing.T, backendURL string) *gateway {
	t.Helper()
	log := logger.NewNop()
	client := upstream.New(upstream.Config{BaseURL: backendURL, Logger: log})
	sessions := session.NewManager("signalry_token", time.Hour)
	registry := NewRegistry(client, 50, log)

	authHandler := NewAuthHandler(client, sessions, registry, log)
	signalsHandler := NewSignalsHandler(client, sessions, registry, log)
	chatHandler := NewChatHandler(client, sessions, registry, log)

	r := chi.NewRouter()
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Route("/app", func(r chi.Router) {
		r.Get("/state", signalsHandler.State)
		r.Post("/run", signalsHandler.Run)
		r.Post("/signals/{id}/select", signalsHandler.Select)
		r.Post("/signals/{id}/approve", signalsHandler.Approve)
		r.Get("/stats", signalsHandler.Stats)
	})
	r.Route("/chat", func(r chi.Router) {
		r.Get("/state", chatHandler.State)
		r.Post("/send", chatHandler.Send)
		r.Post("/messages/{id}/expand", chatHandler.Expand)
	})

	return &gateway{router: r, sessions: sessions, registry: registry}
}

func (g *gateway) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "signalry_token", Value: token})
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, r)
	return w
}

func TestLoginIssuesCookie(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodPost, "/login", "", map[string]string{"code": "alpha-tester"})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "signalry_token", cookies[0].Name)
	assert.Equal(t, "session-jwt", cookies[0].Value)

	var resp struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/chat", resp.Redirect)
}

func TestLoginHonorsRedirect(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodPost, "/login", "", map[string]string{
		"code": "alpha-tester", "redirect": "/app",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/app", resp.Redirect)
}

func TestLoginRejectedSurfacesDetail(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodPost, "/login", "", map[string]string{"code": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid invite code")
	assert.Empty(t, w.Result().Cookies(), "no cookie on a rejected code")
}

func TestLoginBackendDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	g := newGateway(t, dead.URL)

	w := g.do(t, http.MethodPost, "/login", "", map[string]string{"code": "alpha-tester"})
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), connectFailureText)
}

func TestLoginRequiresCode(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodPost, "/login", "", map[string]string{"code": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutClearsCookieAndState(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	// Touch some view state first.
	g.do(t, http.MethodGet, "/app/state", "tok-1", nil)
	g.registry.mu.Lock()
	require.Len(t, g.registry.sessions, 1)
	g.registry.mu.Unlock()

	w := g.do(t, http.MethodPost, "/logout", "tok-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)

	g.registry.mu.Lock()
	assert.Empty(t, g.registry.sessions)
	g.registry.mu.Unlock()
}

func TestAppStateLoadsSignals(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodGet, "/app/state", "tok-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var st review.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Len(t, st.Items, 1)
	assert.Equal(t, "rm_001", st.Items[0].Signal.ID)
	assert.Equal(t, review.FilterPending, st.Filter)
}

func TestAppStateRejectsUnknownFilter(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodGet, "/app/state?filter=bogus", "tok-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	g.do(t, http.MethodGet, "/app/state", "tok-a", nil)
	g.do(t, http.MethodGet, "/app/state", "tok-b", nil)

	var stA, stB review.State
	require.NoError(t, json.Unmarshal(g.do(t, http.MethodPost, "/app/signals/rm_001/select", "tok-a", nil).Body.Bytes(), &stA))
	require.NoError(t, json.Unmarshal(g.do(t, http.MethodGet, "/app/state", "tok-b", nil).Body.Bytes(), &stB))

	assert.NotNil(t, stA.Selected, "session a selected an item")
	assert.Nil(t, stB.Selected, "session b selection is untouched")
}

func TestChatSendThroughGateway(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodPost, "/chat/send", "tok-1", map[string]string{"text": "What should I focus on?"})
	require.Equal(t, http.StatusOK, w.Code)

	var st chat.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Len(t, st.Messages, 2)
	assert.Equal(t, model.RoleAgent, st.Messages[1].Role)
	assert.Equal(t, "Here you go.", st.Messages[1].Text)
}

func TestChatSendBlankReturnsUnchangedState(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodPost, "/chat/send", "tok-1", map[string]string{"text": "  "})
	require.Equal(t, http.StatusOK, w.Code)

	var st chat.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Empty(t, st.Messages)
}

func TestChatExpandThroughGateway(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	var st chat.State
	w := g.do(t, http.MethodPost, "/chat/send", "tok-1", map[string]string{"text": "briefing"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	agentID := st.Messages[1].ID

	w = g.do(t, http.MethodPost, "/chat/messages/"+agentID+"/expand", "tok-1", map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.NotNil(t, st.Messages[1].ExpandedSignal)
	assert.Equal(t, 0, *st.Messages[1].ExpandedSignal)
}

func TestStatsPassThrough(t *testing.T) {
	g := newGateway(t, fakeAPI(t).URL)

	w := g.do(t, http.MethodGet, "/app/stats", "tok-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats model.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
}

func TestRegistryPrunesStaleSessions(t *testing.T) {
	log := logger.NewNop()
	client := upstream.New(upstream.Config{BaseURL: "http://localhost:1", Logger: log})
	registry := NewRegistry(client, 50, log)

	registry.Get("old-token")
	registry.mu.Lock()
	registry.sessions["old-token"].lastSeen = time.Now().Add(-25 * time.Hour)
	registry.mu.Unlock()

	registry.Get("fresh-token")

	registry.mu.Lock()
	defer registry.mu.Unlock()
	_, ok := registry.sessions["old-token"]
	assert.False(t, ok, "stale session pruned on next access")
	_, ok = registry.sessions["fresh-token"]
	assert.True(t, ok)
}
