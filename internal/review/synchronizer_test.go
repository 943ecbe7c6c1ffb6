package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
)

func item(id, actor string) model.ReviewItem {
	return model.ReviewItem{
		Signal: model.Signal{ID: id, Actor: actor, Text: "some feedback text"},
		Classification: model.Classification{
			SignalID:    id,
			Urgency:     model.UrgencyMedium,
			PrimaryPain: "performance",
		},
		Status: model.StatusPending,
	}
}

type fakeBackend struct {
	mu       sync.Mutex
	items    []model.ReviewItem
	failList bool
	failRun  bool
	runCalls atomic.Int32
	mutated  []string
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /signals", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failList {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(model.ListSignalsResponse{Signals: f.items})
	})
	mux.HandleFunc("POST /signals/run", func(w http.ResponseWriter, r *http.Request) {
		f.runCalls.Add(1)
		if f.failRun {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(model.RunPipelineResponse{Queued: 1})
	})
	mux.HandleFunc("POST /signals/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.mutated = append(f.mutated, "approve:"+r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /signals/{id}/discard", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.mutated = append(f.mutated, "discard:"+r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func newSyncWithBackend(t *testing.T, backend *fakeBackend) *Synchronizer {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	client := upstream.New(upstream.Config{BaseURL: srv.URL, Logger: logger.NewNop()})
	return NewSynchronizer(client, 50, logger.NewNop())
}

func TestLoadReplacesItems(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana"), item("rm_002", "mike")}}
	s := newSyncWithBackend(t, backend)

	s.Load(context.Background())

	st := s.State()
	require.Len(t, st.Items, 2)
	assert.False(t, st.Loading)
	assert.Equal(t, FilterPending, st.Filter)
}

func TestLoadFailureEmptiesList(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana")}}
	s := newSyncWithBackend(t, backend)

	s.Load(context.Background())
	require.Len(t, s.State().Items, 1)

	backend.mu.Lock()
	backend.failList = true
	backend.mu.Unlock()

	s.Load(context.Background())

	st := s.State()
	assert.Empty(t, st.Items, "a failed load replaces, it does not preserve")
	assert.False(t, st.Loading)
}

func TestSetFilterClearsSelection(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana")}}
	s := newSyncWithBackend(t, backend)
	s.Load(context.Background())

	s.Select("rm_001")
	require.NotNil(t, s.State().Selected)

	s.SetFilter(FilterApproved)
	assert.Nil(t, s.State().Selected)
	assert.Equal(t, FilterApproved, s.State().Filter)
}

func TestSetFilterSameValueKeepsSelection(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana")}}
	s := newSyncWithBackend(t, backend)
	s.Load(context.Background())

	s.Select("rm_001")
	s.SetFilter(FilterPending)
	assert.NotNil(t, s.State().Selected)
}

func TestSelectUnknownIDClearsSelection(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana")}}
	s := newSyncWithBackend(t, backend)
	s.Load(context.Background())

	s.Select("rm_001")
	require.NotNil(t, s.State().Selected)

	s.Select("no-such-id")
	assert.Nil(t, s.State().Selected)
}

func TestRunPipelineReloadsEvenOnFailure(t *testing.T) {
	backend := &fakeBackend{failRun: true, items: []model.ReviewItem{item("rm_001", "dana")}}
	s := newSyncWithBackend(t, backend)

	err := s.RunPipeline(context.Background())
	assert.Error(t, err)

	// The reload still ran and brought the items in.
	assert.Len(t, s.State().Items, 1)
	assert.False(t, s.State().Running)
}

func TestRunPipelineSingleFlight(t *testing.T) {
	backend := &fakeBackend{}
	s := newSyncWithBackend(t, backend)

	// Simulate an in-flight run.
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	require.NoError(t, s.RunPipeline(context.Background()))
	assert.Equal(t, int32(0), backend.runCalls.Load(), "second run while in flight is ignored")
}

func TestApproveClearsSelectionAndReloads(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana"), item("rm_002", "mike")}}
	s := newSyncWithBackend(t, backend)
	s.Load(context.Background())
	s.Select("rm_001")

	backend.mu.Lock()
	backend.items = []model.ReviewItem{item("rm_002", "mike")}
	backend.mu.Unlock()

	require.NoError(t, s.Approve(context.Background(), "rm_001"))

	st := s.State()
	assert.Nil(t, st.Selected)
	require.Len(t, st.Items, 1)
	assert.Equal(t, "rm_002", st.Items[0].Signal.ID)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, []string{"approve:rm_001"}, backend.mutated)
}

func TestDiscardFailureStillClearsSelectionAndReloads(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana")}}
	s := newSyncWithBackend(t, backend)
	s.Load(context.Background())
	s.Select("rm_001")

	// Swap in a dead backend for the mutation; the synchronizer keeps
	// its behavior: selection cleared, reload attempted, error returned.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	s.client = upstream.New(upstream.Config{BaseURL: srv.URL, Logger: logger.NewNop()})

	err := s.Discard(context.Background(), "rm_001")
	assert.Error(t, err)

	st := s.State()
	assert.Nil(t, st.Selected)
	assert.Empty(t, st.Items, "reload against a dead backend empties the list")
}

func TestStateSnapshotIsCopy(t *testing.T) {
	backend := &fakeBackend{items: []model.ReviewItem{item("rm_001", "dana")}}
	s := newSyncWithBackend(t, backend)
	s.Load(context.Background())

	st := s.State()
	st.Items[0].Signal.ID = "mutated"

	assert.Equal(t, "rm_001", s.State().Items[0].Signal.ID)
}
