// Package review keeps an in-memory view of the review queue
// synchronized with the Signalry API. One Synchronizer per session;
// state is never shared across sessions.
package review

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
	"github.com/signalry/triage-console/pkg/metrics"
)

// Filter selects which review items the list shows.
type Filter string

const (
	FilterPending  Filter = "pending"
	FilterApproved Filter = "approved"
	FilterAll      Filter = "all"
)

// ValidFilter reports whether s names a known filter tab.
func ValidFilter(s string) bool {
	switch Filter(s) {
	case FilterPending, FilterApproved, FilterAll:
		return true
	}
	return false
}

// Synchronizer owns the signal list, the current filter, and the
// single selected item. Loads are not deduplicated: overlapping loads
// both resolve and the later one wins, same as rapid filter switching
// in any browser tab.
type Synchronizer struct {
	client *upstream.Client
	logger *logger.Logger
	limit  int

	mu       sync.RWMutex
	items    []model.ReviewItem
	selected *model.ReviewItem
	filter   Filter
	loading  bool
	running  bool
}

// NewSynchronizer creates a synchronizer starting on the pending tab.
func NewSynchronizer(client *upstream.Client, limit int, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		client: client,
		logger: log,
		limit:  limit,
		filter: FilterPending,
	}
}

// Load replaces the local list with the server's view of the current
// filter. Any failure empties the list; there is no partial-failure
// state and no retry. The loading flag is observable through State.
func (s *Synchronizer) Load(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	filter := s.filter
	s.mu.Unlock()

	items, err := s.client.ListSignals(ctx, string(filter), s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.logger.Warn("signal load failed", zap.String("filter", string(filter)), zap.Error(err))
		metrics.SignalLoadsTotal.WithLabelValues(string(filter), "error").Inc()
		s.items = []model.ReviewItem{}
		return
	}
	metrics.SignalLoadsTotal.WithLabelValues(string(filter), "ok").Inc()
	s.items = items
}

// SetFilter switches the filter tab and clears the selection. The
// caller is expected to Load afterwards.
func (s *Synchronizer) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter != f {
		s.filter = f
		s.selected = nil
	}
}

// RunPipeline triggers a backend pipeline pass and reloads. At most
// one run is in flight; a second call while running is ignored. The
// reload happens whether or not the run succeeded, and the run error
// is returned so the caller can surface it.
func (s *Synchronizer) RunPipeline(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	_, err := s.client.RunPipeline(ctx, nil)
	if err != nil {
		metrics.ReviewActionsTotal.WithLabelValues("run", "error").Inc()
	} else {
		metrics.ReviewActionsTotal.WithLabelValues("run", "ok").Inc()
	}

	s.Load(ctx)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return err
}

// Approve marks the item approved, clears the selection, and reloads.
// The mutating call is awaited before the reload so the reload sees
// the mutation. Selection clears even when the call fails.
func (s *Synchronizer) Approve(ctx context.Context, signalID string) error {
	return s.mutate(ctx, "approve", signalID, s.client.Approve)
}

// Discard marks the item discarded, clears the selection, and reloads.
func (s *Synchronizer) Discard(ctx context.Context, signalID string) error {
	return s.mutate(ctx, "discard", signalID, s.client.Discard)
}

func (s *Synchronizer) mutate(ctx context.Context, action, signalID string, call func(context.Context, string) error) error {
	err := call(ctx, signalID)

	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("review action failed",
			zap.String("action", action),
			zap.String("signal_id", signalID),
			zap.Error(err))
		metrics.ReviewActionsTotal.WithLabelValues(action, "error").Inc()
	} else {
		metrics.ReviewActionsTotal.WithLabelValues(action, "ok").Inc()
	}

	s.Load(ctx)
	return err
}

// Select marks the item with the given signal ID as selected. Unknown
// IDs clear the selection.
func (s *Synchronizer) Select(signalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Signal.ID == signalID {
			item := s.items[i]
			s.selected = &item
			return
		}
	}
	s.selected = nil
}

// ClearSelection drops the selected item.
func (s *Synchronizer) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// State is a point-in-time snapshot of the list view.
type State struct {
	Items    []model.ReviewItem `json:"signals"`
	Selected *model.ReviewItem  `json:"selected,omitempty"`
	Detail   *Detail            `json:"detail,omitempty"`
	Filter   Filter             `json:"filter"`
	Loading  bool               `json:"loading"`
	Running  bool               `json:"running"`
}

// State returns a snapshot safe for concurrent use.
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.ReviewItem, len(s.items))
	copy(items, s.items)

	var selected *model.ReviewItem
	var detail *Detail
	if s.selected != nil {
		item := *s.selected
		selected = &item
		d := BuildDetail(item)
		detail = &d
	}

	return State{
		Items:    items,
		Selected: selected,
		Detail:   detail,
		Filter:   s.filter,
		Loading:  s.loading,
		Running:  s.running,
	}
}
