// Package demo is a self-contained implementation of the Signalry API
// surface the console consumes: seeded personas, heuristic or LLM
// classification, momentum detection, a review queue, and invite-code
// auth. It exists so the gateway runs end-to-end without external
// services.
package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/signalry/triage-console/internal/model"
)

var (
	// ErrNotFound means no review item exists for the signal ID.
	ErrNotFound = errors.New("signal not found")
	// ErrTerminal means the item was already approved or discarded.
	// Both states are terminal; only pending items can transition.
	ErrTerminal = errors.New("review status is terminal")
)

type signalRecord struct {
	ID        string    `gorm:"primaryKey"`
	Source    string    `gorm:"index"`
	Actor     string    `gorm:"index"`
	Text      string
	Timestamp time.Time `gorm:"index"`
	SourceID  string    `gorm:"uniqueIndex"`
	ReplyTo   *string
	Metrics   string
}

func (signalRecord) TableName() string { return "signals" }

type classificationRecord struct {
	SignalID          string `gorm:"primaryKey"`
	IntentStage       string
	PrimaryPain       string `gorm:"index"`
	Urgency           string
	Confidence        float64
	MomentumFlag      bool
	RecommendedAction string
}

func (classificationRecord) TableName() string { return "classifications" }

type reviewRecord struct {
	SignalID   string `gorm:"primaryKey"`
	Status     string `gorm:"index;default:pending"`
	ReviewedAt *time.Time
	CreatedAt  time.Time
}

func (reviewRecord) TableName() string { return "review_queue" }

type feedbackRecord struct {
	SignalID     string `gorm:"primaryKey"`
	FeedbackType string
	Timestamp    time.Time
}

func (feedbackRecord) TableName() string { return "feedback" }

type outcomeRecord struct {
	SignalID     string `gorm:"primaryKey"`
	Acted        bool
	ResponseType string
	Notes        string
	Timestamp    time.Time
}

func (outcomeRecord) TableName() string { return "outcomes" }

// Store is the sqlite-backed review queue with feedback and outcome
// logging.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (and migrates) the sqlite database at path. Parent
// directories are created as needed.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&signalRecord{},
		&classificationRecord{},
		&reviewRecord{},
		&feedbackRecord{},
		&outcomeRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Reset drops all rows. Used when seeding a persona.
func (s *Store) Reset() error {
	for _, m := range []any{
		&reviewRecord{}, &classificationRecord{}, &signalRecord{},
		&feedbackRecord{}, &outcomeRecord{},
	} {
		if err := s.db.Where("1 = 1").Delete(m).Error; err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
	}
	return nil
}

// Add queues a signal with its classification for review. Returns
// false when a signal with the same source_id already exists, so an
// actor is never queued twice for the same post.
func (s *Store) Add(sig model.Signal, cls model.Classification) (bool, error) {
	var count int64
	if err := s.db.Model(&signalRecord{}).Where("source_id = ?", sig.SourceID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	metrics, err := json.Marshal(sig.Metrics)
	if err != nil {
		return false, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&signalRecord{
			ID:        sig.ID,
			Source:    sig.Source,
			Actor:     sig.Actor,
			Text:      sig.Text,
			Timestamp: sig.Timestamp,
			SourceID:  sig.SourceID,
			ReplyTo:   sig.ReplyTo,
			Metrics:   string(metrics),
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&classificationRecord{
			SignalID:          cls.SignalID,
			IntentStage:       string(cls.IntentStage),
			PrimaryPain:       cls.PrimaryPain,
			Urgency:           string(cls.Urgency),
			Confidence:        cls.Confidence,
			MomentumFlag:      cls.MomentumFlag,
			RecommendedAction: cls.RecommendedAction,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&reviewRecord{
			SignalID:  sig.ID,
			Status:    string(model.StatusPending),
			CreatedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

var urgencyRank = map[string]int{
	string(model.UrgencyCritical): 3,
	string(model.UrgencyHigh):     2,
	string(model.UrgencyMedium):   1,
	string(model.UrgencyLow):      0,
}

// List returns review items for a status filter ("all" disables the
// filter), ordered by urgency then confidence, capped at limit.
func (s *Store) List(status string, limit int) ([]model.ReviewItem, error) {
	var reviews []reviewRecord
	q := s.db.Model(&reviewRecord{})
	if status != "all" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&reviews).Error; err != nil {
		return nil, err
	}

	items := make([]model.ReviewItem, 0, len(reviews))
	for _, rv := range reviews {
		item, err := s.assemble(rv)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri := urgencyRank[string(items[i].Classification.Urgency)]
		rj := urgencyRank[string(items[j].Classification.Urgency)]
		if ri != rj {
			return ri > rj
		}
		return items[i].Classification.Confidence > items[j].Classification.Confidence
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) assemble(rv reviewRecord) (model.ReviewItem, error) {
	var sig signalRecord
	if err := s.db.First(&sig, "id = ?", rv.SignalID).Error; err != nil {
		return model.ReviewItem{}, err
	}
	var cls classificationRecord
	if err := s.db.First(&cls, "signal_id = ?", rv.SignalID).Error; err != nil {
		return model.ReviewItem{}, err
	}

	metrics := map[string]float64{}
	if sig.Metrics != "" {
		if err := json.Unmarshal([]byte(sig.Metrics), &metrics); err != nil {
			return model.ReviewItem{}, err
		}
	}

	return model.ReviewItem{
		Signal: model.Signal{
			ID:        sig.ID,
			Source:    sig.Source,
			Actor:     sig.Actor,
			Text:      sig.Text,
			Timestamp: sig.Timestamp,
			SourceID:  sig.SourceID,
			ReplyTo:   sig.ReplyTo,
			Metrics:   metrics,
		},
		Classification: model.Classification{
			SignalID:          cls.SignalID,
			IntentStage:       model.IntentStage(cls.IntentStage),
			PrimaryPain:       cls.PrimaryPain,
			Urgency:           model.Urgency(cls.Urgency),
			Confidence:        cls.Confidence,
			MomentumFlag:      cls.MomentumFlag,
			RecommendedAction: cls.RecommendedAction,
		},
		Status:     model.ReviewStatus(rv.Status),
		ReviewedAt: rv.ReviewedAt,
	}, nil
}

// UpdateStatus moves a pending item to approved or discarded. The
// transition is one-way; re-reviewing a settled item is an error.
func (s *Store) UpdateStatus(signalID string, status model.ReviewStatus) error {
	var rv reviewRecord
	if err := s.db.First(&rv, "signal_id = ?", signalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if rv.Status != string(model.StatusPending) {
		return ErrTerminal
	}

	now := time.Now().UTC()
	return s.db.Model(&reviewRecord{}).
		Where("signal_id = ?", signalID).
		Updates(map[string]any{"status": string(status), "reviewed_at": &now}).Error
}

// SaveFeedback upserts feedback for a signal.
func (s *Store) SaveFeedback(signalID, feedbackType string) error {
	rec := feedbackRecord{
		SignalID:     signalID,
		FeedbackType: feedbackType,
		Timestamp:    time.Now().UTC(),
	}
	return s.db.Save(&rec).Error
}

// SaveOutcome upserts the outcome log for a signal.
func (s *Store) SaveOutcome(req model.OutcomeRequest) error {
	rec := outcomeRecord{
		SignalID:     req.SignalID,
		Acted:        req.Acted,
		ResponseType: req.ResponseType,
		Notes:        req.Notes,
		Timestamp:    time.Now().UTC(),
	}
	return s.db.Save(&rec).Error
}

// Stats returns the aggregate counters.
func (s *Store) Stats() (*model.Stats, error) {
	stats := &model.Stats{}

	counts := []struct {
		status string
		target *int
	}{
		{string(model.StatusPending), &stats.Pending},
		{string(model.StatusApproved), &stats.Approved},
		{string(model.StatusDiscarded), &stats.Discarded},
	}
	for _, c := range counts {
		var n int64
		if err := s.db.Model(&reviewRecord{}).Where("status = ?", c.status).Count(&n).Error; err != nil {
			return nil, err
		}
		*c.target = int(n)
	}
	stats.Total = stats.Pending + stats.Approved + stats.Discarded

	var n int64
	if err := s.db.Model(&outcomeRecord{}).Count(&n).Error; err != nil {
		return nil, err
	}
	stats.OutcomesLogged = int(n)

	if err := s.db.Model(&classificationRecord{}).Where("momentum_flag = ?", true).Count(&n).Error; err != nil {
		return nil, err
	}
	stats.MomentumFlags = int(n)

	return stats, nil
}

// RecentItems returns review items whose signals fall inside the
// momentum window, regardless of status.
func (s *Store) RecentItems(window time.Duration) ([]model.ReviewItem, error) {
	cutoff := time.Now().UTC().Add(-window)

	var sigs []signalRecord
	if err := s.db.Where("timestamp >= ?", cutoff).Find(&sigs).Error; err != nil {
		return nil, err
	}

	items := make([]model.ReviewItem, 0, len(sigs))
	for _, sig := range sigs {
		var rv reviewRecord
		if err := s.db.First(&rv, "signal_id = ?", sig.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		item, err := s.assemble(rv)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SetMomentumFlags marks the given signal IDs as part of a momentum
// pattern and clears the flag everywhere else.
func (s *Store) SetMomentumFlags(signalIDs []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&classificationRecord{}).Where("1 = 1").
			Update("momentum_flag", false).Error; err != nil {
			return err
		}
		if len(signalIDs) == 0 {
			return nil
		}
		return tx.Model(&classificationRecord{}).
			Where("signal_id IN ?", signalIDs).
			Update("momentum_flag", true).Error
	})
}
