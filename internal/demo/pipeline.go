package demo

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/signalry/triage-console/internal/model"
	"github.com/signalry/triage-console/pkg/logger"
)

const classifyConcurrency = 4

// Pipeline is the core loop: ingest, filter, classify, detect
// momentum, queue for review.
type Pipeline struct {
	connector  *Connector
	classifier Classifier
	store      *Store
	logger     *logger.Logger
	window     time.Duration
}

// NewPipeline wires the demo pipeline. A nil classifier gets the
// heuristic one.
func NewPipeline(connector *Connector, classifier Classifier, store *Store, log *logger.Logger) *Pipeline {
	if classifier == nil {
		classifier = HeuristicClassifier{}
	}
	if log == nil {
		log = logger.Global()
	}
	return &Pipeline{
		connector:  connector,
		classifier: classifier,
		store:      store,
		logger:     log,
		window:     defaultWindow,
	}
}

// Run executes one full pipeline pass for a persona and returns the
// stage counts.
func (p *Pipeline) Run(ctx context.Context, persona string, keywords []string) (*model.RunPipelineResponse, error) {
	raw := p.connector.Fetch(keywords, persona, 0)
	filtered := FilterSignals(raw)

	classifications := make([]model.Classification, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(classifyConcurrency)
	for i, sig := range filtered {
		i, sig := i, sig
		g.Go(func() error {
			cls, err := p.classifier.Classify(gctx, sig)
			if err != nil {
				return err
			}
			classifications[i] = cls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	classifications = DetectMomentum(filtered, classifications, p.window)

	queued, dupes := 0, 0
	for i, sig := range filtered {
		added, err := p.store.Add(sig, classifications[i])
		if err != nil {
			return nil, err
		}
		if added {
			queued++
		} else {
			dupes++
		}
	}

	// Re-run momentum over everything in the window so flags reflect
	// the stored corpus, not just this batch.
	if err := p.refreshMomentum(); err != nil {
		return nil, err
	}

	p.logger.Info("pipeline run complete",
		zap.String("persona", persona),
		zap.Int("ingested", len(raw)),
		zap.Int("filtered", len(filtered)),
		zap.Int("queued", queued),
		zap.Int("duplicates", dupes))

	return &model.RunPipelineResponse{
		Ingested:   len(raw),
		Filtered:   len(filtered),
		Classified: len(classifications),
		Queued:     queued,
		Duplicates: dupes,
	}, nil
}

// Seed resets the store and runs the pipeline for one persona.
func (p *Pipeline) Seed(ctx context.Context, persona string) (*model.RunPipelineResponse, error) {
	if err := p.store.Reset(); err != nil {
		return nil, err
	}
	return p.Run(ctx, persona, nil)
}

func (p *Pipeline) refreshMomentum() error {
	items, err := p.store.RecentItems(p.window)
	if err != nil {
		return err
	}

	signals := make([]model.Signal, len(items))
	classifications := make([]model.Classification, len(items))
	for i, item := range items {
		signals[i] = item.Signal
		cls := item.Classification
		cls.MomentumFlag = false
		classifications[i] = cls
	}

	classifications = DetectMomentum(signals, classifications, p.window)

	var flagged []string
	for _, cls := range classifications {
		if cls.MomentumFlag {
			flagged = append(flagged, cls.SignalID)
		}
	}
	return p.store.SetMomentumFlags(flagged)
}
