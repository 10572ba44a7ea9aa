// Package trainer runs one training job end to end: load the corpus,
// split it, search hyperparameters, evaluate the winner on the held-out
// rows and persist it.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/triage/internal/artifact"
	"github.com/crimson-sun/triage/internal/engine"
	"github.com/crimson-sun/triage/internal/engine/evaluate"
	"github.com/crimson-sun/triage/internal/engine/search"
	"github.com/crimson-sun/triage/internal/logging"
	"github.com/crimson-sun/triage/internal/model"
	"github.com/crimson-sun/triage/internal/output"
	"github.com/crimson-sun/triage/internal/source"
)

// Options configures a Trainer. Source.Path is replaced by the data path
// passed to Run.
type Options struct {
	RunID    string
	Source   source.Config
	TestSize float64
	Seed     uint64
	Search   search.Searcher
	Output   output.Output // receives one report per category; may be nil
	Logger   *slog.Logger
}

// Result is everything a run produced. It is returned even when only the
// final save failed, so the caller can retry with Trainer.Save.
type Result struct {
	RunID      string
	Categories []string
	TrainSize  int
	TestSize   int
	Search     *search.Result
	Pipeline   *engine.Pipeline
	Reports    []model.Report
	Artifact   artifact.Meta
}

// Trainer wires the source, search, evaluator and artifact store.
type Trainer struct {
	opts Options
	log  *slog.Logger
}

// New creates a Trainer. A missing run id is generated.
func New(opts Options) *Trainer {
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	if opts.TestSize == 0 {
		opts.TestSize = DefaultTestSize
	}
	if opts.Search.Seed == 0 {
		opts.Search.Seed = opts.Seed
	}
	log := logging.OrDefault(opts.Logger).With(logging.RunIDKey, opts.RunID)
	opts.Search.Logger = log
	return &Trainer{opts: opts, log: log}
}

// RunID returns the identifier stamped on logs, reports and the artifact.
func (t *Trainer) RunID() string { return t.opts.RunID }

// Run trains on the corpus at dataPath and writes the model to modelPath.
// If only the save fails, the returned Result is non-nil and the error
// wraps model.ErrIO.
func (t *Trainer) Run(ctx context.Context, dataPath, modelPath string) (*Result, error) {
	start := time.Now()

	cfg := t.opts.Source
	cfg.Path = dataPath
	t.log.Info("loading data", "path", dataPath)
	ds, err := source.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("trainer: load: %w", err)
	}

	trainIdx, testIdx, err := Split(ds.Len(), t.opts.TestSize, t.opts.Seed)
	if err != nil {
		return nil, err
	}
	train, test := ds.Subset(trainIdx), ds.Subset(testIdx)
	t.log.Info("data split",
		logging.SamplesKey, ds.Len(),
		logging.TargetsKey, len(ds.Categories),
		"train", train.Len(),
		"test", test.Len(),
	)

	t.log.Info("building model")
	searcher := t.opts.Search
	sr, err := searcher.Search(ctx, train.Messages, train.Labels, ds.Categories)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	t.log.Info("evaluating model", logging.ParamsKey, sr.Best.String())
	reports, err := evaluate.Evaluate(ctx, sr.Pipeline, test.Messages, test.Labels, ds.Categories)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	if t.opts.Output != nil {
		if err := evaluate.Emit(ctx, t.opts.Output, reports); err != nil {
			t.log.Warn("report output failed", logging.ErrorKey, err)
		}
	}

	res := &Result{
		RunID:      t.opts.RunID,
		Categories: ds.Categories,
		TrainSize:  train.Len(),
		TestSize:   test.Len(),
		Search:     sr,
		Pipeline:   sr.Pipeline,
		Reports:    reports,
	}

	t.log.Info("saving model", "path", modelPath)
	if err := t.Save(ctx, res, modelPath); err != nil {
		return res, err
	}

	t.log.Info("trained model saved",
		logging.ScoreKey, sr.BestScore,
		logging.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Save persists a run's pipeline. It can be called again after a failed
// save without retraining.
func (t *Trainer) Save(ctx context.Context, res *Result, modelPath string) error {
	if res == nil || res.Pipeline == nil {
		return fmt.Errorf("%w: trainer: nothing to save", model.ErrIO)
	}
	meta, err := artifact.Save(ctx, res.Pipeline, modelPath, artifact.Meta{RunID: res.RunID})
	if err != nil {
		t.log.Error("saving model failed", logging.ErrorKey, err)
		return fmt.Errorf("trainer: %w", err)
	}
	res.Artifact = meta
	return nil
}
