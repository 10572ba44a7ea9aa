// Package engine composes the normalizer, feature extractor and
// multi-output classifier into a single fitted Pipeline.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimson-sun/triage/internal/engine/multioutput"
	"github.com/crimson-sun/triage/internal/engine/normalizer"
	"github.com/crimson-sun/triage/internal/engine/vectorizer"
	"github.com/crimson-sun/triage/internal/logging"
	"github.com/crimson-sun/triage/internal/model"
)

// Options holds the non-tunable settings of a Pipeline.
type Options struct {
	Seed    uint64
	Workers int // concurrent per-category fits
	Logger  *slog.Logger
}

// Pipeline is an ordered list of stages followed by the multi-output
// classifier. It is immutable once fitted; Predict is safe for concurrent
// use.
type Pipeline struct {
	params     Params
	seed       uint64
	categories []string
	stages     []Stage
	classifier *multioutput.Classifier
	fitted     bool
	logger     *slog.Logger
}

// New builds an unfitted Pipeline for the given categories.
func New(norm *normalizer.Normalizer, params Params, categories []string, opts Options) (*Pipeline, error) {
	if norm == nil {
		return nil, fmt.Errorf("engine: nil normalizer")
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("engine: no categories")
	}
	counter, err := vectorizer.NewCounter(params.countOptions())
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	stages := make([]Stage, numStages)
	stages[stageNormalize] = &normalizeStage{norm: norm}
	stages[stageCount] = &countStage{counter: counter}
	stages[stageWeight] = &weightStage{tfidf: vectorizer.NewTFIDF(params.UseIDF)}

	return &Pipeline{
		params:     params,
		seed:       opts.Seed,
		categories: append([]string(nil), categories...),
		stages:     stages,
		classifier: multioutput.New(params.forestOptions(opts.Seed), opts.Workers),
		logger:     logging.OrDefault(opts.Logger),
	}, nil
}

// Params returns the hyperparameters the Pipeline was built with.
func (p *Pipeline) Params() Params { return p.params }

// Seed returns the seed driving the ensembles' sampling.
func (p *Pipeline) Seed() uint64 { return p.seed }

// Categories returns the category names in output column order.
func (p *Pipeline) Categories() []string {
	return append([]string(nil), p.categories...)
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Fitted reports whether Fit has completed.
func (p *Pipeline) Fitted() bool { return p.fitted }

// NumFeatures returns the fitted vocabulary size.
func (p *Pipeline) NumFeatures() int {
	return p.stages[stageCount].(*countStage).counter.Size()
}

// Fit fits every stage in order on the training frame, then the
// classifier on the resulting features.
func (p *Pipeline) Fit(ctx context.Context, in Frame, labels [][]uint8) error {
	start := time.Now()
	if in.Len() != len(labels) {
		return fmt.Errorf("%w: engine: %d documents but %d label rows", model.ErrFit, in.Len(), len(labels))
	}
	for _, row := range labels {
		if len(row) != len(p.categories) {
			return fmt.Errorf("%w: engine: label row has %d values, want %d", model.ErrFit, len(row), len(p.categories))
		}
	}

	frame := in
	for i, st := range p.stages {
		if err := st.Fit(frame); err != nil {
			return fmt.Errorf("engine: fit stage %d (%s): %w", i, st.Name(), err)
		}
		next, err := st.Transform(frame)
		if err != nil {
			return fmt.Errorf("engine: transform stage %d (%s): %w", i, st.Name(), err)
		}
		frame = next
	}

	if err := p.classifier.Fit(ctx, frame.X, labels); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	p.fitted = true

	p.logger.Debug("pipeline fitted",
		logging.ModelNameKey, ModelName,
		logging.OperationKey, "fit",
		logging.SamplesKey, frame.X.NumRows(),
		logging.FeaturesKey, frame.X.Cols,
		logging.TargetsKey, len(p.categories),
		logging.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform runs the fitted stages and returns the feature matrix.
func (p *Pipeline) Transform(in Frame) (*model.Matrix, error) {
	if !p.fitted {
		return nil, fmt.Errorf("engine: pipeline is not fitted")
	}
	frame := in
	for i, st := range p.stages {
		next, err := st.Transform(frame)
		if err != nil {
			return nil, fmt.Errorf("engine: transform stage %d (%s): %w", i, st.Name(), err)
		}
		frame = next
	}
	return frame.X, nil
}

// PredictFrame predicts the label matrix for a frame.
func (p *Pipeline) PredictFrame(in Frame) ([][]uint8, error) {
	x, err := p.Transform(in)
	if err != nil {
		return nil, err
	}
	out, err := p.classifier.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return out, nil
}

// Predict returns one binary label row per message.
func (p *Pipeline) Predict(messages []string) ([][]uint8, error) {
	return p.PredictFrame(Frame{Texts: messages})
}

// PredictProba returns, per message, the positive-class probability of
// every category.
func (p *Pipeline) PredictProba(messages []string) ([][]float64, error) {
	x, err := p.Transform(Frame{Texts: messages})
	if err != nil {
		return nil, err
	}
	out, err := p.classifier.PredictProba(x)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return out, nil
}
