// Package multioutput trains one independent forest per category over a
// shared feature matrix.
package multioutput

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/triage/internal/engine/forest"
	"github.com/crimson-sun/triage/internal/model"
)

// Classifier owns one forest per category. Nothing is shared between the
// per-category estimators except read-only access to the feature rows.
type Classifier struct {
	opts       forest.Options
	workers    int
	estimators []*forest.Forest
}

// New creates an unfitted Classifier. Each category's forest uses opts
// with a seed derived from opts.Seed and the category index. workers bounds
// concurrent per-category fits; values below 1 mean sequential.
func New(opts forest.Options, workers int) *Classifier {
	if workers < 1 {
		workers = 1
	}
	return &Classifier{opts: opts, workers: workers}
}

// Restore rebuilds a fitted Classifier from per-category forest states.
func Restore(states []forest.State) (*Classifier, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("multioutput: no estimators")
	}
	c := &Classifier{workers: 1, estimators: make([]*forest.Forest, len(states))}
	for j, s := range states {
		f, err := forest.Restore(s)
		if err != nil {
			return nil, fmt.Errorf("multioutput: estimator %d: %w", j, err)
		}
		c.estimators[j] = f
	}
	return c, nil
}

// States returns the persisted form of every per-category forest.
func (c *Classifier) States() []forest.State {
	out := make([]forest.State, len(c.estimators))
	for j, f := range c.estimators {
		out[j] = f.State()
	}
	return out
}

// NumOutputs returns the number of fitted categories.
func (c *Classifier) NumOutputs() int {
	return len(c.estimators)
}

// Estimator returns the forest fitted for category j.
func (c *Classifier) Estimator(j int) *forest.Forest {
	return c.estimators[j]
}

// Fit trains one forest per label column. A failing category is reported
// with its index; the first failure cancels the remaining fits.
func (c *Classifier) Fit(ctx context.Context, x *model.Matrix, labels [][]uint8) error {
	if x.NumRows() != len(labels) {
		return fmt.Errorf("%w: multioutput: %d rows but %d label rows", model.ErrFit, x.NumRows(), len(labels))
	}
	if len(labels) == 0 || len(labels[0]) == 0 {
		return fmt.Errorf("%w: multioutput: empty label matrix", model.ErrFit)
	}
	outputs := len(labels[0])
	for i, row := range labels {
		if len(row) != outputs {
			return fmt.Errorf("%w: multioutput: row %d has %d labels, want %d", model.ErrFit, i, len(row), outputs)
		}
	}

	estimators := make([]*forest.Forest, outputs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for j := 0; j < outputs; j++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := c.opts
			opts.Seed = forest.DeriveSeed(c.opts.Seed, j)
			f, err := forest.New(opts)
			if err != nil {
				return fmt.Errorf("%w: multioutput: category %d: %v", model.ErrFit, j, err)
			}
			if err := f.Fit(x, model.Column(labels, j)); err != nil {
				return fmt.Errorf("multioutput: category %d: %w", j, err)
			}
			estimators[j] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	c.estimators = estimators
	return nil
}

// PredictProba returns, per row, the positive-class probability of every
// category.
func (c *Classifier) PredictProba(x *model.Matrix) ([][]float64, error) {
	if len(c.estimators) == 0 {
		return nil, fmt.Errorf("multioutput: not fitted")
	}
	out := make([][]float64, x.NumRows())
	for i := range out {
		out[i] = make([]float64, len(c.estimators))
	}
	var errs []error
	for j, f := range c.estimators {
		col, err := f.PredictProba(x)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %d: %w", j, err))
			continue
		}
		for i, p := range col {
			out[i][j] = p
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("multioutput: %w", errors.Join(errs...))
	}
	return out, nil
}

// Predict assembles each category's predictions column-wise into a label
// matrix with one row per input row.
func (c *Classifier) Predict(x *model.Matrix) ([][]uint8, error) {
	if len(c.estimators) == 0 {
		return nil, fmt.Errorf("multioutput: not fitted")
	}
	out := make([][]uint8, x.NumRows())
	for i := range out {
		out[i] = make([]uint8, len(c.estimators))
	}
	for j, f := range c.estimators {
		col, err := f.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("multioutput: category %d: %w", j, err)
		}
		for i, v := range col {
			out[i][j] = v
		}
	}
	return out, nil
}
