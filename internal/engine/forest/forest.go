// Package forest implements a bootstrap-aggregated ensemble of CART trees
// for one binary label.
package forest

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/crimson-sun/triage/internal/model"
)

// pcgStream is the fixed PCG increment; seeds vary the state only.
const pcgStream = 0x9e3779b97f4a7c15

// Options configures a Forest.
type Options struct {
	NEstimators     int    // number of trees, >= 1
	MinSamplesSplit int    // minimum distinct rows in a node to split it, >= 2
	MaxFeatures     int    // candidate features per split; 0 means floor(sqrt(cols))
	Seed            uint64 // drives bootstrap and feature sampling
}

// DefaultOptions returns 10 trees with a split minimum of 2.
func DefaultOptions() Options {
	return Options{NEstimators: 10, MinSamplesSplit: 2}
}

func (o Options) validate() error {
	if o.NEstimators < 1 {
		return fmt.Errorf("forest: n_estimators %d < 1", o.NEstimators)
	}
	if o.MinSamplesSplit < 2 {
		return fmt.Errorf("forest: min_samples_split %d < 2", o.MinSamplesSplit)
	}
	if o.MaxFeatures < 0 {
		return fmt.Errorf("forest: negative max_features %d", o.MaxFeatures)
	}
	return nil
}

// State is the persisted form of a fitted Forest. A forest fitted on a
// single class has no trees and always returns Constant.
type State struct {
	Cols     int     `json:"cols"`
	Trees    []Tree  `json:"trees,omitempty"`
	Constant float64 `json:"constant"`
}

// Forest is a random forest binary classifier.
type Forest struct {
	opts   Options
	state  State
	fitted bool
}

// New creates an unfitted Forest.
func New(opts Options) (*Forest, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Forest{opts: opts}, nil
}

// Restore rebuilds a fitted Forest from its persisted state.
func Restore(s State) (*Forest, error) {
	if len(s.Trees) == 0 && s.Constant != 0 && s.Constant != 1 {
		return nil, fmt.Errorf("forest: constant %v is not a class", s.Constant)
	}
	for i := range s.Trees {
		if err := s.Trees[i].validate(s.Cols); err != nil {
			return nil, fmt.Errorf("forest: tree %d: %w", i, err)
		}
	}
	return &Forest{state: s, fitted: true}, nil
}

// State returns the fitted state for persistence.
func (f *Forest) State() State {
	return f.state
}

// Constant reports whether the forest was fitted on a single class.
func (f *Forest) Constant() bool {
	return f.fitted && len(f.state.Trees) == 0
}

// Fit grows the ensemble on rows x with binary labels y.
func (f *Forest) Fit(x *model.Matrix, y []uint8) error {
	n := x.NumRows()
	if n == 0 {
		return fmt.Errorf("%w: forest: no training rows", model.ErrFit)
	}
	if len(y) != n {
		return fmt.Errorf("%w: forest: %d rows but %d labels", model.ErrFit, n, len(y))
	}

	pos := 0
	for i, v := range y {
		if v > 1 {
			return fmt.Errorf("%w: forest: label %d at row %d is not binary", model.ErrFit, v, i)
		}
		pos += int(v)
	}

	f.state = State{Cols: x.Cols}
	f.fitted = true
	if pos == 0 || pos == n {
		if pos == n {
			f.state.Constant = 1
		}
		return nil
	}

	maxFeatures := f.opts.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Sqrt(float64(x.Cols)))
	}
	maxFeatures = max(1, min(maxFeatures, x.Cols))

	rng := rand.New(rand.NewPCG(f.opts.Seed, pcgStream))
	f.state.Trees = make([]Tree, f.opts.NEstimators)
	for t := range f.state.Trees {
		trng := rand.New(rand.NewPCG(rng.Uint64(), pcgStream))

		w := make([]float64, n)
		for i := 0; i < n; i++ {
			w[trng.IntN(n)]++
		}
		rows := make([]int, 0, n)
		for i, wi := range w {
			if wi > 0 {
				rows = append(rows, i)
			}
		}

		b := newBuilder(x, y, w, f.opts.MinSamplesSplit, maxFeatures, trng)
		b.grow(rows)
		f.state.Trees[t] = Tree{Nodes: b.nodes}
	}
	return nil
}

// PredictProba returns the mean positive-class probability over all trees
// for every row.
func (f *Forest) PredictProba(x *model.Matrix) ([]float64, error) {
	if !f.fitted {
		return nil, fmt.Errorf("forest: not fitted")
	}
	if x.Cols != f.state.Cols {
		return nil, fmt.Errorf("forest: fitted on %d columns, got %d", f.state.Cols, x.Cols)
	}
	out := make([]float64, x.NumRows())
	if len(f.state.Trees) == 0 {
		for i := range out {
			out[i] = f.state.Constant
		}
		return out, nil
	}
	inv := 1 / float64(len(f.state.Trees))
	for i, row := range x.Rows {
		var sum float64
		for t := range f.state.Trees {
			sum += f.state.Trees[t].Proba(row)
		}
		out[i] = sum * inv
	}
	return out, nil
}

// Predict returns class 1 where the mean probability exceeds one half.
func (f *Forest) Predict(x *model.Matrix) ([]uint8, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(proba))
	for i, p := range proba {
		if p > 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// DeriveSeed mixes a base seed with an index (splitmix64) so that sibling
// estimators get independent, reproducible streams.
func DeriveSeed(base uint64, i int) uint64 {
	z := base + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
