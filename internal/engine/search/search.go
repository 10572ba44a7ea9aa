// Package search selects pipeline hyperparameters by k-fold
// cross-validation over a Grid and refits the winner.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/triage/internal/engine"
	"github.com/crimson-sun/triage/internal/engine/normalizer"
	"github.com/crimson-sun/triage/internal/logging"
	"github.com/crimson-sun/triage/internal/model"
)

// DefaultFolds is the number of cross-validation folds when unset.
const DefaultFolds = 5

// Searcher runs a grid search. The zero value searches the default grid
// with five contiguous folds, mean label accuracy and one worker.
type Searcher struct {
	Grid       *Grid // nil selects DefaultGrid
	Folds      int
	Shuffle    bool
	Seed       uint64
	Scorer     Scorer
	Workers    int
	Normalizer *normalizer.Normalizer
	Logger     *slog.Logger
}

// CandidateResult is the cross-validation outcome of one candidate.
type CandidateResult struct {
	Index      int           `json:"index"`
	Params     engine.Params `json:"params"`
	FoldScores []float64     `json:"fold_scores"`
	Mean       float64       `json:"mean"`
	Err        error         `json:"-"`
}

// Failed reports whether any fold of the candidate failed to fit.
func (c CandidateResult) Failed() bool { return c.Err != nil }

// Result is the outcome of a search: the refitted winner plus every
// candidate's scores in enumeration order.
type Result struct {
	Pipeline   *engine.Pipeline
	Best       engine.Params
	BestIndex  int
	BestScore  float64
	Candidates []CandidateResult
}

// job is one (candidate, fold) fit. Each job owns exactly one slot.
type job struct {
	candidate int
	fold      int
}

// Search cross-validates every candidate on the training data and refits
// the best one on all of it.
func (s *Searcher) Search(ctx context.Context, docs []string, labels [][]uint8, categories []string) (*Result, error) {
	start := time.Now()
	log := logging.OrDefault(s.Logger)

	grid := DefaultGrid()
	if s.Grid != nil {
		grid = *s.Grid
	}
	candidates := grid.Candidates()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: search: grid has no candidates", model.ErrConfigurationExhausted)
	}
	if len(docs) != len(labels) {
		return nil, fmt.Errorf("%w: search: %d documents but %d label rows", model.ErrDataAccess, len(docs), len(labels))
	}

	k := s.Folds
	if k == 0 {
		k = DefaultFolds
	}
	folds, err := KFold(len(docs), k, s.Shuffle, s.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInsufficientData, err)
	}
	if err := checkFolds(folds, labels); err != nil {
		return nil, err
	}

	scorer := s.Scorer
	if scorer == nil {
		scorer = MeanLabelAccuracy
	}
	workers := max(1, s.Workers)
	norm := s.Normalizer
	if norm == nil {
		if norm, err = normalizer.New(normalizer.Options{}); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
	}

	// Normalization is stateless, so the corpus is tokenized once and the
	// fold frames share those token slices read-only.
	all := engine.Frame{Tokens: norm.NormalizeAll(docs)}
	trainFrames := make([]engine.Frame, len(folds))
	testFrames := make([]engine.Frame, len(folds))
	trainLabels := make([][][]uint8, len(folds))
	testLabels := make([][][]uint8, len(folds))
	for f, fold := range folds {
		trainFrames[f] = all.Subset(fold.Train)
		testFrames[f] = all.Subset(fold.Test)
		trainLabels[f] = pick(labels, fold.Train)
		testLabels[f] = pick(labels, fold.Test)
	}

	log.Info("search started",
		logging.SamplesKey, len(docs),
		logging.TargetsKey, len(categories),
		"candidates", len(candidates),
		"folds", len(folds),
		"workers", workers,
	)

	scores := make([][]float64, len(candidates))
	failures := make([][]error, len(candidates))
	for c := range candidates {
		scores[c] = make([]float64, len(folds))
		failures[c] = make([]error, len(folds))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := range candidates {
		for f := range folds {
			j := job{candidate: c, fold: f}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				score, err := s.runFold(gctx, norm, candidates[j.candidate], categories,
					trainFrames[j.fold], trainLabels[j.fold], testFrames[j.fold], testLabels[j.fold], scorer)
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					failures[j.candidate][j.fold] = err
					log.Debug("fold failed",
						logging.CandidateKey, j.candidate,
						logging.FoldKey, j.fold,
						logging.ErrorKey, err,
					)
					return nil
				}
				scores[j.candidate][j.fold] = score
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]CandidateResult, len(candidates))
	for c, p := range candidates {
		results[c] = reduce(c, p, scores[c], failures[c])
		log.Debug("candidate scored",
			logging.CandidateKey, c,
			logging.ParamsKey, p.String(),
			logging.ScoreKey, results[c].Mean,
		)
	}

	best := selectBest(results)
	if best < 0 {
		return nil, fmt.Errorf("%w: search: all %d candidates failed: %v", model.ErrFit, len(results), results[0].Err)
	}

	pl, err := engine.New(norm, candidates[best], categories, engine.Options{
		Seed:    s.Seed,
		Workers: workers,
		Logger:  s.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search: refit: %v", model.ErrFit, err)
	}
	if err := pl.Fit(ctx, all, labels); err != nil {
		return nil, fmt.Errorf("search: refit: %w", err)
	}

	log.Info("search complete",
		logging.CandidateKey, best,
		logging.ParamsKey, candidates[best].String(),
		logging.ScoreKey, results[best].Mean,
		logging.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		Pipeline:   pl,
		Best:       candidates[best],
		BestIndex:  best,
		BestScore:  results[best].Mean,
		Candidates: results,
	}, nil
}

// runFold fits one candidate on a fold's training rows and scores it on
// the held-out rows.
func (s *Searcher) runFold(ctx context.Context, norm *normalizer.Normalizer, p engine.Params, categories []string,
	train engine.Frame, trainY [][]uint8, test engine.Frame, testY [][]uint8, scorer Scorer) (float64, error) {
	pl, err := engine.New(norm, p, categories, engine.Options{
		Seed:    s.Seed,
		Workers: 1,
		Logger:  s.Logger,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrFit, err)
	}
	if err := pl.Fit(ctx, train, trainY); err != nil {
		return 0, err
	}
	pred, err := pl.PredictFrame(test)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrFit, err)
	}
	return scorer(testY, pred), nil
}

// reduce averages a candidate's fold scores. Any failed fold marks the
// whole candidate as failed with score -Inf.
func reduce(index int, p engine.Params, scores []float64, failures []error) CandidateResult {
	r := CandidateResult{Index: index, Params: p, FoldScores: scores}
	if err := errors.Join(failures...); err != nil {
		r.Err = err
		r.Mean = math.Inf(-1)
		return r
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	r.Mean = sum / float64(len(scores))
	return r
}

// selectBest returns the index of the highest mean score, the lowest index
// among ties, or -1 if every candidate failed.
func selectBest(results []CandidateResult) int {
	best := -1
	for i, r := range results {
		if r.Failed() || math.IsNaN(r.Mean) || math.IsInf(r.Mean, -1) {
			continue
		}
		if best < 0 || r.Mean > results[best].Mean {
			best = i
		}
	}
	return best
}

// checkFolds rejects splits where more than half of the folds train on
// rows that carry no positive label in any category.
func checkFolds(folds []Fold, labels [][]uint8) error {
	empty := 0
	for _, f := range folds {
		if len(f.Test) == 0 || !anyPositive(labels, f.Train) {
			empty++
		}
	}
	if empty*2 > len(folds) {
		return fmt.Errorf("%w: search: %d of %d folds train without any positive label",
			model.ErrInsufficientData, empty, len(folds))
	}
	return nil
}

func anyPositive(labels [][]uint8, rows []int) bool {
	for _, i := range rows {
		for _, v := range labels[i] {
			if v == 1 {
				return true
			}
		}
	}
	return false
}

func pick(labels [][]uint8, rows []int) [][]uint8 {
	out := make([][]uint8, len(rows))
	for i, r := range rows {
		out[i] = labels[r]
	}
	return out
}
