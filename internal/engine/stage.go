package engine

import (
	"fmt"

	"github.com/crimson-sun/triage/internal/engine/normalizer"
	"github.com/crimson-sun/triage/internal/engine/vectorizer"
	"github.com/crimson-sun/triage/internal/model"
)

// Frame carries a batch of documents through the stages. Each stage reads
// the representation produced by the one before it.
type Frame struct {
	Texts  []string
	Tokens [][]string
	X      *model.Matrix
}

// Len returns the number of documents in the frame.
func (f Frame) Len() int {
	switch {
	case f.X != nil:
		return f.X.NumRows()
	case f.Tokens != nil:
		return len(f.Tokens)
	default:
		return len(f.Texts)
	}
}

// Subset returns the rows at idx. Only the populated representations are
// sliced; the underlying rows are shared.
func (f Frame) Subset(idx []int) Frame {
	var out Frame
	if f.Texts != nil {
		out.Texts = make([]string, len(idx))
		for i, j := range idx {
			out.Texts[i] = f.Texts[j]
		}
	}
	if f.Tokens != nil {
		out.Tokens = make([][]string, len(idx))
		for i, j := range idx {
			out.Tokens[i] = f.Tokens[j]
		}
	}
	if f.X != nil {
		out.X = &model.Matrix{Cols: f.X.Cols, Rows: make([]model.SparseVector, len(idx))}
		for i, j := range idx {
			out.X.Rows[i] = f.X.Rows[j]
		}
	}
	return out
}

// Stage is one fit/transform step of a Pipeline. Fit learns from training
// frames only; Transform applies frozen state and never changes it.
type Stage interface {
	Name() string
	Fit(in Frame) error
	Transform(in Frame) (Frame, error)
}

// Stage positions within every Pipeline.
const (
	stageNormalize = iota
	stageCount
	stageWeight
	numStages
)

// normalizeStage tokenizes texts. It has nothing to learn.
type normalizeStage struct {
	norm *normalizer.Normalizer
}

func (s *normalizeStage) Name() string { return "normalize" }

func (s *normalizeStage) Fit(Frame) error { return nil }

// Transform tokenizes Texts unless the frame already carries tokens, which
// lets callers normalize a corpus once and reuse it across many fits.
func (s *normalizeStage) Transform(in Frame) (Frame, error) {
	if in.Tokens != nil {
		return in, nil
	}
	in.Tokens = s.norm.NormalizeAll(in.Texts)
	return in, nil
}

// countStage maps tokens to term counts over the fitted vocabulary.
type countStage struct {
	counter *vectorizer.Counter
}

func (s *countStage) Name() string { return "count" }

func (s *countStage) Fit(in Frame) error {
	if in.Tokens == nil {
		return fmt.Errorf("count: frame has no tokens")
	}
	return s.counter.Fit(in.Tokens)
}

func (s *countStage) Transform(in Frame) (Frame, error) {
	if in.Tokens == nil {
		return Frame{}, fmt.Errorf("count: frame has no tokens")
	}
	x, err := s.counter.Transform(in.Tokens)
	if err != nil {
		return Frame{}, err
	}
	in.X = x
	return in, nil
}

// weightStage applies tf-idf weighting and row normalisation.
type weightStage struct {
	tfidf *vectorizer.TFIDF
}

func (s *weightStage) Name() string { return "weight" }

func (s *weightStage) Fit(in Frame) error {
	if in.X == nil {
		return fmt.Errorf("weight: frame has no counts")
	}
	return s.tfidf.Fit(in.X)
}

func (s *weightStage) Transform(in Frame) (Frame, error) {
	if in.X == nil {
		return Frame{}, fmt.Errorf("weight: frame has no counts")
	}
	x, err := s.tfidf.Transform(in.X)
	if err != nil {
		return Frame{}, err
	}
	in.X = x
	return in, nil
}
