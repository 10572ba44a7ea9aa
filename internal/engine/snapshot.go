package engine

import (
	"fmt"

	"github.com/crimson-sun/triage/internal/engine/forest"
	"github.com/crimson-sun/triage/internal/engine/multioutput"
	"github.com/crimson-sun/triage/internal/engine/normalizer"
	"github.com/crimson-sun/triage/internal/engine/vectorizer"
)

// Snapshot is everything needed to rebuild a fitted Pipeline: the chosen
// hyperparameters, the frozen vocabulary and weights, and one forest per
// category.
type Snapshot struct {
	Params     Params             `json:"params"`
	Seed       uint64             `json:"seed"`
	Categories []string           `json:"categories"`
	Normalizer normalizer.Options `json:"normalizer"`
	Vocabulary []string           `json:"vocabulary"`
	IDF        []float64          `json:"idf,omitempty"`
	Forests    []forest.State     `json:"forests"`
}

// Snapshot captures the fitted state.
func (p *Pipeline) Snapshot() (Snapshot, error) {
	if !p.fitted {
		return Snapshot{}, fmt.Errorf("engine: pipeline is not fitted")
	}
	norm := p.stages[stageNormalize].(*normalizeStage).norm
	counter := p.stages[stageCount].(*countStage).counter
	tfidf := p.stages[stageWeight].(*weightStage).tfidf
	return Snapshot{
		Params:     p.params,
		Seed:       p.seed,
		Categories: p.Categories(),
		Normalizer: norm.Options(),
		Vocabulary: counter.Vocabulary(),
		IDF:        tfidf.IDF(),
		Forests:    p.classifier.States(),
	}, nil
}

// Restore rebuilds a fitted Pipeline from a Snapshot.
func Restore(s Snapshot, opts Options) (*Pipeline, error) {
	if len(s.Categories) == 0 {
		return nil, fmt.Errorf("engine: snapshot has no categories")
	}
	if len(s.Forests) != len(s.Categories) {
		return nil, fmt.Errorf("engine: snapshot has %d forests for %d categories", len(s.Forests), len(s.Categories))
	}
	if s.Params.UseIDF && len(s.IDF) != len(s.Vocabulary) {
		return nil, fmt.Errorf("engine: snapshot has %d idf weights for %d terms", len(s.IDF), len(s.Vocabulary))
	}
	for j, f := range s.Forests {
		if f.Cols != len(s.Vocabulary) {
			return nil, fmt.Errorf("engine: forest %d expects %d features, vocabulary has %d", j, f.Cols, len(s.Vocabulary))
		}
	}

	norm, err := normalizer.New(s.Normalizer)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	counter, err := vectorizer.RestoreCounter(s.Params.countOptions(), s.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	tfidf, err := vectorizer.RestoreTFIDF(s.Params.UseIDF, s.IDF)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	cls, err := multioutput.Restore(s.Forests)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	p, err := New(norm, s.Params, s.Categories, Options{Seed: s.Seed, Workers: opts.Workers, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	p.stages[stageCount] = &countStage{counter: counter}
	p.stages[stageWeight] = &weightStage{tfidf: tfidf}
	p.classifier = cls
	p.fitted = true
	return p, nil
}
