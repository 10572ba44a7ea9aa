package engine

import (
	"fmt"

	"github.com/crimson-sun/triage/internal/engine/forest"
	"github.com/crimson-sun/triage/internal/engine/vectorizer"
)

// ModelName identifies the estimator in logs: count and tf-idf features
// into one random forest per category.
const ModelName = "tfidf_multioutput_forest"

// Params is one point of the hyperparameter grid: every tunable choice of
// the extractor and the per-category ensembles.
type Params struct {
	NGramRange      [2]int  `json:"ngram_range"`
	MaxDF           float64 `json:"max_df"`
	MaxFeatures     int     `json:"max_features"` // 0 = unlimited
	UseIDF          bool    `json:"use_idf"`
	NEstimators     int     `json:"n_estimators"`
	MinSamplesSplit int     `json:"min_samples_split"`
}

// DefaultParams returns unigrams, no pruning, idf on, 100 trees, split
// minimum 2.
func DefaultParams() Params {
	return Params{
		NGramRange:      [2]int{1, 1},
		MaxDF:           1.0,
		UseIDF:          true,
		NEstimators:     100,
		MinSamplesSplit: 2,
	}
}

// String renders the params compactly for logs and reports.
func (p Params) String() string {
	features := "none"
	if p.MaxFeatures > 0 {
		features = fmt.Sprint(p.MaxFeatures)
	}
	return fmt.Sprintf("ngram_range=(%d,%d) max_df=%g max_features=%s use_idf=%t n_estimators=%d min_samples_split=%d",
		p.NGramRange[0], p.NGramRange[1], p.MaxDF, features, p.UseIDF, p.NEstimators, p.MinSamplesSplit)
}

func (p Params) countOptions() vectorizer.CountOptions {
	return vectorizer.CountOptions{
		NGramMin:    p.NGramRange[0],
		NGramMax:    p.NGramRange[1],
		MaxDF:       p.MaxDF,
		MinDF:       1,
		MaxFeatures: p.MaxFeatures,
	}
}

func (p Params) forestOptions(seed uint64) forest.Options {
	return forest.Options{
		NEstimators:     p.NEstimators,
		MinSamplesSplit: p.MinSamplesSplit,
		Seed:            seed,
	}
}
