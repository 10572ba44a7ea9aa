package search

import "github.com/crimson-sun/triage/internal/engine"

// Grid lists the options of each tunable axis. The candidate space is the
// Cartesian product of all six.
type Grid struct {
	NGramRanges     [][2]int  `yaml:"ngram_ranges"`
	MaxDF           []float64 `yaml:"max_df"`
	MaxFeatures     []int     `yaml:"max_features"` // 0 = unlimited
	UseIDF          []bool    `yaml:"use_idf"`
	NEstimators     []int     `yaml:"n_estimators"`
	MinSamplesSplit []int     `yaml:"min_samples_split"`
}

// DefaultGrid returns the 324-candidate grid used for the disaster corpus.
func DefaultGrid() Grid {
	return Grid{
		NGramRanges:     [][2]int{{1, 1}, {1, 2}},
		MaxDF:           []float64{0.5, 0.75, 1.0},
		MaxFeatures:     []int{0, 5000, 10000},
		UseIDF:          []bool{true, false},
		NEstimators:     []int{10, 20, 30},
		MinSamplesSplit: []int{5, 10, 15},
	}
}

// Size returns the number of candidates without enumerating them.
func (g Grid) Size() int {
	return len(g.NGramRanges) * len(g.MaxDF) * len(g.MaxFeatures) *
		len(g.UseIDF) * len(g.NEstimators) * len(g.MinSamplesSplit)
}

// Candidates enumerates the product in a fixed order: n-gram range varies
// slowest, min-samples-split fastest. An empty axis empties the product.
func (g Grid) Candidates() []engine.Params {
	out := make([]engine.Params, 0, g.Size())
	for _, ng := range g.NGramRanges {
		for _, df := range g.MaxDF {
			for _, mf := range g.MaxFeatures {
				for _, idf := range g.UseIDF {
					for _, ne := range g.NEstimators {
						for _, ms := range g.MinSamplesSplit {
							out = append(out, engine.Params{
								NGramRange:      ng,
								MaxDF:           df,
								MaxFeatures:     mf,
								UseIDF:          idf,
								NEstimators:     ne,
								MinSamplesSplit: ms,
							})
						}
					}
				}
			}
		}
	}
	return out
}
