package search

import "fmt"

// Scorer rates predictions against the truth; higher is better.
type Scorer func(truth, pred [][]uint8) float64

// Scorer names accepted by ScorerByName.
const (
	ScoreMeanLabelAccuracy = "mean_label_accuracy"
	ScoreSubsetAccuracy    = "subset_accuracy"
)

// MeanLabelAccuracy is the fraction of (row, category) cells predicted
// correctly, which equals the mean of the per-category accuracies.
func MeanLabelAccuracy(truth, pred [][]uint8) float64 {
	var total, hit int
	for i, row := range truth {
		for j, v := range row {
			total++
			if pred[i][j] == v {
				hit++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

// SubsetAccuracy is the fraction of rows whose whole label vector is
// predicted exactly.
func SubsetAccuracy(truth, pred [][]uint8) float64 {
	if len(truth) == 0 {
		return 0
	}
	hit := 0
	for i, row := range truth {
		match := true
		for j, v := range row {
			if pred[i][j] != v {
				match = false
				break
			}
		}
		if match {
			hit++
		}
	}
	return float64(hit) / float64(len(truth))
}

// ScorerByName resolves a configured scorer. Empty selects
// MeanLabelAccuracy.
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case "", ScoreMeanLabelAccuracy:
		return MeanLabelAccuracy, nil
	case ScoreSubsetAccuracy:
		return SubsetAccuracy, nil
	default:
		return nil, fmt.Errorf("search: unknown scorer %q", name)
	}
}
