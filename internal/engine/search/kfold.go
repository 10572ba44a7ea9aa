package search

import (
	"fmt"
	"math/rand/v2"
)

const shuffleStream = 0xda3e39cb94b95bdb

// Fold is one train/test partition of the row indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits n rows into k disjoint test folds of contiguous positions.
// The first n%k folds hold one extra row. With shuffle the positions are
// permuted by seed before partitioning.
func KFold(n, k int, shuffle bool, seed uint64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("search: need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("search: %d rows cannot fill %d folds", n, k)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		rng := rand.New(rand.NewPCG(seed, shuffleStream))
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	folds := make([]Fold, k)
	start := 0
	for f := range folds {
		size := n / k
		if f < n%k {
			size++
		}
		end := start + size
		folds[f].Test = append([]int(nil), order[start:end]...)
		folds[f].Train = make([]int, 0, n-size)
		folds[f].Train = append(folds[f].Train, order[:start]...)
		folds[f].Train = append(folds[f].Train, order[end:]...)
		start = end
	}
	return folds, nil
}
