package trainer

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/crimson-sun/triage/internal/model"
)

const splitStream = 0x5851f42d4c957f2d

// DefaultTestSize is the held-out fraction when unset.
const DefaultTestSize = 0.2

// Split shuffles n row indices by seed and holds out ceil(testSize*n) of
// them for evaluation.
func Split(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("trainer: test size %v outside (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, fmt.Errorf("%w: trainer: %d rows cannot be split with test size %v",
			model.ErrInsufficientData, n, testSize)
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, splitStream))
	rng.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	return perm[nTest:], perm[:nTest], nil
}
