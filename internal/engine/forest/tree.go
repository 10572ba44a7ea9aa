package forest

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/crimson-sun/triage/internal/model"
)

// Node is one node of a fitted tree, stored in pre-order. Leaves have
// Feature = -1. Rows with x[Feature] <= Threshold go Left.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"` // weighted share of positive samples
}

// Tree is a binary CART classification tree.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Proba returns the positive-class probability of the leaf x falls into.
func (t *Tree) Proba(x model.SparseVector) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (t *Tree) validate(cols int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Value < 0 || n.Value > 1 || math.IsNaN(n.Value) {
			return fmt.Errorf("node %d: value %v outside [0, 1]", i, n.Value)
		}
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= cols {
			return fmt.Errorf("node %d: feature %d >= %d columns", i, n.Feature, cols)
		}
		// Children always follow their parent in pre-order.
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: invalid children (%d, %d)", i, n.Left, n.Right)
		}
	}
	return nil
}

// sample is one (feature value, label, weight) triple gathered for a split.
type sample struct {
	v float64
	y uint8
	w float64
}

// builder grows one tree over bootstrap-weighted rows.
type builder struct {
	x           *model.Matrix
	y           []uint8
	w           []float64
	minSplit    int
	maxFeatures int
	rng         *rand.Rand

	features []int   // permutation buffer for feature sampling
	stamp    []int32 // stamp[f] == node id when some row in the node has f
	scratch  []sample
	nodes    []Node
}

func newBuilder(x *model.Matrix, y []uint8, w []float64, minSplit, maxFeatures int, rng *rand.Rand) *builder {
	features := make([]int, x.Cols)
	for i := range features {
		features[i] = i
	}
	stamp := make([]int32, x.Cols)
	for i := range stamp {
		stamp[i] = -1
	}
	return &builder{
		x:           x,
		y:           y,
		w:           w,
		minSplit:    minSplit,
		maxFeatures: maxFeatures,
		rng:         rng,
		features:    features,
		stamp:       stamp,
	}
}

// grow appends the subtree for rows to b.nodes and returns its root index.
// rows is reordered in place.
func (b *builder) grow(rows []int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1})

	var total, pos float64
	for _, r := range rows {
		total += b.w[r]
		if b.y[r] == 1 {
			pos += b.w[r]
		}
	}
	b.nodes[id].Value = pos / total

	if len(rows) < b.minSplit || pos == 0 || pos == total {
		return id
	}
	feature, threshold, ok := b.bestSplit(int32(id), rows, total, pos)
	if !ok {
		return id
	}

	split := partition(b.x, rows, feature, threshold)
	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	left := b.grow(rows[:split])
	right := b.grow(rows[split:])
	b.nodes[id].Left = left
	b.nodes[id].Right = right
	return id
}

// bestSplit samples candidate features without replacement and returns the
// split with the lowest weighted gini impurity. Sampling stops after
// maxFeatures draws, or later if every drawn feature was constant.
func (b *builder) bestSplit(id int32, rows []int, total, pos float64) (int, float64, bool) {
	for _, r := range rows {
		for _, f := range b.x.Rows[r].Indices {
			b.stamp[f] = id
		}
	}

	bestFeature, bestThreshold, bestCost := -1, 0.0, math.Inf(1)
	nf := len(b.features)
	visited, nonConstant := 0, 0
	for drawn := 0; drawn < nf && (visited < b.maxFeatures || nonConstant == 0); drawn++ {
		k := drawn + b.rng.IntN(nf-drawn)
		b.features[drawn], b.features[k] = b.features[k], b.features[drawn]
		f := b.features[drawn]
		visited++

		// A feature absent from every row is constant zero in this node.
		if b.stamp[f] != id {
			continue
		}
		vals := b.gather(rows, f)
		if vals[0].v == vals[len(vals)-1].v {
			continue
		}
		nonConstant++

		var leftW, leftPos float64
		for i := 0; i < len(vals)-1; i++ {
			leftW += vals[i].w
			if vals[i].y == 1 {
				leftPos += vals[i].w
			}
			if vals[i].v == vals[i+1].v {
				continue
			}
			rightW, rightPos := total-leftW, pos-leftPos
			cost := leftW*gini(leftPos/leftW) + rightW*gini(rightPos/rightW)
			if cost < bestCost {
				bestCost = cost
				bestFeature = f
				bestThreshold = vals[i].v/2 + vals[i+1].v/2
				if bestThreshold == vals[i+1].v || math.IsInf(bestThreshold, 0) {
					bestThreshold = vals[i].v
				}
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

// gather collects feature f for rows, sorted by value.
func (b *builder) gather(rows []int, f int) []sample {
	vals := b.scratch[:0]
	for _, r := range rows {
		vals = append(vals, sample{v: b.x.Rows[r].At(f), y: b.y[r], w: b.w[r]})
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].v < vals[j].v })
	b.scratch = vals
	return vals
}

// partition moves rows with x[f] <= threshold to the front and returns the
// number of such rows.
func partition(x *model.Matrix, rows []int, f int, threshold float64) int {
	i := 0
	for j, r := range rows {
		if x.Rows[r].At(f) <= threshold {
			rows[i], rows[j] = rows[j], rows[i]
			i++
		}
	}
	return i
}

func gini(p float64) float64 {
	return 2 * p * (1 - p)
}
