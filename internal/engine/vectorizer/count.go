// Package vectorizer converts token sequences into weighted sparse feature
// rows. Both stages learn their statistics in Fit and apply them, frozen, in
// Transform.
package vectorizer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/crimson-sun/triage/internal/model"
)

// CountOptions configures vocabulary construction.
type CountOptions struct {
	NGramMin    int     // smallest n-gram length, >= 1
	NGramMax    int     // largest n-gram length, >= NGramMin
	MaxDF       float64 // drop terms found in more than this fraction of documents
	MinDF       int     // drop terms found in fewer documents
	MaxFeatures int     // keep only the most frequent terms; 0 keeps all
}

// DefaultCountOptions returns unigrams with no pruning.
func DefaultCountOptions() CountOptions {
	return CountOptions{NGramMin: 1, NGramMax: 1, MaxDF: 1.0, MinDF: 1}
}

func (o CountOptions) validate() error {
	if o.NGramMin < 1 || o.NGramMax < o.NGramMin {
		return fmt.Errorf("vectorizer: invalid n-gram range (%d, %d)", o.NGramMin, o.NGramMax)
	}
	if o.MaxDF <= 0 || o.MaxDF > 1 {
		return fmt.Errorf("vectorizer: max_df %v outside (0, 1]", o.MaxDF)
	}
	if o.MinDF < 1 {
		return fmt.Errorf("vectorizer: min_df %d < 1", o.MinDF)
	}
	if o.MaxFeatures < 0 {
		return fmt.Errorf("vectorizer: negative max_features %d", o.MaxFeatures)
	}
	return nil
}

// Counter maps token sequences to term-count rows over a vocabulary learned
// from the training documents.
type Counter struct {
	opts  CountOptions
	terms []string       // index -> term, sorted
	index map[string]int // term -> index
}

// NewCounter creates an unfitted Counter.
func NewCounter(opts CountOptions) (*Counter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Counter{opts: opts}, nil
}

// RestoreCounter rebuilds a fitted Counter from a persisted vocabulary.
// Terms must be sorted and distinct.
func RestoreCounter(opts CountOptions, terms []string) (*Counter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("vectorizer: empty vocabulary")
	}
	for i := 1; i < len(terms); i++ {
		if terms[i-1] >= terms[i] {
			return nil, fmt.Errorf("vectorizer: vocabulary not sorted at %d (%q >= %q)", i, terms[i-1], terms[i])
		}
	}
	c := &Counter{opts: opts}
	c.setTerms(terms)
	return c, nil
}

// Options returns the Counter's options.
func (c *Counter) Options() CountOptions {
	return c.opts
}

// Vocabulary returns the fitted terms in column order.
func (c *Counter) Vocabulary() []string {
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// Size returns the vocabulary size (0 before Fit).
func (c *Counter) Size() int {
	return len(c.terms)
}

// Lookup returns the column of term, or false for unseen terms.
func (c *Counter) Lookup(term string) (int, bool) {
	i, ok := c.index[term]
	return i, ok
}

// Fit learns the vocabulary from the training documents.
func (c *Counter) Fit(docs [][]string) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: vectorizer: no documents", model.ErrFit)
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range c.ngrams(doc) {
			termFreq[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	maxDocs := int(math.Floor(c.opts.MaxDF * float64(len(docs))))
	if maxDocs < c.opts.MinDF {
		return fmt.Errorf("%w: vectorizer: max_df %v keeps fewer documents than min_df %d",
			model.ErrFit, c.opts.MaxDF, c.opts.MinDF)
	}

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df > maxDocs || df < c.opts.MinDF {
			continue
		}
		kept = append(kept, term)
	}

	if c.opts.MaxFeatures > 0 && len(kept) > c.opts.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			fi, fj := termFreq[kept[i]], termFreq[kept[j]]
			if fi != fj {
				return fi > fj
			}
			return kept[i] < kept[j]
		})
		kept = kept[:c.opts.MaxFeatures]
	}

	if len(kept) == 0 {
		return fmt.Errorf("%w: vectorizer: no terms remain after pruning", model.ErrFit)
	}

	sort.Strings(kept)
	c.setTerms(kept)
	return nil
}

// Transform counts vocabulary terms in each document. Unseen terms are
// ignored; the vocabulary is never extended.
func (c *Counter) Transform(docs [][]string) (*model.Matrix, error) {
	if c.index == nil {
		return nil, fmt.Errorf("vectorizer: counter is not fitted")
	}
	m := &model.Matrix{Rows: make([]model.SparseVector, len(docs)), Cols: len(c.terms)}
	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, term := range c.ngrams(doc) {
			if j, ok := c.index[term]; ok {
				counts[j]++
			}
		}
		m.Rows[i] = sparseFromMap(counts)
	}
	return m, nil
}

// ngrams expands a token sequence into its n-grams, joined by spaces.
func (c *Counter) ngrams(tokens []string) []string {
	if c.opts.NGramMin == 1 && c.opts.NGramMax == 1 {
		return tokens
	}
	var out []string
	for n := c.opts.NGramMin; n <= c.opts.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func (c *Counter) setTerms(terms []string) {
	c.terms = terms
	c.index = make(map[string]int, len(terms))
	for i, t := range terms {
		c.index[t] = i
	}
}

func sparseFromMap(m map[int]float64) model.SparseVector {
	v := model.SparseVector{
		Indices: make([]int, 0, len(m)),
		Values:  make([]float64, 0, len(m)),
	}
	for j := range m {
		v.Indices = append(v.Indices, j)
	}
	sort.Ints(v.Indices)
	for _, j := range v.Indices {
		v.Values = append(v.Values, m[j])
	}
	return v
}
