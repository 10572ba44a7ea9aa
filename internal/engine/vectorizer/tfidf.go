package vectorizer

import (
	"fmt"
	"math"

	"github.com/crimson-sun/triage/internal/model"
)

// TFIDF reweights count rows by smoothed inverse document frequency and
// scales every row to unit L2 norm.
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
type TFIDF struct {
	useIDF bool
	idf    []float64
	fitted bool
}

// NewTFIDF creates an unfitted TFIDF. With useIDF false only the L2
// normalisation is applied.
func NewTFIDF(useIDF bool) *TFIDF {
	return &TFIDF{useIDF: useIDF}
}

// RestoreTFIDF rebuilds a fitted TFIDF. idf is ignored when useIDF is false.
func RestoreTFIDF(useIDF bool, idf []float64) (*TFIDF, error) {
	if useIDF && len(idf) == 0 {
		return nil, fmt.Errorf("vectorizer: idf weights missing")
	}
	for i, w := range idf {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, fmt.Errorf("vectorizer: invalid idf weight %v at %d", w, i)
		}
	}
	t := &TFIDF{useIDF: useIDF, fitted: true}
	if useIDF {
		t.idf = append([]float64(nil), idf...)
	}
	return t, nil
}

// UseIDF reports whether idf weighting is enabled.
func (t *TFIDF) UseIDF() bool {
	return t.useIDF
}

// IDF returns a copy of the fitted weights (nil when idf is disabled).
func (t *TFIDF) IDF() []float64 {
	if t.idf == nil {
		return nil
	}
	return append([]float64(nil), t.idf...)
}

// Fit computes document frequencies from the training rows only.
func (t *TFIDF) Fit(x *model.Matrix) error {
	if x.NumRows() == 0 {
		return fmt.Errorf("%w: tfidf: no rows", model.ErrFit)
	}
	t.fitted = true
	if !t.useIDF {
		t.idf = nil
		return nil
	}
	df := make([]int, x.Cols)
	for _, row := range x.Rows {
		for k, j := range row.Indices {
			if row.Values[k] != 0 {
				df[j]++
			}
		}
	}
	n := float64(x.NumRows())
	t.idf = make([]float64, x.Cols)
	for j, d := range df {
		t.idf[j] = math.Log((1+n)/(1+float64(d))) + 1
	}
	return nil
}

// Transform returns weighted, L2-normalised copies of the rows.
func (t *TFIDF) Transform(x *model.Matrix) (*model.Matrix, error) {
	if !t.fitted {
		return nil, fmt.Errorf("vectorizer: tfidf is not fitted")
	}
	if t.useIDF && len(t.idf) != x.Cols {
		return nil, fmt.Errorf("vectorizer: tfidf fitted on %d columns, got %d", len(t.idf), x.Cols)
	}
	out := &model.Matrix{Rows: make([]model.SparseVector, len(x.Rows)), Cols: x.Cols}
	for i, row := range x.Rows {
		vals := make([]float64, len(row.Values))
		var sq float64
		for k, j := range row.Indices {
			v := row.Values[k]
			if t.useIDF {
				v *= t.idf[j]
			}
			vals[k] = v
			sq += v * v
		}
		if sq > 0 {
			inv := 1 / math.Sqrt(sq)
			for k := range vals {
				vals[k] *= inv
			}
		}
		out.Rows[i] = model.SparseVector{
			Indices: append([]int(nil), row.Indices...),
			Values:  vals,
		}
	}
	return out, nil
}
