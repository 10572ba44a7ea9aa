package model

import "sort"

// SparseVector holds the non-zero entries of one feature row. Indices are
// strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// At returns the value at column i, or 0 when the entry is absent.
func (v SparseVector) At(i int) float64 {
	k := sort.SearchInts(v.Indices, i)
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.Values[k]
	}
	return 0
}

// Len returns the number of stored entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Matrix is a row-major sparse feature matrix with a fixed column count.
type Matrix struct {
	Rows []SparseVector
	Cols int
}

// NumRows returns the number of rows.
func (m *Matrix) NumRows() int {
	return len(m.Rows)
}
