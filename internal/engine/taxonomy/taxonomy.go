// Package taxonomy holds the ordered category vocabulary of a label matrix.
package taxonomy

import (
	"fmt"

	"github.com/crimson-sun/triage/internal/model"
)

// Taxonomy is an immutable, ordered set of category names. The order is the
// column order of every label matrix built against it.
type Taxonomy struct {
	names []string
	index map[string]int
}

// New flattens the tree in pre-order into the category vocabulary.
func New(roots []*model.TaxonomyNode) (*Taxonomy, error) {
	var names []string
	var walk func(nodes []*model.TaxonomyNode)
	walk = func(nodes []*model.TaxonomyNode) {
		for _, n := range nodes {
			names = append(names, n.Name)
			walk(n.Children)
		}
	}
	walk(roots)

	return FromNames(names)
}

// FromNames builds a flat Taxonomy from an ordered list of names.
func FromNames(names []string) (*Taxonomy, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: taxonomy: no categories", model.ErrDataAccess)
	}
	t := &Taxonomy{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: taxonomy: empty category name at %d", model.ErrDataAccess, i)
		}
		if _, dup := t.index[n]; dup {
			return nil, fmt.Errorf("%w: taxonomy: duplicate category %q", model.ErrDataAccess, n)
		}
		t.index[n] = i
	}
	return t, nil
}

// Names returns the category names in column order.
func (t *Taxonomy) Names() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.names)
}

// Index returns the column of a category.
func (t *Taxonomy) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Select returns the column indices of names, in the order given. Unknown
// names are a data access error.
func (t *Taxonomy) Select(names []string) ([]int, error) {
	cols := make([]int, len(names))
	for i, n := range names {
		j, ok := t.Index(n)
		if !ok {
			return nil, fmt.Errorf("%w: taxonomy: unknown category %q", model.ErrDataAccess, n)
		}
		cols[i] = j
	}
	return cols, nil
}
