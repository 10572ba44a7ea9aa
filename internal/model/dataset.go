package model

import "fmt"

// Dataset is a labelled corpus: one message per row and one binary label
// vector per message, ordered like Categories.
type Dataset struct {
	Messages   []string
	Labels     [][]uint8
	Categories []string
}

// CoerceLabel maps a raw store value to a binary indicator. The legacy
// encoding used 2 for "related but indirect"; every value above 1 is a 1.
func CoerceLabel(v int64) uint8 {
	if v >= 1 {
		return 1
	}
	return 0
}

// NewDataset validates the raw rows and returns a Dataset with binary labels.
func NewDataset(messages, categories []string, raw [][]int64) (*Dataset, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: category vocabulary is empty", ErrDataAccess)
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrDataAccess)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrDataAccess, c)
		}
		seen[c] = true
	}
	if len(messages) != len(raw) {
		return nil, fmt.Errorf("%w: %d documents but %d label rows", ErrDataAccess, len(messages), len(raw))
	}

	labels := make([][]uint8, len(raw))
	for i, row := range raw {
		if len(row) != len(categories) {
			return nil, fmt.Errorf("%w: row %d has %d labels, want %d", ErrDataAccess, i, len(row), len(categories))
		}
		out := make([]uint8, len(row))
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("%w: row %d category %q has negative label %d", ErrDataAccess, i, categories[j], v)
			}
			out[j] = CoerceLabel(v)
		}
		labels[i] = out
	}

	return &Dataset{
		Messages:   messages,
		Labels:     labels,
		Categories: categories,
	}, nil
}

// Len returns the number of documents.
func (d *Dataset) Len() int {
	return len(d.Messages)
}

// Subset returns a Dataset holding the rows at idx, in idx order. Rows are
// shared with the receiver, not copied.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{
		Messages:   make([]string, len(idx)),
		Labels:     make([][]uint8, len(idx)),
		Categories: d.Categories,
	}
	for i, j := range idx {
		out.Messages[i] = d.Messages[j]
		out.Labels[i] = d.Labels[j]
	}
	return out
}

// Column returns category j's labels as a slice aligned with the rows.
func Column(labels [][]uint8, j int) []uint8 {
	col := make([]uint8, len(labels))
	for i, row := range labels {
		col[i] = row[j]
	}
	return col
}
