// Package source loads labelled training corpora from external stores.
package source

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/crimson-sun/triage/internal/engine/taxonomy"
	"github.com/crimson-sun/triage/internal/model"
)

// Defaults for the disaster-response message store.
const (
	DefaultTable         = "disaster"
	DefaultMessageColumn = "message"
	DefaultLabelOffset   = 4 // id, message, original, genre precede the labels
)

// Source loads a Dataset from one kind of store.
type Source interface {
	Load(ctx context.Context, cfg Config) (*model.Dataset, error)
}

// Config locates a corpus and describes its column layout.
type Config struct {
	Provider      string
	Path          string
	Table         string
	MessageColumn string
	LabelOffset   int      // index of the first label column
	Categories    []string // optional subset of label columns, in output order
}

// WithDefaults fills unset fields with the disaster-store layout.
func (c Config) WithDefaults() Config {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.MessageColumn == "" {
		c.MessageColumn = DefaultMessageColumn
	}
	if c.LabelOffset == 0 {
		c.LabelOffset = DefaultLabelOffset
	}
	return c
}

// LabelColumns picks the category columns from a store's column list: all
// columns from LabelOffset on, or the configured subset of them.
func LabelColumns(columns []string, cfg Config) ([]string, error) {
	if !contains(columns, cfg.MessageColumn) {
		return nil, fmt.Errorf("%w: message column %q not found", model.ErrDataAccess, cfg.MessageColumn)
	}
	if cfg.LabelOffset < 0 || cfg.LabelOffset >= len(columns) {
		return nil, fmt.Errorf("%w: label offset %d outside %d columns", model.ErrDataAccess, cfg.LabelOffset, len(columns))
	}
	labels := columns[cfg.LabelOffset:]
	if contains(labels, cfg.MessageColumn) {
		return nil, fmt.Errorf("%w: message column %q is inside the label columns", model.ErrDataAccess, cfg.MessageColumn)
	}
	tax, err := taxonomy.FromNames(labels)
	if err != nil {
		return nil, fmt.Errorf("label columns: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return tax.Names(), nil
	}
	selected, err := taxonomy.FromNames(cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	if _, err := tax.Select(selected.Names()); err != nil {
		return nil, err
	}
	return selected.Names(), nil
}

// ParseLabel converts a stored label cell to an integer. Integral floats,
// booleans and numeric strings are accepted.
func ParseLabel(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("non-integral label %v", x)
		}
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseLabelString(string(x))
	case string:
		return parseLabelString(x)
	case nil:
		return 0, fmt.Errorf("null label")
	default:
		return 0, fmt.Errorf("unsupported label type %T", v)
	}
}

func parseLabelString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("label %q is not a number", s)
	}
	return ParseLabel(f)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be used unquoted as a table or
// column name.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
