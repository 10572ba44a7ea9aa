// Package csv loads the training corpus from a CSV file whose header row
// names the columns, laid out like the SQLite store.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/triage/internal/model"
	"github.com/crimson-sun/triage/internal/source"
)

func init() {
	source.Register("csv", func() source.Source {
		return &Source{}
	})
}

// Source implements source.Source for CSV files. Config.Table is ignored.
type Source struct{}

// Load reads the whole file. Every record must have as many fields as the
// header.
func (s *Source) Load(ctx context.Context, cfg source.Config) (*model.Dataset, error) {
	cfg = cfg.WithDefaults()
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", model.ErrDataAccess, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %s: header: %v", model.ErrDataAccess, cfg.Path, err)
	}
	categories, err := source.LabelColumns(header, cfg)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	msgCol := index[cfg.MessageColumn]

	var messages []string
	var raw [][]int64
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %s: %v", model.ErrDataAccess, cfg.Path, err)
		}
		labels := make([]int64, len(categories))
		for j, c := range categories {
			v, err := source.ParseLabel(rec[index[c]])
			if err != nil {
				return nil, fmt.Errorf("%w: csv: %s line %d column %s: %v", model.ErrDataAccess, cfg.Path, line, c, err)
			}
			labels[j] = v
		}
		messages = append(messages, rec[msgCol])
		raw = append(raw, labels)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: csv: %s has no records", model.ErrDataAccess, cfg.Path)
	}

	return model.NewDataset(messages, categories, raw)
}
