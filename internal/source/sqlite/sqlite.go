// Package sqlite loads the training corpus from a SQLite table, one row
// per message with one integer column per category.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/crimson-sun/triage/internal/model"
	"github.com/crimson-sun/triage/internal/source"
)

func init() {
	source.Register("sqlite", func() source.Source {
		return &Source{}
	})
}

// Source implements source.Source for SQLite database files.
type Source struct{}

// Load reads every row of cfg.Table. The file must already exist; the
// driver would otherwise create an empty database.
func (s *Source) Load(ctx context.Context, cfg source.Config) (*model.Dataset, error) {
	cfg = cfg.WithDefaults()
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: sqlite: %v", model.ErrDataAccess, err)
	}
	if !source.ValidIdentifier(cfg.Table) {
		return nil, fmt.Errorf("%w: sqlite: invalid table name %q", model.ErrDataAccess, cfg.Table)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: open %s: %v", model.ErrDataAccess, cfg.Path, err)
	}
	defer db.Close()

	columns, err := tableColumns(ctx, db, cfg.Table)
	if err != nil {
		return nil, err
	}
	categories, err := source.LabelColumns(columns, cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	selected := append([]string{cfg.MessageColumn}, categories...)
	for _, c := range selected {
		if !source.ValidIdentifier(c) {
			return nil, fmt.Errorf("%w: sqlite: invalid column name %q", model.ErrDataAccess, c)
		}
	}
	query := fmt.Sprintf(`SELECT "%s" FROM "%s"`, strings.Join(selected, `", "`), cfg.Table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: query %s: %v", model.ErrDataAccess, cfg.Table, err)
	}
	defer rows.Close()

	var messages []string
	var raw [][]int64
	cells := make([]any, len(selected))
	ptrs := make([]any, len(selected))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: sqlite: scan: %v", model.ErrDataAccess, err)
		}
		n := len(messages)
		msg, err := messageText(cells[0])
		if err != nil {
			return nil, fmt.Errorf("%w: sqlite: row %d: %v", model.ErrDataAccess, n, err)
		}
		labels := make([]int64, len(categories))
		for j := range categories {
			v, err := source.ParseLabel(cells[j+1])
			if err != nil {
				return nil, fmt.Errorf("%w: sqlite: row %d column %s: %v", model.ErrDataAccess, n, categories[j], err)
			}
			labels[j] = v
		}
		messages = append(messages, msg)
		raw = append(raw, labels)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: sqlite: %v", model.ErrDataAccess, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: sqlite: table %s is empty", model.ErrDataAccess, cfg.Table)
	}

	return model.NewDataset(messages, categories, raw)
}

// tableColumns returns the table's column names in declaration order.
func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s" LIMIT 0`, table))
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: table %s: %v", model.ErrDataAccess, table, err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: table %s: %v", model.ErrDataAccess, table, err)
	}
	return cols, nil
}

func messageText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", fmt.Errorf("null message")
	default:
		return fmt.Sprint(x), nil
	}
}
