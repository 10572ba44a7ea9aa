// Package output defines destinations for per-category evaluation reports.
package output

import (
	"context"

	"github.com/crimson-sun/triage/internal/model"
)

// Output receives evaluation reports, one per category.
type Output interface {
	Write(ctx context.Context, report model.Report) error
	Close() error
}
