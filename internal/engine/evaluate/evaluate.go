// Package evaluate scores a fitted pipeline on held-out messages, one
// report per category.
package evaluate

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/triage/internal/model"
	"github.com/crimson-sun/triage/internal/output"
)

// Predictor is the part of a fitted pipeline the evaluator needs.
type Predictor interface {
	Predict(messages []string) ([][]uint8, error)
}

// Evaluate predicts every held-out message and reports per-category
// accuracy and per-class precision, recall and F1. Neither the predictor
// nor the inputs are modified.
func Evaluate(ctx context.Context, p Predictor, messages []string, labels [][]uint8, categories []string) ([]model.Report, error) {
	if len(messages) != len(labels) {
		return nil, fmt.Errorf("%w: evaluate: %d messages but %d label rows", model.ErrDataAccess, len(messages), len(labels))
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: evaluate: no held-out messages", model.ErrInsufficientData)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pred, err := p.Predict(messages)
	if err != nil {
		return nil, fmt.Errorf("evaluate: predict: %w", err)
	}
	if len(pred) != len(labels) {
		return nil, fmt.Errorf("evaluate: %d predictions for %d messages", len(pred), len(labels))
	}

	reports := make([]model.Report, len(categories))
	for j, name := range categories {
		truth, guess := make([]uint8, len(labels)), make([]uint8, len(labels))
		for i := range labels {
			if len(labels[i]) != len(categories) || len(pred[i]) != len(categories) {
				return nil, fmt.Errorf("%w: evaluate: row %d has %d labels and %d predictions, want %d",
					model.ErrDataAccess, i, len(labels[i]), len(pred[i]), len(categories))
			}
			truth[i], guess[i] = labels[i][j], pred[i][j]
		}
		reports[j] = Score(name, truth, guess)
	}
	return reports, nil
}

// Score compares one category's predictions with the truth. Any ratio
// with a zero denominator is reported as 0.
func Score(category string, truth, pred []uint8) model.Report {
	var c confusion
	for i, y := range truth {
		c.add(y, pred[i])
	}
	r := model.Report{
		Category: category,
		Samples:  len(truth),
		Accuracy: ratio(c.tp+c.tn, len(truth)),
		Positive: metrics(c.tp, c.fp, c.fn),
		Negative: metrics(c.tn, c.fn, c.fp),
	}
	return r
}

// confusion counts outcomes with class 1 as positive.
type confusion struct {
	tp, fp, tn, fn int
}

func (c *confusion) add(truth, pred uint8) {
	switch {
	case truth == 1 && pred == 1:
		c.tp++
	case truth == 0 && pred == 1:
		c.fp++
	case truth == 1:
		c.fn++
	default:
		c.tn++
	}
}

// metrics computes one class's row from its hits, false alarms and misses.
func metrics(hit, falseAlarm, miss int) model.ClassMetrics {
	p := ratio(hit, hit+falseAlarm)
	r := ratio(hit, hit+miss)
	var f1 float64
	if p+r > 0 {
		f1 = 2 * p * r / (p + r)
	}
	return model.ClassMetrics{Precision: p, Recall: r, F1: f1, Support: hit + miss}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Emit writes every report to out in order, continuing past failures.
func Emit(ctx context.Context, out output.Output, reports []model.Report) error {
	var errs []error
	for _, r := range reports {
		if err := out.Write(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", r.Category, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("evaluate: emit: %w", err)
	}
	return nil
}
