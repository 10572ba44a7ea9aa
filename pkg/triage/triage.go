package triage

import (
	"fmt"
	"time"

	"github.com/crimson-sun/triage/internal/artifact"
	"github.com/crimson-sun/triage/internal/engine"
	"github.com/crimson-sun/triage/internal/logging"
)

// Classifier assigns categories to messages with a loaded model.
type Classifier struct {
	pipeline  *engine.Pipeline
	meta      artifact.Meta
	threshold float64
}

// Open loads the model artifact at path.
func Open(path string, opts ...Option) (*Classifier, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.threshold < 0 || o.threshold >= 1 {
		return nil, fmt.Errorf("triage: threshold %v outside [0, 1)", o.threshold)
	}
	logger := logging.OrDefault(o.logger)

	p, meta, err := artifact.Load(path, engine.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("triage: %w", err)
	}
	logger.Debug("model loaded",
		logging.ModelNameKey, engine.ModelName,
		logging.OperationKey, "load",
		logging.RunIDKey, meta.RunID,
		"path", path,
		"created_at", meta.CreatedAt.Format(time.RFC3339),
		"categories", len(p.Categories()),
	)
	return &Classifier{pipeline: p, meta: meta, threshold: o.threshold}, nil
}

// Classify assigns categories to a single message.
func (c *Classifier) Classify(text string) (Prediction, error) {
	preds, err := c.ClassifyBatch([]string{text})
	if err != nil {
		return Prediction{}, err
	}
	return preds[0], nil
}

// ClassifyBatch assigns categories to multiple messages in one pass.
func (c *Classifier) ClassifyBatch(texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	proba, err := c.pipeline.PredictProba(texts)
	if err != nil {
		return nil, fmt.Errorf("triage: %w", err)
	}
	cats := c.pipeline.Categories()
	out := make([]Prediction, len(texts))
	for i, row := range proba {
		p := Prediction{
			Text:       texts[i],
			Categories: []string{},
			Scores:     make(map[string]float64, len(cats)),
		}
		for j, v := range row {
			p.Scores[cats[j]] = v
			if v > c.threshold {
				p.Categories = append(p.Categories, cats[j])
			}
		}
		out[i] = p
	}
	return out, nil
}

// Categories returns the category names the model predicts, in column
// order.
func (c *Classifier) Categories() []string {
	return c.pipeline.Categories()
}

// RunID returns the identifier of the training run that produced the model.
func (c *Classifier) RunID() string {
	return c.meta.RunID
}

// CreatedAt returns when the model was saved.
func (c *Classifier) CreatedAt() time.Time {
	return c.meta.CreatedAt
}
