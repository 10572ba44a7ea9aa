package triage

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/crimson-sun/triage/internal/artifact"
	"github.com/crimson-sun/triage/internal/engine"
	"github.com/crimson-sun/triage/internal/engine/normalizer"
	"github.com/crimson-sun/triage/internal/engine/testdata"
)

// trainedModel fits a small pipeline on the bundled corpus and saves it.
func trainedModel(t *testing.T) (string, *engine.Pipeline, []string) {
	t.Helper()
	ds, err := testdata.Dataset(DefaultCategories())
	if err != nil {
		t.Fatalf("testdata.Dataset: %v", err)
	}
	norm, err := normalizer.New(normalizer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	params := engine.DefaultParams()
	params.NEstimators = 7
	p, err := engine.New(norm, params, ds.Categories, engine.Options{Seed: 3, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Fit(context.Background(), engine.Frame{Texts: ds.Messages}, ds.Labels); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	path := filepath.Join(t.TempDir(), "classifier.model")
	if _, err := artifact.Save(context.Background(), p, path, artifact.Meta{RunID: "run-1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path, p, ds.Messages
}

func TestOpenBadPathReturnsError(t *testing.T) {
	if _, err := Open("/nonexistent/classifier.model"); err == nil {
		t.Fatal("expected error for bad model path, got nil")
	}
}

func TestOpenRejectsThreshold(t *testing.T) {
	for _, th := range []float64{-0.1, 1, 2} {
		if _, err := Open("unused", WithThreshold(th)); err == nil {
			t.Errorf("threshold %v: expected error", th)
		}
	}
}

func TestClassifyMatchesPipeline(t *testing.T) {
	path, p, messages := trainedModel(t)
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.RunID() != "run-1" {
		t.Errorf("RunID = %q, want run-1", c.RunID())
	}
	if c.CreatedAt().IsZero() {
		t.Error("CreatedAt is zero")
	}
	if !reflect.DeepEqual(c.Categories(), DefaultCategories()) {
		t.Errorf("Categories = %v", c.Categories())
	}

	want, err := p.Predict(messages)
	if err != nil {
		t.Fatal(err)
	}
	preds, err := c.ClassifyBatch(messages)
	if err != nil {
		t.Fatalf("ClassifyBatch: %v", err)
	}
	if len(preds) != len(messages) {
		t.Fatalf("got %d predictions, want %d", len(preds), len(messages))
	}
	cats := c.Categories()
	for i, pred := range preds {
		if pred.Text != messages[i] {
			t.Errorf("row %d: Text = %q", i, pred.Text)
		}
		if len(pred.Scores) != len(cats) {
			t.Errorf("row %d: %d scores, want %d", i, len(pred.Scores), len(cats))
		}
		for j, cat := range cats {
			if got := pred.Has(cat); got != (want[i][j] == 1) {
				t.Errorf("row %d %s: assigned=%v, pipeline=%d", i, cat, got, want[i][j])
			}
		}
	}
}

func TestClassifySingle(t *testing.T) {
	path, _, messages := trainedModel(t)
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	one, err := c.Classify(messages[0])
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	batch, err := c.ClassifyBatch(messages[:1])
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(one, batch[0]) {
		t.Errorf("Classify = %+v, ClassifyBatch = %+v", one, batch[0])
	}
}

func TestThresholdZeroAssignsEveryScoredCategory(t *testing.T) {
	path, _, _ := trainedModel(t)
	c, err := Open(path, WithThreshold(0))
	if err != nil {
		t.Fatal(err)
	}
	pred, err := c.Classify("we need water and food")
	if err != nil {
		t.Fatal(err)
	}
	for cat, score := range pred.Scores {
		if pred.Has(cat) != (score > 0) {
			t.Errorf("%s: score %v, assigned %v", cat, score, pred.Has(cat))
		}
	}
}

func TestClassifyBatchEmpty(t *testing.T) {
	path, _, _ := trainedModel(t)
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	preds, err := c.ClassifyBatch(nil)
	if err != nil || preds != nil {
		t.Errorf("ClassifyBatch(nil) = %v, %v", preds, err)
	}
}

func TestConcurrentClassify(t *testing.T) {
	path, _, messages := trainedModel(t)
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	want, err := c.Classify(messages[1])
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Classify(messages[1])
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("concurrent Classify diverged: %+v", got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Classify: %v", err)
	}
}
