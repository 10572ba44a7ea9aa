package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/crimson-sun/triage/internal/model"
)

func testReport() model.Report {
	return model.Report{
		Category: "medical_help",
		Accuracy: 0.92,
		Negative: model.ClassMetrics{Precision: 0.93, Recall: 0.99, F1: 0.96, Support: 90},
		Positive: model.ClassMetrics{Precision: 0.6, Recall: 0.3, F1: 0.4, Support: 10},
		Samples:  100,
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputText(t *testing.T) {
	result := captureStdout(func() {
		out := New(false, false)
		out.Write(context.Background(), testReport())
	})

	if !strings.HasPrefix(result, "category: medical_help\naccuracy: 0.9200\n") {
		t.Fatalf("unexpected text report:\n%s", result)
	}
	if !strings.Contains(result, "precision    recall  f1-score   support") {
		t.Fatal("missing column header")
	}
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(true, false)
		out.Write(context.Background(), testReport())
	})

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["category"] != "medical_help" {
		t.Fatalf("expected category=medical_help, got %v", m["category"])
	}
	pos, ok := m["positive"].(map[string]any)
	if !ok || pos["support"] != float64(10) {
		t.Fatalf("positive class = %v", m["positive"])
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out := newOutput(&buf, true, true)
	if err := out.Write(context.Background(), testReport()); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}
