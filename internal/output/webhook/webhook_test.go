package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/triage/internal/model"
)

func testReport(cat string) model.Report {
	return model.Report{Category: cat, Accuracy: 0.9, Samples: 10}
}

// recorder is an endpoint that stores every payload it receives.
type recorder struct {
	mu       sync.Mutex
	payloads []Payload
}

func (rec *recorder) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var p Payload
	json.Unmarshal(body, &p)
	rec.mu.Lock()
	rec.payloads = append(rec.payloads, p)
	rec.mu.Unlock()
	w.WriteHeader(200)
}

func (rec *recorder) received() []Payload {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Payload(nil), rec.payloads...)
}

func TestBatchFlushAtBatchSize(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(3), WithRunID("run-7"))
	for _, cat := range []string{"water", "food", "shelter"} {
		if err := out.Write(context.Background(), testReport(cat)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	got := rec.received()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(got))
	}
	if len(got[0].Reports) != 3 || got[0].RunID != "run-7" {
		t.Errorf("payload = %+v", got[0])
	}
}

func TestCloseFlushesRemaining(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	out := New(srv.URL)
	out.Write(context.Background(), testReport("water"))
	out.Write(context.Background(), testReport("food"))
	if got := rec.received(); len(got) != 0 {
		t.Fatalf("posted %d batches before Close", len(got))
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := rec.received()
	if len(got) != 1 || len(got[0].Reports) != 2 {
		t.Fatalf("expected one batch of 2 on Close, got %+v", got)
	}
	if got[0].Reports[1].Category != "food" {
		t.Errorf("report order not preserved: %+v", got[0].Reports)
	}
}

func TestCloseWithNothingPending(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	if err := New(srv.URL).Close(); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 0 {
		t.Errorf("empty Close sent %d requests", hits.Load())
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithBackoff(time.Millisecond))
	if err := out.Write(context.Background(), testReport("retry")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(503)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithBackoff(time.Millisecond))
	if err := out.Write(context.Background(), testReport("down")); err == nil {
		t.Fatal("expected error after retries")
	}
	if attempts.Load() != maxRetries+1 {
		t.Errorf("attempts = %d, want %d", attempts.Load(), maxRetries+1)
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(400)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1))
	if err := out.Write(context.Background(), testReport("client-error")); err == nil {
		t.Error("expected error for 400 response")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt for 4xx, got %d", attempts.Load())
	}
}

func TestCustomHeaders(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Custom-Auth")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL,
		WithBatchSize(1),
		WithHeaders(map[string]string{"X-Custom-Auth": "secret123"}),
	)
	out.Write(context.Background(), testReport("headers"))

	if gotAuth != "secret123" {
		t.Errorf("custom header = %q, want secret123", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("content type = %q", gotType)
	}
}

func TestCancelledContextStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := New(srv.URL, WithBatchSize(1), WithBackoff(time.Hour))
	if err := out.Write(ctx, testReport("cancel")); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
