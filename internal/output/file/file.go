package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/crimson-sun/triage/internal/model"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Output.
type Option func(*Output)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithRunID stamps every line with the training run that produced it.
func WithRunID(id string) Option {
	return func(o *Output) { o.runID = id }
}

// WithTruncate replaces an existing file instead of appending to it.
func WithTruncate() Option {
	return func(o *Output) { o.truncate = true }
}

// record is one NDJSON line.
type record struct {
	RunID     string    `json:"run_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	model.Report
}

// Output appends reports to a file as NDJSON with buffered I/O.
type Output struct {
	w        *bufio.Writer
	f        *os.File
	mu       sync.Mutex
	path     string
	runID    string
	truncate bool
	bufSize  int
	now      func() time.Time
}

// New opens (or creates) path for NDJSON report lines.
func New(path string, opts ...Option) (*Output, error) {
	o := &Output{
		path:    path,
		bufSize: defaultBufSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if o.truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(o.path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, o.bufSize)
	return o, nil
}

// Write JSON-encodes the report and appends it as a line.
func (o *Output) Write(_ context.Context, report model.Report) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(record{RunID: o.runID, Timestamp: o.now().UTC(), Report: report})
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	data = append(data, '\n')
	if _, err := o.w.Write(data); err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}
