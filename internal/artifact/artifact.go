// Package artifact persists fitted pipelines as gzip-compressed JSON.
package artifact

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/triage/internal/engine"
	"github.com/crimson-sun/triage/internal/model"
)

// Format and Version identify the envelope layout. Load rejects anything
// else.
const (
	Format  = "triage-model"
	Version = 1
)

// Meta describes one saved artifact.
type Meta struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
}

// envelope is the on-disk document.
type envelope struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	Meta
	engine.Snapshot
}

// Save writes the fitted pipeline to path. The document goes to a
// temporary file in the same directory, is synced, then renamed over path,
// so readers never observe a partial artifact. An empty RunID or zero
// CreatedAt in meta is filled in; the stored Meta is returned.
func Save(ctx context.Context, p *engine.Pipeline, path string, meta Meta) (Meta, error) {
	snap, err := p.Snapshot()
	if err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: %v", model.ErrIO, err)
	}
	if meta.RunID == "" {
		meta.RunID = uuid.New().String()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	if err := ctx.Err(); err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: %v", model.ErrIO, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".triage-*.tmp")
	if err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: %v", model.ErrIO, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	zw := gzip.NewWriter(tmp)
	doc := envelope{Format: Format, Version: Version, Meta: meta, Snapshot: snap}
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: encode: %v", model.ErrIO, err)
	}
	if err := zw.Close(); err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: compress: %v", model.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: sync: %v", model.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: close: %v", model.ErrIO, err)
	}
	if err := ctx.Err(); err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: %v", model.ErrIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Meta{}, fmt.Errorf("%w: artifact: %v", model.ErrIO, err)
	}
	committed = true
	return meta, nil
}

// Load reads and validates an artifact and restores its pipeline.
func Load(path string, opts engine.Options) (*engine.Pipeline, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %v", model.ErrIO, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %s: %v", model.ErrIO, path, err)
	}
	defer zr.Close()

	var doc envelope
	dec := json.NewDecoder(zr)
	if err := dec.Decode(&doc); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %s: decode: %v", model.ErrIO, path, err)
	}
	// The document must be the whole stream, and the gzip trailer must
	// verify.
	if _, err := dec.Token(); err != io.EOF {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %s: trailing data after document", model.ErrIO, path)
	}
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %s: %v", model.ErrIO, path, err)
	}
	if doc.Format != Format {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %s: format %q, want %q", model.ErrIO, path, doc.Format, Format)
	}
	if doc.Version != Version {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %s: unsupported version %d", model.ErrIO, path, doc.Version)
	}

	p, err := engine.Restore(doc.Snapshot, opts)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%w: artifact: %s: %v", model.ErrIO, path, err)
	}
	return p, doc.Meta, nil
}
