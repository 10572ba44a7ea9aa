package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/triage/internal/model"
	"github.com/crimson-sun/triage/internal/output"
)

// Output prints reports to stdout, as text blocks by default or as JSON.
type Output struct {
	w   io.Writer
	enc *json.Encoder // nil in text mode
}

// New creates a stdout Output. With asJSON each report is one JSON value,
// indented when pretty is set.
func New(asJSON, pretty bool) *Output {
	return newOutput(os.Stdout, asJSON, pretty)
}

func newOutput(w io.Writer, asJSON, pretty bool) *Output {
	o := &Output{w: w}
	if asJSON {
		o.enc = json.NewEncoder(w)
		if pretty {
			o.enc.SetIndent("", "  ")
		}
	}
	return o
}

func (o *Output) Write(_ context.Context, report model.Report) error {
	if o.enc != nil {
		if err := o.enc.Encode(report); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
		return nil
	}
	if _, err := io.WriteString(o.w, output.FormatReport(report)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
