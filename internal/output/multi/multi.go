// Package multi writes each record to several sinks.
package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

// Multi delivers every record to each sink in turn. A failing sink does
// not stop delivery to the rest; its error is tagged with the sink type.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over the non-nil outputs.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len reports the number of sinks.
func (m *Multi) Len() int { return len(m.outputs) }

func (m *Multi) Write(ctx context.Context, rec model.PreprocessedData) error {
	return m.each(func(o output.Output) error { return o.Write(ctx, rec) })
}

// Close closes every sink, including those that fail.
func (m *Multi) Close() error {
	return m.each(output.Output.Close)
}

func (m *Multi) each(fn func(output.Output) error) error {
	var errs []error
	for _, o := range m.outputs {
		if err := fn(o); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", o, err))
		}
	}
	return errors.Join(errs...)
}
