// Package pretty renders preprocessed records for a human at a terminal.
package pretty

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"

	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

// Output writes one metadata table and one content box per record.
type Output struct {
	mu        sync.Mutex
	w         io.Writer
	verbosity output.Verbosity
}

// New writes to stdout.
func New(verbosity output.Verbosity) *Output {
	return NewWriter(os.Stdout, verbosity)
}

// NewWriter writes to w.
func NewWriter(w io.Writer, verbosity output.Verbosity) *Output {
	return &Output{w: w, verbosity: verbosity}
}

func (o *Output) Write(_ context.Context, rec model.PreprocessedData) error {
	text, err := render(output.FormatRecord(rec, o.verbosity))
	if err != nil {
		return fmt.Errorf("pretty: %w", err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err = io.WriteString(o.w, text)
	return err
}

func (o *Output) Close() error { return nil }

func render(r output.Record) (string, error) {
	name := r.Filename
	if name == "" {
		name = "(unnamed)"
	}
	flags := "none"
	if len(r.SecurityFlags) > 0 {
		flags = strings.Join(r.SecurityFlags, ", ")
	}
	data := pterm.TableData{
		{"Field", "Value"},
		{"data type", r.Metadata.DataType.String()},
		{"strategy", r.Metadata.ExtractionStrategy},
		{"confidence", fmt.Sprintf("%.2f (%s)", r.Metadata.Confidence, r.Metadata.Source)},
		{"size", fmt.Sprintf("%d -> %d bytes", r.OriginalSize, r.ProcessedSize)},
		{"time", fmt.Sprintf("%.1fms", r.Metadata.ProcessingTimeMS)},
		{"flags", flags},
	}
	if r.SourceMetadata != nil && r.SourceMetadata.SourceURL != "" {
		data = append(data, []string{"source", r.SourceMetadata.SourceURL})
	}
	if c := r.Classification; c != nil && len(c.SuggestedTypes) > 0 {
		suggested := make([]string, len(c.SuggestedTypes))
		for i, t := range c.SuggestedTypes {
			suggested[i] = t.String()
		}
		data = append(data, []string{"suggested", strings.Join(suggested, ", ")})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(pterm.DefaultSection.Sprint(name))
	b.WriteString(table)
	b.WriteString("\n")
	if r.Content != "" {
		b.WriteString(pterm.DefaultBox.WithTitle("content").Sprint(r.Content))
		b.WriteString("\n")
	}
	return b.String(), nil
}
