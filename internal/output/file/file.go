package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Output.
type Option func(*Output)

// WithMaxSizeMB sets the file size in megabytes at which rotation
// triggers. Default: 100.
func WithMaxSizeMB(mb int) Option {
	return func(o *Output) { o.rotator.MaxSize = mb }
}

// WithMaxBackups sets how many rotated files are kept. Default: 5.
func WithMaxBackups(n int) Option {
	return func(o *Output) { o.rotator.MaxBackups = n }
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// Output writes NDJSON records to a size-rotated file with buffered I/O.
type Output struct {
	mu        sync.Mutex
	w         *bufio.Writer
	rotator   *lumberjack.Logger
	verbosity output.Verbosity
	bufSize   int
}

// New creates a file output that appends NDJSON to path.
func New(path string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{
		rotator: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 5,
		},
		verbosity: verbosity,
		bufSize:   defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	// Open eagerly so a bad path fails here rather than on first write.
	if _, err := o.rotator.Write(nil); err != nil {
		return nil, fmt.Errorf("file output: open %s: %w", path, err)
	}
	o.w = bufio.NewWriterSize(o.rotator, o.bufSize)
	return o, nil
}

// Write JSON-encodes the record and appends it as a line.
func (o *Output) Write(_ context.Context, rec model.PreprocessedData) error {
	data, err := json.Marshal(output.FormatRecord(rec, o.verbosity))
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()
	// A record never straddles a rotation boundary.
	if o.w.Available() < len(data) {
		if err := o.w.Flush(); err != nil {
			return fmt.Errorf("file output: flush: %w", err)
		}
	}
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
		o.rotator.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.rotator.Close()
}
