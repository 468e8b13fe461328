package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 10 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithLogger sets the logger used for dropped records and inner errors.
func WithLogger(l *zap.Logger) Option {
	return func(a *Async) { a.logger = l }
}

// WithOnError sets the callback invoked when the inner output's Write
// fails. Default: log a warning.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write drop the record instead of blocking when the
// buffer is full.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async moves writes to a slow output off the caller's goroutine. Records
// reach the inner output in the order they were written. Inner errors go
// to errFunc, not to the caller.
type Async struct {
	inner      output.Output
	ch         chan model.PreprocessedData
	done       chan struct{}
	logger     *zap.Logger
	errFunc    func(error)
	bufSize    int
	dropOnFull bool
	closeOnce  sync.Once
}

// New wraps inner and starts the drain goroutine.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errFunc == nil {
		a.errFunc = func(err error) { a.logger.Warn("async output write error", zap.Error(err)) }
	}
	a.ch = make(chan model.PreprocessedData, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues rec. It blocks while the buffer is full unless the wrapper
// drops on full, and returns ctx.Err() if ctx ends first.
func (a *Async) Write(ctx context.Context, rec model.PreprocessedData) error {
	if a.dropOnFull {
		select {
		case a.ch <- rec:
		default:
			a.logger.Warn("async output buffer full, dropping record",
				zap.String("filename", rec.Filename),
				zap.String("data_type", rec.Metadata.DataType.String()))
		}
		return nil
	}
	select {
	case a.ch <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting records, waits for the queue to drain (bounded by
// a timeout) and closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			a.logger.Warn("async output drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for rec := range a.ch {
		if err := a.inner.Write(context.Background(), rec); err != nil {
			a.errFunc(err)
		}
	}
}
