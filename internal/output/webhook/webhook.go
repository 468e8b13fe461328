// Package webhook posts batches of preprocessed records to an HTTP
// endpoint as a JSON array.
package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/httpclient"
	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

const (
	defaultBatchSize     = 20
	defaultFlushInterval = 5 * time.Second
)

// Option configures a webhook Output.
type Option func(*Output)

// WithToken sends the token as a Bearer credential.
func WithToken(token string) Option {
	return func(o *Output) { o.token = token }
}

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.clientOpts = append(o.clientOpts, httpclient.WithHeaders(h)) }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.clientOpts = append(o.clientOpts, httpclient.WithTimeout(d)) }
}

// WithBackoff sets the base retry delay.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.clientOpts = append(o.clientOpts, httpclient.WithBackoff(d)) }
}

// WithBatchSize sets the number of records accumulated before a flush. Default: 20.
func WithBatchSize(n int) Option {
	return func(o *Output) { o.batchSize = n }
}

// WithFlushInterval sets the maximum time a record waits in the batch. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(o *Output) { o.flushInterval = d }
}

// WithVerbosity selects the record fields posted. Default: Standard.
func WithVerbosity(v output.Verbosity) Option {
	return func(o *Output) { o.verbosity = v }
}

// WithLogger sets the logger for timer-triggered flush failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *Output) { o.logger = l }
}

// WithOnError sets a callback invoked when a timer-triggered flush fails.
func WithOnError(f func(error)) Option {
	return func(o *Output) { o.errFunc = f }
}

// Output batches records and flushes them when batchSize is reached, when
// flushInterval elapses or on Close.
type Output struct {
	client        *httpclient.Client
	clientOpts    []httpclient.Option
	token         string
	batchSize     int
	flushInterval time.Duration
	verbosity     output.Verbosity
	logger        *zap.Logger
	errFunc       func(error)

	mu      sync.Mutex
	pending []output.Record
	timer   *time.Timer
}

// New creates a webhook output posting to url.
func New(url string, opts ...Option) *Output {
	o := &Output{
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		verbosity:     output.Standard,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.batchSize < 1 {
		o.batchSize = 1
	}
	if o.errFunc == nil {
		o.errFunc = func(err error) { o.logger.Warn("webhook flush failed", zap.Error(err)) }
	}
	o.client = httpclient.New(url, o.token, o.clientOpts...)
	return o
}

// Write adds rec to the batch and flushes synchronously when the batch is
// full. The first record of a batch arms the flush timer.
func (o *Output) Write(ctx context.Context, rec model.PreprocessedData) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = append(o.pending, output.FormatRecord(rec, o.verbosity))
	if len(o.pending) >= o.batchSize {
		return o.flushLocked(ctx)
	}
	if len(o.pending) == 1 {
		o.timer = time.AfterFunc(o.flushInterval, o.flushOnTimer)
	}
	return nil
}

// Close flushes anything still pending.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushLocked(context.Background())
}

func (o *Output) flushOnTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.flushLocked(context.Background()); err != nil {
		o.errFunc(err)
	}
}

// flushLocked posts the pending batch. Caller must hold o.mu.
func (o *Output) flushLocked(ctx context.Context) error {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if len(o.pending) == 0 {
		return nil
	}
	batch := o.pending
	o.pending = nil
	if err := o.client.PostJSON(ctx, "", batch, nil); err != nil {
		return fmt.Errorf("webhook: post %d records: %w", len(batch), err)
	}
	return nil
}
