package sift

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sanitizer redacts sensitive text. It must return its input unchanged
// when it cannot do its job.
type Sanitizer interface {
	Sanitize(ctx context.Context, text string) string
}

type options struct {
	directLimit int
	workers     int
	logger      *zap.Logger
	sanitizer   Sanitizer
	endpoint    string
	token       string
	timeout     time.Duration
}

// Option configures a Sift instance.
type Option func(*options)

// WithDirectLimit sets the character budget of the direct-truncation
// fallback used for data types without an extractor. Default: 10000.
func WithDirectLimit(n int) Option {
	return func(o *options) {
		o.directLimit = n
	}
}

// WithWorkers bounds the concurrency of PreprocessBatch. Default: 4.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSanitizer installs a custom sanitizer.
func WithSanitizer(s Sanitizer) Option {
	return func(o *options) {
		o.sanitizer = s
	}
}

// WithSanitizerEndpoint calls a remote sanitizer service at endpoint.
// A zero timeout keeps the client default.
func WithSanitizerEndpoint(endpoint, token string, timeout time.Duration) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.token = token
		o.timeout = timeout
	}
}

func defaultOptions() options {
	return options{
		directLimit: 10000,
		workers:     4,
	}
}
