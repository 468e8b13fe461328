// Package sanitizer defines the contract of the external PII/secret
// redaction service the pipeline calls after extraction.
package sanitizer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/httpclient"
)

// Sanitizer redacts sensitive content. Implementations must accept any
// text, including the empty string, and return the input unchanged when
// they fail.
type Sanitizer interface {
	Sanitize(ctx context.Context, text string) string
}

// Noop returns text unchanged.
type Noop struct{}

func (Noop) Sanitize(_ context.Context, text string) string { return text }

// Func adapts a plain function to the Sanitizer interface.
type Func func(ctx context.Context, text string) string

func (f Func) Sanitize(ctx context.Context, text string) string { return f(ctx, text) }

// SanitizePath is the endpoint the HTTP sanitizer posts to.
const SanitizePath = "/v1/sanitize"

type payload struct {
	Text string `json:"text"`
}

// HTTP calls a remote sanitizer service.
type HTTP struct {
	client *httpclient.Client
	logger *zap.Logger
}

// NewHTTP creates an HTTP sanitizer for endpoint.
func NewHTTP(endpoint, token string, timeout time.Duration, logger *zap.Logger) *HTTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []httpclient.Option{}
	if timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(timeout))
	}
	return &HTTP{
		client: httpclient.New(endpoint, token, opts...),
		logger: logger,
	}
}

// Sanitize posts text to the service. Errors and empty responses are logged
// and the input is returned unchanged.
func (h *HTTP) Sanitize(ctx context.Context, text string) string {
	if text == "" {
		return text
	}
	var out payload
	if err := h.client.PostJSON(ctx, SanitizePath, payload{Text: text}, &out); err != nil {
		h.logger.Warn("sanitizer unavailable, passing text through", zap.Error(err))
		return text
	}
	if out.Text == "" {
		h.logger.Warn("sanitizer returned no text, passing text through")
		return text
	}
	return out.Text
}
