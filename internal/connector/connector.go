// Package connector defines artifact sources and a provider registry.
package connector

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/model"
)

// Connector defines the interface all artifact sources must implement.
type Connector interface {
	// Stream sends artifacts as they become available. The channel is
	// closed when the source is exhausted or ctx ends.
	Stream(ctx context.Context, cfg Config) (<-chan model.Artifact, error)

	// Query reads every artifact currently available.
	Query(ctx context.Context, cfg Config, params QueryParams) ([]model.Artifact, error)
}

// Config holds source settings and the hints applied to every artifact
// the source produces.
type Config struct {
	Provider string
	Paths    []string

	// Stdin replaces os.Stdin for the "-" path.
	Stdin io.Reader
	// StdinName is the filename given to an artifact read from stdin.
	StdinName string

	// Follow keeps Stream open and emits files as they are created or
	// rewritten under the watched paths.
	Follow bool
	// Settle is how long a followed file must stay quiet before it is
	// read. Default: 250ms.
	Settle time.Duration

	AgentHint      model.DataType
	UserOverride   model.DataType
	BrowserContext string
	Source         *model.SourceMetadata

	Logger *zap.Logger
}

// QueryParams bounds a Query.
type QueryParams struct {
	// Limit caps the number of artifacts; 0 means unlimited.
	Limit int
	// MaxBytes skips files larger than this; 0 means unlimited.
	MaxBytes int64
}

// Apply copies the configured hints onto a.
func (c Config) Apply(a model.Artifact) model.Artifact {
	if a.AgentHint == "" {
		a.AgentHint = c.AgentHint
	}
	if a.UserOverride == "" {
		a.UserOverride = c.UserOverride
	}
	if a.BrowserContext == "" {
		a.BrowserContext = c.BrowserContext
	}
	if a.Source == nil && c.Source != nil {
		src := *c.Source
		a.Source = &src
	}
	return a
}

// Log returns the configured logger or a no-op logger.
func (c Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
