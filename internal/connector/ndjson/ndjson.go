// Package ndjson reads artifact requests, one JSON object per line, from
// stdin or a file.
package ndjson

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/connector"
	"github.com/crimson-sun/sift/internal/model"
)

// Provider is the registry name of this connector.
const Provider = "ndjson"

// maxLine bounds a single request line.
const maxLine = 64 << 20

func init() {
	connector.Register(Provider, func() connector.Connector {
		return &Connector{}
	})
}

// Request is the wire form of one artifact.
type Request struct {
	Filename       string `json:"filename"`
	Content        string `json:"content"`
	AgentHint      string `json:"agent_hint,omitempty"`
	UserOverride   string `json:"user_override,omitempty"`
	BrowserContext string `json:"browser_context,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
	SourceType     string `json:"source_type,omitempty"`
}

// Artifact converts the request. Unknown type names are dropped with a
// warning so the classifier falls through to its next tier.
func (r Request) Artifact(log *zap.Logger) model.Artifact {
	a := model.Artifact{
		Filename:       r.Filename,
		Content:        r.Content,
		BrowserContext: r.BrowserContext,
		AgentHint:      parseType(r.AgentHint, "agent_hint", log),
		UserOverride:   parseType(r.UserOverride, "user_override", log),
	}
	if r.SourceURL != "" || r.SourceType != "" {
		a.Source = &model.SourceMetadata{
			SourceURL:  r.SourceURL,
			SourceType: model.SourceType(r.SourceType),
		}
	}
	return a
}

func parseType(s, field string, log *zap.Logger) model.DataType {
	if s == "" {
		return ""
	}
	t, ok := model.ParseDataType(s)
	if !ok {
		log.Warn("ndjson connector: ignoring unknown data type", zap.String("field", field), zap.String("value", s))
		return ""
	}
	return t
}

// Connector implements connector.Connector for line-delimited requests.
// cfg.Paths[0] names the input file; no path or "-" reads stdin.
type Connector struct{}

func (c *Connector) Query(ctx context.Context, cfg connector.Config, params connector.QueryParams) ([]model.Artifact, error) {
	r, closeFn, err := open(cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var out []model.Artifact
	err = scan(ctx, r, cfg, func(a model.Artifact) bool {
		if params.MaxBytes > 0 && int64(len(a.Content)) > params.MaxBytes {
			cfg.Log().Warn("ndjson connector: skipping oversized artifact",
				zap.String("filename", a.Filename), zap.Int("size", len(a.Content)))
			return true
		}
		out = append(out, a)
		return params.Limit == 0 || len(out) < params.Limit
	})
	return out, err
}

func (c *Connector) Stream(ctx context.Context, cfg connector.Config) (<-chan model.Artifact, error) {
	r, closeFn, err := open(cfg)
	if err != nil {
		return nil, err
	}
	ch := make(chan model.Artifact, 16)
	go func() {
		defer close(ch)
		defer closeFn()
		err := scan(ctx, r, cfg, func(a model.Artifact) bool {
			select {
			case ch <- a:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil && ctx.Err() == nil {
			cfg.Log().Warn("ndjson connector: read failed", zap.Error(err))
		}
	}()
	return ch, nil
}

func open(cfg connector.Config) (io.Reader, func(), error) {
	if len(cfg.Paths) > 1 {
		return nil, nil, fmt.Errorf("ndjson connector: expected one input, got %d", len(cfg.Paths))
	}
	if len(cfg.Paths) == 0 || cfg.Paths[0] == "-" {
		if cfg.Stdin != nil {
			return cfg.Stdin, func() {}, nil
		}
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(cfg.Paths[0])
	if err != nil {
		return nil, nil, fmt.Errorf("ndjson connector: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// scan decodes each non-blank line. Malformed lines are logged and skipped.
func scan(ctx context.Context, r io.Reader, cfg connector.Config, emit func(model.Artifact) bool) error {
	log := cfg.Log()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Warn("ndjson connector: skipping malformed line", zap.Int("line", line), zap.Error(err))
			continue
		}
		if !emit(cfg.Apply(req.Artifact(log))) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("ndjson connector: line %d: %w", line+1, err)
	}
	return nil
}
