// Package pipeline runs artifacts from a connector through the engine and
// writes the records to an output.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/sift/internal/connector"
	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

// Processor turns one artifact into one record. *engine.Engine satisfies it.
type Processor interface {
	Preprocess(ctx context.Context, a model.Artifact) model.PreprocessedData
}

// Stats summarizes a run.
type Stats struct {
	Artifacts            int
	Redacted             int
	ClassificationFailed int
	ByType               map[model.DataType]int
}

func (s *Stats) add(r model.PreprocessedData) {
	s.Artifacts++
	s.ByType[r.Metadata.DataType]++
	if r.Classification.ClassificationFailed {
		s.ClassificationFailed++
	}
	for _, f := range r.SecurityFlags {
		if f == model.FlagPIIRedacted {
			s.Redacted++
		}
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds concurrent Preprocess calls. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline connects a connector, a processor and an output. Records are
// written in the order the connector produced the artifacts.
type Pipeline struct {
	connector connector.Connector
	proc      Processor
	output    output.Output
	workers   int
	logger    *zap.Logger
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, proc Processor, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector: conn,
		proc:      proc,
		output:    out,
		workers:   runtime.GOMAXPROCS(0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stream processes artifacts as the connector delivers them. It returns
// when the connector closes its channel, ctx ends or an output write fails.
func (p *Pipeline) Stream(ctx context.Context, cfg connector.Config) (Stats, error) {
	// Cancelling on return releases a connector blocked on a full channel.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := p.connector.Stream(ctx, cfg)
	if err != nil {
		return Stats{}, fmt.Errorf("pipeline stream: %w", err)
	}
	return p.run(ctx, ch)
}

// Query reads every available artifact and processes them as one batch.
func (p *Pipeline) Query(ctx context.Context, cfg connector.Config, params connector.QueryParams) (Stats, error) {
	arts, err := p.connector.Query(ctx, cfg, params)
	if err != nil {
		return Stats{}, fmt.Errorf("pipeline query: %w", err)
	}
	ch := make(chan model.Artifact, len(arts))
	for _, a := range arts {
		ch <- a
	}
	close(ch)
	return p.run(ctx, ch)
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}

func (p *Pipeline) run(ctx context.Context, ch <-chan model.Artifact) (Stats, error) {
	buf := newOrderBuffer(p.output)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	seq := 0
dispatch:
	for {
		select {
		case <-gctx.Done():
			break dispatch
		case a, ok := <-ch:
			if !ok {
				break dispatch
			}
			n := seq
			seq++
			g.Go(func() error {
				rec := p.proc.Preprocess(gctx, a)
				if err := buf.put(gctx, n, rec); err != nil {
					return fmt.Errorf("pipeline output: %w", err)
				}
				return nil
			})
		}
	}

	err := g.Wait()
	stats := buf.snapshot()
	if err == nil {
		err = ctx.Err()
	}
	p.logger.Info("pipeline finished",
		zap.Int("artifacts", stats.Artifacts),
		zap.Int("redacted", stats.Redacted),
		zap.Int("classification_failed", stats.ClassificationFailed),
		zap.Int("unwritten", buf.buffered()))
	return stats, err
}
