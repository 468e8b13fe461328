package sift

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/sift/internal/engine"
	"github.com/crimson-sun/sift/internal/engine/classifier"
	"github.com/crimson-sun/sift/internal/engine/extractor"
	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/sanitizer"
)

// Sift classifies and compresses artifacts. Safe for concurrent use.
type Sift struct {
	engine   *engine.Engine
	registry *extractor.Registry
	workers  int
}

// New creates a Sift instance.
func New(opts ...Option) (*Sift, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.directLimit < 1 {
		return nil, fmt.Errorf("sift: direct limit must be positive, got %d", o.directLimit)
	}
	if o.workers < 1 {
		return nil, fmt.Errorf("sift: workers must be positive, got %d", o.workers)
	}

	var san sanitizer.Sanitizer
	switch {
	case o.sanitizer != nil && o.endpoint != "":
		return nil, errors.New("sift: WithSanitizer and WithSanitizerEndpoint are mutually exclusive")
	case o.sanitizer != nil:
		san = o.sanitizer
	case o.endpoint != "":
		u, err := url.Parse(o.endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("sift: invalid sanitizer endpoint %q", o.endpoint)
		}
		san = sanitizer.NewHTTP(o.endpoint, o.token, o.timeout, o.logger)
	}

	reg := extractor.Default(o.directLimit)
	return &Sift{
		engine:   engine.New(classifier.New(), reg, san, o.logger),
		registry: reg,
		workers:  o.workers,
	}, nil
}

// Classify reports the data type of a without extracting anything.
func (s *Sift) Classify(a Artifact) Classification {
	return classificationFromModel(s.engine.Classify(a.toModel()))
}

// Preprocess classifies a and returns its compressed form. It always
// returns a Result; failures degrade to a placeholder or a truncation.
func (s *Sift) Preprocess(ctx context.Context, a Artifact) Result {
	return resultFromModel(s.engine.Preprocess(ctx, a.toModel()))
}

// PreprocessBatch runs Preprocess over arts concurrently. Results keep
// the input order.
func (s *Sift) PreprocessBatch(ctx context.Context, arts []Artifact) []Result {
	out := make([]Result, len(arts))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, a := range arts {
		g.Go(func() error {
			out[i] = s.Preprocess(ctx, a)
			return nil
		})
	}
	g.Wait()
	return out
}

// Strategies lists the extraction strategy registered for each data type.
func (s *Sift) Strategies() []Strategy {
	types := s.registry.Types()
	out := make([]Strategy, 0, len(types))
	for _, dt := range types {
		ext, _ := s.registry.Get(dt)
		out = append(out, Strategy{DataType: DataType(dt), Name: ext.StrategyName()})
	}
	return out
}

func (a Artifact) toModel() model.Artifact {
	m := model.Artifact{
		Filename:       a.Filename,
		Content:        a.Content,
		AgentHint:      model.DataType(a.AgentHint),
		UserOverride:   model.DataType(a.UserOverride),
		BrowserContext: a.BrowserContext,
	}
	if a.SourceURL != "" || a.SourceType != "" {
		m.Source = &model.SourceMetadata{
			SourceURL:  a.SourceURL,
			SourceType: model.SourceType(a.SourceType),
		}
	}
	return m
}

func classificationFromModel(c model.ClassificationResult) Classification {
	out := Classification{
		DataType:   DataType(c.DataType),
		Confidence: c.Confidence,
		Source:     string(c.Source),
		Failed:     c.ClassificationFailed,
	}
	for _, t := range c.SuggestedTypes {
		out.SuggestedTypes = append(out.SuggestedTypes, DataType(t))
	}
	return out
}

func resultFromModel(d model.PreprocessedData) Result {
	r := Result{
		Content: d.Content,
		Metadata: Metadata{
			DataType:         DataType(d.Metadata.DataType),
			Strategy:         d.Metadata.ExtractionStrategy,
			LLMCallsUsed:     d.Metadata.LLMCallsUsed,
			Confidence:       d.Metadata.Confidence,
			Source:           string(d.Metadata.Source),
			ProcessingTimeMS: d.Metadata.ProcessingTimeMS,
		},
		OriginalSize:  d.OriginalSize,
		ProcessedSize: d.ProcessedSize,
		SecurityFlags: d.SecurityFlags,
	}
	if d.SourceMetadata != nil {
		r.SourceURL = d.SourceMetadata.SourceURL
		r.SourceType = string(d.SourceMetadata.SourceType)
	}
	return r
}
