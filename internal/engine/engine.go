// Package engine sequences classification, extraction and sanitization
// into a single Preprocess call.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/engine/classifier"
	"github.com/crimson-sun/sift/internal/engine/compactor"
	"github.com/crimson-sun/sift/internal/engine/extractor"
	"github.com/crimson-sun/sift/internal/metrics"
	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/sanitizer"
)

// DefaultDirectLimit is the character budget of the direct-truncation
// fallback.
const DefaultDirectLimit = 10000

// Strategy tags of the two paths that skip extraction.
const (
	StrategyReferenceOnly        = "reference_only"
	StrategyClassificationFailed = "classification_failed"
)

// Engine orchestrates the classify → extract → sanitize pipeline. It holds
// no per-call state and is safe for concurrent use.
type Engine struct {
	classifier *classifier.Classifier
	registry   *extractor.Registry
	sanitizer  sanitizer.Sanitizer
	logger     *zap.Logger
}

// New creates an Engine with the provided components. Nil arguments get
// defaults: the standard classifier, extractor.Default(DefaultDirectLimit),
// a no-op sanitizer and a no-op logger.
func New(cls *classifier.Classifier, reg *extractor.Registry, san sanitizer.Sanitizer, logger *zap.Logger) *Engine {
	if cls == nil {
		cls = classifier.New()
	}
	if reg == nil {
		reg = extractor.Default(DefaultDirectLimit)
	}
	if san == nil {
		san = sanitizer.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		classifier: cls,
		registry:   reg,
		sanitizer:  san,
		logger:     logger,
	}
}

// Classify runs only the classifier.
func (e *Engine) Classify(a model.Artifact) model.ClassificationResult {
	return e.classifier.Classify(a)
}

// Preprocess classifies a and compresses it with the matching extractor.
// It always returns a record: unanalyzable artifacts get a reference-only
// placeholder, failed classifications get a placeholder listing the
// suggested types, and extractor panics fall back to direct truncation.
func (e *Engine) Preprocess(ctx context.Context, a model.Artifact) model.PreprocessedData {
	start := time.Now()
	runID := uuid.NewString()

	cls := e.classifier.Classify(a)
	out := model.PreprocessedData{
		OriginalSize:   len(a.Content),
		SecurityFlags:  []string{},
		SourceMetadata: a.Source,
		Filename:       a.Filename,
		Classification: cls,
		Metadata: model.ExtractionMetadata{
			DataType:   cls.DataType,
			Confidence: cls.Confidence,
			Source:     cls.Source,
		},
	}

	switch {
	case cls.DataType == model.Unanalyzable:
		out.Content = referenceOnly(a)
		out.Metadata.ExtractionStrategy = StrategyReferenceOnly
		out.ProcessedSize = 0

	case cls.ClassificationFailed:
		metrics.ClassificationFailures.Inc()
		out.Content = disambiguation(cls)
		out.Metadata.ExtractionStrategy = StrategyClassificationFailed
		out.ProcessedSize = len(out.Content)

	default:
		ext, found := e.registry.Lookup(cls.DataType)
		if !found {
			metrics.ExtractionFallbacks.WithLabelValues(metrics.ReasonUnregistered).Inc()
			e.logger.Warn("no extractor registered, truncating directly",
				zap.String("run_id", runID),
				zap.String("data_type", cls.DataType.String()),
			)
		}
		content, strategy, calls := e.extract(ext, a, runID)

		sanitized := e.sanitizer.Sanitize(ctx, content)
		if sanitized != content {
			metrics.PIIRedactions.Inc()
			out.SecurityFlags = append(out.SecurityFlags, model.FlagPIIRedacted)
		}
		out.Content = sanitized
		out.ProcessedSize = len(sanitized)
		out.Metadata.ExtractionStrategy = strategy
		out.Metadata.LLMCallsUsed = calls
	}

	elapsed := time.Since(start)
	out.Metadata.ProcessingTimeMS = float64(elapsed.Microseconds()) / 1000

	tokens := compactor.EstimateSavings(a.Content, out.Content)
	metrics.ArtifactsTotal.WithLabelValues(cls.DataType.String(), out.Metadata.ExtractionStrategy).Inc()
	metrics.ProcessingDuration.WithLabelValues(cls.DataType.String()).Observe(elapsed.Seconds())
	if tokens.Original > 0 && cls.DataType != model.Unanalyzable {
		metrics.CompressionRatio.WithLabelValues(cls.DataType.String()).Observe(tokens.Ratio())
	}

	e.logger.Debug("preprocessed artifact",
		zap.String("run_id", runID),
		zap.String("filename", a.Filename),
		zap.String("data_type", cls.DataType.String()),
		zap.String("source", string(cls.Source)),
		zap.Float64("confidence", cls.Confidence),
		zap.String("strategy", out.Metadata.ExtractionStrategy),
		zap.Int("original_size", out.OriginalSize),
		zap.Int("processed_size", out.ProcessedSize),
		zap.Int("original_tokens", tokens.Original),
		zap.Int("processed_tokens", tokens.Processed),
		zap.Duration("duration", elapsed),
	)
	return out
}

// extract runs ext and converts a panic into the direct-truncation
// fallback.
func (e *Engine) extract(ext extractor.Extractor, a model.Artifact, runID string) (content, strategy string, calls int) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ExtractionFallbacks.WithLabelValues(metrics.ReasonPanic).Inc()
			e.logger.Warn("extractor panicked, truncating directly",
				zap.String("run_id", runID),
				zap.String("strategy", ext.StrategyName()),
				zap.Any("panic", r),
			)
			fb := e.registry.Fallback()
			content, strategy, calls = fb.Extract(a.Content), fb.StrategyName(), fb.LLMCallsUsed()
		}
	}()
	return extractor.Run(ext, a.Filename, a.Content), ext.StrategyName(), ext.LLMCallsUsed()
}

func referenceOnly(a model.Artifact) string {
	name := a.Filename
	if name == "" {
		name = "artifact"
	}
	return fmt.Sprintf("[REFERENCE ONLY] %s (%d bytes) is not analyzable as text and was kept for reference.", name, len(a.Content))
}

func disambiguation(cls model.ClassificationResult) string {
	types := make([]string, len(cls.SuggestedTypes))
	for i, t := range cls.SuggestedTypes {
		types[i] = t.String()
	}
	return fmt.Sprintf("[CLASSIFICATION FAILED] Could not determine the artifact type (confidence %.2f). "+
		"Suggested types: %s. Resubmit with a user override to continue.",
		cls.Confidence, strings.Join(types, ", "))
}
