package extractor

import (
	"github.com/crimson-sun/sift/internal/engine/extractor/logs"
	"github.com/crimson-sun/sift/internal/engine/extractor/metrics"
	"github.com/crimson-sun/sift/internal/engine/extractor/source"
	"github.com/crimson-sun/sift/internal/engine/extractor/structured"
	"github.com/crimson-sun/sift/internal/engine/extractor/text"
	"github.com/crimson-sun/sift/internal/engine/extractor/visual"
	"github.com/crimson-sun/sift/internal/model"
)

// Default returns a registry with one strategy per analyzable data type and
// a direct-truncation fallback of limit characters.
func Default(limit int) *Registry {
	r := NewRegistry(limit)
	r.Register(model.LogsAndErrors, logs.New())
	r.Register(model.StructuredConfig, structured.New())
	r.Register(model.MetricsAndPerformance, metrics.New())
	r.Register(model.UnstructuredText, text.New())
	r.Register(model.SourceCode, source.New())
	r.Register(model.VisualEvidence, visual.New())
	return r
}
