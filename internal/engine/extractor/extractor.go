// Package extractor defines the per-type extraction contract and the
// registry the orchestrator uses to pick a strategy for a classified
// artifact.
package extractor

import (
	"fmt"

	"github.com/crimson-sun/sift/internal/engine/compactor"
	"github.com/crimson-sun/sift/internal/model"
)

// Extractor compresses one kind of artifact into a bounded text summary.
// Implementations are stateless and safe for concurrent use.
type Extractor interface {
	Extract(content string) string
	StrategyName() string
	LLMCallsUsed() int
}

// FileExtractor is implemented by extractors that can use the filename,
// for example to pick a grammar from the extension.
type FileExtractor interface {
	Extractor
	ExtractFile(filename, content string) string
}

// Run extracts content with e, passing the filename along when e accepts it.
func Run(e Extractor, filename, content string) string {
	if fe, ok := e.(FileExtractor); ok {
		return fe.ExtractFile(filename, content)
	}
	return e.Extract(content)
}

// Registry maps a DataType to its Extractor. Lookups for unregistered types
// return the fallback extractor.
type Registry struct {
	byType   map[model.DataType]Extractor
	fallback Extractor
}

// NewRegistry creates an empty registry whose fallback truncates content
// directly to limit characters.
func NewRegistry(limit int) *Registry {
	return &Registry{
		byType:   make(map[model.DataType]Extractor),
		fallback: NewDirect(limit),
	}
}

// Register binds e to dt, replacing any previous binding.
func (r *Registry) Register(dt model.DataType, e Extractor) {
	r.byType[dt] = e
}

// Get returns the extractor registered for dt, or nil and false.
func (r *Registry) Get(dt model.DataType) (Extractor, bool) {
	e, ok := r.byType[dt]
	return e, ok
}

// Lookup returns the extractor for dt, or the fallback when none is
// registered. The boolean reports whether a registered extractor was found.
func (r *Registry) Lookup(dt model.DataType) (Extractor, bool) {
	if e, ok := r.byType[dt]; ok {
		return e, true
	}
	return r.fallback, false
}

// Fallback returns the direct-truncation extractor.
func (r *Registry) Fallback() Extractor {
	return r.fallback
}

// Types returns the registered data types in model.AllDataTypes order.
func (r *Registry) Types() []model.DataType {
	var out []model.DataType
	for _, dt := range model.AllDataTypes {
		if _, ok := r.byType[dt]; ok {
			out = append(out, dt)
		}
	}
	return out
}

// StrategyDirect is the strategy tag of the direct-truncation fallback.
const StrategyDirect = "direct"

// Direct keeps the first Limit characters of the content.
type Direct struct {
	Limit int
}

// NewDirect returns a Direct extractor. Non-positive limits are raised to 1.
func NewDirect(limit int) *Direct {
	if limit < 1 {
		limit = 1
	}
	return &Direct{Limit: limit}
}

func (d *Direct) Extract(content string) string {
	return compactor.TruncateChars(content, d.Limit, "\n... [truncated: %d characters omitted]")
}

func (d *Direct) StrategyName() string { return StrategyDirect }

func (d *Direct) LLMCallsUsed() int { return 0 }

func (d *Direct) String() string {
	return fmt.Sprintf("direct(%d)", d.Limit)
}
