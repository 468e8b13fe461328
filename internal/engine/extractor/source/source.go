// Package source extracts the structure of source code: imports, types,
// function signatures, error handling and TODO comments. Go, Python,
// JavaScript and TypeScript are parsed with tree-sitter; other languages
// and unparseable input fall back to per-language regular expressions.
package source

import (
	"github.com/crimson-sun/sift/internal/engine/compactor"
)

// MaxOutputChars caps the rendered report.
const MaxOutputChars = 8000

// Parser labels reported in the output header.
const (
	ParserSyntaxTree = "syntax tree"
	ParserHeuristic  = "heuristic"
)

// Extractor is the source-code strategy.
type Extractor struct{}

// New returns a source-code Extractor.
func New() *Extractor { return &Extractor{} }

func (e *Extractor) StrategyName() string { return "code_structure" }

func (e *Extractor) LLMCallsUsed() int { return 0 }

// Extract detects the language from content alone.
func (e *Extractor) Extract(content string) string {
	return e.ExtractFile("", content)
}

// ExtractFile uses the filename extension to choose the language when it
// is recognized.
func (e *Extractor) ExtractFile(filename, content string) string {
	lang, ok := languageFromFilename(filename)
	if !ok {
		lang = detectLanguage(content)
	}
	lines := len(compactor.Lines(content))

	r := newReport(lang, ParserSyntaxTree, lines)
	if !parseTree(lang, []byte(content), r) {
		r = newReport(lang, ParserHeuristic, lines)
		heuristicExtract(lang, content, r)
	}
	return compactor.TruncateChars(r.render(content), MaxOutputChars, "\n... [truncated: %d characters omitted]")
}
