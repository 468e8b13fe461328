// Package text triages free-form documents: error messages and stack
// traces first, then code blocks, then the remaining prose split into
// sections.
package text

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/sift/internal/engine/compactor"
	"github.com/crimson-sun/sift/internal/engine/dedup"
)

const (
	MaxOutputChars = 10000
	FallbackChars  = 5000

	MaxErrors      = 15
	MaxErrorChars  = 500
	MaxCodeBlocks  = 10
	MaxCodeChars   = 500
	MaxSections    = 20
	MaxSectionBody = 400
)

// Extractor is the unstructured-text strategy.
type Extractor struct {
	dedup *dedup.Deduplicator
}

// New returns a text Extractor.
func New() *Extractor {
	return &Extractor{dedup: dedup.New(dedup.Config{})}
}

func (e *Extractor) StrategyName() string { return "text_triage" }

func (e *Extractor) LLMCallsUsed() int { return 0 }

// Extract returns errors, code blocks and sections of content, in that order.
func (e *Extractor) Extract(content string) string {
	content = norm.NFC.String(content)
	lines := compactor.Lines(content)
	doc := scan(lines)

	used := make([]bool, len(lines))
	errs := e.dedup.Collapse(findErrors(lines, doc, used))
	blocks := findCode(lines, doc, used)
	var sections []section
	if doc.markdown {
		sections = headingSections(lines, doc, used)
	} else {
		sections = paragraphSections(lines, doc, used)
	}

	if len(errs) == 0 && len(blocks) == 0 && len(sections) == 0 {
		return fallback(content)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== TEXT TRIAGE (%s) ===\n", doc.kind())
	writeErrors(&b, errs)
	writeCode(&b, blocks)
	writeSections(&b, sections)

	out := strings.TrimRight(b.String(), "\n")
	return compactor.TruncateChars(out, MaxOutputChars, "\n... [output truncated: %d characters omitted]")
}

func fallback(content string) string {
	body := compactor.TruncateChars(strings.TrimSpace(content), FallbackChars, "\n... [truncated: %d characters omitted]")
	if body == "" {
		body = "(empty document)"
	}
	return "=== UNSTRUCTURED TEXT (no structure detected) ===\n" + body
}

func writeErrors(b *strings.Builder, groups []dedup.Group) {
	if len(groups) == 0 {
		return
	}
	shown := groups
	if len(shown) > MaxErrors {
		shown = shown[:MaxErrors]
	}
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	fmt.Fprintf(b, "\n## Errors (%d unique, %d total)\n", len(groups), total)
	for i, g := range shown {
		fmt.Fprintf(b, "[%d] %s\n", i+1, g.String())
	}
	if rest := len(groups) - len(shown); rest > 0 {
		fmt.Fprintf(b, "... and %d more\n", rest)
	}
}

func writeCode(b *strings.Builder, blocks []codeBlock) {
	if len(blocks) == 0 {
		return
	}
	shown := blocks
	if len(shown) > MaxCodeBlocks {
		shown = shown[:MaxCodeBlocks]
	}
	fmt.Fprintf(b, "\n## Code blocks (%d)\n", len(blocks))
	for i, c := range shown {
		lang := c.lang
		if lang == "" {
			lang = "text"
		}
		fmt.Fprintf(b, "[%d] %s, line %d\n", i+1, lang, c.line)
		b.WriteString(c.body)
		b.WriteString("\n")
	}
	if rest := len(blocks) - len(shown); rest > 0 {
		fmt.Fprintf(b, "... and %d more\n", rest)
	}
}

func writeSections(b *strings.Builder, sections []section) {
	if len(sections) == 0 {
		return
	}
	shown := sections
	if len(shown) > MaxSections {
		shown = shown[:MaxSections]
	}
	fmt.Fprintf(b, "\n## Sections (%d)\n", len(sections))
	for _, s := range shown {
		fmt.Fprintf(b, "### %s\n", s.title)
		if s.body != "" {
			b.WriteString(s.body)
			b.WriteString("\n")
		}
	}
	if rest := len(sections) - len(shown); rest > 0 {
		fmt.Fprintf(b, "... and %d more sections\n", rest)
	}
}
