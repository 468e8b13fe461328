// Package logs implements Crime Scene Extraction: severity-weighted
// selection of the few log windows that explain a failure.
package logs

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/sift/internal/engine/compactor"
)

// Window sizes and caps, in lines.
const (
	MaxSnippetLines    = 500
	SingleErrorContext = 200
	SceneContext       = 100
	BurstWindow        = 50
	BurstMinLines      = 10
	BurstPadding       = 50
	TruncateHead       = 200
	TruncateTail       = 200
)

// Strategy tags reported in the header.
const (
	StrategyTail        = "tail"
	StrategyCrimeScenes = "crime_scenes"
	StrategyBurst       = "error_burst"
	StrategySingle      = "single_error"
)

// Header and footer markers framing the snippet.
const (
	headerTitle   = "=== CRIME SCENE EXTRACTION ==="
	snippetBegin  = "--- BEGIN SNIPPET ---"
	snippetEnd    = "--- END SNIPPET ---"
	maxLineInDesc = 200
)

// Extractor is the logs-and-errors strategy.
type Extractor struct{}

// New returns a logs Extractor.
func New() *Extractor { return &Extractor{} }

func (e *Extractor) StrategyName() string { return "crime_scene" }

func (e *Extractor) LLMCallsUsed() int { return 0 }

// span is a half-open range of line indexes.
type span struct{ start, end int }

func clip(start, end, n int) span {
	return span{start: max(start, 0), end: min(end, n)}
}

// scene is the assembled body plus what produced it.
type scene struct {
	strategy    string
	description string
	body        []string
	anchor      int // index into body of the primary line, -1 if none
}

// Extract selects the crime scene for content and wraps it in a fixed
// header and footer.
func (e *Extractor) Extract(content string) string {
	lines := compactor.Lines(content)
	tags := scan(lines)

	var sc scene
	var p *tag
	if len(tags) == 0 {
		sc = tailScene(lines)
	} else {
		pt := primary(tags)
		p = &pt
		sc = selectScene(lines, tags, pt)
	}

	if len(sc.body) > MaxSnippetLines {
		anchor := sc.anchor
		if anchor < 0 {
			anchor = len(sc.body) - 1
		}
		sc.body = compactor.CollapseAround(sc.body, TruncateHead, TruncateTail, anchor)
	}
	return render(lines, tags, p, sc)
}

func tailScene(lines []string) scene {
	body := compactor.Tail(lines, MaxSnippetLines)
	return scene{
		strategy:    StrategyTail,
		description: fmt.Sprintf("no errors detected; showing the last %d lines", len(body)),
		body:        body,
		anchor:      -1,
	}
}

// selectScene applies the precedence: two crime scenes, then burst, then
// single-error context.
func selectScene(lines []string, tags []tag, p tag) scene {
	var severe []int
	for _, t := range tags {
		if t.weight >= WeightError {
			severe = append(severe, t.line)
		}
	}
	if len(severe) > 1 {
		return crimeScenes(lines, severe, p)
	}
	if sp, n, ok := burst(lines, tags, p); ok {
		return scene{
			strategy:    StrategyBurst,
			description: fmt.Sprintf("error burst of %d tagged lines around line %d, lines %d-%d", n, p.line+1, sp.start+1, sp.end),
			body:        lines[sp.start:sp.end],
			anchor:      p.line - sp.start,
		}
	}
	sp := clip(p.line-SingleErrorContext, p.line+SingleErrorContext+1, len(lines))
	return scene{
		strategy:    StrategySingle,
		description: fmt.Sprintf("single error at line %d with up to %d lines of context each side, lines %d-%d", p.line+1, SingleErrorContext, sp.start+1, sp.end),
		body:        lines[sp.start:sp.end],
		anchor:      p.line - sp.start,
	}
}

// crimeScenes windows the first and last severe lines. Overlapping or
// adjacent windows are merged into one.
func crimeScenes(lines []string, severe []int, p tag) scene {
	first, last := severe[0], severe[len(severe)-1]
	a := clip(first-SceneContext, first+SceneContext+1, len(lines))
	b := clip(last-SceneContext, last+SceneContext+1, len(lines))

	sc := scene{
		strategy: StrategyCrimeScenes,
		anchor:   -1,
	}
	if b.start <= a.end {
		sc.body = lines[a.start:b.end]
		sc.description = fmt.Sprintf("%d error lines; first at line %d and last at line %d share one window, lines %d-%d",
			len(severe), first+1, last+1, a.start+1, b.end)
		if p.line >= a.start && p.line < b.end {
			sc.anchor = p.line - a.start
		}
		return sc
	}

	body := make([]string, 0, (a.end-a.start)+(b.end-b.start)+1)
	body = append(body, lines[a.start:a.end]...)
	body = append(body, fmt.Sprintf("... [%d lines omitted between crime scenes] ...", b.start-a.end))
	body = append(body, lines[b.start:b.end]...)
	sc.body = body
	sc.description = fmt.Sprintf("%d error lines; onset at line %d (lines %d-%d) and latest at line %d (lines %d-%d)",
		len(severe), first+1, a.start+1, a.end, last+1, b.start+1, b.end)
	switch {
	case p.line >= a.start && p.line < a.end:
		sc.anchor = p.line - a.start
	case p.line >= b.start && p.line < b.end:
		sc.anchor = (a.end - a.start) + 1 + p.line - b.start
	}
	return sc
}

// burst reports whether at least BurstMinLines tagged lines fall within
// BurstWindow lines of the primary. The returned span runs from the first
// to the last such line, padded by BurstPadding on each side.
func burst(lines []string, tags []tag, p tag) (span, int, bool) {
	lo, hi := p.line-BurstWindow, p.line+BurstWindow
	first, last, n := -1, -1, 0
	for _, t := range tags {
		if t.line < lo || t.line > hi {
			continue
		}
		if first < 0 {
			first = t.line
		}
		last = t.line
		n++
	}
	if n < BurstMinLines {
		return span{}, n, false
	}
	return clip(first-BurstPadding, last+BurstPadding+1, len(lines)), n, true
}

func render(lines []string, tags []tag, p *tag, sc scene) string {
	var b strings.Builder
	b.WriteString(headerTitle)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Strategy: %s (%s)\n", sc.strategy, sc.description)
	fmt.Fprintf(&b, "Lines: %d total, %d tagged\n", len(lines), len(tags))
	fmt.Fprintf(&b, "Severity: %s\n", histogram(tags))
	if p != nil {
		fmt.Fprintf(&b, "Primary: line %d [%s] %s\n", p.line+1, p.keyword,
			compactor.Truncate(strings.TrimSpace(lines[p.line]), maxLineInDesc))
	} else {
		b.WriteString("Primary: none\n")
	}
	b.WriteString(snippetBegin)
	b.WriteByte('\n')
	for _, l := range sc.body {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(snippetEnd)
	return b.String()
}
