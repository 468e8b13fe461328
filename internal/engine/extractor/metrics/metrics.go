// Package metrics summarizes metric exports: per-series statistics,
// percentiles and spike/drop anomalies.
package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/crimson-sun/sift/internal/engine/compactor"
)

// Output caps.
const (
	MaxOutputChars    = 5000
	MaxAnomaliesShown = 10
	rawPreviewChars   = 2000
)

const truncationMarker = "\n... [truncated: %d characters omitted]"

// Extractor is the metrics-and-performance strategy.
type Extractor struct{}

// New returns a metrics Extractor.
func New() *Extractor { return &Extractor{} }

func (e *Extractor) StrategyName() string { return "statistical_summary" }

func (e *Extractor) LLMCallsUsed() int { return 0 }

// Extract parses content, analyzes every series and renders a summary
// bounded to MaxOutputChars characters.
func (e *Extractor) Extract(content string) string {
	format, series, ok := Parse(content)
	if !ok {
		return compactor.TruncateChars(renderUnparsed(content), MaxOutputChars, truncationMarker)
	}
	analyses := make([]Analysis, len(series))
	for i, s := range series {
		analyses[i] = Analyze(s)
	}
	return compactor.TruncateChars(render(format, analyses), MaxOutputChars, truncationMarker)
}

func renderUnparsed(content string) string {
	var b strings.Builder
	b.WriteString("=== METRICS SUMMARY ===\n")
	b.WriteString("No numeric series could be parsed (tried json, csv, prometheus). Raw preview:\n")
	b.WriteString(compactor.TruncateChars(content, rawPreviewChars, "\n... [%d characters omitted]"))
	return b.String()
}

func render(format Format, analyses []Analysis) string {
	points, spikes, drops := 0, 0, 0
	for _, a := range analyses {
		points += a.Stats.Count
		spikes += a.Spikes
		drops += a.Drops
	}

	var b strings.Builder
	b.WriteString("=== METRICS SUMMARY ===\n")
	fmt.Fprintf(&b, "Format: %s | Series: %d | Points: %d\n", format, len(analyses), points)
	fmt.Fprintf(&b, "Anomalies: %s, %s\n", plural(spikes, "spike"), plural(drops, "drop"))

	for _, a := range analyses {
		st := a.Stats
		fmt.Fprintf(&b, "\n[%s] %s\n", a.Series.Name, plural(st.Count, "point"))
		fmt.Fprintf(&b, "  min=%s max=%s mean=%s std=%s\n", num(st.Min), num(st.Max), num(st.Mean), num(st.Std))
		fmt.Fprintf(&b, "  p50=%s p95=%s p99=%s\n", num(st.P50), num(st.P95), num(st.P99))
		if a.Spikes > 0 {
			fmt.Fprintf(&b, "  baseline=%s (mean excluding %s)\n", num(st.Baseline), plural(a.Spikes, "spike"))
		}
		if a.Total == 0 {
			b.WriteString("  anomalies: none\n")
			continue
		}
		fmt.Fprintf(&b, "  anomalies (%d):\n", a.Total)
		shown := a.Anomalies
		if len(shown) > MaxAnomaliesShown {
			shown = shown[:MaxAnomaliesShown]
		}
		for _, an := range shown {
			b.WriteString("    - ")
			b.WriteString(describeAnomaly(an))
			b.WriteByte('\n')
		}
		if rest := a.Total - len(shown); rest > 0 {
			fmt.Fprintf(&b, "    ... and %d more\n", rest)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func describeAnomaly(an Anomaly) string {
	switch an.Kind {
	case Spike:
		return fmt.Sprintf("spike at %s: %s (%.1fσ above %s)", an.Label, num(an.Value), an.Magnitude, num(an.Reference))
	default:
		return fmt.Sprintf("drop at %s: %s (%.1f%% below baseline %s)", an.Label, num(an.Value), an.Magnitude, num(an.Reference))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// num formats v compactly: two decimals for ordinary magnitudes, %g for
// very large or very small ones.
func num(v float64) string {
	a := math.Abs(v)
	if a != 0 && (a >= 1e9 || a < 0.01) {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
