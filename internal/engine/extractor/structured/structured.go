// Package structured summarizes configuration files: it parses JSON, YAML,
// TOML or loose key=value text, redacts secrets and renders the result as
// indented key/value lines.
package structured

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/sift/internal/engine/compactor"
)

// MaxRenderedLines caps the output, header included.
const MaxRenderedLines = 500

const headerLines = 2

// Extractor is the structured-config strategy.
type Extractor struct{}

// New returns a structured-config Extractor.
func New() *Extractor { return &Extractor{} }

func (e *Extractor) StrategyName() string { return "config_redaction" }

func (e *Extractor) LLMCallsUsed() int { return 0 }

// Extract parses, redacts and renders content.
func (e *Extractor) Extract(content string) string {
	format, tree := Parse(content)
	redacted, n := Redact(tree)

	body := Render(redacted)
	if len(body) == 0 {
		body = []string{"(no configuration entries found)"}
	}
	body = compactor.CollapseMiddle(body, MaxRenderedLines-headerLines)

	var b strings.Builder
	fmt.Fprintf(&b, "=== STRUCTURED CONFIG (%s) ===\n", format)
	fmt.Fprintf(&b, "Entries: %d | Redacted: %d\n", countLeaves(redacted), n)
	b.WriteString(strings.Join(body, "\n"))
	return b.String()
}
